package session

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/rule"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// EndReason 回合结束原因
type EndReason string

const (
	ReasonTimeout    EndReason = "timeout"
	ReasonAllGuessed EndReason = "all_guessed"
)

// step 回合状态机的下一步。startRound 与 endRound 互相衔接时通过 run 循环推进，避免递归
type step int

const (
	stepDone step = iota
	stepStartRound
	stepEndRound
)

// run 在房间锁内推进状态机，直到没有后续步骤
func (e *Engine) run(r *room.Room, next step, reason EndReason) {
	for next != stepDone {
		switch next {
		case stepStartRound:
			next = e.startRound(r)
		case stepEndRound:
			next = e.endRound(r, reason)
		default:
			return
		}
	}
}

// startRound 开始新回合；人数不足时回到等待状态
func (e *Engine) startRound(r *room.Room) step {
	g := &r.Game
	g.CancelTimers()
	texts := textsFor(r.Language)

	order := r.ActiveOrder()
	if len(order) < rule.MinPlayers {
		g.Started = false
		rule.EndRoundState(g)
		e.notice(r, texts.needPlayers, nil)
		e.broadcastState(r)
		return stepDone
	}

	if g.DrawerID == "" || r.Player(g.DrawerID) == nil {
		g.DrawerID = rule.NextDrawer(order, g.DrawerID)
		g.DrawnPlayers[g.DrawerID] = struct{}{}
	}

	entry := e.words.Next(r.Language, g.UsedWords)
	rule.StartRoundState(g, entry, e.now())
	g.UsedWords[g.CurrentWord] = struct{}{}
	e.armTimers(r)

	r.ClearStrokes()
	e.bc.SendToRoom(r.ID, protocol.MsgClearCanvas, nil)

	drawer := r.Player(g.DrawerID)
	e.notice(r, fmt.Sprintf(texts.drawing, drawer.Name), drawer)
	e.broadcastState(r)

	log.Debug().
		Str("room", r.ID).
		Str("drawer", drawer.ID).
		Uint64("seq", g.RoundSeq).
		Msg("🎨 回合开始")
	return stepDone
}

// armTimers 设置回合超时和提示计时器，并立即公开第一条提示
func (e *Engine) armTimers(r *room.Room) {
	g := &r.Game
	seq := g.RoundSeq

	g.Timer = e.scheduler.AfterFunc(rule.RoundDuration, func() {
		e.onRoundTimeout(r, seq)
	})

	if len(g.AllHints) > 0 {
		g.CurrentHint = g.AllHints[0]
	}
	for i := 1; i < len(rule.HintOffsets) && i < len(g.AllHints); i++ {
		idx := i
		g.HintTimers = append(g.HintTimers, e.scheduler.AfterFunc(rule.HintOffsets[i], func() {
			e.onHint(r, seq, idx)
		}))
	}
}

// live 计时器回调是否仍属于当前回合
func live(r *room.Room, seq uint64) bool {
	return !r.Closed() && r.Game.RoundSeq == seq && r.Game.RoundActive()
}

func (e *Engine) onRoundTimeout(r *room.Room, seq uint64) {
	r.Lock()
	defer r.Unlock()
	if !live(r, seq) {
		return
	}
	e.run(r, stepEndRound, ReasonTimeout)
}

func (e *Engine) onHint(r *room.Room, seq uint64, idx int) {
	r.Lock()
	defer r.Unlock()
	if !live(r, seq) || idx >= len(r.Game.AllHints) {
		return
	}
	r.Game.CurrentHint = r.Game.AllHints[idx]
	e.broadcastState(r)
}

// endRound 结束当前回合：公布答案，整局结束或轮到下一位画手
func (e *Engine) endRound(r *room.Room, reason EndReason) step {
	g := &r.Game
	if !g.RoundActive() {
		return stepDone
	}
	g.CancelTimers()
	texts := textsFor(r.Language)

	e.notice(r, texts.roundEnded(reason, g.CurrentWord), nil)

	order := r.ActiveOrder()
	if rule.GameShouldEnd(order, g.DrawnPlayers) {
		rule.EndRoundState(g)
		g.Started = false
		e.notice(r, texts.gameOver, nil)
		e.broadcastState(r)
		e.recordGame(r)
		log.Info().Str("room", r.ID).Int("players", len(order)).Msg("🏁 游戏结束")
		return stepDone
	}

	next := rule.NextDrawer(order, g.DrawerID)
	g.DrawerID = next
	g.DrawnPlayers[next] = struct{}{}
	rule.EndRoundState(g)
	r.ClearStrokes()
	return stepStartRound
}

func (e *Engine) recordGame(r *room.Room) {
	results := make([]storage.PlayerResult, 0, len(r.Players))
	for _, id := range r.ActiveOrder() {
		p := r.Players[id]
		results = append(results, storage.PlayerResult{Name: p.Name, Score: p.Score})
	}
	e.recorder.RecordGame(r.ID, results)
}
