package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/rule"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// ErrInvalidJoin 房间 ID 或名字为空
var ErrInvalidJoin = errors.New("session: room id and name are required")

// Join 把连接加入房间，房间不存在时创建。已在房间中的玩家只更新名字，分数保留
func (e *Engine) Join(roomID, connID, name, language string) error {
	if roomID == "" || name == "" || connID == "" {
		return ErrInvalidJoin
	}

	for {
		r, created := e.registry.GetOrCreate(roomID, language)
		r.Lock()
		// 拿到锁之前房间可能刚被清空移除，换一个新实例重试
		if r.Closed() {
			r.Unlock()
			continue
		}

		r.AddPlayer(connID, name)
		p := r.Player(connID)
		e.notice(r, fmt.Sprintf(textsFor(r.Language).joined, p.Name), p)
		e.broadcastState(r)
		r.Unlock()

		if created {
			log.Info().Str("room", r.ID).Str("language", r.Language).Msg("🏠 创建房间")
		}
		return nil
	}
}

// StartGame 房主开始新的一局；非房主的请求被忽略。
// 上一局已结束时分数清零，进行中重开则保留分数
func (e *Engine) StartGame(roomID, connID string) bool {
	started := false
	e.withRoom(roomID, func(r *room.Room) {
		if r.HostID != connID {
			return
		}
		g := &r.Game
		if !g.Started {
			for _, p := range r.Players {
				p.Score = 0
			}
		}
		g.ResetForNewGame()
		rule.EndRoundState(g)

		if first := rule.NextDrawer(r.ActiveOrder(), ""); first != "" {
			g.DrawerID = first
			g.DrawnPlayers[first] = struct{}{}
		}
		started = true
		log.Info().Str("room", r.ID).Int("players", len(r.Players)).Msg("🎮 开始游戏")
		e.run(r, stepStartRound, "")
	})
	return started
}

// Draw 画手提交笔画，追加到画布并转发给其他玩家；返回接受的笔画数
func (e *Engine) Draw(roomID, connID string, strokes []protocol.Stroke) int {
	if len(strokes) == 0 {
		return 0
	}
	accepted := 0
	e.withRoom(roomID, func(r *room.Room) {
		if !r.Game.Started || r.Game.DrawerID != connID {
			return
		}
		r.Strokes = append(r.Strokes, strokes...)
		accepted = len(strokes)
		e.bc.SendToRoomExcept(r.ID, connID, protocol.MsgDraw, slices.Clone(strokes))
	})
	return accepted
}

// ClearCanvas 画手清空画布
func (e *Engine) ClearCanvas(roomID, connID string) bool {
	cleared := false
	e.withRoom(roomID, func(r *room.Room) {
		if !r.Game.Started || r.Game.DrawerID != connID {
			return
		}
		r.ClearStrokes()
		cleared = true
		e.bc.SendToRoom(r.ID, protocol.MsgClearCanvas, nil)
	})
	return cleared
}

// Chat 处理聊天；回合进行中且与答案完全一致时判定为猜中，否则作为普通聊天广播。
// text 已由调用方裁剪
func (e *Engine) Chat(roomID, connID, text string) {
	if text == "" {
		return
	}
	e.withRoom(roomID, func(r *room.Room) {
		p := r.Player(connID)
		if p == nil {
			return
		}
		if e.tryGuess(r, p, text) {
			return
		}
		e.bc.SendToRoom(r.ID, protocol.MsgChat, protocol.ChatMessagePayload{
			Sender:   p.Name,
			SenderID: p.ID,
			Text:     text,
		})
	})
}

func (e *Engine) tryGuess(r *room.Room, p *room.Player, text string) bool {
	g := &r.Game
	word := strings.TrimSpace(g.CurrentWord)
	if !g.RoundActive() || word == "" || p.ID == g.DrawerID || g.HasGuessed(p.ID) || text != word {
		return false
	}

	g.Guessed[p.ID] = struct{}{}
	score := rule.GuesserScore(rule.RemainingSeconds(g.RoundEndsAt, e.now()))
	p.Score += score
	if drawer := r.Player(g.DrawerID); drawer != nil {
		drawer.Score += rule.DrawerScore
	}

	e.notice(r, fmt.Sprintf(textsFor(r.Language).guessed, p.Name, score), p)
	e.broadcastState(r)

	if rule.RoundShouldEnd(len(g.Guessed), len(r.ActiveOrder())) {
		e.run(r, stepEndRound, ReasonAllGuessed)
	}
	return true
}

// ThrowEffect 向画手扔道具；画手自己不能扔，每回合每人每种最多 EffectCap 次
func (e *Engine) ThrowEffect(roomID, connID, effect string) bool {
	if !rule.IsAllowedEffect(effect) {
		return false
	}
	thrown := false
	e.withRoom(roomID, func(r *room.Room) {
		g := &r.Game
		if !g.RoundActive() || r.Player(connID) == nil || connID == g.DrawerID {
			return
		}
		usage := g.EffectUsage[connID]
		if usage == nil {
			usage = make(map[string]int)
			g.EffectUsage[connID] = usage
		}
		if usage[effect] >= rule.EffectCap {
			return
		}
		usage[effect]++
		thrown = true
		e.bc.SendToRoom(r.ID, protocol.MsgEffectThrown, protocol.EffectThrownPayload{
			Type:     effect,
			SenderID: connID,
			TargetID: g.DrawerID,
		})
	})
	return thrown
}

// Leave 玩家离开房间。房间清空时关闭并移出注册表；画手离开时由下一位接着画
func (e *Engine) Leave(roomID, connID string) {
	r := e.registry.Get(roomID)
	if r == nil {
		return
	}
	r.Lock()
	defer r.Unlock()
	if r.Closed() {
		return
	}

	g := &r.Game
	wasDrawer := g.DrawerID == connID
	successor := ""
	if wasDrawer {
		// 按离开前的顺序找下一位
		prev := slices.Clone(r.ActiveOrder())
		if next := rule.NextDrawer(prev, connID); next != connID {
			successor = next
		}
	}

	p := r.RemovePlayer(connID)
	if p == nil {
		return
	}
	e.notice(r, fmt.Sprintf(textsFor(r.Language).left, p.Name), p)

	if r.IsEmpty() {
		r.Close()
		e.registry.Remove(r)
		e.recorder.DeleteRoom(r.ID)
		log.Info().Str("room", r.ID).Msg("🗑️ 房间已清空，移除")
		return
	}

	switch {
	case wasDrawer:
		g.DrawerID = successor
		if g.Started {
			g.CancelTimers()
			rule.EndRoundState(g)
			r.ClearStrokes()
			if successor != "" {
				g.DrawnPlayers[successor] = struct{}{}
			}
			e.run(r, stepStartRound, "")
			return
		}
	case g.RoundActive() && rule.RoundShouldEnd(len(g.Guessed), len(r.ActiveOrder())):
		e.broadcastState(r)
		e.run(r, stepEndRound, ReasonAllGuessed)
		return
	}
	e.broadcastState(r)
}
