package session

import (
	"time"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/rule"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// RoomStateFor 按观看者投影房间状态：只有画手能看到题目，其他人看到掩码。调用方需持有房间锁
func RoomStateFor(r *room.Room, viewerID string) protocol.RoomStatePayload {
	g := &r.Game
	order := r.ActiveOrder()

	view := protocol.GameView{
		Started:       g.Started,
		GuessedIDs:    g.GuessedIDs(order),
		RoundDuration: int64(rule.RoundDuration / time.Second),
	}
	if g.DrawerID != "" {
		drawer := g.DrawerID
		view.DrawerID = &drawer
	}
	if !g.RoundEndsAt.IsZero() {
		endsAt := g.RoundEndsAt.UnixMilli()
		view.RoundEndsAt = &endsAt
	}
	if g.CurrentWord != "" {
		if viewerID != "" && viewerID == g.DrawerID {
			word := g.CurrentWord
			view.Word = &word
		} else {
			length := words.Length(g.CurrentWord)
			view.MaskedWord = &protocol.MaskedWord{
				Category: words.DisplayCategory(r.Language, g.CurrentCategory),
				Length:   length,
				Hint:     g.CurrentHint,
				Text:     words.MaskedText(r.Language, g.CurrentCategory, g.CurrentHint, length),
			}
		}
	}

	state := protocol.RoomStatePayload{
		RoomID:   r.ID,
		Language: r.Language,
		Players:  r.PlayerInfos(),
		Game:     view,
		Strokes:  append(make([]protocol.Stroke, 0, len(r.Strokes)), r.Strokes...),
	}
	if r.HostID != "" {
		host := r.HostID
		state.HostID = &host
	}
	return state
}

// broadcastState 给每位玩家发送各自的投影，并保存房间快照
func (e *Engine) broadcastState(r *room.Room) {
	for _, id := range r.ActiveOrder() {
		e.bc.SendToViewer(id, protocol.MsgRoomState, RoomStateFor(r, id))
	}
	e.recorder.SaveRoom(r.ToRoomData())
}

// notice 发送系统通知，related 非空时附带关联玩家
func (e *Engine) notice(r *room.Room, text string, related *room.Player) {
	payload := protocol.SystemMessagePayload{Text: text}
	if related != nil {
		payload.RelatedUser = &protocol.UserRef{ID: related.ID, Name: related.Name}
	}
	e.bc.SendToRoom(r.ID, protocol.MsgSystemMessage, payload)
}
