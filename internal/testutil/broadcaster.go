//go:build !production

package testutil

import (
	"sync"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// Sent 一次广播记录
type Sent struct {
	RoomID   string // SendToRoom / SendToRoomExcept 的目标房间
	ExceptID string // SendToRoomExcept 排除的连接
	ViewerID string // SendToViewer 的目标连接
	Type     protocol.MessageType
	Payload  any
}

// RecordingBroadcaster 记录所有发出的消息，实现 session.Broadcaster
type RecordingBroadcaster struct {
	mu   sync.Mutex
	sent []Sent
}

func (b *RecordingBroadcaster) SendToRoom(roomID string, msgType protocol.MessageType, payload any) {
	b.record(Sent{RoomID: roomID, Type: msgType, Payload: payload})
}

func (b *RecordingBroadcaster) SendToRoomExcept(roomID, exceptID string, msgType protocol.MessageType, payload any) {
	b.record(Sent{RoomID: roomID, ExceptID: exceptID, Type: msgType, Payload: payload})
}

func (b *RecordingBroadcaster) SendToViewer(connID string, msgType protocol.MessageType, payload any) {
	b.record(Sent{ViewerID: connID, Type: msgType, Payload: payload})
}

func (b *RecordingBroadcaster) record(s Sent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, s)
}

// All 所有记录的副本
func (b *RecordingBroadcaster) All() []Sent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Sent(nil), b.sent...)
}

// Reset 清空记录
func (b *RecordingBroadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = nil
}

// OfType 指定类型的记录
func (b *RecordingBroadcaster) OfType(msgType protocol.MessageType) []Sent {
	var out []Sent
	for _, s := range b.All() {
		if s.Type == msgType {
			out = append(out, s)
		}
	}
	return out
}

// SystemTexts 按顺序返回所有系统通知的文字
func (b *RecordingBroadcaster) SystemTexts() []string {
	var texts []string
	for _, s := range b.OfType(protocol.MsgSystemMessage) {
		if p, ok := s.Payload.(protocol.SystemMessagePayload); ok {
			texts = append(texts, p.Text)
		}
	}
	return texts
}

// LastState 最近一次发给 viewerID 的房间状态
func (b *RecordingBroadcaster) LastState(viewerID string) (protocol.RoomStatePayload, bool) {
	all := b.All()
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if s.Type == protocol.MsgRoomState && s.ViewerID == viewerID {
			state, ok := s.Payload.(protocol.RoomStatePayload)
			return state, ok
		}
	}
	return protocol.RoomStatePayload{}, false
}

// RecordingRecorder 记录快照与战绩，实现 session.Recorder
type RecordingRecorder struct {
	mu      sync.Mutex
	Saved   []*storage.RoomData
	Deleted []string
	Games   map[string][][]storage.PlayerResult
}

func (r *RecordingRecorder) SaveRoom(data *storage.RoomData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Saved = append(r.Saved, data)
}

func (r *RecordingRecorder) DeleteRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deleted = append(r.Deleted, roomID)
}

func (r *RecordingRecorder) RecordGame(roomID string, results []storage.PlayerResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Games == nil {
		r.Games = make(map[string][][]storage.PlayerResult)
	}
	r.Games[roomID] = append(r.Games[roomID], results)
}
