// Package session 房间的回合状态机：开局、轮换画手、定时公开提示、判定猜词、按观看者投影房间状态。
//
// 每个房间的所有修改都在房间锁内完成，计时器回调也一样；计时器用 RoundSeq 判断自己是否过期。
package session

import (
	"time"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// Broadcaster 向房间或单个连接发送消息，实现方不得阻塞
type Broadcaster interface {
	SendToRoom(roomID string, msgType protocol.MessageType, payload any)
	SendToRoomExcept(roomID, exceptID string, msgType protocol.MessageType, payload any)
	SendToViewer(connID string, msgType protocol.MessageType, payload any)
}

// WordSource 题目来源
type WordSource interface {
	Next(language string, exclude map[string]struct{}) words.Entry
}

// Recorder 房间快照与对局结果的落盘接口；调用时持有房间锁，实现方不能阻塞，且需按调用顺序写入
type Recorder interface {
	SaveRoom(data *storage.RoomData)
	DeleteRoom(roomID string)
	RecordGame(roomID string, results []storage.PlayerResult)
}

// Scheduler 创建可取消的计时器
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) room.TimerHandle
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) room.TimerHandle {
	return time.AfterFunc(d, f)
}

type nopRecorder struct{}

func (nopRecorder) SaveRoom(*storage.RoomData)                 {}
func (nopRecorder) DeleteRoom(string)                          {}
func (nopRecorder) RecordGame(string, []storage.PlayerResult) {}

// Engine 会话引擎
type Engine struct {
	registry  *room.Registry
	words     WordSource
	bc        Broadcaster
	recorder  Recorder
	scheduler Scheduler
	now       func() time.Time
}

// Option 配置 Engine
type Option func(*Engine)

// WithRecorder 设置快照/战绩记录器
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithScheduler 替换计时器实现（测试用）
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine 创建会话引擎
func NewEngine(registry *room.Registry, source WordSource, bc Broadcaster, opts ...Option) *Engine {
	e := &Engine{
		registry:  registry,
		words:     source,
		bc:        bc,
		recorder:  nopRecorder{},
		scheduler: realScheduler{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry 房间注册表
func (e *Engine) Registry() *room.Registry {
	return e.registry
}

// withRoom 加锁执行 fn；房间不存在或已关闭时返回 false
func (e *Engine) withRoom(roomID string, fn func(r *room.Room)) bool {
	r := e.registry.Get(roomID)
	if r == nil {
		return false
	}
	r.Lock()
	defer r.Unlock()
	if r.Closed() {
		return false
	}
	fn(r)
	return true
}

// Summaries 所有房间的概要
func (e *Engine) Summaries() []protocol.RoomSummary {
	rooms := e.registry.Rooms()
	list := make([]protocol.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		r.Lock()
		if !r.Closed() {
			list = append(list, r.Summary())
		}
		r.Unlock()
	}
	return list
}

// NotifyAll 向所有房间发送系统通知
func (e *Engine) NotifyAll(text string) {
	for _, r := range e.registry.Rooms() {
		e.bc.SendToRoom(r.ID, protocol.MsgSystemMessage, protocol.SystemMessagePayload{Text: text})
	}
}
