//go:build !production

package testutil

import (
	"sync"
	"time"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/words"
)

// ManualScheduler 手动推进的时钟和计时器，回调在调用 Advance 的 goroutine 中同步执行
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*ManualTimer
}

// ManualTimer ManualScheduler 创建的计时器
type ManualTimer struct {
	s       *ManualScheduler
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler 创建手动调度器
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now 当前时间
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc 在 d 之后执行 f
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) room.TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &ManualTimer{s: s, when: s.now.Add(d), f: f}
	s.timers = append(s.timers, t)
	return t
}

// Stop 取消计时器，已触发或已取消时返回 false
func (t *ManualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance 推进时间，按到期顺序触发计时器（包括回调中新建且在窗口内到期的）
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *ManualTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.when
		next.fired = true
		s.mu.Unlock()

		next.f()
	}
}

// Pending 尚未触发也未取消的计时器数量
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// SequenceWords 按顺序循环出题，跳过 exclude 中的词（全部排除时忽略排除）
type SequenceWords struct {
	mu      sync.Mutex
	Entries []words.Entry
	next    int
}

// NewSequenceWords 创建顺序词源
func NewSequenceWords(entries ...words.Entry) *SequenceWords {
	return &SequenceWords{Entries: entries}
}

func (w *SequenceWords) Next(_ string, exclude map[string]struct{}) words.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	for range w.Entries {
		e := w.Entries[w.next%len(w.Entries)]
		w.next++
		if _, used := exclude[e.Word]; !used {
			return e
		}
	}
	e := w.Entries[w.next%len(w.Entries)]
	w.next++
	return e
}
