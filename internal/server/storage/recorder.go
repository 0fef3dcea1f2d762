package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	recordTimeout   = 3 * time.Second
	recordQueueSize = 256
)

type recordKind int

const (
	jobSaveRoom recordKind = iota
	jobDeleteRoom
	jobRecordGame
)

type recordJob struct {
	kind    recordKind
	roomID  string
	room    *RoomData
	results []PlayerResult
}

// Recorder 将房间快照和对局结果写入 Redis。
// 所有写入由同一个 worker 按提交顺序执行，调用方不会阻塞；失败只记录日志
type Recorder struct {
	store       *RedisStore
	leaderboard *LeaderboardManager

	jobs   chan recordJob
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewRecorder 创建记录器并启动写入 worker
func NewRecorder(store *RedisStore, leaderboard *LeaderboardManager) *Recorder {
	r := &Recorder{
		store:       store,
		leaderboard: leaderboard,
		jobs:        make(chan recordJob, recordQueueSize),
		done:        make(chan struct{}),
	}
	go r.loop()
	return r
}

// SaveRoom 保存房间快照
func (r *Recorder) SaveRoom(data *RoomData) {
	if data == nil || !r.store.Enabled() {
		return
	}
	r.enqueue(recordJob{kind: jobSaveRoom, roomID: data.ID, room: data})
}

// DeleteRoom 删除房间快照
func (r *Recorder) DeleteRoom(roomID string) {
	if !r.store.Enabled() {
		return
	}
	r.enqueue(recordJob{kind: jobDeleteRoom, roomID: roomID})
}

// RecordGame 把一局的得分累加到排行榜
func (r *Recorder) RecordGame(roomID string, results []PlayerResult) {
	if len(results) == 0 || !r.leaderboard.Enabled() {
		return
	}
	r.enqueue(recordJob{kind: jobRecordGame, roomID: roomID, results: results})
}

// Close 停止接收新任务，等待队列中的写入完成
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()
	<-r.done
}

// enqueue 调用方可能持有房间锁，队列满时丢弃并告警
func (r *Recorder) enqueue(job recordJob) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.jobs <- job:
	default:
		log.Warn().Str("room", job.roomID).Int("kind", int(job.kind)).Msg("💾 写入队列已满，丢弃任务")
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for job := range r.jobs {
		r.exec(job)
	}
}

func (r *Recorder) exec(job recordJob) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	switch job.kind {
	case jobSaveRoom:
		if err := r.store.SaveRoom(ctx, job.room); err != nil {
			log.Warn().Err(err).Str("room", job.roomID).Msg("💾 保存房间快照失败")
		}
	case jobDeleteRoom:
		if err := r.store.DeleteRoom(ctx, job.roomID); err != nil {
			log.Warn().Err(err).Str("room", job.roomID).Msg("💾 删除房间快照失败")
		}
	case jobRecordGame:
		for _, res := range job.results {
			if err := r.leaderboard.RecordGameResult(ctx, res); err != nil {
				log.Warn().Err(err).Str("room", job.roomID).Str("player", res.Name).Msg("🏆 记录对局结果失败")
			}
		}
		log.Info().Str("room", job.roomID).Int("players", len(job.results)).Msg("🏆 对局结果已记录")
	}
}
