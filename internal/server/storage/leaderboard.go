package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey   = "player:stats:"
	leaderboardKey   = "leaderboard:score"
	dailyLeaderboard = "leaderboard:daily:"

	dailyExpiration = 48 * time.Hour
)

// PlayerResult 一局结束时玩家的得分
type PlayerResult struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerStats 玩家统计数据（没有账号体系，按昵称统计）
type PlayerStats struct {
	PlayerName   string `json:"player_name"`
	GamesPlayed  int    `json:"games_played"`
	TotalScore   int    `json:"total_score"`
	BestScore    int    `json:"best_score"`
	LastPlayedAt int64  `json:"last_played_at"`
	CreatedAt    int64  `json:"created_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerName  string `json:"player_name"`
	Score       int    `json:"score"`
	GamesPlayed int    `json:"games_played"`
	BestScore   int    `json:"best_score"`
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client, now: time.Now}
}

// Enabled 是否连接了 Redis
func (lm *LeaderboardManager) Enabled() bool {
	return lm != nil && lm.redis != nil
}

func (lm *LeaderboardManager) dailyKey() string {
	return dailyLeaderboard + lm.now().Format("2006-01-02")
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	if !lm.Enabled() {
		return nil, nil
	}

	data, err := lm.redis.Get(ctx, playerStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, playerStatsKey+stats.PlayerName, data, 0).Err()
}

// RecordGameResult 记录一名玩家一局的得分
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, result PlayerResult) error {
	if !lm.Enabled() || result.Name == "" {
		return nil
	}

	stats, err := lm.GetPlayerStats(ctx, result.Name)
	if err != nil {
		return err
	}
	now := lm.now().Unix()
	if stats == nil {
		stats = &PlayerStats{PlayerName: result.Name, CreatedAt: now}
	}

	stats.GamesPlayed++
	stats.TotalScore += result.Score
	stats.BestScore = max(stats.BestScore, result.Score)
	stats.LastPlayedAt = now

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}

	pipe := lm.redis.TxPipeline()
	pipe.ZIncrBy(ctx, leaderboardKey, float64(result.Score), result.Name)
	dailyKey := lm.dailyKey()
	pipe.ZIncrBy(ctx, dailyKey, float64(result.Score), result.Name)
	pipe.Expire(ctx, dailyKey, dailyExpiration)
	_, err = pipe.Exec(ctx)
	return err
}

// GetLeaderboard 获取排行榜（total / daily）
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, leaderboardType string, limit int) ([]LeaderboardEntry, error) {
	if !lm.Enabled() {
		return []LeaderboardEntry{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	key := leaderboardKey
	if leaderboardType == "daily" {
		key = lm.dailyKey()
	}

	// 获取排行榜（从高到低）
	results, err := lm.redis.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		name, ok := result.Member.(string)
		if !ok {
			continue
		}

		entry := LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: name,
			Score:      int(result.Score),
		}
		if stats, err := lm.GetPlayerStats(ctx, name); err == nil && stats != nil {
			entry.GamesPlayed = stats.GamesPlayed
			entry.BestScore = stats.BestScore
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// GetPlayerRank 获取玩家在总榜的排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	if !lm.Enabled() {
		return -1, nil
	}

	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil // 未上榜
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
