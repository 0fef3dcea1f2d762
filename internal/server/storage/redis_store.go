package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// 房间快照带完整笔画历史，压缩后再写入 Redis。
// EncodeAll / DecodeAll 可以并发调用。
var (
	snapshotEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	snapshotDecoder, _ = zstd.NewReader(nil)
)

// RoomData 房间快照（仅用于观测，不用于重启恢复，不含答案）
type RoomData struct {
	ID          string            `json:"id"`
	Language    string            `json:"language"`
	HostID      string            `json:"host_id"`
	Phase       string            `json:"phase"`
	Players     []PlayerData      `json:"players"`
	PlayerOrder []string          `json:"player_order"`
	DrawerID    string            `json:"drawer_id,omitempty"`
	RoundEndsAt int64             `json:"round_ends_at,omitempty"` // 毫秒
	Strokes     []protocol.Stroke `json:"strokes,omitempty"`
	CreatedAt   int64             `json:"created_at"`
}

// PlayerData 玩家数据
type PlayerData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RedisStore Redis 存储；client 为 nil 时所有操作都是空操作
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Enabled 是否连接了 Redis
func (rs *RedisStore) Enabled() bool {
	return rs != nil && rs.client != nil
}

// --- 房间存储 ---

// SaveRoom 保存房间快照到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, data *RoomData) error {
	if data == nil || !rs.Enabled() {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKeyPrefix + data.ID
	return rs.client.Set(ctx, key, snapshotEncoder.EncodeAll(jsonData, nil), roomExpiration).Err()
}

// LoadRoom 从 Redis 加载房间快照，不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, id string) (*RoomData, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	raw, err := rs.client.Get(ctx, roomKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	data, err := snapshotDecoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("解压房间数据失败: %w", err)
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}

	return &roomData, nil
}

// DeleteRoom 从 Redis 删除房间
func (rs *RedisStore) DeleteRoom(ctx context.Context, id string) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Del(ctx, roomKeyPrefix+id).Err()
}

// GetAllRoomIDs 获取所有有快照的房间 ID
func (rs *RedisStore) GetAllRoomIDs(ctx context.Context) ([]string, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := rs.client.Scan(ctx, cursor, roomKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len(roomKeyPrefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}
