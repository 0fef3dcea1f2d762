package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisStore_SaveLoadDeleteRoom(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	roomData := &RoomData{
		ID:          "room1",
		Language:    "zh",
		Phase:       "round_active",
		Players:     []PlayerData{{ID: "a", Name: "Alice", Score: 15}},
		PlayerOrder: []string{"a"},
		Strokes:     []protocol.Stroke{{X0: 0.1, Y0: 0.2, X1: 0.3, Y1: 0.4, Width: 4, Color: "#111111", Normalized: true}},
		CreatedAt:   time.Now().Unix(),
	}

	require.NoError(t, store.SaveRoom(ctx, roomData))
	assert.True(t, mr.Exists("room:room1"))
	assert.Equal(t, roomExpiration, mr.TTL("room:room1"))

	// 存储的是 zstd 帧，不是明文 JSON
	raw, err := mr.Get("room:room1")
	require.NoError(t, err)
	assert.Equal(t, "\x28\xb5\x2f\xfd", raw[:4])

	loaded, err := store.LoadRoom(ctx, "room1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, roomData.Players, loaded.Players)
	assert.Equal(t, roomData.Strokes, loaded.Strokes)

	ids, err := store.GetAllRoomIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"room1"}, ids)

	require.NoError(t, store.DeleteRoom(ctx, "room1"))
	loaded, err = store.LoadRoom(ctx, "room1")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_LoadCorrupted(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	store := NewRedisStore(client)
	require.NoError(t, mr.Set("room:bad", "not zstd"))

	_, err := store.LoadRoom(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStore_NilClientIsNoop(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(nil)
	ctx := context.Background()

	assert.False(t, store.Enabled())
	assert.NoError(t, store.SaveRoom(ctx, &RoomData{ID: "x"}))
	assert.NoError(t, store.DeleteRoom(ctx, "x"))
	data, err := store.LoadRoom(ctx, "x")
	assert.NoError(t, err)
	assert.Nil(t, data)
}
