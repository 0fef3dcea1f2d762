package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

type stubGenerator struct {
	entries []words.Entry
	err     error
}

func (g stubGenerator) Generate(context.Context, int, []string, string) ([]words.Entry, error) {
	return g.entries, g.err
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewServer(config.Default(), append([]Option{WithRedisClient(rdb)}, opts...)...)
	require.NoError(t, err)
	return s, mr
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAPI_Health(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Router(), http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestAPI_ListRooms(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	body := decodeBody[struct {
		Rooms []protocol.RoomSummary `json:"rooms"`
	}](t, doRequest(t, h, http.MethodGet, "/api/rooms"))
	assert.Empty(t, body.Rooms)

	require.NoError(t, s.Engine().Join("abc", "p1", "Alice", "en"))
	require.NoError(t, s.Engine().Join("abc", "p2", "Bob", ""))

	body = decodeBody[struct {
		Rooms []protocol.RoomSummary `json:"rooms"`
	}](t, doRequest(t, h, http.MethodGet, "/api/rooms"))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, protocol.RoomSummary{RoomID: "abc", Language: "en", PlayerCount: 2}, body.Rooms[0])
}

func TestAPI_RoomSnapshots(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()
	ctx := context.Background()

	snapshot := &storage.RoomData{
		ID:          "saved",
		Language:    "zh",
		HostID:      "p1",
		Phase:       "waiting",
		Players:     []storage.PlayerData{{ID: "p1", Name: "Alice", Score: 20}},
		PlayerOrder: []string{"p1"},
	}
	require.NoError(t, s.redisStore.SaveRoom(ctx, snapshot))

	list := decodeBody[struct {
		Snapshots []string `json:"snapshots"`
	}](t, doRequest(t, h, http.MethodGet, "/api/rooms"))
	assert.Contains(t, list.Snapshots, "saved")

	rec := doRequest(t, h, http.MethodGet, "/api/rooms/SAVED")
	require.Equal(t, http.StatusOK, rec.Code)
	loaded := decodeBody[storage.RoomData](t, rec)
	assert.Equal(t, *snapshot, loaded)

	rec = doRequest(t, h, http.MethodGet, "/api/rooms/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/rooms/"+strings.Repeat("x", 30))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RoomSnapshotsDisabled(t *testing.T) {
	s, err := NewServer(config.Default())
	require.NoError(t, err)
	h := s.Router()

	rec := doRequest(t, h, http.MethodGet, "/api/rooms/abc")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(doRequest(t, h, http.MethodGet, "/api/rooms").Body.Bytes(), &body))
	assert.NotContains(t, body, "snapshots")
}

func TestAPI_RoomQR(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	rec := doRequest(t, h, http.MethodGet, "/api/rooms/ABC/qr")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = doRequest(t, h, http.MethodGet, "/api/rooms/"+strings.Repeat("x", 30)+"/qr")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ShareLink(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/abc/qr", http.NoBody)
	req.Host = "game.local:3000"
	assert.Equal(t, "http://game.local:3000/?room=abc", s.shareLink(req, "abc"))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://game.local:3000/?room=abc", s.shareLink(req, "abc"))

	s.config.Server.PublicURL = "https://draw.example.com/"
	assert.Equal(t, "https://draw.example.com/?room=a+b", s.shareLink(req, "a b"))
}

func TestAPI_Leaderboard(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()
	ctx := context.Background()

	require.NoError(t, s.leaderboard.RecordGameResult(ctx, storage.PlayerResult{Name: "Alice", Score: 30}))
	require.NoError(t, s.leaderboard.RecordGameResult(ctx, storage.PlayerResult{Name: "Bob", Score: 45}))

	rec := doRequest(t, h, http.MethodGet, "/api/leaderboard?limit=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Type    string                     `json:"type"`
		Entries []storage.LeaderboardEntry `json:"entries"`
	}](t, rec)
	assert.Equal(t, "total", body.Type)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "Bob", body.Entries[0].PlayerName)
	assert.Equal(t, 45, body.Entries[0].Score)

	rec = doRequest(t, h, http.MethodGet, "/api/leaderboard?type=daily&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody[struct {
		Type    string                     `json:"type"`
		Entries []storage.LeaderboardEntry `json:"entries"`
	}](t, rec)
	assert.Equal(t, "daily", body.Type)
	assert.Len(t, body.Entries, 1)

	type rankBody struct {
		Name string `json:"name"`
		Rank int64  `json:"rank"`
	}
	rec = doRequest(t, h, http.MethodGet, "/api/leaderboard?name=Alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rankBody{Name: "Alice", Rank: 2}, decodeBody[rankBody](t, rec))

	rec = doRequest(t, h, http.MethodGet, "/api/leaderboard?name=Nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(-1), decodeBody[rankBody](t, rec).Rank)

	var plain map[string]any
	require.NoError(t, json.Unmarshal(doRequest(t, h, http.MethodGet, "/api/leaderboard").Body.Bytes(), &plain))
	assert.NotContains(t, plain, "rank")
}

func TestAPI_LeaderboardDisabled(t *testing.T) {
	s, err := NewServer(config.Default())
	require.NoError(t, err)

	rec := doRequest(t, s.Router(), http.MethodGet, "/api/leaderboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPI_RefreshHotWords(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gen := stubGenerator{entries: []words.Entry{
			{Word: "奥运", Category: words.HotCategory, Hints: []string{"体育", "五环"}},
			{Word: "元宇宙", Category: words.HotCategory},
		}}
		s, _ := newTestServer(t, WithHotWordGenerator(gen))

		rec := doRequest(t, s.Router(), http.MethodPost, "/api/refresh-hot-words?language=zh")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[struct {
			Success bool          `json:"success"`
			Count   int           `json:"count"`
			Words   []words.Entry `json:"words"`
		}](t, rec)
		assert.True(t, body.Success)
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "奥运", body.Words[0].Word)
		assert.Len(t, s.words.HotWords("zh"), 2)
	})

	t.Run("generator error", func(t *testing.T) {
		s, _ := newTestServer(t, WithHotWordGenerator(stubGenerator{err: errors.New("upstream down")}))

		rec := doRequest(t, s.Router(), http.MethodPost, "/api/refresh-hot-words")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"upstream down"}`, rec.Body.String())
	})

	t.Run("empty result", func(t *testing.T) {
		s, _ := newTestServer(t, WithHotWordGenerator(stubGenerator{}))

		rec := doRequest(t, s.Router(), http.MethodPost, "/api/refresh-hot-words")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("get not allowed", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := doRequest(t, s.Router(), http.MethodGet, "/api/refresh-hot-words")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAPI_ReferenceImages(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	rec := doRequest(t, h, http.MethodGet, "/api/reference-images")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Word is required"}`, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/api/reference-images?word=%E7%8C%AB")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Images []string `json:"images"`
	}](t, rec)
	assert.Equal(t, []string{
		"/api/proxy-image?word=%E7%8C%AB&style=photo",
		"/api/proxy-image?word=%E7%8C%AB&style=cartoon",
		"/api/proxy-image?word=%E7%8C%AB&style=sketch",
	}, body.Images)
}

func TestAPI_ProxyImage(t *testing.T) {
	png := []byte("\x89PNG fake image")
	var gotQuery, gotUA string
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	t.Run("falls back to a working host", func(t *testing.T) {
		s, _ := newTestServer(t, WithImageHosts(bad.URL, good.URL))

		rec := doRequest(t, s.Router(), http.MethodGet, "/api/proxy-image?word=cat&style=sketch")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
		body, _ := io.ReadAll(rec.Body)
		assert.Equal(t, png, body)
		assert.Equal(t, "cat sketch", gotQuery)
		assert.Contains(t, gotUA, "Mozilla")
	})

	t.Run("all hosts fail", func(t *testing.T) {
		s, _ := newTestServer(t, WithImageHosts(bad.URL))

		rec := doRequest(t, s.Router(), http.MethodGet, "/api/proxy-image?word=cat")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("word required", func(t *testing.T) {
		s, _ := newTestServer(t, WithImageHosts(good.URL))

		rec := doRequest(t, s.Router(), http.MethodGet, "/api/proxy-image")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
