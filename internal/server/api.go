package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cast"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/words"
)

const (
	qrSize             = 256
	maxLeaderboardSize = 50
	maxImageBytes      = 5 << 20
	imageUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Bing 缩略图的几个镜像域名，任意一个失败就换下一个
var defaultImageHosts = []string{
	"https://tse1.mm.bing.net",
	"https://tse2.mm.bing.net",
	"https://tse3.mm.bing.net",
	"https://tse4.mm.bing.net",
	"https://th.bing.com",
}

var imageStyles = []string{"photo", "cartoon", "sketch"}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("写入响应失败")
	}
}

// handleListRooms 房间列表；启用 Redis 时附带有快照的房间 ID
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"rooms":  s.engine.Summaries(),
		"online": s.GetOnlineCount(),
	}
	if s.redisStore.Enabled() {
		ids, err := s.redisStore.GetAllRoomIDs(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("💾 读取快照列表失败")
		} else {
			slices.Sort(ids)
			resp["snapshots"] = ids
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRoomSnapshot 读取房间在 Redis 中的最新快照
func (s *Server) handleRoomSnapshot(w http.ResponseWriter, r *http.Request) {
	roomID := room.NormalizeID(chi.URLParam(r, "roomID"))
	if roomID == "" || len([]rune(roomID)) > room.MaxRoomIDLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}
	if !s.redisStore.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "snapshots disabled"})
		return
	}

	data, err := s.redisStore.LoadRoom(r.Context(), roomID)
	switch {
	case err != nil:
		log.Error().Err(err).Str("room", roomID).Msg("💾 读取房间快照失败")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "读取房间快照失败"})
	case data == nil:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
	default:
		writeJSON(w, http.StatusOK, data)
	}
}

// handleRoomQR 房间分享链接的二维码
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	roomID := room.NormalizeID(chi.URLParam(r, "roomID"))
	if roomID == "" || len([]rune(roomID)) > room.MaxRoomIDLength {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	png, err := qrcode.Encode(s.shareLink(r, roomID), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("生成二维码失败")
		http.Error(w, "failed to render qr code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

// shareLink 房间邀请链接，未配置 public_url 时使用请求的 Host
func (s *Server) shareLink(r *http.Request, roomID string) string {
	base := strings.TrimRight(s.config.Server.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + url.QueryEscape(roomID)
}

// handleLeaderboard 排行榜，type=total|daily
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !s.leaderboard.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "leaderboard disabled"})
		return
	}

	boardType := r.URL.Query().Get("type")
	if boardType != "daily" {
		boardType = "total"
	}
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > maxLeaderboardSize {
		limit = 10
	}

	entries, err := s.leaderboard.GetLeaderboard(r.Context(), boardType, limit)
	if err != nil {
		log.Error().Err(err).Msg("获取排行榜失败")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "获取排行榜失败"})
		return
	}
	resp := map[string]any{"type": boardType, "entries": entries}

	// name 指定时附带该玩家在总榜的排名，未上榜为 -1
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		rank, err := s.leaderboard.GetPlayerRank(r.Context(), name)
		if err != nil {
			log.Error().Err(err).Str("player", name).Msg("获取玩家排名失败")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "获取排行榜失败"})
			return
		}
		resp["name"] = name
		resp["rank"] = rank
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRefreshHotWords 手动刷新热门词
func (s *Server) handleRefreshHotWords(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("language")
	if lang == "" {
		lang = s.config.Game.DefaultLanguage
	}

	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	entries, added, err := s.refresher.Refresh(ctx, lang)
	switch {
	case errors.Is(err, words.ErrRefreshRunning):
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "error": err.Error()})
		return
	case err != nil:
		log.Error().Err(err).Str("language", lang).Msg("🔥 刷新热门词失败")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	case len(entries) == 0:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch words from AI"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(entries),
		"added":   added,
		"words":   entries,
	})
}

// handleReferenceImages 返回三种风格的参考图地址，都经过本服务代理
func (s *Server) handleReferenceImages(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if word == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Word is required"})
		return
	}

	images := make([]string, 0, len(imageStyles))
	for _, style := range imageStyles {
		images = append(images, fmt.Sprintf("/api/proxy-image?word=%s&style=%s", url.QueryEscape(word), style))
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}

// handleProxyImage 代理 Bing 缩略图，依次尝试打乱顺序后的镜像域名
func (s *Server) handleProxyImage(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if word == "" {
		http.Error(w, "Word is required", http.StatusBadRequest)
		return
	}
	style := r.URL.Query().Get("style")
	if style == "" {
		style = imageStyles[0]
	}

	path := "/th?q=" + url.QueryEscape(word+" "+style) + "&w=512&h=512&c=7&rs=1&p=0"
	hosts := append([]string(nil), s.imageHosts...)
	rand.Shuffle(len(hosts), func(i, j int) { hosts[i], hosts[j] = hosts[j], hosts[i] })

	var lastErr error
	for _, host := range hosts {
		body, contentType, err := s.fetchImage(r.Context(), host+path)
		if err != nil {
			lastErr = err
			continue
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write(body)
		return
	}

	log.Warn().Err(lastErr).Str("word", word).Msg("参考图获取失败")
	http.Error(w, "Failed to fetch image", http.StatusBadGateway)
}

func (s *Server) fetchImage(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", imageUserAgent)

	resp, err := s.imageClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}
