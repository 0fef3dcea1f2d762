package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

const statsInterval = 30 * time.Second

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Info().
			Int("online", s.GetOnlineCount()).
			Int("rooms", s.registry.Count()).
			Int("active_games", s.registry.ActiveGamesCount()).
			Int("goroutines", runtime.NumGoroutine()).
			Str("conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections)).
			Float64("mem_mb", float64(m.Alloc)/1024/1024).
			Msg("📊 [监控]")
	}
}

// EnterMaintenanceMode 进入维护模式，拒绝新连接和加入房间
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.Broadcast(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    protocol.ErrCodeServerMaintenance,
		Message: "👷🏻‍♂️ 维护模式：暂停加入新房间",
	}))

	log.Info().Msg("🔧 进入维护模式：停止新连接和加入房间")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 等待进行中的游戏结束后关闭服务器
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		activeGames := s.registry.ActiveGamesCount()
		if activeGames == 0 {
			log.Info().Int("delay_s", s.config.Game.RoomCleanupDelay).Msg("✅ 所有游戏已结束，准备关闭服务器")
			s.engine.NotifyAll(fmt.Sprintf("🚧 服务器将在 %d 秒后停机维护！", s.config.Game.RoomCleanupDelay))
			break
		}
		log.Info().Int("active_games", activeGames).Msg("⏳ 等待游戏结束...")
		<-ticker.C
	}

	if activeGames := s.registry.ActiveGamesCount(); activeGames > 0 {
		log.Warn().Int("active_games", activeGames).Msg("⚠️ 超时，强制关闭")
	}

	s.Shutdown()
}

// Shutdown 关闭服务器
func (s *Server) Shutdown() {
	time.Sleep(s.config.Game.RoomCleanupDelayDuration())

	s.clientsMu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.clientsMu.RUnlock()
	for _, client := range clients {
		client.Close()
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("HTTP 服务关闭失败")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.recorder != nil {
		s.recorder.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}

	log.Info().Msg("服务器已关闭")
}
