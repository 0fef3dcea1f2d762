package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/session"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/server/handler"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client // 未启用 Redis 时为 nil
	redisStore  *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	recorder    *storage.Recorder // 未启用 Redis 时为 nil
	registry    *room.Registry
	words       *words.Source
	refresher   *words.Refresher
	engine      *session.Engine
	clients     map[string]*Client
	clientsMu   sync.RWMutex
	handler     *handler.Handler
	upgrader    websocket.Upgrader

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	chatLimiter    *ChatRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	// 参考图代理
	imageClient *http.Client
	imageHosts  []string

	httpServer *http.Server
	cancel     context.CancelFunc
}

// Option 配置 Server
type Option func(*Server)

// WithRedisClient 使用已有的 Redis 客户端（测试中传入 miniredis）
func WithRedisClient(client *redis.Client) Option {
	return func(s *Server) { s.redis = client }
}

// WithHotWordGenerator 替换热门词生成器
func WithHotWordGenerator(g words.HotWordGenerator) Option {
	return func(s *Server) {
		s.refresher = words.NewRefresher(s.words, g, s.config.Words.RefreshCount,
			s.config.Words.RefreshIntervalDuration(), "zh", "en")
	}
}

// WithImageHosts 替换参考图上游地址
func WithImageHosts(hosts ...string) Option {
	return func(s *Server) { s.imageHosts = hosts }
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	bank, err := words.LoadBank(cfg.Words.File)
	if err != nil {
		return nil, fmt.Errorf("加载词库失败: %w", err)
	}
	source := words.NewSource(bank,
		words.WithHotWordRatio(cfg.Words.HotWordRatio),
		words.WithDefaultLanguage(cfg.Game.DefaultLanguage))

	generator := words.NewGenerator(words.GeneratorConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.TimeoutDuration(),
		MaxRetries:  cfg.AI.MaxRetries,
	})

	s := &Server{
		config:  cfg,
		words:   source,
		clients: make(map[string]*Client),
		// 初始化安全组件
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		chatLimiter: NewChatRateLimiter(
			cfg.Security.ChatLimit.MaxPerSecond,
			cfg.Security.ChatLimit.MaxPerMinute,
			cfg.Security.ChatLimit.CooldownDuration(),
		),
		ipFilter:       NewIPFilter(),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		imageClient:    &http.Client{Timeout: 8 * time.Second},
		imageHosts:     defaultImageHosts,
	}
	s.refresher = words.NewRefresher(source, generator, cfg.Words.RefreshCount,
		cfg.Words.RefreshIntervalDuration(), "zh", "en")

	for _, opt := range opts {
		opt(s)
	}

	if s.redis == nil && cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
		s.redis = rdb
	}
	s.redisStore = storage.NewRedisStore(s.redis)
	s.leaderboard = storage.NewLeaderboardManager(s.redis)

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	s.registry = room.NewRegistry(cfg.Game.DefaultLanguage)
	var recorder session.Recorder
	if s.redis != nil {
		s.recorder = storage.NewRecorder(s.redisStore, s.leaderboard)
		recorder = s.recorder
	}
	s.engine = session.NewEngine(s.registry, source, s, session.WithRecorder(recorder))

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		Engine:      s.engine,
		ChatLimiter: s.chatLimiter,
	})

	log.Info().
		Int("rate_limit", cfg.Security.RateLimit.MaxPerSecond).
		Int("message_limit", cfg.Security.MessageLimit.MaxPerSecond).
		Int("chat_limit", cfg.Security.ChatLimit.MaxPerSecond).
		Int("max_connections", cfg.Server.MaxConnections).
		Bool("redis", s.redis != nil).
		Msg("🔒 安全配置")

	return s, nil
}

// Router 所有 HTTP 路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", s.handleListRooms)
		r.Get("/rooms/{roomID}", s.handleRoomSnapshot)
		r.Get("/rooms/{roomID}/qr", s.handleRoomQR)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/refresh-hot-words", s.handleRefreshHotWords)
		r.Get("/reference-images", s.handleReferenceImages)
		r.Get("/proxy-image", s.handleProxyImage)
	})
	return r
}

// Start 启动服务器，阻塞直到 HTTP 服务退出
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// 后台任务
	go s.monitorStats(ctx)
	go s.rateLimiter.RunCleanup(ctx)
	go s.refresher.Run(ctx)

	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", addr).Int("cpus", runtime.NumCPU()).Msg("🚀 服务器启动")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Engine 会话引擎
func (s *Server) Engine() *session.Engine {
	return s.engine
}
