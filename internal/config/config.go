package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHost                  = "0.0.0.0"
	defaultPort                  = 3000
	defaultMaxConnections        = 2000
	defaultRedisAddr             = "localhost:6379"
	defaultLanguage              = "zh"
	defaultShutdownTimeout       = 10 // 分钟
	defaultShutdownCheckInterval = 10 // 秒
	defaultRoomCleanupDelay      = 5  // 秒
	defaultHotWordRatio          = 0.5
	defaultRefreshCount          = 20
	defaultAIBaseURL             = "https://api.deepseek.com"
	defaultAIModel               = "deepseek-chat"
	defaultAITemperature         = 1.3
	defaultAITimeout             = 15 // 秒
	defaultAIMaxRetries          = 3
	defaultLogLevel              = "info"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Words    WordsConfig    `yaml:"words"`
	AI       AIConfig       `yaml:"ai"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	PublicURL      string `yaml:"public_url"` // 分享链接的前缀，为空时使用请求的 Host
}

// RedisConfig Redis 配置，未启用时不保存快照和排行榜
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	DefaultLanguage       string `yaml:"default_language"`
	ShutdownTimeout       int    `yaml:"shutdown_timeout"`        // 优雅关闭最长等待（分钟）
	ShutdownCheckInterval int    `yaml:"shutdown_check_interval"` // 检查间隔（秒）
	RoomCleanupDelay      int    `yaml:"room_cleanup_delay"`      // 通知后到断开连接的延迟（秒）
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration 返回清理延迟
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// WordsConfig 词库配置
type WordsConfig struct {
	File            string  `yaml:"file"` // 为空时使用内置词库
	HotWordRatio    float64 `yaml:"hot_word_ratio"`
	RefreshInterval int     `yaml:"refresh_interval"` // 热词自动刷新间隔（分钟），0 表示不自动刷新
	RefreshCount    int     `yaml:"refresh_count"`
}

// RefreshIntervalDuration 返回热词刷新间隔
func (c *WordsConfig) RefreshIntervalDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Minute
}

// AIConfig 热词生成接口（OpenAI 兼容）
type AIConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Timeout     int     `yaml:"timeout"` // 秒
	MaxRetries  int     `yaml:"max_retries"`
}

// TimeoutDuration 返回请求超时
func (c *AIConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制（按 IP）
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 单个连接的消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig 聊天速率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 超限后的冷却时间（秒）
}

// CooldownDuration 返回冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"` // 输出彩色控制台格式而不是 JSON
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault 文件不存在时返回默认配置
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default 返回默认配置
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}

	if c.Game.DefaultLanguage == "" {
		c.Game.DefaultLanguage = defaultLanguage
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Game.ShutdownCheckInterval == 0 {
		c.Game.ShutdownCheckInterval = defaultShutdownCheckInterval
	}
	if c.Game.RoomCleanupDelay == 0 {
		c.Game.RoomCleanupDelay = defaultRoomCleanupDelay
	}

	if c.Words.HotWordRatio == 0 {
		c.Words.HotWordRatio = defaultHotWordRatio
	}
	if c.Words.RefreshCount == 0 {
		c.Words.RefreshCount = defaultRefreshCount
	}

	if c.AI.BaseURL == "" {
		c.AI.BaseURL = defaultAIBaseURL
	}
	if c.AI.Model == "" {
		c.AI.Model = defaultAIModel
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = defaultAITemperature
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = defaultAITimeout
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = defaultAIMaxRetries
	}

	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit.MaxPerSecond = 10
	}
	if c.Security.RateLimit.MaxPerMinute == 0 {
		c.Security.RateLimit.MaxPerMinute = 60
	}
	if c.Security.RateLimit.BanDuration == 0 {
		c.Security.RateLimit.BanDuration = 60
	}
	// 画手每秒会发送很多笔画，消息上限需要宽松一些
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = 120
	}
	if c.Security.ChatLimit.MaxPerSecond == 0 {
		c.Security.ChatLimit.MaxPerSecond = 3
	}
	if c.Security.ChatLimit.MaxPerMinute == 0 {
		c.Security.ChatLimit.MaxPerMinute = 60
	}
	if c.Security.ChatLimit.Cooldown == 0 {
		c.Security.ChatLimit.Cooldown = 5
	}

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的端口: %d", c.Server.Port)
	}
	if c.Server.MaxConnections <= 0 {
		return fmt.Errorf("max_connections 必须大于 0")
	}
	switch c.Game.DefaultLanguage {
	case "zh", "en":
	default:
		return fmt.Errorf("不支持的语言: %s", c.Game.DefaultLanguage)
	}
	if c.Words.HotWordRatio < 0 || c.Words.HotWordRatio > 1 {
		return fmt.Errorf("hot_word_ratio 必须在 0 到 1 之间: %v", c.Words.HotWordRatio)
	}
	if c.Words.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval 不能为负数")
	}
	return nil
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
