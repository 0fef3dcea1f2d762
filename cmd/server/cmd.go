package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/server"
)

// options 命令行参数，设置后覆盖配置文件
type options struct {
	configPath   string
	host         string
	port         int
	publicURL    string
	redisEnabled bool
	redisAddr    string
	wordsFile    string
	logLevel     string
	logPretty    bool
}

func newCmd(opts *options) *cobra.Command {
	// .env 里的 AI_API_KEY 等变量在 viper 读取前载入
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DRAWGUESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "draw-and-guess",
		Short:   "你画我猜多人实时游戏服务器",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(opts.configPath)
			if err != nil {
				return fmt.Errorf("加载配置文件失败: %w", err)
			}
			applyOverrides(cfg, opts, cmd.Flags())
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "配置文件路径 (env: DRAWGUESS_CONFIG)")
	fs.StringVar(&opts.host, "host", "", "监听地址 (env: DRAWGUESS_HOST)")
	fs.IntVarP(&opts.port, "port", "p", 0, "监听端口 (env: DRAWGUESS_PORT)")
	fs.StringVar(&opts.publicURL, "public-url", "", "对外访问地址，用于生成房间二维码 (env: DRAWGUESS_PUBLIC_URL)")
	fs.BoolVar(&opts.redisEnabled, "redis", false, "启用 Redis 持久化和排行榜 (env: DRAWGUESS_REDIS)")
	fs.StringVar(&opts.redisAddr, "redis-addr", "", "Redis 地址 (env: DRAWGUESS_REDIS_ADDR)")
	fs.StringVar(&opts.wordsFile, "words-file", "", "自定义词库文件 (env: DRAWGUESS_WORDS_FILE)")
	fs.StringVar(&opts.logLevel, "log-level", "", "日志级别 debug|info|warn|error (env: DRAWGUESS_LOG_LEVEL)")
	fs.BoolVar(&opts.logPretty, "log-pretty", false, "彩色控制台日志 (env: DRAWGUESS_LOG_PRETTY)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// applyOverrides 只覆盖显式设置过的参数；AI 密钥只从环境变量读取
func applyOverrides(cfg *config.Config, opts *options, fs *pflag.FlagSet) {
	if fs.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if fs.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if fs.Changed("public-url") {
		cfg.Server.PublicURL = opts.publicURL
	}
	if fs.Changed("redis") {
		cfg.Redis.Enabled = opts.redisEnabled
	}
	if fs.Changed("redis-addr") {
		cfg.Redis.Addr = opts.redisAddr
	}
	if fs.Changed("words-file") {
		cfg.Words.File = opts.wordsFile
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if fs.Changed("log-pretty") {
		cfg.Log.Pretty = opts.logPretty
	}
	if key := os.Getenv("AI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
}

func run(cfg *config.Config) error {
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("创建服务器失败: %w", err)
	}

	// SIGINT/SIGTERM 进入维护模式，等待进行中的游戏结束
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("正在关闭服务器...")
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
	}()

	log.Info().Str("version", releaseVersion).Msg("🎨 你画我猜服务器启动中...")
	return srv.Start()
}
