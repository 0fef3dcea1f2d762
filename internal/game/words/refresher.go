package words

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// HotWordGenerator 热门词生成接口
type HotWordGenerator interface {
	Generate(ctx context.Context, count int, exclude []string, language string) ([]Entry, error)
}

// ErrRefreshRunning 已有一次刷新在进行中
var ErrRefreshRunning = errors.New("hot word refresh already running")

// Refresher 后台定期生成热门词并写入 Source，不会阻塞出题
type Refresher struct {
	source    *Source
	generator HotWordGenerator
	count     int
	interval  time.Duration
	languages []string

	running sync.Mutex
}

// NewRefresher 创建刷新器；interval <= 0 时只能手动刷新
func NewRefresher(source *Source, generator HotWordGenerator, count int, interval time.Duration, languages ...string) *Refresher {
	if count <= 0 {
		count = 10
	}
	if len(languages) == 0 {
		languages = []string{"zh"}
	}
	return &Refresher{
		source:    source,
		generator: generator,
		count:     count,
		interval:  interval,
		languages: languages,
	}
}

// Refresh 为指定语言生成一批热门词，返回生成的词和新增数量
func (r *Refresher) Refresh(ctx context.Context, language string) ([]Entry, int, error) {
	if !r.running.TryLock() {
		return nil, 0, ErrRefreshRunning
	}
	defer r.running.Unlock()

	entries, err := r.generator.Generate(ctx, r.count, r.source.AllWords(language), language)
	if err != nil {
		return nil, 0, err
	}

	added := r.source.AddHotWords(language, entries)
	log.Info().Str("language", language).Int("fetched", len(entries)).Int("added", added).Msg("🔥 热门词已更新")
	return entries, added, nil
}

// Run 按间隔刷新所有语言，直到 ctx 取消
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, lang := range r.languages {
				if _, _, err := r.Refresh(ctx, lang); err != nil && !errors.Is(err, ErrNoAPIKey) {
					log.Warn().Err(err).Str("language", lang).Msg("🔥 热门词定时刷新失败")
				}
			}
		}
	}
}
