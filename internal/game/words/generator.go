package words

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoAPIKey     = errors.New("ai: api key not configured")
	ErrParseFailed  = errors.New("ai: response is not valid json")
	ErrSchemaFailed = errors.New("ai: response does not match schema")
)

// 提示词里最多带多少个需要排除的词
const maxExcludeInPrompt = 50

// GeneratorConfig 热门词生成器配置（OpenAI 兼容的 chat completions 接口）
type GeneratorConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration // 第 n 次失败后等待 n*RetryDelay
}

// Generator 通过大模型生成热门词，每个词带三条由难到易的提示
type Generator struct {
	cfg    GeneratorConfig
	client *http.Client
}

// NewGenerator 创建生成器
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Generator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled 是否配置了 API Key
func (g *Generator) Enabled() bool {
	return g.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate 生成 count 个热门词，失败时按线性退避重试
func (g *Generator) Generate(ctx context.Context, count int, exclude []string, language string) ([]Entry, error) {
	if !g.Enabled() {
		return nil, ErrNoAPIKey
	}

	req := chatRequest{
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(count, exclude, language)},
			{Role: "user", Content: fmt.Sprintf("Generate %d unique, easy-to-draw trending words, each with 3 hints.", count)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		entries, err := g.request(ctx, req)
		if err == nil {
			log.Info().Int("count", len(entries)).Str("language", language).Msg("🤖 热门词生成成功")
			return entries, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("max", g.cfg.MaxRetries).Msg("🤖 热门词生成失败")

		if attempt == g.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * g.cfg.RetryDelay):
		}
	}
	return nil, fmt.Errorf("生成热门词失败（%d 次尝试）: %w", g.cfg.MaxRetries, lastErr)
}

func (g *Generator) request(ctx context.Context, body chatRequest) ([]Entry, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai: unexpected status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if len(chat.Choices) == 0 {
		return nil, ErrSchemaFailed
	}
	return ParseHotWords(chat.Choices[0].Message.Content)
}

// ParseHotWords 解析模型输出：去掉 ```json 代码块标记后校验结构
func ParseHotWords(content string) ([]Entry, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var items []Entry
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if len(items) == 0 {
		return nil, ErrSchemaFailed
	}

	for i := range items {
		if !validHotWord(items[i]) {
			return nil, fmt.Errorf("%w: item %d", ErrSchemaFailed, i)
		}
		items[i].Word = strings.TrimSpace(items[i].Word)
		items[i].Category = HotCategory
	}
	return items, nil
}

func validHotWord(e Entry) bool {
	if strings.TrimSpace(e.Word) == "" || len(e.Hints) != 3 {
		return false
	}
	for _, h := range e.Hints {
		if strings.TrimSpace(h) == "" {
			return false
		}
	}
	return true
}

func systemPrompt(count int, exclude []string, language string) string {
	if len(exclude) > maxExcludeInPrompt {
		exclude = exclude[len(exclude)-maxExcludeInPrompt:]
	}

	region, lang, hintLen := "China", "Simplified Chinese", 15
	example := `[{"word":"孙悟空","hints":["神话人物","西游记主角","齐天大圣"]}]`
	if language == "en" {
		region, lang, hintLen = "English speaking countries", "English", 30
		example = `[{"word":"Superman","hints":["Superhero","From Krypton","Man of Steel"]}]`
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You pick words for a Pictionary style drawing game. List %d words that are trending or popular in %s right now.\n", count, region)
	b.WriteString("Every word must be a concrete, drawable noun or phrase.\n")
	fmt.Fprintf(&b, "Give each word exactly 3 hints, from vague to obvious, each shorter than %d characters.\n", hintLen)
	fmt.Fprintf(&b, "Answer in %s with a raw JSON array only, no markdown. Example: %s\n", lang, example)
	if len(exclude) > 0 {
		fmt.Fprintf(&b, "Do not use any of these words: %s.\n", strings.Join(exclude, ", "))
	}
	return b.String()
}
