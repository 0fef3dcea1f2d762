// Package words 提供每轮的题目：内置词库、本局去重、词库用尽时回收，以及按比例混入的热门词。
package words

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"
)

// HotCategory 热门词的分类
const HotCategory = "热门"

// DefaultHotWordRatio 有热门词时抽中热门词的概率
const DefaultHotWordRatio = 0.5

// maxHotWords 每种语言最多保留的热门词，超出时丢弃最早的
const maxHotWords = 200

//go:embed bank.json
var defaultBank []byte

// fallbackEntry 词库完全为空时返回的题目
var fallbackEntry = Entry{Word: "错误", Category: "系统"}

// Entry 一个题目
type Entry struct {
	Word     string   `json:"word"`
	Category string   `json:"category"`
	Hints    []string `json:"hints,omitempty"`
}

// Bank 词库文件格式：语言 → 分类 → 词
type Bank map[string]map[string][]string

// Source 题目来源，可并发使用
type Source struct {
	banks           map[string][]Entry
	hot             map[string][]Entry
	hotRatio        float64
	defaultLanguage string
	rng             *rand.Rand
	mu              sync.RWMutex
}

// Option 配置 Source
type Option func(*Source)

// WithHotWordRatio 设置抽中热门词的概率
func WithHotWordRatio(ratio float64) Option {
	return func(s *Source) {
		if ratio >= 0 && ratio <= 1 {
			s.hotRatio = ratio
		}
	}
}

// WithRand 使用指定的随机源（测试用）
func WithRand(r *rand.Rand) Option {
	return func(s *Source) { s.rng = r }
}

// WithDefaultLanguage 未知语言时使用的词库
func WithDefaultLanguage(lang string) Option {
	return func(s *Source) {
		if lang != "" {
			s.defaultLanguage = lang
		}
	}
}

// ParseBank 解析词库 JSON
func ParseBank(data []byte) (Bank, error) {
	var bank Bank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("解析词库失败: %w", err)
	}
	return bank, nil
}

// LoadBank 读取词库文件，path 为空时使用内置词库
func LoadBank(path string) (Bank, error) {
	if path == "" {
		return ParseBank(defaultBank)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取词库失败: %w", err)
	}
	return ParseBank(data)
}

// NewSource 创建题目来源
func NewSource(bank Bank, opts ...Option) *Source {
	s := &Source{
		banks:           make(map[string][]Entry, len(bank)),
		hot:             make(map[string][]Entry),
		hotRatio:        DefaultHotWordRatio,
		defaultLanguage: "zh",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	for lang, categories := range bank {
		seen := make(map[string]struct{})
		for category, list := range categories {
			for _, w := range list {
				w = strings.TrimSpace(w)
				if _, dup := seen[w]; dup || w == "" {
					continue
				}
				seen[w] = struct{}{}
				s.banks[lang] = append(s.banks[lang], Entry{Word: w, Category: category})
			}
		}
	}
	return s
}

// resolveLanguage 调用方需持有读锁
func (s *Source) resolveLanguage(lang string) string {
	if _, ok := s.banks[lang]; ok {
		return lang
	}
	if _, ok := s.hot[lang]; ok {
		return lang
	}
	return s.defaultLanguage
}

// Next 为房间抽一个题目，跳过 exclude 中的词；全部用过时忽略 exclude 重新抽取
func (s *Source) Next(language string, exclude map[string]struct{}) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	lang := s.resolveLanguage(language)
	static, hot := s.banks[lang], s.hot[lang]

	pools := [][]Entry{static, hot}
	if len(hot) > 0 && s.rng.Float64() < s.hotRatio {
		pools = [][]Entry{hot, static}
	}

	for _, pool := range pools {
		if e, ok := s.pick(pool, exclude); ok {
			return e
		}
	}

	// 所有词都用过了，回收
	for _, pool := range pools {
		if e, ok := s.pick(pool, nil); ok {
			return e
		}
	}
	return fallbackEntry
}

func (s *Source) pick(pool []Entry, exclude map[string]struct{}) (Entry, bool) {
	if len(exclude) == 0 {
		if len(pool) == 0 {
			return Entry{}, false
		}
		return clone(pool[s.rng.IntN(len(pool))]), true
	}

	candidates := make([]int, 0, len(pool))
	for i, e := range pool {
		if _, used := exclude[e.Word]; !used {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return Entry{}, false
	}
	return clone(pool[candidates[s.rng.IntN(len(candidates))]]), true
}

func clone(e Entry) Entry {
	e.Hints = append([]string(nil), e.Hints...)
	return e
}

// AddHotWords 加入热门词，已存在的词会被跳过；返回实际新增的数量
func (s *Source) AddHotWords(language string, entries []Entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{})
	for _, e := range s.banks[language] {
		existing[e.Word] = struct{}{}
	}
	for _, e := range s.hot[language] {
		existing[e.Word] = struct{}{}
	}

	added := 0
	for _, e := range entries {
		word := strings.TrimSpace(e.Word)
		if word == "" {
			continue
		}
		if _, dup := existing[word]; dup {
			continue
		}
		existing[word] = struct{}{}
		s.hot[language] = append(s.hot[language], Entry{
			Word:     word,
			Category: HotCategory,
			Hints:    append([]string(nil), e.Hints...),
		})
		added++
	}

	if n := len(s.hot[language]); n > maxHotWords {
		s.hot[language] = append([]Entry(nil), s.hot[language][n-maxHotWords:]...)
	}
	return added
}

// HotWords 当前的热门词
func (s *Source) HotWords(language string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.hot[language]...)
}

// AllWords 某种语言下的所有词（生成热门词时用于去重）
func (s *Source) AllWords(language string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words := make([]string, 0, len(s.banks[language])+len(s.hot[language]))
	for _, e := range s.banks[language] {
		words = append(words, e.Word)
	}
	for _, e := range s.hot[language] {
		words = append(words, e.Word)
	}
	return words
}
