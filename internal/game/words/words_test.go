package words

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestLoadBank_Embedded(t *testing.T) {
	t.Parallel()

	bank, err := LoadBank("")
	require.NoError(t, err)
	assert.Contains(t, bank, "zh")
	assert.Contains(t, bank, "en")
	assert.NotEmpty(t, bank["zh"]["Animals"])
}

func TestLoadBank_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadBank("/nonexistent/words.json")
	assert.Error(t, err)
}

func TestSource_Next_SkipsExcluded(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{"zh": {"Foods": {"苹果", "香蕉", "西瓜"}}}, WithRand(testRand()))
	exclude := map[string]struct{}{"苹果": {}, "香蕉": {}}

	for range 20 {
		e := s.Next("zh", exclude)
		assert.Equal(t, "西瓜", e.Word)
		assert.Equal(t, "Foods", e.Category)
	}
}

func TestSource_Next_RecyclesWhenExhausted(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{"zh": {"Foods": {"苹果", "香蕉"}}}, WithRand(testRand()))
	exclude := map[string]struct{}{"苹果": {}, "香蕉": {}}

	e := s.Next("zh", exclude)
	assert.Contains(t, []string{"苹果", "香蕉"}, e.Word)
}

func TestSource_Next_UnknownLanguageFallsBack(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{"zh": {"Foods": {"苹果"}}}, WithRand(testRand()))
	assert.Equal(t, "苹果", s.Next("fr", nil).Word)
}

func TestSource_Next_EmptyBank(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{}, WithRand(testRand()))
	assert.Equal(t, fallbackEntry, s.Next("zh", nil))
}

func TestSource_Next_HotWordRatio(t *testing.T) {
	t.Parallel()

	always := NewSource(Bank{"zh": {"Foods": {"苹果"}}}, WithRand(testRand()), WithHotWordRatio(1))
	always.AddHotWords("zh", []Entry{{Word: "孙悟空", Hints: []string{"神话", "西游记", "齐天大圣"}}})

	e := always.Next("zh", nil)
	assert.Equal(t, "孙悟空", e.Word)
	assert.Equal(t, HotCategory, e.Category)
	assert.Equal(t, []string{"神话", "西游记", "齐天大圣"}, e.Hints)

	// 热门词用完后回到普通词库
	e = always.Next("zh", map[string]struct{}{"孙悟空": {}})
	assert.Equal(t, "苹果", e.Word)

	never := NewSource(Bank{"zh": {"Foods": {"苹果"}}}, WithRand(testRand()), WithHotWordRatio(0))
	never.AddHotWords("zh", []Entry{{Word: "孙悟空", Hints: []string{"a", "b", "c"}}})
	for range 10 {
		assert.Equal(t, "苹果", never.Next("zh", nil).Word)
	}
}

func TestSource_TrimsWords(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{"zh": {"Foods": {" 苹果 ", "苹果", "  "}}}, WithRand(testRand()))
	assert.Equal(t, []string{"苹果"}, s.AllWords("zh"))

	added := s.AddHotWords("zh", []Entry{
		{Word: " 孙悟空 ", Hints: []string{"神话", "西游记", "齐天大圣"}},
		{Word: "孙悟空", Hints: []string{"神话", "西游记", "齐天大圣"}},
		{Word: "苹果\t", Hints: []string{"红色", "水果", "树上"}},
	})
	assert.Equal(t, 1, added)
	require.Len(t, s.HotWords("zh"), 1)
	assert.Equal(t, "孙悟空", s.HotWords("zh")[0].Word)
}

func TestSource_Next_ReturnsCopyOfHints(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{}, WithRand(testRand()))
	s.AddHotWords("zh", []Entry{{Word: "熊猫", Hints: []string{"国宝", "黑白", "竹子"}}})

	e := s.Next("zh", nil)
	e.Hints[0] = "changed"
	assert.Equal(t, "国宝", s.HotWords("zh")[0].Hints[0])
}

func TestSource_AddHotWords_Dedupes(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{"zh": {"Foods": {"苹果"}}}, WithRand(testRand()))
	added := s.AddHotWords("zh", []Entry{
		{Word: "苹果"},
		{Word: "熊猫"},
		{Word: "熊猫"},
		{Word: ""},
	})
	assert.Equal(t, 1, added)
	assert.Len(t, s.HotWords("zh"), 1)
	assert.ElementsMatch(t, []string{"苹果", "熊猫"}, s.AllWords("zh"))
}

func TestSource_AddHotWords_Capped(t *testing.T) {
	t.Parallel()

	s := NewSource(Bank{}, WithRand(testRand()))
	batch := make([]Entry, 0, maxHotWords+10)
	for i := range maxHotWords + 10 {
		batch = append(batch, Entry{Word: string(rune('一' + i))})
	}
	s.AddHotWords("zh", batch)

	hot := s.HotWords("zh")
	assert.Len(t, hot, maxHotWords)
	assert.Equal(t, string(rune('一'+10)), hot[0].Word)
}

func TestDisplayCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "动物", DisplayCategory("zh", "Animals"))
	assert.Equal(t, "热门话题", DisplayCategory("zh", HotCategory))
	assert.Equal(t, "未知", DisplayCategory("zh", ""))
	assert.Equal(t, "Animals", DisplayCategory("en", "Animals"))
	assert.Equal(t, "Trending", DisplayCategory("en", HotCategory))
	assert.Equal(t, "Unknown", DisplayCategory("en", ""))
}

func TestMaskedText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "提示: 食物 (2字)", MaskedText("zh", "Foods", "", Length("苹果")))
	assert.Equal(t, "提示: 红色的 (2字)", MaskedText("zh", "Foods", "红色的", 2))
	assert.Equal(t, "Hint: Foods (5 letters)", MaskedText("en", "Foods", "", Length("apple")))
}
