package words

import (
	"fmt"
	"unicode/utf8"
)

var categoryNames = map[string]map[string]string{
	"zh": {
		"Animals":   "动物",
		"Objects":   "物品",
		"Foods":     "食物",
		"Places":    "场所",
		"Actions":   "动作",
		HotCategory: "热门话题",
	},
	"en": {
		HotCategory: "Trending",
	},
}

// DisplayCategory 分类在界面上的名称
func DisplayCategory(language, category string) string {
	if name, ok := categoryNames[language][category]; ok {
		return name
	}
	if category != "" {
		return category
	}
	if language == "en" {
		return "Unknown"
	}
	return "未知"
}

// Length 词的字数（按字符计算）
func Length(word string) int {
	return utf8.RuneCountInString(word)
}

// MaskedText 猜词者看到的提示文字，优先显示已公开的提示，否则显示分类
func MaskedText(language, category, hint string, length int) string {
	label := hint
	if label == "" {
		label = DisplayCategory(language, category)
	}
	if language == "en" {
		return fmt.Sprintf("Hint: %s (%d letters)", label, length)
	}
	return fmt.Sprintf("提示: %s (%d字)", label, length)
}
