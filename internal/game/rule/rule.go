// Package rule 回合规则：轮换画手、计分、回合/整局结束判定。纯函数，不做 I/O，不碰计时器。
package rule

import (
	"slices"
	"time"
)

const (
	// RoundDuration 每回合时长
	RoundDuration = 75 * time.Second

	// GuesserBaseScore 猜中的基础分
	GuesserBaseScore = 10
	// GuesserBonusStep 剩余时间每 5 秒加 1 分
	GuesserBonusStep = 5
	// DrawerScore 每有一人猜中，画手得分
	DrawerScore = 5

	// MinPlayers 开始游戏的最少人数
	MinPlayers = 2

	// EffectCap 每回合每人每种道具的使用上限
	EffectCap = 5
)

// HintOffsets 提示公开时间：第一条立即公开，之后分别在 +25s、+50s
var HintOffsets = []time.Duration{0, 25 * time.Second, 50 * time.Second}

// AllowedEffects 允许扔的道具
var AllowedEffects = []string{"🌸", "🩴", "🥚", "💋", "💣"}

// NextDrawer 返回 order 中 current 的下一位（循环）；
// current 为空或不在 order 中时返回第一位，order 为空时返回 ""
func NextDrawer(order []string, current string) string {
	if len(order) == 0 {
		return ""
	}
	idx := slices.Index(order, current)
	if current == "" || idx < 0 {
		return order[0]
	}
	return order[(idx+1)%len(order)]
}

// GuesserScore 猜中得分：10 + floor(max(0, 剩余秒数) / 5)
func GuesserScore(remainingSeconds int) int {
	return GuesserBaseScore + max(0, remainingSeconds)/GuesserBonusStep
}

// RemainingSeconds 回合剩余的整秒数，向下取整
func RemainingSeconds(roundEndsAt, now time.Time) int {
	if roundEndsAt.IsZero() {
		return 0
	}
	return int(roundEndsAt.Sub(now) / time.Second)
}

// RoundShouldEnd 除画手外的所有人都猜中时结束回合
func RoundShouldEnd(guessedCount, totalPlayers int) bool {
	return totalPlayers-1 > 0 && guessedCount >= totalPlayers-1
}

// GameShouldEnd 所有人都当过画手时整局结束；没有玩家时也结束
func GameShouldEnd(order []string, drawnPlayers map[string]struct{}) bool {
	for _, id := range order {
		if _, ok := drawnPlayers[id]; !ok {
			return false
		}
	}
	return true
}

// IsAllowedEffect 道具是否在白名单中
func IsAllowedEffect(effect string) bool {
	return slices.Contains(AllowedEffects, effect)
}
