package rule

import (
	"strings"
	"time"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/words"
)

// StartRoundState 用新题目初始化回合字段；计时器句柄清空，调用方需先取消旧的计时器
func StartRoundState(g *room.GameState, w words.Entry, now time.Time) {
	g.Started = true
	g.CurrentWord = strings.TrimSpace(w.Word)
	g.CurrentCategory = w.Category
	g.AllHints = append([]string(nil), w.Hints...)
	g.CurrentHint = ""
	g.RoundEndsAt = now.Add(RoundDuration)
	g.Guessed = make(map[string]struct{})
	g.EffectUsage = make(map[string]map[string]int)
	g.Timer = nil
	g.HintTimers = nil
	g.RoundSeq++
}

// EndRoundState 清空回合字段；不修改 DrawnPlayers 和 DrawerID
func EndRoundState(g *room.GameState) {
	g.CurrentWord = ""
	g.CurrentCategory = ""
	g.AllHints = nil
	g.CurrentHint = ""
	g.RoundEndsAt = time.Time{}
	g.Guessed = make(map[string]struct{})
}
