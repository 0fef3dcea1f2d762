package room

import "time"

// Phase 房间所处阶段
type Phase int

const (
	PhaseWaiting     Phase = iota // 未开始（包括一局结束后）
	PhaseRoundActive              // 回合进行中
	PhaseRoundEnded               // 回合已结束，下一回合尚未开始
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseRoundActive:
		return "round_active"
	case PhaseRoundEnded:
		return "round_ended"
	default:
		return "unknown"
	}
}

// TimerHandle 可取消的计时器，*time.Timer 满足该接口
type TimerHandle interface {
	Stop() bool
}

// GameState 一局游戏的状态
type GameState struct {
	Started         bool
	DrawerID        string // "" 表示没有画手
	CurrentWord     string
	CurrentCategory string
	AllHints        []string
	CurrentHint     string    // "" 表示还没有公开提示
	RoundEndsAt     time.Time // 零值表示没有进行中的回合

	Guessed      map[string]struct{}       // 本回合已猜中的玩家
	DrawnPlayers map[string]struct{}       // 本局已经当过画手的玩家
	UsedWords    map[string]struct{}       // 本局用过的词
	EffectUsage  map[string]map[string]int // 玩家 → 道具类型 → 本回合使用次数

	// RoundSeq 每开始一个回合加一，计时器回调据此判断自己是否已过期
	RoundSeq   uint64
	Timer      TimerHandle
	HintTimers []TimerHandle
}

func newGameState() GameState {
	return GameState{
		Guessed:      make(map[string]struct{}),
		DrawnPlayers: make(map[string]struct{}),
		UsedWords:    make(map[string]struct{}),
		EffectUsage:  make(map[string]map[string]int),
	}
}

// RoundActive 回合是否进行中
func (g *GameState) RoundActive() bool {
	return g.Started && !g.RoundEndsAt.IsZero()
}

// Phase 当前阶段
func (g *GameState) Phase() Phase {
	switch {
	case !g.Started:
		return PhaseWaiting
	case g.RoundActive():
		return PhaseRoundActive
	default:
		return PhaseRoundEnded
	}
}

// HasGuessed 玩家本回合是否已猜中
func (g *GameState) HasGuessed(id string) bool {
	_, ok := g.Guessed[id]
	return ok
}

// GuessedIDs 已猜中玩家的 ID，按给定顺序输出
func (g *GameState) GuessedIDs(order []string) []string {
	ids := make([]string, 0, len(g.Guessed))
	for _, id := range order {
		if _, ok := g.Guessed[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// CancelTimers 取消回合计时器和所有提示计时器
func (g *GameState) CancelTimers() {
	if g.Timer != nil {
		g.Timer.Stop()
		g.Timer = nil
	}
	for _, t := range g.HintTimers {
		if t != nil {
			t.Stop()
		}
	}
	g.HintTimers = nil
}

// ResetForNewGame 开始新的一局
func (g *GameState) ResetForNewGame() {
	g.CancelTimers()
	g.DrawnPlayers = make(map[string]struct{})
	g.UsedWords = make(map[string]struct{})
	g.DrawerID = ""
}
