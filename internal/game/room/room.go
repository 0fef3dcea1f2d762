package room

import (
	"sync"
	"time"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

const (
	MaxRoomIDLength = 24 // 房间 ID 最大长度
	DefaultLanguage = "zh"
)

// Player 房间中的玩家
type Player struct {
	ID    string
	Name  string
	Score int
}

// Room 游戏房间
//
// 房间内的所有字段只能在持有 Lock 时读写；计时器回调和消息处理都先加锁再操作。
type Room struct {
	ID          string             // 房间 ID（小写）
	Language    string             // 词库语言
	HostID      string             // 房主，房间为空时为 ""
	Players     map[string]*Player // 玩家列表（无序）
	PlayerOrder []string           // 轮流作画的顺序
	Game        GameState          // 游戏状态
	Strokes     []protocol.Stroke  // 当前画布的笔画，晚加入的玩家会收到完整回放
	CreatedAt   time.Time

	closed bool
	mu     sync.Mutex
}

// New 创建房间
func New(id, language string) *Room {
	if language == "" {
		language = DefaultLanguage
	}
	return &Room{
		ID:          id,
		Language:    language,
		Players:     make(map[string]*Player),
		PlayerOrder: make([]string, 0, 8),
		Game:        newGameState(),
		CreatedAt:   time.Now(),
	}
}

// Lock 锁定房间
func (r *Room) Lock() { r.mu.Lock() }

// Unlock 解锁房间
func (r *Room) Unlock() { r.mu.Unlock() }

// Closed 房间是否已经被移出注册表
func (r *Room) Closed() bool { return r.closed }

// Close 标记房间已关闭，并取消所有计时器
func (r *Room) Close() {
	r.closed = true
	r.Game.CancelTimers()
}

// Player 获取玩家
func (r *Room) Player(id string) *Player {
	return r.Players[id]
}

// AddPlayer 加入玩家，已存在时只更新名字；返回是否为新玩家
func (r *Room) AddPlayer(id, name string) bool {
	if p, ok := r.Players[id]; ok {
		p.Name = name
		return false
	}

	r.Players[id] = &Player{ID: id, Name: name}
	r.PlayerOrder = append(r.PlayerOrder, id)
	if r.HostID == "" {
		r.HostID = id
	}
	return true
}

// RemovePlayer 移除玩家并重新分配房主
func (r *Room) RemovePlayer(id string) *Player {
	p, ok := r.Players[id]
	if !ok {
		return nil
	}

	delete(r.Players, id)
	delete(r.Game.Guessed, id)
	delete(r.Game.EffectUsage, id)
	r.ActiveOrder()

	if r.HostID == id {
		r.HostID = ""
		if len(r.PlayerOrder) > 0 {
			r.HostID = r.PlayerOrder[0]
		}
	}
	return p
}

// ActiveOrder 剔除已离开玩家后的出场顺序
func (r *Room) ActiveOrder() []string {
	order := r.PlayerOrder[:0]
	for _, id := range r.PlayerOrder {
		if _, ok := r.Players[id]; ok {
			order = append(order, id)
		}
	}
	r.PlayerOrder = order
	return order
}

// IsEmpty 房间是否没有玩家
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// PlayerInfos 按出场顺序返回玩家信息
func (r *Room) PlayerInfos() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.Players))
	for _, id := range r.ActiveOrder() {
		p := r.Players[id]
		infos = append(infos, protocol.PlayerInfo{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return infos
}

// ClearStrokes 清空画布
func (r *Room) ClearStrokes() {
	r.Strokes = r.Strokes[:0]
}

// Summary 房间列表项
func (r *Room) Summary() protocol.RoomSummary {
	return protocol.RoomSummary{
		RoomID:      r.ID,
		Language:    r.Language,
		PlayerCount: len(r.Players),
		Started:     r.Game.Started,
	}
}
