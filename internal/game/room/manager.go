package room

import (
	"strings"
	"sync"
)

// Registry 内存中的房间注册表：首次引用时创建，最后一名玩家离开时删除
type Registry struct {
	rooms           map[string]*Room
	defaultLanguage string
	mu              sync.RWMutex
}

// NewRegistry 创建房间注册表
func NewRegistry(defaultLanguage string) *Registry {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	return &Registry{
		rooms:           make(map[string]*Room),
		defaultLanguage: defaultLanguage,
	}
}

// NormalizeID 房间 ID 不区分大小写
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// GetOrCreate 获取房间，不存在时创建；language 只在创建时生效
func (rg *Registry) GetOrCreate(id, language string) (r *Room, created bool) {
	id = NormalizeID(id)

	rg.mu.RLock()
	r, ok := rg.rooms[id]
	rg.mu.RUnlock()
	if ok {
		return r, false
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()

	if r, ok := rg.rooms[id]; ok {
		return r, false
	}
	if language == "" {
		language = rg.defaultLanguage
	}
	r = New(id, language)
	rg.rooms[id] = r
	return r, true
}

// Get 获取房间
func (rg *Registry) Get(id string) *Room {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.rooms[NormalizeID(id)]
}

// Remove 删除房间；只有注册表中仍是同一个实例时才删除
func (rg *Registry) Remove(r *Room) bool {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	if cur, ok := rg.rooms[r.ID]; ok && cur == r {
		delete(rg.rooms, r.ID)
		return true
	}
	return false
}

// Count 房间数量
func (rg *Registry) Count() int {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return len(rg.rooms)
}

// Rooms 当前所有房间的快照
//
// 返回后再逐个加锁，避免持有注册表锁时等待房间锁。
func (rg *Registry) Rooms() []*Room {
	rg.mu.RLock()
	defer rg.mu.RUnlock()

	rooms := make([]*Room, 0, len(rg.rooms))
	for _, r := range rg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// ActiveGamesCount 正在进行游戏的房间数
func (rg *Registry) ActiveGamesCount() int {
	count := 0
	for _, r := range rg.Rooms() {
		r.Lock()
		if r.Game.Started {
			count++
		}
		r.Unlock()
	}
	return count
}
