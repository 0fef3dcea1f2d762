package room

import (
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// ToRoomData 将 Room 转换为可序列化的 RoomData，调用方需持有房间锁
func (r *Room) ToRoomData() *storage.RoomData {
	data := &storage.RoomData{
		ID:          r.ID,
		Language:    r.Language,
		HostID:      r.HostID,
		Phase:       r.Game.Phase().String(),
		Players:     make([]storage.PlayerData, 0, len(r.Players)),
		PlayerOrder: append([]string(nil), r.ActiveOrder()...),
		DrawerID:    r.Game.DrawerID,
		Strokes:     append(r.Strokes[:0:0], r.Strokes...),
		CreatedAt:   r.CreatedAt.Unix(),
	}

	if !r.Game.RoundEndsAt.IsZero() {
		data.RoundEndsAt = r.Game.RoundEndsAt.UnixMilli()
	}

	for _, id := range data.PlayerOrder {
		p := r.Players[id]
		data.Players = append(data.Players, storage.PlayerData{
			ID:    p.ID,
			Name:  p.Name,
			Score: p.Score,
		})
	}

	return data
}
