package handler

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// joinRequest 客户端可能把房间号当数字发过来，字段先按任意类型接收再规整
type joinRequest struct {
	RoomID   any `json:"roomId"`
	Name     any `json:"name"`
	Language any `json:"language"`
}

// handleJoinRoom 处理加入房间，结果通过 join_ack 返回
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	err := h.join(client, msg)
	ack := protocol.JoinAckPayload{OK: err == nil}
	if err != nil {
		ack.Error = err.Error()
		log.Debug().Int("code", apperrors.Code(err)).Str("player", client.GetID()).Msg("加入房间失败")
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgJoinAck, ack))
}

func (h *Handler) join(client types.ClientInterface, msg *protocol.Message) error {
	// 维护模式检查
	if h.server != nil && h.server.IsMaintenanceMode() {
		return apperrors.ErrMaintenance
	}

	var req joinRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return apperrors.ErrInvalidJoin
		}
	}
	roomID := sanitizeRoomID(req.RoomID)
	name := sanitizeName(req.Name)
	if roomID == "" || name == "" {
		return apperrors.ErrInvalidJoin
	}

	// 如果已在其他房间中，先离开
	if current := client.GetRoom(); current != "" && current != roomID {
		h.leaveCurrentRoom(client)
	}

	client.SetName(name)
	client.SetRoom(roomID)
	if err := h.engine.Join(roomID, client.GetID(), name, sanitizeLanguage(req.Language)); err != nil {
		client.SetRoom("")
		return apperrors.ErrInvalidJoin
	}

	log.Info().Str("room", roomID).Str("player", client.GetID()).Str("name", name).Msg("🚪 玩家加入房间")
	return nil
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	h.leaveCurrentRoom(client)
}

// leaveCurrentRoom 先清除连接上的房间记录再通知引擎，离开后的广播不会再发给该连接
func (h *Handler) leaveCurrentRoom(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	client.SetRoom("")
	h.engine.Leave(roomID, client.GetID())
}

// handleStartGame 房主开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	h.engine.StartGame(roomID, client.GetID())
}
