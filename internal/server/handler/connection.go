package handler

import (
	"time"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		payload = &protocol.PingPayload{}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// HandleDisconnect 连接断开：离开房间并清理限流记录
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	h.leaveCurrentRoom(client)
	if h.chatLimiter != nil {
		h.chatLimiter.RemoveClient(client.GetID())
	}
}
