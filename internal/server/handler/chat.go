package handler

import (
	"encoding/json"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handleChat 处理聊天消息，载荷是一个字符串；猜词由引擎判断
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}

	var raw any
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &raw); err != nil {
			return
		}
	}
	text := sanitizeChat(raw)
	if text == "" {
		return
	}

	// 聊天限流检查
	if h.chatLimiter != nil {
		allowed, reason := h.chatLimiter.AllowChat(client.GetID())
		if !allowed {
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
			return
		}
	}

	h.engine.Chat(roomID, client.GetID(), text)
}
