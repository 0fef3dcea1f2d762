package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/protocol/strokewire"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handleDraw 处理 JSON 格式的笔画（单个对象或数组）
func (h *Handler) handleDraw(client types.ClientInterface, msg *protocol.Message) {
	h.HandleStrokes(client, decodeStrokes(msg.Payload))
}

// HandleStrokes 把规整后的笔画交给引擎；二进制帧解码后也走这里
func (h *Handler) HandleStrokes(client types.ClientInterface, strokes []protocol.Stroke) {
	roomID := client.GetRoom()
	if roomID == "" || len(strokes) == 0 {
		return
	}
	h.engine.Draw(roomID, client.GetID(), strokes)
}

// HandleDrawFrame 处理二进制笔画帧，效果与 JSON draw 相同
func (h *Handler) HandleDrawFrame(client types.ClientInterface, data []byte) {
	strokes, err := strokewire.Unmarshal(data)
	if err != nil {
		log.Debug().Err(err).Str("player", client.GetID()).Msg("笔画帧解析失败")
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	h.HandleStrokes(client, normalizeStrokes(strokes))
}

// handleClearCanvas 画手清空画布
func (h *Handler) handleClearCanvas(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	h.engine.ClearCanvas(roomID, client.GetID())
}

// handleThrowEffect 向画手扔道具
func (h *Handler) handleThrowEffect(client types.ClientInterface, msg *protocol.Message) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	payload, err := codec.ParsePayload[protocol.ThrowEffectPayload](msg)
	if err != nil {
		return
	}
	h.engine.ThrowEffect(roomID, client.GetID(), payload.Type)
}
