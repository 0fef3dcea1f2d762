package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/game/session"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	Engine      *session.Engine
	ChatLimiter types.ChatLimiter
}

// Handler 消息处理器：校验、规整客户端输入后交给会话引擎
type Handler struct {
	server      types.ServerInterface
	engine      *session.Engine
	chatLimiter types.ChatLimiter
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		engine:      deps.Engine,
		chatLimiter: deps.ChatLimiter,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgJoinRoom:  h.handleJoinRoom,
		protocol.MsgLeaveRoom: func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },

		// 游戏操作
		protocol.MsgStartGame:   func(c types.ClientInterface, _ *protocol.Message) { h.handleStartGame(c) },
		protocol.MsgDraw:        h.handleDraw,
		protocol.MsgClearCanvas: func(c types.ClientInterface, _ *protocol.Message) { h.handleClearCanvas(c) },
		protocol.MsgChat:        h.handleChat,
		protocol.MsgThrowEffect: h.handleThrowEffect,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().
		Str("type", string(msg.Type)).
		Str("player", client.GetID()).
		Int("payload_bytes", len(msg.Payload)).
		Msg("⚠️ 未知消息类型")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}
