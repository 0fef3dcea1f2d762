package server

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

// GetOnlineCount 获取在线人数（按需调用）
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Broadcast 广播消息给所有客户端
func (s *Server) Broadcast(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, client := range s.clients {
		client.sendRaw(data)
	}
}

// SendToRoom 发送给房间内的所有连接
func (s *Server) SendToRoom(roomID string, msgType protocol.MessageType, payload any) {
	s.SendToRoomExcept(roomID, "", msgType, payload)
}

// SendToRoomExcept 发送给房间内除 exceptID 以外的连接；消息只编码一次
func (s *Server) SendToRoomExcept(roomID, exceptID string, msgType protocol.MessageType, payload any) {
	data, ok := encode(msgType, payload)
	if !ok {
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for id, client := range s.clients {
		if id != exceptID && client.GetRoom() == roomID {
			client.sendRaw(data)
		}
	}
}

// SendToViewer 发送给单个连接
func (s *Server) SendToViewer(connID string, msgType protocol.MessageType, payload any) {
	s.clientsMu.RLock()
	client := s.clients[connID]
	s.clientsMu.RUnlock()
	if client == nil {
		return
	}

	if data, ok := encode(msgType, payload); ok {
		client.sendRaw(data)
	}
}

func encode(msgType protocol.MessageType, payload any) ([]byte, bool) {
	msg, err := codec.NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(msgType)).Msg("消息编码错误")
		return nil, false
	}
	data, err := codec.Encode(msg)
	if err != nil {
		log.Error().Err(err).Str("type", string(msgType)).Msg("消息编码错误")
		return nil, false
	}
	return data, true
}
