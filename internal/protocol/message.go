package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgJoinRoom  MessageType = "join_room"  // 加入房间（不存在时自动创建）
	MsgLeaveRoom MessageType = "leave_room" // 离开房间

	// 游戏操作
	MsgStartGame   MessageType = "start_game"   // 房主开始游戏
	MsgThrowEffect MessageType = "throw_effect" // 向画手扔道具
)

// 双向消息类型（客户端发送，服务端转发）
const (
	MsgDraw        MessageType = "draw"         // 笔画（单笔或批量）
	MsgClearCanvas MessageType = "clear_canvas" // 清空画布
	MsgChat        MessageType = "chat_message" // 聊天 / 猜词
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong
	MsgJoinAck   MessageType = "join_ack"  // 加入房间的应答

	// 房间相关
	MsgRoomState     MessageType = "room_state"     // 房间状态（按观看者投影）
	MsgSystemMessage MessageType = "system_message" // 系统通知
	MsgEffectThrown  MessageType = "effect_thrown"  // 道具被扔出

	// 错误
	MsgError MessageType = "error" // 错误消息
)
