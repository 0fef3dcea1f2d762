package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"` // 仅在创建房间时生效
}

// ThrowEffectPayload 扔道具请求
type ThrowEffectPayload struct {
	Type string `json:"type"`
}

// Stroke 一段笔画，记录后不可修改
type Stroke struct {
	X0         float64 `json:"x0"`
	Y0         float64 `json:"y0"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	Width      float64 `json:"width"`
	Color      string  `json:"color"`
	Normalized bool    `json:"normalized"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// JoinAckPayload 加入房间应答
type JoinAckPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// MaskedWord 猜词者看到的提示，不包含答案
type MaskedWord struct {
	Category string `json:"category"`
	Length   int    `json:"length"`
	Hint     string `json:"hint,omitempty"`
	Text     string `json:"text"`
}

// GameView 游戏状态投影
type GameView struct {
	Started       bool        `json:"started"`
	DrawerID      *string     `json:"drawerId"`
	RoundEndsAt   *int64      `json:"roundEndsAt"` // 毫秒时间戳
	GuessedIDs    []string    `json:"guessedIds"`
	RoundDuration int64       `json:"roundDuration"` // 秒
	Word          *string     `json:"word"`          // 仅画手可见
	MaskedWord    *MaskedWord `json:"maskedWord"`    // 仅猜词者可见
}

// RoomStatePayload 房间状态（每个观看者单独计算）
type RoomStatePayload struct {
	RoomID   string       `json:"roomId"`
	Language string       `json:"language"`
	Players  []PlayerInfo `json:"players"`
	HostID   *string      `json:"hostId"`
	Game     GameView     `json:"game"`
	Strokes  []Stroke     `json:"strokes"`
}

// UserRef 通知关联的玩家
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SystemMessagePayload 系统通知
type SystemMessagePayload struct {
	Text        string   `json:"text"`
	RelatedUser *UserRef `json:"relatedUser,omitempty"`
}

// ChatMessagePayload 聊天消息
type ChatMessagePayload struct {
	Sender   string `json:"sender"`
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

// EffectThrownPayload 道具事件
type EffectThrownPayload struct {
	Type     string `json:"type"`
	SenderID string `json:"senderId"`
	TargetID string `json:"targetId"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RoomSummary 房间列表项
type RoomSummary struct {
	RoomID      string `json:"roomId"`
	Language    string `json:"language"`
	PlayerCount int    `json:"playerCount"`
	Started     bool   `json:"started"`
}
