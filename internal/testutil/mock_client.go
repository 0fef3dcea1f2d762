//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetName(name string) {
	m.Called(name)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言调用的测试）
type SimpleClient struct {
	ID       string
	Name     string
	RoomID   string
	Closed   bool
	mu       sync.Mutex
	Messages []*protocol.Message
}

func (m *SimpleClient) GetID() string         { return m.ID }
func (m *SimpleClient) GetName() string       { return m.Name }
func (m *SimpleClient) SetName(name string)   { m.Name = name }
func (m *SimpleClient) GetRoom() string       { return m.RoomID }
func (m *SimpleClient) SetRoom(roomID string) { m.RoomID = roomID }
func (m *SimpleClient) Close()                { m.Closed = true }

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

// Last 最近一条指定类型的消息，不存在时返回 nil
func (m *SimpleClient) Last(msgType protocol.MessageType) *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Type == msgType {
			return m.Messages[i]
		}
	}
	return nil
}

// LastPayload 解析最近一条指定类型消息的载荷
func LastPayload[T any](c *SimpleClient, msgType protocol.MessageType) (*T, bool) {
	msg := c.Last(msgType)
	if msg == nil {
		return nil, false
	}
	payload, err := codec.ParsePayload[T](msg)
	if err != nil {
		return nil, false
	}
	return payload, true
}
