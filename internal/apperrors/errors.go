package apperrors

import (
	"errors"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// GameError 带错误码的业务错误，错误码会原样发给客户端
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrInvalidJoin = &GameError{Code: protocol.ErrCodeInvalidJoin, Message: protocol.ErrorMessages[protocol.ErrCodeInvalidJoin]}
	ErrMaintenance = &GameError{Code: protocol.ErrCodeServerMaintenance, Message: "服务器维护中，暂停加入房间"}
)

// Code 取出错误码，非 GameError 返回 ErrCodeUnknown
func Code(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
