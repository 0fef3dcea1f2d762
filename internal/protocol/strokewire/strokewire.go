// Package strokewire 笔画批量的紧凑二进制编码。
//
// 一帧由若干个 field 1（length-delimited）组成，每个都是一段笔画：
//
//	1: x0 (fixed64 double)  2: y0  3: x1  4: y1  5: width
//	6: color (bytes)        7: normalized (varint)
//
// 未知字段会被跳过，方便客户端后续扩展。
package strokewire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

const (
	fieldStroke protowire.Number = 1

	fieldX0         protowire.Number = 1
	fieldY0         protowire.Number = 2
	fieldX1         protowire.Number = 3
	fieldY1         protowire.Number = 4
	fieldWidth      protowire.Number = 5
	fieldColor      protowire.Number = 6
	fieldNormalized protowire.Number = 7

	// MaxStrokesPerFrame 单帧允许的最大笔画数
	MaxStrokesPerFrame = 512
)

var (
	ErrEmptyFrame = errors.New("strokewire: empty frame")
	ErrTooMany    = errors.New("strokewire: too many strokes in frame")
)

// Marshal 编码一批笔画
func Marshal(strokes []protocol.Stroke) []byte {
	var b []byte
	for i := range strokes {
		b = protowire.AppendTag(b, fieldStroke, protowire.BytesType)
		b = protowire.AppendBytes(b, appendStroke(nil, &strokes[i]))
	}
	return b
}

func appendStroke(b []byte, s *protocol.Stroke) []byte {
	b = appendDouble(b, fieldX0, s.X0)
	b = appendDouble(b, fieldY0, s.Y0)
	b = appendDouble(b, fieldX1, s.X1)
	b = appendDouble(b, fieldY1, s.Y1)
	b = appendDouble(b, fieldWidth, s.Width)
	if s.Color != "" {
		b = protowire.AppendTag(b, fieldColor, protowire.BytesType)
		b = protowire.AppendString(b, s.Color)
	}
	if s.Normalized {
		b = protowire.AppendTag(b, fieldNormalized, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// Unmarshal 解码一帧笔画
func Unmarshal(b []byte) ([]protocol.Stroke, error) {
	if len(b) == 0 {
		return nil, ErrEmptyFrame
	}

	var strokes []protocol.Stroke
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("strokewire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if num != fieldStroke || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("strokewire: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		raw, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("strokewire: bad stroke: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if len(strokes) >= MaxStrokesPerFrame {
			return nil, ErrTooMany
		}
		s, err := unmarshalStroke(raw)
		if err != nil {
			return nil, err
		}
		strokes = append(strokes, s)
	}

	if len(strokes) == 0 {
		return nil, ErrEmptyFrame
	}
	return strokes, nil
}

func unmarshalStroke(b []byte) (protocol.Stroke, error) {
	var s protocol.Stroke
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return s, fmt.Errorf("strokewire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.Fixed64Type && num >= fieldX0 && num <= fieldWidth:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			b = b[n:]
			setDouble(&s, num, math.Float64frombits(v))
		case typ == protowire.BytesType && num == fieldColor:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			b = b[n:]
			s.Color = v
		case typ == protowire.VarintType && num == fieldNormalized:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			b = b[n:]
			s.Normalized = v != 0
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return s, nil
}

func setDouble(s *protocol.Stroke, num protowire.Number, v float64) {
	switch num {
	case fieldX0:
		s.X0 = v
	case fieldY0:
		s.Y0 = v
	case fieldX1:
		s.X1 = v
	case fieldY1:
		s.Y1 = v
	case fieldWidth:
		s.Width = v
	}
}
