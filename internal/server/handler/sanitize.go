package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/strokewire"
)

const (
	maxNameLength  = 20
	maxChatLength  = 100
	maxColorLength = 10

	defaultStrokeWidth = 4
	minStrokeWidth     = 1
	maxStrokeWidth     = 24
	defaultColor       = "#111111"
)

// truncate 按字符截断
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func sanitizeRoomID(v any) string {
	return truncate(strings.ToLower(strings.TrimSpace(cast.ToString(v))), room.MaxRoomIDLength)
}

func sanitizeName(v any) string {
	return truncate(strings.TrimSpace(cast.ToString(v)), maxNameLength)
}

func sanitizeChat(v any) string {
	return truncate(strings.TrimSpace(cast.ToString(v)), maxChatLength)
}

// sanitizeLanguage 只接受已知语言，其余交给房间默认值
func sanitizeLanguage(v any) string {
	switch lang := strings.ToLower(strings.TrimSpace(cast.ToString(v))); lang {
	case "zh", "en":
		return lang
	default:
		return ""
	}
}

// decodeStrokes 解析单个笔画对象或笔画数组，丢弃无法规整的项
func decodeStrokes(payload json.RawMessage) []protocol.Stroke {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil
	}

	var raws []map[string]any
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil
		}
	} else {
		var single map[string]any
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil
		}
		raws = []map[string]any{single}
	}
	if len(raws) > strokewire.MaxStrokesPerFrame {
		raws = raws[:strokewire.MaxStrokesPerFrame]
	}

	strokes := make([]protocol.Stroke, 0, len(raws))
	for _, raw := range raws {
		if s, ok := sanitizeStroke(raw); ok {
			strokes = append(strokes, s)
		}
	}
	return strokes
}

// sanitizeStroke 坐标强制转成有限数值，缺失或非法时丢弃；粗细夹在 [1, 24]，颜色默认 #111111
func sanitizeStroke(raw map[string]any) (protocol.Stroke, bool) {
	if raw == nil {
		return protocol.Stroke{}, false
	}

	var coords [4]float64
	for i, key := range [4]string{"x0", "y0", "x1", "y1"} {
		v, ok := raw[key]
		if !ok || v == nil {
			return protocol.Stroke{}, false
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return protocol.Stroke{}, false
		}
		coords[i] = f
	}

	s := protocol.Stroke{
		X0:         coords[0],
		Y0:         coords[1],
		X1:         coords[2],
		Y1:         coords[3],
		Width:      clampWidth(raw["width"]),
		Color:      sanitizeColor(raw["color"]),
		Normalized: cast.ToBool(raw["normalized"]),
	}
	return s, true
}

// normalizeStrokes 规整二进制帧解出的笔画
func normalizeStrokes(strokes []protocol.Stroke) []protocol.Stroke {
	out := strokes[:0]
	for _, s := range strokes {
		if !finite(s.X0) || !finite(s.Y0) || !finite(s.X1) || !finite(s.Y1) {
			continue
		}
		s.Width = clampWidth(s.Width)
		s.Color = sanitizeColor(s.Color)
		out = append(out, s)
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampWidth(v any) float64 {
	w, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(w) || w == 0 {
		w = defaultStrokeWidth
	}
	return math.Max(minStrokeWidth, math.Min(maxStrokeWidth, w))
}

func sanitizeColor(v any) string {
	c := cast.ToString(v)
	if c == "" {
		c = defaultColor
	}
	return truncate(c, maxColorLength)
}
