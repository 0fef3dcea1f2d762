package handler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

func TestSanitizeStroke(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
		want protocol.Stroke
		ok   bool
	}{
		{
			name: "defaults",
			raw:  map[string]any{"x0": 1, "y0": 2, "x1": 3, "y1": 4},
			want: protocol.Stroke{X0: 1, Y0: 2, X1: 3, Y1: 4, Width: 4, Color: "#111111"},
			ok:   true,
		},
		{
			name: "string numbers are coerced",
			raw:  map[string]any{"x0": "10", "y0": "20.5", "x1": 3.0, "y1": 4, "width": "8", "color": "red", "normalized": true},
			want: protocol.Stroke{X0: 10, Y0: 20.5, X1: 3, Y1: 4, Width: 8, Color: "red", Normalized: true},
			ok:   true,
		},
		{
			name: "width clamped low",
			raw:  map[string]any{"x0": 0, "y0": 0, "x1": 0, "y1": 0, "width": 0.2},
			want: protocol.Stroke{Width: 1, Color: "#111111"},
			ok:   true,
		},
		{
			name: "bad width falls back",
			raw:  map[string]any{"x0": 0, "y0": 0, "x1": 0, "y1": 0, "width": "thick"},
			want: protocol.Stroke{Width: 4, Color: "#111111"},
			ok:   true,
		},
		{
			name: "missing coordinate",
			raw:  map[string]any{"x0": 0, "y0": 0, "x1": 0},
			ok:   false,
		},
		{
			name: "garbage coordinate",
			raw:  map[string]any{"x0": "left", "y0": 0, "x1": 0, "y1": 0},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := sanitizeStroke(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeStrokes(t *testing.T) {
	t.Parallel()

	single := decodeStrokes([]byte(`{"x0":1,"y0":1,"x1":2,"y1":2}`))
	assert.Len(t, single, 1)

	batch := decodeStrokes([]byte(` [{"x0":1,"y0":1,"x1":2,"y1":2},{"x0":1}] `))
	assert.Len(t, batch, 1)

	assert.Nil(t, decodeStrokes(nil))
	assert.Nil(t, decodeStrokes([]byte(`"nope"`)))
}

func TestNormalizeStrokes(t *testing.T) {
	t.Parallel()

	in := []protocol.Stroke{
		{X0: math.NaN(), Y0: 0, X1: 0, Y1: 0},
		{X0: 1, Y0: 1, X1: 2, Y1: 2, Width: 99},
	}
	out := normalizeStrokes(in)
	assert.Len(t, out, 1)
	assert.Equal(t, 24.0, out[0].Width)
	assert.Equal(t, "#111111", out[0].Color)
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "room-1", sanitizeRoomID(" Room-1 "))
	assert.Equal(t, "42", sanitizeRoomID(42))
	assert.Equal(t, "", sanitizeRoomID(nil))
	assert.Equal(t, "Ann", sanitizeName("  Ann  "))
	assert.Equal(t, "en", sanitizeLanguage("EN"))
	assert.Equal(t, "", sanitizeLanguage("fr"))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "你好", truncate("你好世界", 2))
}
