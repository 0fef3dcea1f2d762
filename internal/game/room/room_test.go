package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

type stubTimer struct{ stopped bool }

func (t *stubTimer) Stop() bool {
	t.stopped = true
	return true
}

func TestRoom_AddPlayer_AssignsHostAndOrder(t *testing.T) {
	t.Parallel()

	r := New("room1", "")
	assert.Equal(t, DefaultLanguage, r.Language)

	assert.True(t, r.AddPlayer("a", "Alice"))
	assert.True(t, r.AddPlayer("b", "Bob"))
	assert.Equal(t, "a", r.HostID)
	assert.Equal(t, []string{"a", "b"}, r.PlayerOrder)

	// 再次加入只更新名字，不改变顺序和分数
	r.Players["a"].Score = 15
	assert.False(t, r.AddPlayer("a", "Alicia"))
	assert.Equal(t, []string{"a", "b"}, r.PlayerOrder)
	assert.Equal(t, "Alicia", r.Players["a"].Name)
	assert.Equal(t, 15, r.Players["a"].Score)
}

func TestRoom_RemovePlayer_ReassignsHost(t *testing.T) {
	t.Parallel()

	r := New("room1", "zh")
	r.AddPlayer("a", "Alice")
	r.AddPlayer("b", "Bob")
	r.AddPlayer("c", "Carol")
	r.Game.Guessed["a"] = struct{}{}

	p := r.RemovePlayer("a")
	require.NotNil(t, p)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "b", r.HostID)
	assert.Equal(t, []string{"b", "c"}, r.PlayerOrder)
	assert.False(t, r.Game.HasGuessed("a"))

	assert.Nil(t, r.RemovePlayer("missing"))

	r.RemovePlayer("b")
	r.RemovePlayer("c")
	assert.True(t, r.IsEmpty())
	assert.Empty(t, r.HostID)
}

func TestRoom_ActiveOrder_PrunesMissingPlayers(t *testing.T) {
	t.Parallel()

	r := New("room1", "zh")
	r.AddPlayer("a", "Alice")
	r.AddPlayer("b", "Bob")
	r.PlayerOrder = append(r.PlayerOrder, "ghost")

	assert.Equal(t, []string{"a", "b"}, r.ActiveOrder())
	assert.Len(t, r.PlayerInfos(), 2)
}

func TestGameState_PhaseAndTimers(t *testing.T) {
	t.Parallel()

	r := New("room1", "zh")
	g := &r.Game
	assert.Equal(t, PhaseWaiting, g.Phase())

	g.Started = true
	assert.Equal(t, PhaseRoundEnded, g.Phase())
	assert.False(t, g.RoundActive())

	g.RoundEndsAt = time.Now().Add(time.Minute)
	assert.Equal(t, PhaseRoundActive, g.Phase())
	assert.Equal(t, "round_active", g.Phase().String())

	timer := &stubTimer{}
	hint := &stubTimer{}
	g.Timer = timer
	g.HintTimers = []TimerHandle{hint}

	r.Close()
	assert.True(t, r.Closed())
	assert.True(t, timer.stopped)
	assert.True(t, hint.stopped)
	assert.Nil(t, g.Timer)
	assert.Nil(t, g.HintTimers)
}

func TestGameState_ResetForNewGame(t *testing.T) {
	t.Parallel()

	r := New("room1", "zh")
	r.Game.DrawnPlayers["a"] = struct{}{}
	r.Game.UsedWords["苹果"] = struct{}{}
	r.Game.DrawerID = "a"

	r.Game.ResetForNewGame()
	assert.Empty(t, r.Game.DrawnPlayers)
	assert.Empty(t, r.Game.UsedWords)
	assert.Empty(t, r.Game.DrawerID)
}

func TestRoom_ToRoomData(t *testing.T) {
	t.Parallel()

	r := New("room1", "en")
	r.AddPlayer("a", "Alice")
	r.AddPlayer("b", "Bob")
	r.Players["b"].Score = 12
	r.Game.Started = true
	r.Game.DrawerID = "a"
	r.Game.CurrentWord = "apple"
	r.Game.RoundEndsAt = time.UnixMilli(1_700_000_000_000)
	r.Strokes = append(r.Strokes, protocol.Stroke{X0: 1, Width: 4})

	data := r.ToRoomData()
	assert.Equal(t, "room1", data.ID)
	assert.Equal(t, "en", data.Language)
	assert.Equal(t, "round_active", data.Phase)
	assert.Equal(t, int64(1_700_000_000_000), data.RoundEndsAt)
	assert.Equal(t, []string{"a", "b"}, data.PlayerOrder)
	require.Len(t, data.Players, 2)
	assert.Equal(t, 12, data.Players[1].Score)
	assert.Len(t, data.Strokes, 1)

	// 快照与房间互不影响
	r.ClearStrokes()
	assert.Len(t, data.Strokes, 1)
}
