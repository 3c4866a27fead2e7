package game

import (
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestEngine(t *testing.T) (*Engine, *ManualScheduler) {
	t.Helper()
	s := NewManualScheduler()
	e := NewEngine(Options{Scheduler: s, Rand: rand.New(rand.NewPCG(42, 99))})
	return e, s
}

// startPlaying runs the countdown so the engine is in play with a full clock.
func startPlaying(t *testing.T, e *Engine, s *ManualScheduler) {
	t.Helper()
	require.True(t, e.Start())
	s.Advance(time.Duration(CountdownFrom+1) * DefaultTickInterval)
	require.Equal(t, StatePlaying, e.State())
}

// pairsOf groups unmatched tile ids by symbol, in board order.
func pairsOf(snap Snapshot) [][2]int {
	seen := make(map[string]int)
	var out [][2]int
	for _, tile := range snap.Tiles {
		if tile.Matched {
			continue
		}
		if first, ok := seen[tile.Symbol]; ok {
			out = append(out, [2]int{first, tile.ID})
			continue
		}
		seen[tile.Symbol] = tile.ID
	}
	return out
}

// mismatchOf returns two unmatched tiles with different symbols.
func mismatchOf(t *testing.T, snap Snapshot) (int, int) {
	t.Helper()
	for _, a := range snap.Tiles {
		for _, b := range snap.Tiles {
			if !a.Matched && !b.Matched && a.Symbol != b.Symbol {
				return a.ID, b.ID
			}
		}
	}
	t.Fatal("board has no mismatched pair")
	return 0, 0
}

func flipPair(t *testing.T, e *Engine, s *ManualScheduler, a, b int) {
	t.Helper()
	require.True(t, e.FlipTile(a), "flip %d", a)
	require.True(t, e.FlipTile(b), "flip %d", b)
	s.Advance(DefaultResolveDelay)
}

func clearLevel(t *testing.T, e *Engine, s *ManualScheduler) {
	t.Helper()
	for _, p := range pairsOf(e.Snapshot()) {
		flipPair(t, e, s, p[0], p[1])
	}
}

func TestEngine_NewIsSetup(t *testing.T) {
	e, s := newTestEngine(t)
	snap := e.Snapshot()
	assert.Equal(t, StateSetup, snap.State)
	assert.Equal(t, 1, snap.Level())
	assert.Len(t, snap.Tiles, 4)
	assert.Zero(t, s.Pending())
}

func TestEngine_Countdown(t *testing.T) {
	e, s := newTestEngine(t)
	require.True(t, e.Start())

	snap := e.Snapshot()
	assert.Equal(t, StateCountdown, snap.State)
	assert.Equal(t, 3, snap.Countdown)
	assert.Equal(t, 120, snap.TimeRemaining)
	assert.False(t, e.FlipTile(snap.Tiles[0].ID), "flip during countdown")

	for _, want := range []int{2, 1, 0} {
		s.Advance(time.Second)
		snap = e.Snapshot()
		require.Equal(t, StateCountdown, snap.State)
		assert.Equal(t, want, snap.Countdown)
	}

	s.Advance(time.Second)
	assert.Equal(t, StatePlaying, e.State())
	assert.Equal(t, 120, e.TimeRemaining())

	s.Advance(time.Second)
	assert.Equal(t, 119, e.TimeRemaining())
}

func TestEngine_StartIgnoredWhileActive(t *testing.T) {
	e, s := newTestEngine(t)
	require.True(t, e.Start())
	assert.False(t, e.Start())
	s.Advance(4 * time.Second)
	assert.False(t, e.Start())
}

func TestEngine_FlipBeforeStartIgnored(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.False(t, e.FlipTile(0))
	assert.Empty(t, e.Snapshot().Flipped)
}

func TestEngine_MatchAwardsPointsAndTime(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	p := pairsOf(e.Snapshot())[0]
	flipPair(t, e, s, p[0], p[1])

	snap := e.Snapshot()
	assert.Equal(t, 120, snap.Score)
	assert.Equal(t, 126, snap.TimeRemaining)
	assert.Equal(t, 1, snap.Combo)
	assert.Equal(t, 1, snap.Matches)
	assert.Equal(t, ResultMatch, snap.LastResult)
	assert.Equal(t, 6, snap.LastDelta)
	assert.True(t, snap.IsFaceUp(p[0]))
	assert.True(t, snap.IsFaceUp(p[1]))
	assert.Empty(t, snap.Flipped)
}

func TestEngine_MismatchPenalty(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	a, b := mismatchOf(t, e.Snapshot())
	flipPair(t, e, s, a, b)

	snap := e.Snapshot()
	assert.Equal(t, 115, snap.TimeRemaining)
	assert.Zero(t, snap.Score)
	assert.Zero(t, snap.Combo)
	assert.Equal(t, ResultMismatch, snap.LastResult)
	assert.False(t, snap.IsFaceUp(a))
	assert.False(t, snap.IsFaceUp(b))
}

func TestEngine_ProcessingLock(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	a, b := mismatchOf(t, e.Snapshot())
	require.True(t, e.FlipTile(a))
	assert.False(t, e.FlipTile(a), "same tile twice")
	require.True(t, e.FlipTile(b))

	for _, tile := range e.Snapshot().Tiles {
		assert.False(t, e.FlipTile(tile.ID), "flip %d while resolving", tile.ID)
	}
	assert.False(t, e.FlipTile(999))
	assert.True(t, e.Snapshot().Resolving)
	assert.Len(t, e.Snapshot().Flipped, 2)

	s.Advance(DefaultResolveDelay)
	assert.False(t, e.Snapshot().Resolving)
	assert.True(t, e.FlipTile(a))
}

func TestEngine_MatchedTileCannotFlip(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	p := pairsOf(e.Snapshot())[0]
	flipPair(t, e, s, p[0], p[1])
	assert.False(t, e.FlipTile(p[0]))
}

func TestEngine_LevelAdvance(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)
	clearLevel(t, e, s)

	snap := e.Snapshot()
	assert.Equal(t, StatePlaying, snap.State)
	assert.Equal(t, 2, snap.Level())
	assert.Len(t, snap.Tiles, 8)
	assert.Equal(t, 110, snap.TimeRemaining)
	assert.Zero(t, snap.Combo)
	assert.Zero(t, snap.Matches)
	assert.Equal(t, 260, snap.Score)

	// the clock keeps running without a second countdown
	s.Advance(time.Second)
	assert.Less(t, e.TimeRemaining(), 110)
	assert.Equal(t, StatePlaying, e.State())
}

func TestEngine_ComboScoringAtLevelThree(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)
	clearLevel(t, e, s)
	clearLevel(t, e, s)
	require.Equal(t, 3, e.Level())
	require.Equal(t, 260+220+240+260+280, e.Score())

	pairs := pairsOf(e.Snapshot())
	flipPair(t, e, s, pairs[0][0], pairs[0][1])
	before := e.Score()
	flipPair(t, e, s, pairs[1][0], pairs[1][1])

	assert.Equal(t, 2, e.Combo())
	assert.Equal(t, 340, e.Score()-before)
}

func TestEngine_MismatchResetsCombo(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)
	clearLevel(t, e, s)

	pairs := pairsOf(e.Snapshot())
	flipPair(t, e, s, pairs[0][0], pairs[0][1])
	require.Equal(t, 1, e.Combo())

	a, b := mismatchOf(t, e.Snapshot())
	flipPair(t, e, s, a, b)
	require.Zero(t, e.Combo())

	before := e.Score()
	flipPair(t, e, s, pairs[1][0], pairs[1][1])
	assert.Equal(t, 220, e.Score()-before)
}

func TestEngine_MismatchNeverBelowZero(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	for i := 0; i < 100 && e.State() == StatePlaying; i++ {
		a, b := mismatchOf(t, e.Snapshot())
		flipPair(t, e, s, a, b)
		require.GreaterOrEqual(t, e.TimeRemaining(), 0)
	}

	assert.Equal(t, StateEnded, e.State())
	assert.Equal(t, OutcomeTimeout, e.Outcome())
	assert.Zero(t, e.TimeRemaining())
	assert.Zero(t, s.Pending())
}

func TestEngine_PenaltyToZeroEndsOnNextTick(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	s.Advance(116 * time.Second)
	require.Equal(t, 4, e.TimeRemaining())

	a, b := mismatchOf(t, e.Snapshot())
	flipPair(t, e, s, a, b)
	assert.Equal(t, StatePlaying, e.State())
	assert.Zero(t, e.TimeRemaining())

	s.Advance(300 * time.Millisecond)
	assert.Equal(t, StateEnded, e.State())
	assert.Equal(t, OutcomeTimeout, e.Outcome())
	assert.Zero(t, s.Pending())
}

func TestEngine_Timeout(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	s.Advance(119 * time.Second)
	require.Equal(t, StatePlaying, e.State())
	require.Equal(t, 1, e.TimeRemaining())

	s.Advance(time.Second)
	assert.Equal(t, StateEnded, e.State())
	assert.Equal(t, OutcomeTimeout, e.Outcome())
	assert.Zero(t, e.TimeRemaining())
	assert.Zero(t, s.Pending())

	s.Advance(time.Minute)
	assert.Zero(t, e.TimeRemaining())
}

func TestEngine_TimeoutDuringResolve(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)
	s.Advance(119*time.Second + 500*time.Millisecond)

	p := pairsOf(e.Snapshot())[0]
	require.True(t, e.FlipTile(p[0]))
	require.True(t, e.FlipTile(p[1]))
	s.Advance(DefaultResolveDelay)

	assert.Equal(t, StateEnded, e.State())
	assert.Zero(t, e.Score(), "resolution after timeout must not score")
}

func TestEngine_Victory(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	want := 0
	for level := 1; level <= MaxLevel; level++ {
		require.Equal(t, level, e.Level())
		for combo := 1; combo <= level*2; combo++ {
			want += MatchPoints(level, combo)
		}
		clearLevel(t, e, s)
	}

	assert.Equal(t, StateEnded, e.State())
	assert.Equal(t, OutcomeVictory, e.Outcome())
	assert.Equal(t, MaxLevel, e.Level())
	assert.Equal(t, want, e.Score())
	assert.Zero(t, s.Pending())

	require.True(t, e.Start(), "start after the game ended")
	assert.Equal(t, 1, e.Level())
	assert.Zero(t, e.Score())
}

func TestEngine_RestartStopsTimers(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)

	p := pairsOf(e.Snapshot())[0]
	require.True(t, e.FlipTile(p[0]))
	require.True(t, e.FlipTile(p[1]))
	require.Equal(t, 2, s.Pending())

	e.Restart()
	assert.Zero(t, s.Pending())

	s.Advance(time.Minute)
	snap := e.Snapshot()
	assert.Equal(t, StateSetup, snap.State)
	assert.Equal(t, 1, snap.Level())
	assert.Zero(t, snap.Score)
	assert.Equal(t, 120, snap.TimeRemaining)
	assert.Len(t, snap.Tiles, 4)
	for _, tile := range snap.Tiles {
		assert.False(t, tile.Matched)
	}
}

func TestEngine_RestartDuringCountdown(t *testing.T) {
	e, s := newTestEngine(t)
	require.True(t, e.Start())
	s.Advance(time.Second)

	e.Restart()
	assert.Zero(t, s.Pending())
	s.Advance(10 * time.Second)
	assert.Equal(t, StateSetup, e.State())
}

func TestEngine_Exit(t *testing.T) {
	e, s := newTestEngine(t)
	startPlaying(t, e, s)
	clearLevel(t, e, s)

	e.Exit()
	assert.Zero(t, s.Pending())
	snap := e.Snapshot()
	assert.Equal(t, StateSetup, snap.State)
	assert.Empty(t, snap.Tiles)
	assert.Zero(t, snap.Score)
	assert.Equal(t, 1, snap.Level())
}

func TestEngine_OnChange(t *testing.T) {
	s := NewManualScheduler()
	var n atomic.Int32
	e := NewEngine(Options{Scheduler: s, OnChange: func() { n.Add(1) }})

	e.Start()
	require.Equal(t, int32(1), n.Load())
	s.Advance(4 * time.Second)
	assert.Equal(t, int32(5), n.Load())
}

func TestEngine_RealSchedulerNoGhostTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := NewEngine(Options{
		ResolveDelay: 5 * time.Millisecond,
		TickInterval: 2 * time.Millisecond,
	})
	require.True(t, e.Start())
	require.Eventually(t, func() bool { return e.State() == StatePlaying }, 2*time.Second, time.Millisecond)

	a, b := mismatchOf(t, e.Snapshot())
	e.FlipTile(a)
	e.FlipTile(b)
	e.Restart()

	before := e.Snapshot()
	time.Sleep(20 * time.Millisecond)
	after := e.Snapshot()
	assert.Equal(t, StateSetup, after.State)
	assert.Equal(t, before.TimeRemaining, after.TimeRemaining)
	assert.Equal(t, before.Tiles, after.Tiles)
}
