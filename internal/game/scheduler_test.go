package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestManualScheduler_FiresInOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []string
	s.AfterFunc(3*time.Second, func() { got = append(got, "c") })
	s.AfterFunc(time.Second, func() { got = append(got, "a") })
	s.AfterFunc(time.Second, func() { got = append(got, "b") })

	s.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, s.Pending())

	s.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Zero(t, s.Pending())
	assert.Equal(t, 3*time.Second, s.Now())
}

func TestManualScheduler_Every(t *testing.T) {
	s := NewManualScheduler()
	n := 0
	tm := s.Every(time.Second, func() { n++ })

	s.Advance(3500 * time.Millisecond)
	assert.Equal(t, 3, n)

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	s.Advance(time.Minute)
	assert.Equal(t, 3, n)
}

func TestManualScheduler_CallbackSchedulesWithinAdvance(t *testing.T) {
	s := NewManualScheduler()
	fired := false
	s.AfterFunc(time.Second, func() {
		s.AfterFunc(time.Second, func() { fired = true })
	})
	s.Advance(2 * time.Second)
	assert.True(t, fired)
}

func TestManualScheduler_StopFromCallback(t *testing.T) {
	s := NewManualScheduler()
	n := 0
	var tm Timer
	tm = s.Every(time.Second, func() {
		n++
		if n == 2 {
			tm.Stop()
		}
	})
	s.Advance(10 * time.Second)
	assert.Equal(t, 2, n)
	assert.Zero(t, s.Pending())
}

func TestRealScheduler_EveryStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	var n atomic.Int32
	tm := RealScheduler{}.Every(time.Millisecond, func() { n.Add(1) })
	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	require.True(t, tm.Stop())
	require.False(t, tm.Stop())
}

func TestRealScheduler_AfterFuncStop(t *testing.T) {
	var fired atomic.Bool
	tm := RealScheduler{}.AfterFunc(time.Hour, func() { fired.Store(true) })
	require.True(t, tm.Stop())
	assert.False(t, fired.Load())
}
