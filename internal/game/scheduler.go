package game

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending single-shot or periodic callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped it;
	// false means it had already fired (single-shot) or been stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay or on a fixed period.
// Callbacks may run on any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// RealScheduler schedules callbacks on the wall clock.
type RealScheduler struct{}

// AfterFunc calls f once on its own goroutine after d.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Every calls f every d until the returned Timer is stopped.
func (RealScheduler) Every(d time.Duration, f func()) Timer {
	t := &periodic{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type periodic struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (p *periodic) Stop() bool {
	stopped := false
	p.once.Do(func() {
		p.ticker.Stop()
		close(p.done)
		stopped = true
	})
	return stopped
}

// ManualScheduler is a virtual clock. Nothing fires until Advance is called,
// and callbacks then run synchronously on the caller's goroutine in due-time
// order.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

// NewManualScheduler returns a virtual clock at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

type manualTimer struct {
	s      *ManualScheduler
	seq    int
	at     time.Duration
	period time.Duration
	f      func()
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.remove(t)
}

// AfterFunc registers f to run once d after the current virtual time.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.add(d, 0, f)
}

// Every registers f to run every d starting d after the current virtual time.
func (s *ManualScheduler) Every(d time.Duration, f func()) Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return s.add(d, d, f)
}

func (s *ManualScheduler) add(d, period time.Duration, f func()) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, seq: s.seq, at: s.now + max(d, 0), period: period, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *ManualScheduler) remove(t *manualTimer) bool {
	for i, x := range s.timers {
		if x == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Now returns the elapsed virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of timers that have not fired or been stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Advance moves the clock forward by d, firing every timer that comes due.
// Timers scheduled by a callback fire in the same call if they fall due
// before the new time.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.at
		if next.period > 0 {
			next.at += next.period
		} else {
			s.remove(next)
		}
		f := next.f
		s.mu.Unlock()
		f()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	due := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}
