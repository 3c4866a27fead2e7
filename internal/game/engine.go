package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the engine's lifecycle phase.
type State int

const (
	StateSetup State = iota
	StateCountdown
	StatePlaying
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StateCountdown:
		return "countdown"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Outcome records why a game ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeTimeout
	OutcomeVictory
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTimeout:
		return "timeout"
	case OutcomeVictory:
		return "victory"
	}
	return "none"
}

// Result is the verdict of the most recent pair resolution.
type Result int

const (
	ResultNone Result = iota
	ResultMatch
	ResultMismatch
)

// CountdownFrom is the first number shown before play begins.
const CountdownFrom = 3

// Default timings.
const (
	DefaultResolveDelay = 700 * time.Millisecond
	DefaultTickInterval = time.Second
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Scheduler    Scheduler
	ResolveDelay time.Duration
	TickInterval time.Duration
	Rand         *rand.Rand
	Logger       *zap.Logger
	// OnChange is called after every state change, outside the engine lock.
	OnChange func()
}

// Snapshot is a point-in-time copy of the game state.
type Snapshot struct {
	State         State
	Outcome       Outcome
	Settings      Settings
	Tiles         []Tile
	Flipped       []int
	Resolving     bool
	Score         int
	TimeRemaining int
	Combo         int
	Matches       int
	Countdown     int
	LastResult    Result
	LastDelta     int // seconds added (match) or removed (mismatch) by LastResult
}

// Level returns the snapshot's level.
func (s Snapshot) Level() int { return s.Settings.Level }

// IsFaceUp reports whether tile id is matched or currently flipped.
func (s Snapshot) IsFaceUp(id int) bool {
	if slices.Contains(s.Flipped, id) {
		return true
	}
	for _, t := range s.Tiles {
		if t.ID == id {
			return t.Matched
		}
	}
	return false
}

// Engine runs one game session. All methods are safe for concurrent use.
type Engine struct {
	sched        Scheduler
	resolveDelay time.Duration
	tickInterval time.Duration
	log          *zap.Logger
	onChange     func()

	mu            sync.Mutex
	rng           *rand.Rand
	state         State
	outcome       Outcome
	settings      Settings
	tiles         []Tile
	flipped       []int
	resolving     bool
	score         int
	timeRemaining int
	combo         int
	matches       int
	countdown     int
	lastResult    Result
	lastDelta     int

	countdownTimer Timer
	ticker         Timer
	resolveTimer   Timer
	// gen is bumped whenever timers are torn down; callbacks carrying an
	// older generation return without touching state.
	gen uint64
}

// NewEngine returns an engine in the setup state with a level 1 board dealt.
func NewEngine(opts Options) *Engine {
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if opts.ResolveDelay <= 0 {
		opts.ResolveDelay = DefaultResolveDelay
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	e := &Engine{
		sched:        opts.Scheduler,
		resolveDelay: opts.ResolveDelay,
		tickInterval: opts.TickInterval,
		rng:          opts.Rand,
		log:          opts.Logger,
		onChange:     opts.OnChange,
	}
	e.resetLocked()
	e.dealLocked(1)
	return e
}

// Start begins a new game at level 1 with a countdown. It is ignored while a
// game is already counting down or in play.
func (e *Engine) Start() bool {
	e.mu.Lock()
	if e.state != StateSetup && e.state != StateEnded {
		e.mu.Unlock()
		return false
	}
	e.stopTimersLocked()
	e.resetLocked()
	e.dealLocked(1)
	e.state = StateCountdown
	e.countdown = CountdownFrom
	gen := e.gen
	e.countdownTimer = e.sched.Every(e.tickInterval, func() { e.countdownTick(gen) })
	e.log.Debug("game started", zap.Int("pairs", e.settings.Pairs))
	e.mu.Unlock()

	e.notify()
	return true
}

// FlipTile turns tile id face up. It reports whether the flip was accepted:
// flips are ignored outside play, while a pair is resolving, for matched or
// already flipped tiles, and for unknown ids. The second flip of a pair
// schedules its resolution after the resolve delay.
func (e *Engine) FlipTile(id int) bool {
	e.mu.Lock()
	if e.state != StatePlaying || e.resolving || len(e.flipped) >= 2 {
		e.mu.Unlock()
		return false
	}
	i := e.indexLocked(id)
	if i < 0 || e.tiles[i].Matched || slices.Contains(e.flipped, id) {
		e.mu.Unlock()
		return false
	}

	e.flipped = append(e.flipped, id)
	if len(e.flipped) == 2 {
		e.resolving = true
		gen := e.gen
		e.resolveTimer = e.sched.AfterFunc(e.resolveDelay, func() { e.resolve(gen) })
	}
	e.mu.Unlock()

	e.notify()
	return true
}

// Restart stops all timers and returns to setup with a fresh level 1 board.
func (e *Engine) Restart() {
	e.mu.Lock()
	e.stopTimersLocked()
	e.resetLocked()
	e.dealLocked(1)
	e.log.Debug("game restarted")
	e.mu.Unlock()

	e.notify()
}

// Exit stops all timers and returns to setup with no board.
func (e *Engine) Exit() {
	e.mu.Lock()
	e.stopTimersLocked()
	e.resetLocked()
	e.settings = LevelSettings(1)
	e.tiles = nil
	e.log.Debug("game exited")
	e.mu.Unlock()

	e.notify()
}

// State returns the current phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Outcome returns why the last game ended, or OutcomeNone.
func (e *Engine) Outcome() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

func (e *Engine) TimeRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeRemaining
}

func (e *Engine) Level() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Level
}

// Matches returns the pairs matched on the current level.
func (e *Engine) Matches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches
}

func (e *Engine) Combo() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.combo
}

// Snapshot returns a copy of the full game state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:         e.state,
		Outcome:       e.outcome,
		Settings:      e.settings,
		Tiles:         slices.Clone(e.tiles),
		Flipped:       slices.Clone(e.flipped),
		Resolving:     e.resolving,
		Score:         e.score,
		TimeRemaining: e.timeRemaining,
		Combo:         e.combo,
		Matches:       e.matches,
		Countdown:     e.countdown,
		LastResult:    e.lastResult,
		LastDelta:     e.lastDelta,
	}
}

func (e *Engine) countdownTick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state != StateCountdown {
		e.mu.Unlock()
		return
	}
	if e.countdown > 0 {
		e.countdown--
	} else {
		stopTimer(&e.countdownTimer)
		e.state = StatePlaying
		e.ticker = e.sched.Every(e.tickInterval, func() { e.tick(gen) })
		e.log.Debug("play started", zap.Int("level", e.settings.Level))
	}
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.timeRemaining = max(0, e.timeRemaining-1)
	if e.timeRemaining == 0 {
		e.endLocked(OutcomeTimeout)
	}
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) resolve(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state != StatePlaying || len(e.flipped) != 2 {
		e.mu.Unlock()
		return
	}
	e.resolveTimer = nil
	a, b := e.indexLocked(e.flipped[0]), e.indexLocked(e.flipped[1])
	e.flipped = e.flipped[:0]
	e.resolving = false

	if e.tiles[a].Symbol == e.tiles[b].Symbol {
		e.tiles[a].Matched = true
		e.tiles[b].Matched = true
		e.combo++
		e.matches++
		e.score += MatchPoints(e.settings.Level, e.combo)
		e.timeRemaining += e.settings.BonusSeconds
		e.lastResult, e.lastDelta = ResultMatch, e.settings.BonusSeconds

		if e.matches == e.settings.Pairs {
			e.levelClearedLocked()
		}
	} else {
		e.combo = 0
		e.timeRemaining = max(0, e.timeRemaining-e.settings.PenaltySeconds)
		// only the ticker ends the game; a penalty down to zero waits for it
		e.lastResult, e.lastDelta = ResultMismatch, e.settings.PenaltySeconds
	}
	e.mu.Unlock()

	e.notify()
}

// levelClearedLocked advances to the next level with a fresh board and clock,
// keeping the ticker running, or ends the game after the last level.
func (e *Engine) levelClearedLocked() {
	if e.settings.Level >= MaxLevel {
		e.endLocked(OutcomeVictory)
		return
	}
	next := e.settings.Level + 1
	e.log.Debug("level cleared",
		zap.Int("level", e.settings.Level),
		zap.Int("score", e.score),
		zap.Int("next", next))
	e.dealLocked(next)
	e.combo = 0
	e.matches = 0
}

func (e *Engine) endLocked(o Outcome) {
	e.stopTimersLocked()
	e.state = StateEnded
	e.outcome = o
	e.flipped = nil
	e.resolving = false
	e.log.Info("game ended",
		zap.Stringer("outcome", o),
		zap.Int("level", e.settings.Level),
		zap.Int("score", e.score))
}

// dealLocked loads level's settings, a new board and a full clock.
func (e *Engine) dealLocked(level int) {
	e.settings = LevelSettings(level)
	e.tiles = NewBoard(e.settings.Pairs, e.rng)
	e.flipped = nil
	e.resolving = false
	e.timeRemaining = e.settings.TimeLimit
}

func (e *Engine) resetLocked() {
	e.state = StateSetup
	e.outcome = OutcomeNone
	e.score = 0
	e.combo = 0
	e.matches = 0
	e.countdown = 0
	e.timeRemaining = 0
	e.flipped = nil
	e.resolving = false
	e.lastResult, e.lastDelta = ResultNone, 0
}

func (e *Engine) stopTimersLocked() {
	stopTimer(&e.countdownTimer)
	stopTimer(&e.ticker)
	stopTimer(&e.resolveTimer)
	e.gen++
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (e *Engine) indexLocked(id int) int {
	return slices.IndexFunc(e.tiles, func(t Tile) bool { return t.ID == id })
}

func (e *Engine) notify() {
	if e.onChange != nil {
		e.onChange()
	}
}
