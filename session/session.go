// Package session owns the current world of an interactive game. One goroutine,
// started by Run, applies every toggle, step and state change in order and
// publishes the result with a single atomic swap, so readers calling Snapshot
// from any goroutine always see a complete world.
package session

import (
	"context"
	"io"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/simulator"
	"github.com/sheikhrachel/go-life/utils"
)

// ErrNotRunning is returned by commands submitted while Run is not active
var ErrNotRunning = errors.New("session: not running")

// Session holds the current world and advances it on a ticker while Running
type Session struct {
	sim       simulator.Simulator
	dims      model.Dimensions
	interval  time.Duration
	logger    *log.Logger
	observers []Observer

	world atomic.Pointer[model.World]
	state atomic.Int32
	speed atomic.Uint64 // math.Float64bits of the speed multiplier

	commands chan command
	started  atomic.Bool
	done     chan struct{}

	// owner goroutine only
	ticker *time.Ticker
}

type command struct {
	// apply runs on the owner goroutine and reports whether the tick
	// schedule has to be rebuilt
	apply func() bool
	ack   chan struct{}
}

// Option configures a Session
type Option func(*Session) error

// WithSimulator sets the simulator used for steps and toggles
func WithSimulator(sim simulator.Simulator) Option {
	return func(s *Session) error {
		s.sim = sim
		return nil
	}
}

// WithInterval sets the time between generations at speed 1
func WithInterval(interval time.Duration) Option {
	return func(s *Session) error {
		if interval <= 0 {
			return errors.Errorf("[WithInterval] interval must be positive: %v", interval)
		}
		s.interval = interval
		return nil
	}
}

// WithSpeed sets the initial speed multiplier
func WithSpeed(speed float64) Option {
	return func(s *Session) error {
		s.speed.Store(math.Float64bits(clampSpeed(speed)))
		return nil
	}
}

// WithInitialWorld starts the session from w instead of an empty world. A
// later Stop still resets to an empty generation 0 world.
func WithInitialWorld(w model.World) Option {
	return func(s *Session) error {
		if w.Grid == nil || w.Dimensions() != s.dims {
			return errors.Errorf("[WithInitialWorld] world does not match session dimensions %v", s.dims)
		}
		initial := w.Clone()
		s.world.Store(&initial)
		return nil
	}
}

// WithLogger sets the logger for state transitions
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithObserver registers a callback for every published change
func WithObserver(o Observer) Option {
	return func(s *Session) error {
		if o != nil {
			s.observers = append(s.observers, o)
		}
		return nil
	}
}

// New creates a Stopped session with a generation 0 world of the given dimensions
func New(dims model.Dimensions, opts ...Option) (*Session, error) {
	world, err := model.NewWorld(dims)
	if err != nil {
		return nil, errors.Wrap(err, "[New] failed to create world")
	}

	s := &Session{
		sim:      simulator.New(),
		dims:     dims,
		interval: time.Second,
		logger:   log.New(io.Discard, "", 0),
		commands: make(chan command),
		done:     make(chan struct{}),
	}
	s.world.Store(&world)
	s.state.Store(int32(Stopped))
	s.speed.Store(math.Float64bits(1))

	for _, opt := range opts {
		if err = opt(s); err != nil {
			return nil, errors.Wrap(err, "[New] invalid option")
		}
	}
	return s, nil
}

// Snapshot returns the current world. The returned grid is never mutated by
// the session afterwards.
func (s *Session) Snapshot() model.World {
	return *s.world.Load()
}

// State returns the current run state
func (s *Session) State() State {
	return State(s.state.Load())
}

// Dimensions returns the fixed size of the session's worlds
func (s *Session) Dimensions() model.Dimensions {
	return s.dims
}

// Speed returns the current speed multiplier
func (s *Session) Speed() float64 {
	return math.Float64frombits(s.speed.Load())
}

// Interval returns the time between generations at the current speed
func (s *Session) Interval() time.Duration {
	return time.Duration(float64(s.interval) / s.Speed())
}

// Run processes commands and ticks until ctx is cancelled. It may be called
// once per session. A step already in progress when ctx is cancelled
// completes before Run returns.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("[Run] session already started")
	}
	defer close(s.done)

	s.logger.Printf("session started: %v grid, state %v", s.dims, s.State())
	s.reschedule()
	defer s.stopTicker()

	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("session stopped at generation %d", s.Snapshot().Generation)
			return nil
		case <-s.tick():
			s.advance()
		case cmd := <-s.commands:
			if cmd.apply() {
				s.reschedule()
			}
			close(cmd.ack)
		}
	}
}

// Toggle flips the cell at (row, column). Out of range coordinates are ignored.
func (s *Session) Toggle(ctx context.Context, row, column int) error {
	return s.submit(ctx, func() bool {
		s.toggle(row, column)
		return false
	})
}

// Step advances one generation regardless of the run state. A Stopped
// session becomes Paused.
func (s *Session) Step(ctx context.Context) error {
	return s.submit(ctx, func() bool {
		s.advance()
		if s.State() == Stopped {
			s.setState(Paused)
			return true
		}
		return false
	})
}

// Pause stops scheduled generations without discarding the world
func (s *Session) Pause(ctx context.Context) error {
	return s.submit(ctx, func() bool {
		return s.setState(Paused)
	})
}

// Resume starts advancing on every tick
func (s *Session) Resume(ctx context.Context) error {
	return s.submit(ctx, func() bool {
		return s.setState(Running)
	})
}

// TogglePlay pauses a Running session and resumes any other
func (s *Session) TogglePlay(ctx context.Context) error {
	return s.submit(ctx, func() bool {
		if s.State() == Running {
			return s.setState(Paused)
		}
		return s.setState(Running)
	})
}

// Stop discards the world and replaces it with an empty generation 0 world
func (s *Session) Stop(ctx context.Context) error {
	return s.submit(ctx, func() bool {
		changed := s.setState(Stopped)
		s.reset()
		return changed
	})
}

// SetSpeed changes the speed multiplier, clamped to [utils.MinSpeed, utils.MaxSpeed]
func (s *Session) SetSpeed(ctx context.Context, speed float64) error {
	return s.submit(ctx, func() bool {
		speed = clampSpeed(speed)
		if speed == s.Speed() {
			return false
		}
		s.speed.Store(math.Float64bits(speed))
		s.logger.Printf("speed set to x%.2f (%v per generation)", speed, s.Interval())
		s.notify(Event{Kind: SpeedChanged, Prev: s.Snapshot(), Next: s.Snapshot(), State: s.State()})
		return true
	})
}

func (s *Session) submit(ctx context.Context, apply func() bool) error {
	if !s.started.Load() {
		return ErrNotRunning
	}
	cmd := command{apply: apply, ack: make(chan struct{})}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return ErrNotRunning
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "[submit] command not delivered")
	}
	<-cmd.ack
	return nil
}

func (s *Session) toggle(row, column int) {
	if !s.dims.Contains(row, column) {
		return
	}
	prev := s.Snapshot()
	// Published grids are read concurrently, so toggle a private copy.
	next := s.sim.ToggleCell(prev.Clone(), row, column)
	s.publish(Toggled, prev, next)
}

func (s *Session) advance() {
	prev := s.Snapshot()
	s.publish(Advanced, prev, s.sim.Advance(prev))
}

func (s *Session) reset() {
	prev := s.Snapshot()
	next, err := model.NewWorld(s.dims)
	if err != nil {
		// dims were validated by New
		panic(err)
	}
	s.logger.Printf("world reset at generation %d", prev.Generation)
	s.publish(Reset, prev, next)
}

func (s *Session) publish(kind EventKind, prev, next model.World) {
	s.world.Store(&next)
	s.notify(Event{Kind: kind, Prev: prev, Next: next, State: s.State()})
}

// setState reports whether the state changed
func (s *Session) setState(state State) bool {
	prev := State(s.state.Swap(int32(state)))
	if prev == state {
		return false
	}
	s.logger.Printf("state %v -> %v", prev, state)
	world := s.Snapshot()
	s.notify(Event{Kind: StateChanged, Prev: world, Next: world, State: state})
	return true
}

func (s *Session) notify(e Event) {
	for _, o := range s.observers {
		o(e)
	}
}

func (s *Session) reschedule() {
	s.stopTicker()
	if s.State() == Running {
		s.ticker = time.NewTicker(s.Interval())
	}
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// tick returns nil while not Running, which blocks forever in select
func (s *Session) tick() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

func clampSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		return 1
	}
	return min(max(speed, utils.MinSpeed), utils.MaxSpeed)
}
