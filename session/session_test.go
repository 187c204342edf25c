package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/simulator"
	"github.com/sheikhrachel/go-life/utils"
)

// start runs s until the test ends
func start(t *testing.T, s *Session) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	// wait until the loop accepts commands
	for !s.started.Load() {
		time.Sleep(time.Millisecond)
	}

	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	return ctx
}

func newSession(t *testing.T, rows, columns int, opts ...Option) *Session {
	t.Helper()
	s, err := New(model.Dimensions{Rows: rows, Columns: columns}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestNewSessionIsStoppedAndEmpty(t *testing.T) {
	s := newSession(t, 6, 4)
	if s.State() != Stopped {
		t.Fatalf("state = %v, want stopped", s.State())
	}
	w := s.Snapshot()
	if w.Generation != 0 || w.Grid.CountLivingCells() != 0 {
		t.Fatal("new session should hold an empty generation 0 world")
	}
	if s.Dimensions() != (model.Dimensions{Rows: 6, Columns: 4}) {
		t.Fatalf("dimensions = %v", s.Dimensions())
	}

	if _, err := New(model.Dimensions{Rows: -1, Columns: 4}); err == nil {
		t.Fatal("negative dimensions should fail")
	}
	if _, err := New(model.Dimensions{Rows: 2, Columns: 2}, WithInterval(0)); err == nil {
		t.Fatal("zero interval should fail")
	}
	other, _ := model.NewWorld(model.Dimensions{Rows: 3, Columns: 3})
	if _, err := New(model.Dimensions{Rows: 2, Columns: 2}, WithInitialWorld(other)); err == nil {
		t.Fatal("mismatched initial world should fail")
	}
}

func TestCommandsRequireRun(t *testing.T) {
	s := newSession(t, 3, 3)
	if err := s.Toggle(context.Background(), 1, 1); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Toggle before Run = %v, want ErrNotRunning", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	waitFor(t, "start", s.started.Load)
	cancel()
	<-done

	if err := s.Step(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Step after Run = %v, want ErrNotRunning", err)
	}
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("second Run should fail")
	}
}

func TestToggleKeepsGenerationAndCopiesGrid(t *testing.T) {
	s := newSession(t, 5, 5)
	ctx := start(t, s)

	before := s.Snapshot()
	if err := s.Toggle(ctx, 2, 3); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	after := s.Snapshot()
	if after.StateAt(2, 3) != model.Live {
		t.Fatal("cell should be live after toggle")
	}
	if after.Generation != 0 {
		t.Fatalf("generation = %d, want 0", after.Generation)
	}
	if before.StateAt(2, 3) != model.Dead {
		t.Fatal("previously published world was mutated")
	}
	if s.State() != Stopped {
		t.Fatalf("toggle changed state to %v", s.State())
	}

	if err := s.Toggle(ctx, -1, 0); err != nil {
		t.Fatalf("Toggle out of range: %v", err)
	}
	if err := s.Toggle(ctx, 5, 0); err != nil {
		t.Fatalf("Toggle out of range: %v", err)
	}
	if !s.Snapshot().Grid.Equal(after.Grid) {
		t.Fatal("out of range toggles changed the world")
	}
}

func TestStepAdvancesOneGeneration(t *testing.T) {
	s := newSession(t, 5, 5)
	ctx := start(t, s)

	for _, column := range []int{1, 2, 3} {
		if err := s.Toggle(ctx, 2, column); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
	}
	if err := s.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}

	w := s.Snapshot()
	if w.Generation != 1 {
		t.Fatalf("generation = %d, want 1", w.Generation)
	}
	for _, row := range []int{1, 2, 3} {
		if w.StateAt(row, 2) != model.Live {
			t.Fatalf("blinker should be vertical, (%d,2) dead", row)
		}
	}
	if s.State() != Paused {
		t.Fatalf("step from stopped should pause, got %v", s.State())
	}
}

func TestRunningAdvancesAndPauseHalts(t *testing.T) {
	s := newSession(t, 8, 8, WithInterval(5*time.Millisecond), WithSimulator(simulator.New(simulator.WithBoundedRegion(true))))
	ctx := start(t, s)

	if err := s.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if s.State() != Running {
		t.Fatalf("state = %v, want running", s.State())
	}
	waitFor(t, "three generations", func() bool { return s.Snapshot().Generation >= 3 })

	if err := s.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	paused := s.Snapshot().Generation
	time.Sleep(30 * time.Millisecond)
	if got := s.Snapshot().Generation; got != paused {
		t.Fatalf("generation moved from %d to %d while paused", paused, got)
	}

	if err := s.TogglePlay(ctx); err != nil {
		t.Fatalf("TogglePlay: %v", err)
	}
	waitFor(t, "resumed generations", func() bool { return s.Snapshot().Generation > paused })
	if err := s.TogglePlay(ctx); err != nil {
		t.Fatalf("TogglePlay: %v", err)
	}
	if s.State() != Paused {
		t.Fatalf("state = %v, want paused", s.State())
	}
}

func TestStopResets(t *testing.T) {
	s := newSession(t, 4, 4)
	ctx := start(t, s)

	if err := s.Toggle(ctx, 1, 1); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if err := s.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	w := s.Snapshot()
	if s.State() != Stopped {
		t.Fatalf("state = %v, want stopped", s.State())
	}
	if w.Generation != 0 || w.Grid.CountLivingCells() != 0 {
		t.Fatal("stop should reset to an empty generation 0 world")
	}
	if w.Dimensions() != s.Dimensions() {
		t.Fatalf("dimensions changed to %v", w.Dimensions())
	}
}

func TestInitialWorldIsCopied(t *testing.T) {
	initial, _ := model.NewWorld(model.Dimensions{Rows: 6, Columns: 6})
	initial.Grid.PlaceBlock(2, 2)
	initial.Generation = 7

	s := newSession(t, 6, 6, WithInitialWorld(initial))
	initial.Grid.Toggle(0, 0)

	w := s.Snapshot()
	if w.Generation != 7 || w.Grid.CountLivingCells() != 4 {
		t.Fatalf("snapshot generation %d with %d live cells", w.Generation, w.Grid.CountLivingCells())
	}
}

func TestSpeed(t *testing.T) {
	s := newSession(t, 2, 2, WithInterval(time.Second), WithSpeed(2))
	if s.Speed() != 2 || s.Interval() != 500*time.Millisecond {
		t.Fatalf("speed %v interval %v", s.Speed(), s.Interval())
	}
	ctx := start(t, s)

	tests := []struct {
		in, want float64
	}{
		{4, 4},
		{100, utils.MaxSpeed},
		{0, utils.MinSpeed},
	}
	for _, tt := range tests {
		if err := s.SetSpeed(ctx, tt.in); err != nil {
			t.Fatalf("SetSpeed: %v", err)
		}
		if s.Speed() != tt.want {
			t.Fatalf("SetSpeed(%v) -> %v, want %v", tt.in, s.Speed(), tt.want)
		}
	}
}

func TestObserverSeesEveryChange(t *testing.T) {
	var (
		mu     sync.Mutex
		events []Event
	)
	s := newSession(t, 5, 5, WithObserver(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}))
	ctx := start(t, s)

	steps := []func(context.Context) error{
		func(ctx context.Context) error { return s.Toggle(ctx, 1, 1) },
		s.Step,
		s.Stop,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			t.Fatalf("command: %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []EventKind{Toggled, Advanced, StateChanged, StateChanged, Reset}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Fatalf("event %d = %v, want %v", i, events[i].Kind, kind)
		}
	}
	if events[1].Prev.Generation != 0 || events[1].Next.Generation != 1 {
		t.Fatal("advanced event should carry generations 0 -> 1")
	}
	if events[0].Prev.StateAt(1, 1) != model.Dead || events[0].Next.StateAt(1, 1) != model.Live {
		t.Fatal("toggle event should carry distinct before/after worlds")
	}
}

func TestConcurrentReadersDuringRun(t *testing.T) {
	s := newSession(t, 20, 20, WithInterval(time.Millisecond))
	ctx := start(t, s)

	for i := range 20 {
		if err := s.Toggle(ctx, i, (i*7)%20); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
	}
	if err := s.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				w := s.Snapshot()
				_ = w.Grid.CountLivingCells()
				if w.Dimensions() != s.Dimensions() {
					t.Errorf("snapshot dimensions %v", w.Dimensions())
					return
				}
			}
		}()
	}
	for i := range 20 {
		if err := s.Toggle(ctx, i, i); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
	}
	wg.Wait()
}
