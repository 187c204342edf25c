package session

import "github.com/sheikhrachel/go-life/model"

// State is the run state of a session
type State int32

const (
	// Stopped holds an empty generation 0 world and does not advance
	Stopped State = iota
	// Paused holds a world and does not advance
	Paused
	// Running advances the world on every tick
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	case Running:
		return "running"
	}
	return "unknown"
}

// EventKind says what produced an Event
type EventKind int

const (
	Toggled EventKind = iota
	Advanced
	Reset
	StateChanged
	SpeedChanged
)

func (k EventKind) String() string {
	switch k {
	case Toggled:
		return "toggled"
	case Advanced:
		return "advanced"
	case Reset:
		return "reset"
	case StateChanged:
		return "state changed"
	case SpeedChanged:
		return "speed changed"
	}
	return "unknown"
}

// Event describes one published change. Prev and Next are the worlds before
// and after; for StateChanged and SpeedChanged they are the same world.
type Event struct {
	Kind  EventKind
	Prev  model.World
	Next  model.World
	State State
}

// Observer is called on the session goroutine after every change. It must
// not submit commands to the same session, since the session waits for the
// observer to return before accepting the next command.
type Observer func(Event)
