package sim

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// State is a game-state machine node.
type State uint8

const (
	StateMenu State = iota + 1
	StateRunning
	StateGameOver
	StateExited
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateRunning:
		return "running"
	case StateGameOver:
		return "gameover"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for c := StateMenu; c <= StateExited; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("sim: unknown state %q", b)
}

// Tag is the screen tag carried by entities that belong to this state.
func (s State) Tag() ecs.Tag {
	return ecs.Tag(s)
}

// Event triggers a state transition.
type Event uint8

const (
	EventStart Event = iota + 1
	EventDefeat
	EventRetry
	EventExit
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventDefeat:
		return "defeat"
	case EventRetry:
		return "retry"
	case EventExit:
		return "exit"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

type edge struct {
	from State
	on   Event
}

var transitions = map[edge]State{
	{StateMenu, EventStart}:     StateRunning,
	{StateRunning, EventDefeat}: StateGameOver,
	{StateGameOver, EventRetry}: StateRunning,
	{StateGameOver, EventExit}:  StateExited,
}

// Next returns the state reached from s on ev, if that edge exists.
func Next(s State, ev Event) (State, bool) {
	to, ok := transitions[edge{s, ev}]
	return to, ok
}
