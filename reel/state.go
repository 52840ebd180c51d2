package reel

import "fmt"

// State is the phase of a spin.
type State int

const (
	Idle State = iota
	Selecting
	Animating
	Revealing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Animating:
		return "animating"
	case Revealing:
		return "revealing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets State appear by name in JSON payloads and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for c := Idle; c <= Failed; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown reel state %q", text)
}
