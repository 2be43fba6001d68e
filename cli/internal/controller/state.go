package controller

import "fmt"

// State is the phase of the dashboard reconciliation cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateAssigning
	StateRemoving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateAssigning:
		return "assigning"
	case StateRemoving:
		return "removing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
