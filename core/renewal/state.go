package renewal

import "strconv"

// State is a supervisor lifecycle state.
type State int32

const (
	// StateIdle means the pair is serving and the next cycle is armed.
	StateIdle State = iota
	// StateReleasing means the current pair is being stopped.
	StateReleasing
	// StateRenewing means the renewal command is running and nothing is bound.
	StateRenewing
	// StateRestarting means a fresh pair is being started.
	StateRestarting
	// StateHalted means the pair is serving but no further cycle will run.
	StateHalted
	// StateFatal means a restart failed and the process is terminating.
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReleasing:
		return "releasing"
	case StateRenewing:
		return "renewing"
	case StateRestarting:
		return "restarting"
	case StateHalted:
		return "halted"
	case StateFatal:
		return "fatal"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Serving reports whether a pair is expected to be bound in this state.
func (s State) Serving() bool {
	return s == StateIdle || s == StateHalted
}
