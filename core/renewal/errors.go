package renewal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRenewalCommand = errors.New("renewal command failed")
	ErrEmptyCommand   = errors.New("renewal command is empty")
	ErrFatalRestart   = errors.New("restart after renewal failed")
	ErrStartup        = errors.New("initial server start failed")
	ErrAlreadyRunning = errors.New("supervisor already running")
	ErrRenewalHalted  = errors.New("automatic renewal halted")
	ErrNilPairFactory = errors.New("pair factory is nil")
	ErrNilRunner      = errors.New("renewal runner is nil")
)

// CommandError reports a renewal command that ran but did not succeed.
// It matches ErrRenewalCommand and the underlying cause.
type CommandError struct {
	Command []string
	Outcome Outcome
	Err     error
}

func (e *CommandError) Error() string {
	name := strings.Join(e.Command, " ")
	if e.Outcome.ExitCode >= 0 {
		return fmt.Sprintf("renewal command %q exited with code %d", name, e.Outcome.ExitCode)
	}
	return fmt.Sprintf("renewal command %q failed: %v", name, e.Err)
}

func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRenewalCommand}
	}
	return []error{ErrRenewalCommand, e.Err}
}
