package renewal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// commandWaitDelay bounds how long Wait blocks on pipes held open by
// grandchildren after the command exits or is killed.
const commandWaitDelay = 10 * time.Second

// Runner executes one renewal attempt.
type Runner interface {
	Run(ctx context.Context) (Outcome, error)
}

// Outcome is the captured result of one renewal attempt.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success reports whether the command exited with code 0.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// CommandRunner runs an external program as the renewal step.
type CommandRunner struct {
	path string
	args []string
}

// NewCommandRunner creates a runner for argv. The program is resolved through
// PATH on every run.
func NewCommandRunner(argv []string) (*CommandRunner, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}
	return &CommandRunner{
		path: argv[0],
		args: append([]string(nil), argv[1:]...),
	}, nil
}

// Argv returns the full command line.
func (r *CommandRunner) Argv() []string {
	return append([]string{r.path}, r.args...)
}

// Run executes the command and waits for it, capturing stdout and stderr in
// full. A non-zero exit returns a *CommandError with the outcome attached.
// A command that cannot be started reports exit code -1.
func (r *CommandRunner) Run(ctx context.Context) (Outcome, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.path, r.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = commandWaitDelay

	start := time.Now()
	err := cmd.Run()

	out := Outcome{
		ExitCode: -1,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		return out, nil
	}

	if cmd.ProcessState == nil {
		return out, &CommandError{
			Command: r.Argv(),
			Outcome: out,
			Err:     fmt.Errorf("start %s: %w", r.path, err),
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Join(err, ctxErr)
	}
	return out, &CommandError{Command: r.Argv(), Outcome: out, Err: err}
}
