package renewal_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/core/renewal"
)

const waitFor = 5 * time.Second

func runAsync(ctx context.Context, sup *renewal.Supervisor) <-chan error {
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()
	return done
}

func awaitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(waitFor):
		t.Fatal("supervisor did not return")
		return nil
	}
}

// assertCycles checks the event log is an initial start, whole stop/run/start
// cycles, and a final stop.
func assertCycles(t *testing.T, events []string) {
	t.Helper()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "start", events[0])
	assert.Equal(t, "stop", events[len(events)-1])

	body := events[1 : len(events)-1]
	require.Zero(t, len(body)%3, "events: %v", events)
	for i := 0; i < len(body); i += 3 {
		assert.Equal(t, []string{"stop", "run", "start"}, body[i:i+3], "cycle %d in %v", i/3, events)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	f := &fakeFactory{rec: &recorder{}}

	_, err := renewal.New(nil, &fakeRunner{})
	assert.ErrorIs(t, err, renewal.ErrNilPairFactory)

	_, err = renewal.New(f.build, nil)
	assert.ErrorIs(t, err, renewal.ErrNilRunner)

	sup, err := renewal.New(f.build, &fakeRunner{})
	require.NoError(t, err)
	assert.Equal(t, renewal.StateIdle, sup.State())
	assert.NoError(t, sup.Err())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	f := &fakeFactory{rec: &recorder{}}

	cfg := renewal.DefaultConfig()
	cfg.Command = nil
	_, err := renewal.NewFromConfig(cfg, f.build)
	assert.ErrorIs(t, err, renewal.ErrEmptyCommand)

	sup, err := renewal.NewFromConfig(renewal.DefaultConfig(), f.build)
	require.NoError(t, err)
	assert.NotNil(t, sup)
}

func TestSupervisor_SuccessfulCycles(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	f := &fakeFactory{rec: rec}
	runner := &fakeRunner{rec: rec}

	sup, err := renewal.New(f.build, runner, renewal.WithInterval(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)

	require.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, waitFor, 5*time.Millisecond)
	cancel()
	require.NoError(t, awaitRun(t, done))

	assertCycles(t, rec.snapshot())
	assert.True(t, f.last().stopped.Load(), "pair is stopped on shutdown")
	assert.NoError(t, sup.Err())
}

func TestSupervisor_CyclesNeverOverlap(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	f := &fakeFactory{rec: rec}
	// The command outlasts the interval many times over.
	runner := &fakeRunner{rec: rec, delay: 40 * time.Millisecond}

	sup, err := renewal.New(f.build, runner, renewal.WithInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)

	require.Eventually(t, func() bool { return runner.calls.Load() >= 4 }, waitFor, 5*time.Millisecond)
	cancel()
	require.NoError(t, awaitRun(t, done))

	assert.False(t, runner.overlap.Load(), "two renewal commands ran at once")
	assertCycles(t, rec.snapshot())
}

func TestSupervisor_CommandFailureHaltsScheduling(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	f := &fakeFactory{rec: rec}
	runner := &fakeRunner{
		rec: rec,
		out: renewal.Outcome{ExitCode: 1, Stderr: []byte("challenge failed\n")},
		err: &renewal.CommandError{Command: []string{"certbot", "renew"}, Outcome: renewal.Outcome{ExitCode: 1}},
	}
	logs := &syncBuffer{}

	sup, err := renewal.New(f.build, runner,
		renewal.WithInterval(10*time.Millisecond),
		renewal.WithLogger(logger.New(logger.WithOutput(logs), logger.WithTextFormatter())),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)

	require.Eventually(t, func() bool { return sup.State() == renewal.StateHalted }, waitFor, 5*time.Millisecond)

	// Many intervals pass without another cycle.
	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 1, runner.calls.Load())
	assert.Equal(t, 2, f.count(), "servers are rebound after the failed command")

	serving := f.last()
	assert.True(t, serving.started.Load())
	assert.False(t, serving.stopped.Load())

	assert.ErrorIs(t, sup.Err(), renewal.ErrRenewalHalted)
	assert.ErrorIs(t, sup.Err(), renewal.ErrRenewalCommand)
	assert.Contains(t, logs.String(), "renewal halted; automatic renewal will not be scheduled again")

	cancel()
	require.NoError(t, awaitRun(t, done))
	assert.True(t, serving.stopped.Load())
	assert.Equal(t, []string{"start", "stop", "run", "start", "stop"}, rec.snapshot())
}

func TestSupervisor_ResumeOnFailure(t *testing.T) {
	t.Parallel()

	f := &fakeFactory{rec: &recorder{}}
	runner := &fakeRunner{err: &renewal.CommandError{Outcome: renewal.Outcome{ExitCode: 2}}}

	sup, err := renewal.New(f.build, runner,
		renewal.WithInterval(10*time.Millisecond),
		renewal.WithResumeOnFailure(true),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)

	require.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, waitFor, 5*time.Millisecond)
	cancel()
	require.NoError(t, awaitRun(t, done))

	assert.NotEqual(t, renewal.StateHalted, sup.State())
	assert.ErrorIs(t, sup.Err(), renewal.ErrRenewalCommand)
	assert.NotErrorIs(t, sup.Err(), renewal.ErrRenewalHalted)
}

func TestSupervisor_RestartFailureIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cmdErr error
	}{
		{name: "after successful renewal"},
		{name: "after failed renewal", cmdErr: &renewal.CommandError{Outcome: renewal.Outcome{ExitCode: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeFactory{rec: &recorder{}, failAt: 2}
			runner := &fakeRunner{err: tt.cmdErr}
			exit := &exitRecorder{}

			sup, err := renewal.New(f.build, runner,
				renewal.WithInterval(10*time.Millisecond),
				renewal.WithExitFunc(exit.exit),
			)
			require.NoError(t, err)

			err = awaitRun(t, runAsync(context.Background(), sup))

			require.Error(t, err)
			assert.ErrorIs(t, err, renewal.ErrFatalRestart)
			assert.ErrorIs(t, err, errBindFailed)
			assert.True(t, exit.called.Load(), "process must terminate")
			assert.EqualValues(t, 1, exit.code.Load())
			assert.Equal(t, renewal.StateFatal, sup.State())
			assert.EqualValues(t, 1, runner.calls.Load(), "no further cycle after a failed restart")
		})
	}
}

func TestSupervisor_ReleaseFailureSkipsCommand(t *testing.T) {
	t.Parallel()

	errStop := errors.New("close: bad file descriptor")
	f := &fakeFactory{rec: &recorder{}, stopErrs: map[int]error{1: errStop}}
	runner := &fakeRunner{}

	sup, err := renewal.New(f.build, runner, renewal.WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)

	require.Eventually(t, func() bool { return sup.State() == renewal.StateHalted }, waitFor, 5*time.Millisecond)
	cancel()
	require.NoError(t, awaitRun(t, done))

	assert.Zero(t, runner.calls.Load(), "command must not run while ports may still be held")
	assert.Equal(t, 2, f.count(), "restart is still attempted")
	assert.ErrorIs(t, sup.Err(), errStop)
}

func TestSupervisor_InitialStartFailure(t *testing.T) {
	t.Parallel()

	f := &fakeFactory{rec: &recorder{}, failAt: 1}
	runner := &fakeRunner{}
	exit := &exitRecorder{}

	sup, err := renewal.New(f.build, runner, renewal.WithExitFunc(exit.exit))
	require.NoError(t, err)

	err = sup.Run(context.Background())
	assert.ErrorIs(t, err, renewal.ErrStartup)
	assert.ErrorIs(t, err, errBindFailed)
	assert.False(t, exit.called.Load(), "startup failures are returned, not exited")
	assert.Zero(t, runner.calls.Load())
}

func TestSupervisor_AlreadyRunning(t *testing.T) {
	t.Parallel()

	f := &fakeFactory{rec: &recorder{}}
	sup, err := renewal.New(f.build, &fakeRunner{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)
	require.Eventually(t, func() bool { return f.count() == 1 }, waitFor, time.Millisecond)

	assert.ErrorIs(t, sup.Run(ctx), renewal.ErrAlreadyRunning)

	cancel()
	require.NoError(t, awaitRun(t, done))
}

func TestSupervisor_RenewImmediately(t *testing.T) {
	t.Parallel()

	t.Run("first cycle after the short delay", func(t *testing.T) {
		t.Parallel()

		f := &fakeFactory{rec: &recorder{}}
		runner := &fakeRunner{times: make(chan time.Time, 1)}

		sup, err := renewal.New(f.build, runner,
			renewal.WithInterval(12*time.Hour),
			renewal.WithRenewImmediately(true),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		start := time.Now()
		done := runAsync(ctx, sup)

		var fired time.Time
		select {
		case fired = <-runner.times:
		case <-time.After(waitFor):
			t.Fatal("first renewal did not fire")
		}

		elapsed := fired.Sub(start)
		assert.GreaterOrEqual(t, elapsed, renewal.ImmediateDelay-50*time.Millisecond)
		assert.Less(t, elapsed, 3*time.Second)

		// The next cycle waits the full interval.
		time.Sleep(300 * time.Millisecond)
		assert.EqualValues(t, 1, runner.calls.Load())
		assert.Equal(t, renewal.StateIdle, sup.State())

		cancel()
		require.NoError(t, awaitRun(t, done))
	})

	t.Run("first cycle waits the interval by default", func(t *testing.T) {
		t.Parallel()

		f := &fakeFactory{rec: &recorder{}}
		runner := &fakeRunner{}

		sup, err := renewal.New(f.build, runner, renewal.WithInterval(12*time.Hour))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := runAsync(ctx, sup)

		time.Sleep(renewal.ImmediateDelay + 300*time.Millisecond)
		assert.Zero(t, runner.calls.Load())

		cancel()
		require.NoError(t, awaitRun(t, done))
	})
}

func TestSupervisor_ShutdownWaitsForCycle(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	f := &fakeFactory{rec: rec}
	runner := &fakeRunner{rec: rec, delay: 200 * time.Millisecond}

	sup, err := renewal.New(f.build, runner, renewal.WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)

	require.Eventually(t, func() bool { return runner.active.Load() == 1 }, waitFor, time.Millisecond)
	cancel()
	require.NoError(t, awaitRun(t, done))

	assertCycles(t, rec.snapshot())
	assert.NoError(t, sup.Err(), "the command is not interrupted by shutdown")
}

func TestSupervisor_CommandTimeout(t *testing.T) {
	t.Parallel()

	f := &fakeFactory{rec: &recorder{}}
	runner := &fakeRunner{delay: 10 * time.Second}

	sup, err := renewal.New(f.build, runner,
		renewal.WithInterval(10*time.Millisecond),
		renewal.WithCommandTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)

	require.Eventually(t, func() bool { return sup.State() == renewal.StateHalted }, waitFor, 5*time.Millisecond)
	cancel()
	require.NoError(t, awaitRun(t, done))

	assert.ErrorIs(t, sup.Err(), context.DeadlineExceeded)
	assert.Equal(t, 2, f.count())
}

func TestSupervisor_LogsCommandOutputPerLine(t *testing.T) {
	t.Parallel()

	f := &fakeFactory{rec: &recorder{}}
	runner := &fakeRunner{out: renewal.Outcome{
		Stdout: []byte("line one\r\nline two\n\n"),
		Stderr: []byte("a warning"),
	}}
	logs := &syncBuffer{}

	sup, err := renewal.New(f.build, runner,
		renewal.WithInterval(10*time.Millisecond),
		renewal.WithLogger(logger.New(
			logger.WithOutput(logs),
			logger.WithJSONFormatter(),
			logger.WithLevel(slog.LevelDebug),
		)),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sup)
	require.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, waitFor, 5*time.Millisecond)
	cancel()
	require.NoError(t, awaitRun(t, done))

	type record struct {
		Msg     string `json:"msg"`
		Stream  string `json:"stream"`
		CycleID string `json:"cycle_id"`
	}

	var records []record
	for line := range strings.Lines(logs.String()) {
		var r record
		require.NoError(t, json.Unmarshal([]byte(line), &r), line)
		records = append(records, r)
	}

	find := func(msg string) record {
		for _, r := range records {
			if r.Msg == msg {
				return r
			}
		}
		t.Fatalf("no log record %q", msg)
		return record{}
	}

	started := find("renewal cycle started")
	require.NotEmpty(t, started.CycleID)

	for _, tc := range []struct{ msg, stream string }{
		{"line one", "stdout"},
		{"line two", "stdout"},
		{"a warning", "stderr"},
	} {
		r := find(tc.msg)
		assert.Equal(t, tc.stream, r.Stream)
		assert.Equal(t, started.CycleID, r.CycleID)
	}

	for _, r := range records {
		assert.NotEmpty(t, strings.TrimSpace(r.Msg), "empty output lines are skipped")
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", renewal.StateIdle.String())
	assert.Equal(t, "releasing", renewal.StateReleasing.String())
	assert.Equal(t, "renewing", renewal.StateRenewing.String())
	assert.Equal(t, "restarting", renewal.StateRestarting.String())
	assert.Equal(t, "halted", renewal.StateHalted.String())
	assert.Equal(t, "fatal", renewal.StateFatal.String())
	assert.Equal(t, "state(42)", renewal.State(42).String())

	assert.True(t, renewal.StateIdle.Serving())
	assert.True(t, renewal.StateHalted.Serving())
	assert.False(t, renewal.StateRenewing.Serving())
}
