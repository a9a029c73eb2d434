package renewal_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/certkeeper/core/renewal"
)

// recorder collects supervisor-visible events in order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakePair struct {
	rec      *recorder
	startErr error
	stopErr  error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (p *fakePair) Start(context.Context) error {
	p.rec.add("start")
	if p.startErr != nil {
		return p.startErr
	}
	p.started.Store(true)
	return nil
}

func (p *fakePair) Stop(context.Context) error {
	p.rec.add("stop")
	p.stopped.Store(true)
	return p.stopErr
}

// fakeFactory hands out fakePairs; failAt makes the n-th pair (1-based) fail to start.
type fakeFactory struct {
	rec *recorder

	mu       sync.Mutex
	pairs    []*fakePair
	failAt   int
	stopErrs map[int]error
}

var errBindFailed = errors.New("bind: address already in use")

func (f *fakeFactory) build() (renewal.ServerPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.pairs) + 1
	p := &fakePair{rec: f.rec}
	if n == f.failAt {
		p.startErr = errBindFailed
	}
	if err, ok := f.stopErrs[n]; ok {
		p.stopErr = err
	}
	f.pairs = append(f.pairs, p)
	return p, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pairs)
}

func (f *fakeFactory) last() *fakePair {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pairs) == 0 {
		return nil
	}
	return f.pairs[len(f.pairs)-1]
}

// fakeRunner records invocations and tracks overlap.
type fakeRunner struct {
	rec   *recorder
	delay time.Duration
	err   error
	out   renewal.Outcome

	calls   atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	times   chan time.Time
}

func (r *fakeRunner) Run(ctx context.Context) (renewal.Outcome, error) {
	if r.active.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.active.Add(-1)

	r.calls.Add(1)
	if r.rec != nil {
		r.rec.add("run")
	}
	if r.times != nil {
		select {
		case r.times <- time.Now():
		default:
		}
	}

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return renewal.Outcome{ExitCode: -1}, ctx.Err()
		}
	}

	return r.out, r.err
}

// exitRecorder replaces os.Exit.
type exitRecorder struct {
	code   atomic.Int32
	called atomic.Bool
}

func (e *exitRecorder) exit(code int) {
	e.code.Store(int32(code))
	e.called.Store(true)
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
