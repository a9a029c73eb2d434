package server

import (
	"context"
	"errors"
	"net"
	"sync"
)

// ListenFunc binds a network address. net.ListenConfig.Listen satisfies it.
type ListenFunc func(ctx context.Context, network, addr string) (net.Listener, error)

// DefaultListen binds addr with a zero net.ListenConfig.
func DefaultListen(ctx context.Context, network, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, network, addr)
}

// DrainableListener wraps a bound listener and tracks every accepted connection
// so that Stop can cut them all. Safe for concurrent use.
type DrainableListener struct {
	net.Listener

	mu     sync.Mutex
	conns  map[uint64]*trackedConn
	nextID uint64
	closed bool

	closeOnce sync.Once
	closeErr  error
}

// NewDrainableListener wraps an already bound listener.
func NewDrainableListener(l net.Listener) *DrainableListener {
	return &DrainableListener{
		Listener: l,
		conns:    make(map[uint64]*trackedConn),
	}
}

// Listen binds addr and returns it wrapped. Bind failures match ErrBind.
func Listen(ctx context.Context, network, addr string) (*DrainableListener, error) {
	l, err := DefaultListen(ctx, network, addr)
	if err != nil {
		return nil, errors.Join(ErrBind, err)
	}
	return NewDrainableListener(l), nil
}

// Accept waits for the next connection and registers it before returning it.
// Connections that arrive after Stop has begun are closed immediately.
func (l *DrainableListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = c.Close()
		return nil, net.ErrClosed
	}
	l.nextID++
	tc := &trackedConn{Conn: c, id: l.nextID, owner: l}
	l.conns[tc.id] = tc
	l.mu.Unlock()

	return tc, nil
}

// Close stops accepting and closes the underlying socket. Tracked connections
// stay open; use Stop to cut them as well. Safe to call more than once.
func (l *DrainableListener) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.closeOnce.Do(func() {
		l.closeErr = l.Listener.Close()
	})
	return l.closeErr
}

// Stop closes the socket and forcibly closes every tracked connection,
// regardless of in-flight requests. When it returns the socket is closed and
// no connection is tracked. Safe to call more than once.
func (l *DrainableListener) Stop() error {
	err := l.Close()

	l.mu.Lock()
	conns := make([]*trackedConn, 0, len(l.conns))
	for _, c := range l.conns {
		conns = append(conns, c)
	}
	l.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}

	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Active returns the number of tracked connections.
func (l *DrainableListener) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}

func (l *DrainableListener) forget(id uint64) {
	l.mu.Lock()
	delete(l.conns, id)
	l.mu.Unlock()
}

// trackedConn removes itself from its listener exactly once when closed.
type trackedConn struct {
	net.Conn
	id    uint64
	owner *DrainableListener
	once  sync.Once
	err   error
}

func (c *trackedConn) Close() error {
	c.once.Do(func() {
		c.err = c.Conn.Close()
		c.owner.forget(c.id)
	})
	return c.err
}
