package server_test

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certkeeper/core/server"
)

// acceptAll accepts connections until the listener fails and keeps them open.
func acceptAll(t *testing.T, l net.Listener) *sync.WaitGroup {
	t.Helper()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			if _, err := l.Accept(); err != nil {
				return
			}
		}
	}()
	return &wg
}

func TestDrainableListener_Stop(t *testing.T) {
	t.Parallel()

	t.Run("cuts every open connection", func(t *testing.T) {
		t.Parallel()

		dl, err := server.Listen(context.Background(), "tcp", "127.0.0.1:0")
		require.NoError(t, err)
		wg := acceptAll(t, dl)

		const n = 8
		clients := make([]net.Conn, 0, n)
		for range n {
			c, err := net.Dial("tcp", dl.Addr().String())
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })
			clients = append(clients, c)
		}

		require.Eventually(t, func() bool { return dl.Active() == n }, 2*time.Second, 5*time.Millisecond)

		require.NoError(t, dl.Stop())
		assert.Equal(t, 0, dl.Active())

		for _, c := range clients {
			require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
			_, err := c.Read(make([]byte, 1))
			assert.ErrorIs(t, err, io.EOF, "client should observe the server closing the connection")
		}

		wg.Wait()
	})

	t.Run("releases the port", func(t *testing.T) {
		t.Parallel()

		dl, err := server.Listen(context.Background(), "tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := dl.Addr().String()

		require.NoError(t, dl.Stop())

		again, err := server.Listen(context.Background(), "tcp", addr)
		require.NoError(t, err)
		require.NoError(t, again.Stop())
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		dl, err := server.Listen(context.Background(), "tcp", "127.0.0.1:0")
		require.NoError(t, err)

		require.NoError(t, dl.Stop())
		require.NoError(t, dl.Stop())
		assert.Equal(t, 0, dl.Active())
	})
}

func TestDrainableListener_ConnectionTracking(t *testing.T) {
	t.Parallel()

	dl, err := server.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dl.Stop() })

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := dl.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err := net.Dial("tcp", dl.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var conn net.Conn
	select {
	case conn = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not accepted")
	}

	assert.Equal(t, 1, dl.Active(), "accepted connection is tracked before it is returned")

	require.NoError(t, conn.Close())
	assert.Equal(t, 0, dl.Active())

	// A second close must not disturb the set.
	_ = conn.Close()
	assert.Equal(t, 0, dl.Active())
}

func TestDrainableListener_AcceptAfterStop(t *testing.T) {
	t.Parallel()

	dl, err := server.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, dl.Stop())

	_, err = dl.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestListen_BindError(t *testing.T) {
	t.Parallel()

	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Close() })

	_, err = server.Listen(context.Background(), "tcp", held.Addr().String())
	require.Error(t, err)
	assert.ErrorIs(t, err, server.ErrBind)
}
