// Package servertest provides helpers for tests that run real server pairs:
// throwaway certificates and loopback binding.
package servertest

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrymomot/certkeeper/core/server"
)

// WriteCertificate writes a self-signed privkey.pem and fullchain.pem for
// "localhost" into dir, valid for the given duration from now.
func WriteCertificate(t testing.TB, dir string, validFor time.Duration) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(now.UnixNano()),
		Subject:               pkix.Name{CommonName: "localhost"},
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	writePEM(t, filepath.Join(dir, server.FullChainFile), "CERTIFICATE", der)
	writePEM(t, filepath.Join(dir, server.PrivateKeyFile), "EC PRIVATE KEY", keyDER)
}

func writePEM(t testing.TB, path, blockType string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Binder hands out loopback ephemeral listeners in place of the configured
// addresses and can be told to fail specific ones.
type Binder struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]error
}

// NewBinder returns a Binder with no injected failures.
func NewBinder() *Binder {
	return &Binder{failures: make(map[string]error)}
}

// Fail makes every later bind of addr return err.
func (b *Binder) Fail(addr string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[addr] = err
}

// Clear removes all injected failures.
func (b *Binder) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]error)
}

// Calls returns the configured addresses requested so far, in order.
func (b *Binder) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Listen satisfies server.ListenFunc.
func (b *Binder) Listen(ctx context.Context, network, addr string) (net.Listener, error) {
	b.mu.Lock()
	b.calls = append(b.calls, addr)
	err := b.failures[addr]
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}

	var lc net.ListenConfig
	return lc.Listen(ctx, network, "127.0.0.1:0")
}

// ErrAddrInUse is a stand-in for the kernel's "address already in use".
var ErrAddrInUse = errors.New("bind: address already in use")
