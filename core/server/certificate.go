package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"

	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/pkg/async"
)

// CertificateInfo describes the leaf of a loaded certificate chain.
type CertificateInfo struct {
	Subject   string
	Domains   []string
	Issuer    string
	NotBefore time.Time
	NotAfter  time.Time
	ChainLen  int
}

// ExpiresIn returns the time left until NotAfter, measured from now.
func (i *CertificateInfo) ExpiresIn(now time.Time) time.Duration {
	return i.NotAfter.Sub(now)
}

func (i *CertificateInfo) log(ctx context.Context, log *slog.Logger) {
	log.InfoContext(ctx, "certificate loaded",
		logger.Host(i.Subject),
		slog.Any("domains", i.Domains),
		slog.String("issuer", i.Issuer),
		logger.Time("not_after", i.NotAfter),
		slog.Int("chain_len", i.ChainLen),
	)
}

// LoadCertificate reads privkey.pem and fullchain.pem from dir concurrently and
// builds the key pair. Any failure matches ErrCertificateLoad.
func LoadCertificate(ctx context.Context, dir string) (tls.Certificate, *CertificateInfo, error) {
	keyF := async.Async(ctx, filepath.Join(dir, PrivateKeyFile), readFile)
	chainF := async.Async(ctx, filepath.Join(dir, FullChainFile), readFile)

	key, keyErr := keyF.Await()
	chain, chainErr := chainF.Await()
	if err := errors.Join(keyErr, chainErr); err != nil {
		return tls.Certificate{}, nil, errors.Join(ErrCertificateLoad, err)
	}

	cert, err := tls.X509KeyPair(chain, key)
	if err != nil {
		return tls.Certificate{}, nil, errors.Join(ErrCertificateLoad, fmt.Errorf("parse key pair in %s: %w", dir, err))
	}

	certs, err := certcrypto.ParsePEMBundle(chain)
	if err != nil {
		return tls.Certificate{}, nil, errors.Join(ErrCertificateLoad, fmt.Errorf("parse %s: %w", FullChainFile, err))
	}

	leaf := certs[0]
	cert.Leaf = leaf

	return cert, &CertificateInfo{
		Subject:   leaf.Subject.CommonName,
		Domains:   certcrypto.ExtractDomains(leaf),
		Issuer:    leaf.Issuer.CommonName,
		NotBefore: leaf.NotBefore,
		NotAfter:  leaf.NotAfter,
		ChainLen:  len(certs),
	}, nil
}

func readFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
