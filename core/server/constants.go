package server

import "time"

const (
	// HTTPPort is the only port the redirect server may be configured on.
	HTTPPort = 80

	// HTTPSPort is the only port the TLS server may be configured on.
	HTTPSPort = 443

	// PrivateKeyFile is the key file name inside the certificate directory.
	PrivateKeyFile = "privkey.pem"

	// FullChainFile is the certificate chain file name inside the certificate directory.
	FullChainFile = "fullchain.pem"

	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 15 * time.Second

	// DefaultIdleTimeout is the default timeout for idle keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultMaxHeaderBytes is the default maximum size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)
