package static

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// dirConfig holds configuration for directory serving
type dirConfig struct {
	root         string
	stripPrefix  string
	notFound     http.Handler
	cacheControl string
}

// DirOption configures directory serving behavior
type DirOption func(*dirConfig)

// WithStripPrefix removes the given prefix from the URL path before serving files.
func WithStripPrefix(prefix string) DirOption {
	return func(c *dirConfig) {
		c.stripPrefix = prefix
	}
}

// WithNotFound sets a handler for paths with no matching file.
func WithNotFound(h http.Handler) DirOption {
	return func(c *dirConfig) {
		c.notFound = h
	}
}

// WithCacheControl sets the Cache-Control header on served files.
func WithCacheControl(value string) DirOption {
	return func(c *dirConfig) {
		c.cacheControl = value
	}
}

// Dir creates a handler that serves files from root. Directory listing is
// disabled; a directory is served only through its index.html.
// Returns an error if root is missing or not a directory.
func Dir(root string, opts ...DirOption) (http.Handler, error) {
	config := &dirConfig{root: filepath.Clean(root)}
	for _, opt := range opts {
		opt(config)
	}

	if err := validateStartup(config.root, true); err != nil {
		return nil, fmt.Errorf("static.Dir: %w", err)
	}

	var fileServer http.Handler = http.FileServer(neuteredFileSystem{fs: http.Dir(config.root)})
	if config.stripPrefix != "" {
		fileServer = http.StripPrefix(config.stripPrefix, fileServer)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.notFound != nil {
			// Clean the URL path to prevent directory traversal
			cleanPath := path.Clean("/" + strings.TrimPrefix(r.URL.Path, config.stripPrefix))
			fullPath := filepath.Join(config.root, filepath.FromSlash(cleanPath))
			if err := validatePathSecurity(config.root, fullPath); err != nil || !exists(fullPath) {
				config.notFound.ServeHTTP(w, r)
				return
			}
		}

		if config.cacheControl != "" {
			w.Header().Set("Cache-Control", config.cacheControl)
		}
		fileServer.ServeHTTP(w, r)
	}), nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
