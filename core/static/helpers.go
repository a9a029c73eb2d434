package static

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// validatePathSecurity ensures the requested path is within the root directory.
func validatePathSecurity(root, requestPath string) error {
	cleanPath := filepath.Clean(requestPath)
	cleanRoot := filepath.Clean(root)

	if !strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) && cleanPath != cleanRoot {
		return errors.New("invalid path: outside root directory")
	}

	return nil
}

// validateStartup checks that a file or directory exists and is accessible at startup.
func validateStartup(path string, mustBeDir bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustBeDir {
				return fmt.Errorf("directory does not exist: %s", path)
			}
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("error accessing path: %w", err)
	}

	if mustBeDir && !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	if !mustBeDir && info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	return nil
}

// neuteredFileSystem wraps http.FileSystem to disable directory listing.
// Directories are only accessible if they contain an index.html file.
type neuteredFileSystem struct {
	fs http.FileSystem
}

func (nfs neuteredFileSystem) Open(path string) (http.File, error) {
	f, err := nfs.fs.Open(path)
	if err != nil {
		return nil, err
	}

	s, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if s.IsDir() {
		index := strings.TrimSuffix(path, "/") + "/index.html"
		idx, err := nfs.fs.Open(index)
		if err != nil {
			_ = f.Close()
			return nil, fs.ErrNotExist
		}
		_ = idx.Close()
	}

	return f, nil
}
