package attachment

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/h2non/filetype"
)

const (
	defaultExtension = ".png"
	maxNameAttempts  = 1000
)

// store writes downloaded images into a directory without ever replacing
// an existing file.
type store struct {
	dir string
	mu  sync.Mutex
}

func newStore(dir string) *store {
	return &store{dir: dir}
}

// save persists data under name, adding _1, _2, ... before the extension
// while the name is taken. A taken name that already holds the same bytes
// is returned as is.
func (s *store) save(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}

		p := filepath.Join(s.dir, candidate)

		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			if sameContent(p, data) {
				return p, nil
			}

			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", p, err)
		}

		_, err = f.Write(data)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(p)

			return "", fmt.Errorf("failed to write %s: %w", p, err)
		}

		return p, nil
	}

	return "", fmt.Errorf("no free file name for %s in %s", name, s.dir)
}

func sameContent(p string, data []byte) bool {
	existing, err := os.ReadFile(p)
	if err != nil {
		return false
	}

	return bytes.Equal(existing, data)
}

// fileName picks the local name for an image downloaded from rawURL.
// The last path segment is used when it looks like a file name; otherwise
// the name is derived from a hash of the URL and the sniffed image type.
func fileName(rawURL string, data []byte, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		name := path.Base(u.Path)
		if name != "." && name != ".." && name != "/" && strings.Contains(strings.TrimPrefix(name, "."), ".") {
			return name
		}
	}

	return fmt.Sprintf("image_%016x%s", xxhash.Sum64String(rawURL), extension(data, contentType))
}

func extension(data []byte, contentType string) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return "." + kind.Extension
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}

	return defaultExtension
}
