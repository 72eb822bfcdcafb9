package localfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is an optional on-disk level for extracted chapter text so process
// restarts do not re-download and re-parse the source PDFs. Keys are opaque
// cache names computed by the caller.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./data/textcache"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create text cache dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) Load(key string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.basePath, sanitizeKey(key)))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *Store) Store(key, text string) error {
	path := filepath.Join(s.basePath, sanitizeKey(key))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write cached text: %w", err)
	}
	return nil
}

func sanitizeKey(key string) string {
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	if key == "" {
		return "entry.txt"
	}
	return key
}
