package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Store Type
// --------------------------------------------------------------------------

// Store writes timestamped JSON files into one folder and optionally keeps
// only the newest maxFiles of them. File names have the form
//
//	<prefix>_<YYYYMMDDTHHMMSSmmm>_<8 hex chars><ext>
//
// so lexicographic order equals creation order.
type Store struct {
	dir      string
	prefix   string
	ext      string
	maxFiles int // 0 = unlimited, no pruning
}

// NewStore creates a store for the given folder. The folder is created on
// the first write, not here.
func NewStore(dir, prefix, ext string, maxFiles int) *Store {
	return &Store{
		dir:      dir,
		prefix:   prefix,
		ext:      ext,
		maxFiles: maxFiles,
	}
}

// Dir returns the folder the store writes into.
func (s *Store) Dir() string { return s.dir }

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Write marshals data as indented JSON and stores it as a new file. Older
// files beyond the retention limit are pruned afterwards. It returns the
// path of the written file.
func (s *Store) Write(data any) (string, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal archive data: %w", err)
	}
	return s.WriteRaw(raw)
}

// WriteRaw stores already-serialized bytes as a new file and prunes older
// files beyond the retention limit. It returns the path of the written file.
func (s *Store) WriteRaw(raw []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive folder %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, s.newFileName(time.Now()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	if err := s.prune(); err != nil {
		return path, err
	}
	return path, nil
}

// newFileName builds a file name whose timestamp part carries millisecond
// precision, followed by a short random suffix against same-millisecond
// collisions.
func (s *Store) newFileName(now time.Time) string {
	timestamp := fmt.Sprintf("%s%03d", now.Format("20060102T150405"), now.Nanosecond()/int(time.Millisecond))
	id := uuid.New()
	return fmt.Sprintf("%s_%s_%x%s", s.prefix, timestamp, id[:4], s.ext)
}

// --------------------------------------------------------------------------
// Listing and Retention
// --------------------------------------------------------------------------

// List returns the paths of all files of this store, oldest first. A
// missing folder yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive folder %s: %w", s.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, s.prefix) || !strings.HasSuffix(name, s.ext) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Latest returns the path of the newest file of this store. The boolean
// return value indicates whether any file exists.
func (s *Store) Latest() (string, bool, error) {
	paths, err := s.List()
	if err != nil || len(paths) == 0 {
		return "", false, err
	}
	return paths[len(paths)-1], true, nil
}

// prune removes the oldest files until at most maxFiles remain.
func (s *Store) prune() error {
	if s.maxFiles <= 0 {
		return nil
	}
	paths, err := s.List()
	if err != nil {
		return err
	}
	if len(paths) <= s.maxFiles {
		return nil
	}
	for _, path := range paths[:len(paths)-s.maxFiles] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old archive file %s: %w", path, err)
		}
	}
	return nil
}
