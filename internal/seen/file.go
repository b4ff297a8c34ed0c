package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the seen-item state for one source in a single JSON file
// mapping keyword to a list of item ids. The file is read once at
// construction and held in memory for the process lifetime.
//
// A missing file and an unreadable or malformed file both degrade to the
// empty mapping. The unreadable case is logged loudly: every keyword in the
// source re-bootstraps on the next pass, which suppresses notifications for
// one cycle of already-seen items. That tradeoff (never crash over state
// corruption) is deliberate.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	sets map[string]Set
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		path:   path,
		logger: logger,
		sets:   map[string]Set{},
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("no seen state yet, starting empty", "path", s.path)
			return
		}
		s.logger.Error("seen state unreadable, starting empty; all keywords will re-bootstrap without notifying",
			"path", s.path, "error", err)
		return
	}

	decoded := map[string][]string{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.logger.Error("seen state malformed, starting empty; all keywords will re-bootstrap without notifying",
			"path", s.path, "error", err)
		return
	}

	for kw, ids := range decoded {
		set := make(Set, len(ids))
		for _, id := range ids {
			set.Add(id)
		}
		s.sets[kw] = set
	}
}

func (s *FileStore) Keyword(kw string) Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[kw]
	if !ok {
		set = Set{}
		s.sets[kw] = set
	}
	return set
}

// Save writes the whole mapping to a temp file in the target directory and
// renames it over the previous state, so a crash mid-write leaves either the
// old or the new complete file.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := make(map[string][]string, len(s.sets))
	for kw, set := range s.sets {
		encoded[kw] = set.IDs()
	}
	raw, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seen state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".seen-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write seen state: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod seen state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close seen state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace seen state: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
