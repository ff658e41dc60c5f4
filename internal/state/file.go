package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/trogers1052/eod-connector/internal/models"
)

// fileState is the on-disk document
type fileState struct {
	Cursors map[string]string `json:"cursors"`
}

// FileStore keeps watermarks in a JSON file rewritten on every set
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// GetWatermark returns the stored date for symbol
func (s *FileStore) GetWatermark(_ context.Context, symbol string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return time.Time{}, false, err
	}
	raw, ok := st.Cursors[symbol]
	if !ok {
		return time.Time{}, false, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid stored watermark for %s: %w", symbol, err)
	}
	return date, true, nil
}

// SetWatermark stores date for symbol unless an equal or newer date is already stored
func (s *FileStore) SetWatermark(_ context.Context, symbol string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	next := date.Format(models.DateLayout)
	if current, ok := st.Cursors[symbol]; ok && current >= next {
		return nil
	}
	st.Cursors[symbol] = next
	return s.save(st)
}

func (s *FileStore) load() (*fileState, error) {
	st := &fileState{Cursors: map[string]string{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if st.Cursors == nil {
		st.Cursors = map[string]string{}
	}
	return st, nil
}

// save replaces the file atomically via a temp file and rename
func (s *FileStore) save(st *fileState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
