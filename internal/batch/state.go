package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// State tracks progress for resumable batch runs. A State with no path lives
// only in memory.
type State struct {
	StartedAt       time.Time `json:"started_at"`
	LastProcessedAt time.Time `json:"last_processed_at"`
	FilesProcessed  []string  `json:"files_processed"`
	Errors          []string  `json:"errors"`

	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// LoadState reads the state at path, or starts a fresh one. When resume is
// false any previous progress is discarded.
func LoadState(path string, resume bool) (*State, error) {
	fresh := &State{StartedAt: time.Now().UTC(), path: path}
	if path == "" || !resume {
		return fresh, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fresh, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = path
	return &s, nil
}

// Lock takes an exclusive lock beside the state file so two runs cannot
// share it.
func (s *State) Lock() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	s.lock = flock.New(s.path + ".lock")
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another batch run holds %s", s.lock.Path())
	}
	return nil
}

// Unlock releases the lock taken by Lock.
func (s *State) Unlock() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Save persists the state to disk.
func (s *State) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *State) IsProcessed(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.FilesProcessed {
		if f == path {
			return true
		}
	}
	return false
}

func (s *State) MarkProcessed(path string) {
	s.mu.Lock()
	s.FilesProcessed = append(s.FilesProcessed, path)
	s.mu.Unlock()
}

func (s *State) AddError(msg string) {
	s.mu.Lock()
	s.Errors = append(s.Errors, msg)
	s.mu.Unlock()
}
