// Package checkout implements the hosted-payment session bookkeeping: the
// single-slot Pending Checkout Store, session creation, and trigger-driven
// reconciliation against the transaction status endpoint.
package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/poliverai/poliver/types"
)

// Store is the persistence port for the single pending-checkout slot.
// Save overwrites any existing record (last write wins); Load returns
// (nil, nil) when the slot is empty.
//
// Implementations need no locking discipline beyond their own internals:
// writers always overwrite in full and readers never mutate.
type Store interface {
	Save(record *types.PendingCheckout) error
	Load() (*types.PendingCheckout, error)
	Clear() error
}

// FileStore persists the slot as one JSON file. Writes go through a temp
// file and rename so a crash mid-write never leaves a corrupt slot.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path. The parent
// directory is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStorePath returns the conventional slot location under the user
// config directory.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "poliver", "pending_checkout.json"), nil
}

// Save implements Store.
func (s *FileStore) Save(record *types.PendingCheckout) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode pending checkout: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write pending checkout: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit pending checkout: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load() (*types.PendingCheckout, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pending checkout: %w", err)
	}

	var record types.PendingCheckout
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode pending checkout: %w", err)
	}
	return &record, nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear pending checkout: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and ephemeral use.
type MemStore struct {
	mu     sync.Mutex
	record *types.PendingCheckout
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Save implements Store.
func (s *MemStore) Save(record *types.PendingCheckout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.record = &copied
	return nil
}

// Load implements Store.
func (s *MemStore) Load() (*types.PendingCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, nil
	}
	copied := *s.record
	return &copied, nil
}

// Clear implements Store.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}

// Verify implementations satisfy the port.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemStore)(nil)
)
