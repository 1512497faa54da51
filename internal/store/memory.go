package store

import (
	"context"
	"sync"

	"github.com/ticktui/ticktui/internal/errors"
	"github.com/ticktui/ticktui/internal/models"
)

// MemoryStore keeps the credential in process memory only.
// It is thread-safe and records how many times Save ran, which tests use.
type MemoryStore struct {
	mu    sync.RWMutex
	cred  *models.Credential
	saves int
	// SaveErr, when set, is returned by Save instead of storing.
	SaveErr error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith creates a store pre-seeded with cred.
func NewMemoryStoreWith(cred *models.Credential) *MemoryStore {
	return &MemoryStore{cred: cred.Clone()}
}

// Load returns a copy of the stored record.
func (s *MemoryStore) Load(_ context.Context) (*models.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil || s.cred.Validate() != nil {
		return nil, false
	}
	return s.cred.Clone(), true
}

// Save stores a copy of cred.
func (s *MemoryStore) Save(_ context.Context, cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return &errors.ErrCredentialWrite{Backend: "memory", Err: s.SaveErr}
	}
	if err := cred.Validate(); err != nil {
		return &errors.ErrCredentialWrite{Backend: "memory", Err: err}
	}
	s.cred = cred.Clone()
	s.saves++
	return nil
}

// Clear drops the record.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Saves returns how many records were stored successfully.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
