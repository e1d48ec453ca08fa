// Package memstore is the in-process pending-verification store. It is the
// default backend and is only suitable for single-instance deployments: the
// single-active-code invariant is enforced by the mutex, not by the storage
// layer.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zycare/auth-api/internal/domain"
)

// Store keeps pending verifications in a map keyed by contact identifier.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*domain.PendingVerification
}

func New() *Store {
	return &Store{entries: make(map[string]*domain.PendingVerification)}
}

// Put writes the entry, overwriting any existing one for the same identifier.
func (s *Store) Put(_ context.Context, v *domain.PendingVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.entries[v.Identifier] = &cp
	return nil
}

// Get returns a copy of the stored entry, or ErrNotFound. Expiry is not
// checked here — the service treats expired entries as absent on its own.
func (s *Store) Get(_ context.Context, identifier string) (*domain.PendingVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[identifier]
	if !ok {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

// IncrementAttempts bumps the attempt counter and returns the post-increment
// value, or ErrNotFound when the entry is gone.
func (s *Store) IncrementAttempts(_ context.Context, identifier string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[identifier]
	if !ok {
		return 0, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	v.Attempts++
	return v.Attempts, nil
}

// Delete removes the entry. Deleting a non-existent entry is not an error.
func (s *Store) Delete(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, identifier)
	return nil
}

// DeleteExpired evicts every entry past its expiry and reports how many.
func (s *Store) DeleteExpired(_ context.Context) (int, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for k, v := range s.entries {
		if v.Expired(now) {
			delete(s.entries, k)
			deleted++
		}
	}
	return deleted, nil
}
