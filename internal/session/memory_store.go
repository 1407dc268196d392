package session

import (
	"context"
	"sync"
	"time"

	"github.com/eventra/service-event-creation/internal/domain/wizard"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
)

type memoryEntry struct {
	snap      wizard.Snapshot
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It is meant for development and tests;
// sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore. A non-positive ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores a new session.
func (s *MemoryStore) Create(_ context.Context, sess *wizard.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[sess.ID()]; ok && !s.expired(e) {
		return domain.NewConflictError("wizard session already exists")
	}
	s.sessions[sess.ID()] = s.entry(sess)
	return nil
}

// Get retrieves a session by ID.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*wizard.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return nil, domain.NewNotFoundError("WizardSession", id.String())
	}
	return wizard.ReconstructSession(e.snap), nil
}

// Update replaces a session if the stored version is the one it was loaded at.
func (s *MemoryStore) Update(_ context.Context, sess *wizard.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sess.ID()]
	if !ok || s.expired(e) {
		return domain.NewNotFoundError("WizardSession", sess.ID().String())
	}
	if e.snap.Version != sess.Version()-1 {
		return domain.NewConflictError("wizard session was modified by another request")
	}
	s.sessions[sess.ID()] = s.entry(sess)
	return nil
}

func (s *MemoryStore) entry(sess *wizard.Session) memoryEntry {
	e := memoryEntry{snap: sess.Snapshot()}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
