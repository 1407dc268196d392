package wizard

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore defines the persistence contract for wizard sessions. Sessions are never
// removed explicitly; closed ones stay readable until the store's TTL evicts them so late
// operation results can still be detected as discarded.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// Update replaces a session whose stored version is session.Version()-1.
	// A mismatch is reported as a conflict.
	Update(ctx context.Context, session *Session) error
}
