package counting

import (
	"context"

	"stocktake/internal/core/id"
)

// Repository defines persistence for the item collection. The core never
// reads or writes storage directly; it operates on snapshots handed to it
// and returns updated records for the repository to persist.
type Repository interface {
	// List returns the full item collection in stable import order.
	List(ctx context.Context) ([]*Item, error)

	// GetByID retrieves a single item; apperror.CodeNotFound when absent.
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// ReplaceAll swaps the whole collection (fresh import).
	ReplaceAll(ctx context.Context, items []*Item) error

	// Save persists one updated item, movements included.
	Save(ctx context.Context, item *Item) error

	// SaveMany persists a batch of updated items.
	SaveMany(ctx context.Context, items []*Item) error

	// DeleteAll wipes the collection (password-confirmed reset).
	DeleteAll(ctx context.Context) error
}

// SessionRepository persists the single active counting session.
type SessionRepository interface {
	// Get returns the active session, or a fresh session 1 when none is stored.
	Get(ctx context.Context) (*Session, error)

	// Save replaces the stored session.
	Save(ctx context.Context, session *Session) error
}

// Auditor records mutating operations for traceability. Implementations
// must never fail the business operation: errors are logged and dropped
// by the service layer.
type Auditor interface {
	Record(ctx context.Context, action string, entityID id.ID, payload any) error
}
