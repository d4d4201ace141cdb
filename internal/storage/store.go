// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/splitledger/splitledger/internal/models"
)

// Store defines the persistence contract consumed by the ledger. The ledger
// calls Load* once at startup and Save* after every mutation with the full
// group collection; implementations must treat SaveGroups as an idempotent
// replace-all. This abstraction allows swapping storage backends (SQLite,
// PostgreSQL, etc.) without changing the ledger.
type Store interface {
	// LoadGroups retrieves all persisted groups in insertion order.
	// Date-valued fields come back as structured timestamps, not strings.
	LoadGroups(ctx context.Context) ([]*models.Group, error)

	// LoadActiveGroupID retrieves the identifier of the active group, or ""
	// if none was persisted.
	LoadActiveGroupID(ctx context.Context) (string, error)

	// SaveGroups replaces the persisted collection with the given groups.
	SaveGroups(ctx context.Context, groups []*models.Group) error

	// SaveActiveGroupID persists the identifier of the active group.
	SaveActiveGroupID(ctx context.Context, groupID string) error

	// ClearAll erases all persisted state.
	ClearAll(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
