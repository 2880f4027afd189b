package dataroom

import (
	"context"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, d *Document) error
	Get(ctx context.Context, owner string, id DocumentID) (*Document, error)
	// List returns the owner's documents newest-created first, optionally
	// filtered by category ("" means all).
	List(ctx context.Context, owner string, category string, limit int) ([]*Document, error)
	TransitionStatus(ctx context.Context, owner string, id DocumentID, from []records.Status, to records.Status) (bool, error)
	SetResult(ctx context.Context, owner string, id DocumentID, status records.Status, payload *analysis.Payload) error
	Delete(ctx context.Context, owner string, id DocumentID) error
	DeleteByOwner(ctx context.Context, owner string) error
	Counts(ctx context.Context, owner string) (total int, analyzed int, err error)
	// CountByCategory returns per-category totals for the owner; absent
	// categories are simply missing from the map.
	CountByCategory(ctx context.Context, owner string) (map[string]int, error)
}
