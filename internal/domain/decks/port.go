package decks

import (
	"context"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, d *PitchDeck) error
	// Get returns records.ErrNotFound when the deck is absent or owned by
	// another user.
	Get(ctx context.Context, owner string, id DeckID) (*PitchDeck, error)
	// List returns the owner's decks newest-created first.
	List(ctx context.Context, owner string, limit int) ([]*PitchDeck, error)
	// TransitionStatus atomically moves the record to the target status
	// only when its current status is one of from. Reports false when the
	// precondition did not hold.
	TransitionStatus(ctx context.Context, owner string, id DeckID, from []records.Status, to records.Status) (bool, error)
	// SetResult writes the terminal status and analysis payload.
	SetResult(ctx context.Context, owner string, id DeckID, status records.Status, payload *analysis.Payload) error
	Delete(ctx context.Context, owner string, id DeckID) error
	DeleteByOwner(ctx context.Context, owner string) error
	// Counts returns total and analyzed deck counts for the owner.
	Counts(ctx context.Context, owner string) (total int, analyzed int, err error)
}
