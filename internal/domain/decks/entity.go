package decks

import (
	"time"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

// ID tipe untuk PitchDeck
type DeckID string

// Aggregate Root: PitchDeck
type PitchDeck struct {
	ID        DeckID            `json:"id"`
	UserID    string            `json:"user_id"`
	Filename  string            `json:"filename"`
	FileKey   string            `json:"-"` // storage locator, never leaves the server
	FileType  string            `json:"file_type"`
	FileSize  int64             `json:"file_size"`
	Status    records.Status    `json:"status"`
	Analysis  *analysis.Payload `json:"analysis,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
