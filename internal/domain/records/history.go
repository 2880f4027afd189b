package records

import "time"

// HistoryEntry is a read-only projection over both record types, merged
// into one chronological list for the history screen. Never persisted.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // pitch_deck | data_room
	Filename    string    `json:"filename"`
	FileType    string    `json:"file_type"`
	Category    string    `json:"category,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	HasAnalysis bool      `json:"has_analysis"`
}

const (
	HistoryTypePitchDeck = "pitch_deck"
	HistoryTypeDataRoom  = "data_room"
)
