package analysis

import "context"

// Request describes one analysis call to the provider.
type Request struct {
	Kind        Kind
	Category    string // data-room category, empty for pitch decks
	FileURL     string
	Filename    string
	FileType    string
	TextContext string // extracted text, "" for binary uploads
}

// Client port untuk provider AI
type Client interface {
	Analyze(ctx context.Context, req Request) (string, error)
}
