package dashboard

import (
	"context"
	"log"
	"sort"

	"github.com/bryanwahyu/ventur-api/internal/domain/dataroom"
	"github.com/bryanwahyu/ventur-api/internal/domain/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

// Service computes cross-record aggregations: dashboard stats, the merged
// history view, and the bulk clear operation.
type Service struct {
	Decks     decks.Repository
	Documents dataroom.Repository
	Files     records.FileStore
}

type Stats struct {
	TotalPitchDecks     int            `json:"total_pitch_decks"`
	TotalDocuments      int            `json:"total_documents"`
	AnalyzedDocuments   int            `json:"analyzed_documents"`
	PendingAnalysis     int            `json:"pending_analysis"`
	DocumentsByCategory map[string]int `json:"documents_by_category"`
}

// Stats rekap dashboard untuk satu user. Every one of the 8 categories is
// present in the map, zero-count included, so charts never miss a slice.
func (s *Service) Stats(ctx context.Context, owner string) (*Stats, error) {
	deckTotal, deckAnalyzed, err := s.Decks.Counts(ctx, owner)
	if err != nil {
		return nil, err
	}
	docTotal, docAnalyzed, err := s.Documents.Counts(ctx, owner)
	if err != nil {
		return nil, err
	}
	perCategory, err := s.Documents.CountByCategory(ctx, owner)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]int, 8)
	for _, c := range dataroom.Categories() {
		byCategory[c.Value] = perCategory[c.Value]
	}

	return &Stats{
		TotalPitchDecks:     deckTotal,
		TotalDocuments:      docTotal,
		AnalyzedDocuments:   deckAnalyzed + docAnalyzed,
		PendingAnalysis:     (deckTotal - deckAnalyzed) + (docTotal - docAnalyzed),
		DocumentsByCategory: byCategory,
	}, nil
}

// History merges both record types into one list sorted created_at desc.
func (s *Service) History(ctx context.Context, owner string) ([]records.HistoryEntry, error) {
	deckList, err := s.Decks.List(ctx, owner, 100)
	if err != nil {
		return nil, err
	}
	docList, err := s.Documents.List(ctx, owner, "", 500)
	if err != nil {
		return nil, err
	}

	out := make([]records.HistoryEntry, 0, len(deckList)+len(docList))
	for _, d := range deckList {
		out = append(out, records.HistoryEntry{
			ID:          string(d.ID),
			Type:        records.HistoryTypePitchDeck,
			Filename:    d.Filename,
			FileType:    d.FileType,
			Status:      d.Status,
			CreatedAt:   d.CreatedAt,
			HasAnalysis: d.Analysis != nil,
		})
	}
	for _, d := range docList {
		out = append(out, records.HistoryEntry{
			ID:          string(d.ID),
			Type:        records.HistoryTypeDataRoom,
			Filename:    d.Filename,
			FileType:    d.FileType,
			Category:    d.Category,
			Status:      d.Status,
			CreatedAt:   d.CreatedAt,
			HasAnalysis: d.Analysis != nil,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ClearHistory deletes every record of both types for the owner, blobs
// included. Irreversible; other users are untouched. Blob deletes are
// best-effort so a dead object store cannot block the wipe.
func (s *Service) ClearHistory(ctx context.Context, owner string) error {
	deckList, err := s.Decks.List(ctx, owner, 1000)
	if err != nil {
		return err
	}
	docList, err := s.Documents.List(ctx, owner, "", 1000)
	if err != nil {
		return err
	}

	for _, d := range deckList {
		if err := s.Files.Delete(ctx, d.FileKey); err != nil {
			log.Printf("clear history: deck file delete failed: key=%s err=%v", d.FileKey, err)
		}
	}
	for _, d := range docList {
		if err := s.Files.Delete(ctx, d.FileKey); err != nil {
			log.Printf("clear history: document file delete failed: key=%s err=%v", d.FileKey, err)
		}
	}

	if err := s.Decks.DeleteByOwner(ctx, owner); err != nil {
		return err
	}
	return s.Documents.DeleteByOwner(ctx, owner)
}
