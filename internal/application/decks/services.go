package decks

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/ventur-api/internal/application"
	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	domain "github.com/bryanwahyu/ventur-api/internal/domain/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

// Service implements use-cases untuk PitchDeck
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo      domain.Repository
	Files     records.FileStore
	AI        analysis.Client
	Clock     application.Clock
	AITimeout time.Duration

	// OnAnalysisDone is invoked after a background analysis settles; tests
	// hook it to observe completion without polling.
	OnAnalysisDone func(id domain.DeckID)
}

const defaultAITimeout = 60 * time.Second

// Command untuk upload deck
type UploadCommand struct {
	UserID   string
	Filename string
	Size     int64
	Body     io.Reader
}

// Upload stores the file first and creates the record after; when the
// record insert fails the stored object is removed so no orphaned blob
// survives, and a storage failure never leaves a half-written record.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*domain.PitchDeck, error) {
	ext := records.FileExtension(cmd.Filename)
	if !records.DeckExtensionAllowed(ext) {
		return nil, fmt.Errorf("%w: .%s", records.ErrUnsupportedFileType, ext)
	}

	now := s.Clock.Now().UTC()
	id := uuid.New().String()
	key := fmt.Sprintf("%s/decks/%s.%s", cmd.UserID, id, ext)

	if err := s.Files.Put(ctx, key, cmd.Body, cmd.Size, records.ContentTypeFor(ext)); err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	deck := &domain.PitchDeck{
		ID:        domain.DeckID(id),
		UserID:    cmd.UserID,
		Filename:  cmd.Filename,
		FileKey:   key,
		FileType:  ext,
		FileSize:  cmd.Size,
		Status:    records.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, deck); err != nil {
		// kompensasi: jangan tinggalkan blob yatim
		_ = s.Files.Delete(ctx, key)
		return nil, err
	}
	return deck, nil
}

// Analyze flips the record to analyzing and dispatches the provider call
// in the background; the caller gets the analyzing record back right away
// and polls for the result. A second trigger while in flight is rejected.
func (s *Service) Analyze(ctx context.Context, owner string, id domain.DeckID) (*domain.PitchDeck, error) {
	deck, err := s.Repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.Repo.TransitionStatus(ctx, owner, id, records.AnalyzableFrom(), records.StatusAnalyzing)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, records.ErrAnalysisInFlight
	}
	deck.Status = records.StatusAnalyzing

	// jalankan analisis di background sampai selesai
	go s.runAnalysis(owner, deck)

	return deck, nil
}

// runAnalysis uses context.Background() so the work survives the request
// that triggered it; the timeout bounds the provider call.
func (s *Service) runAnalysis(owner string, deck *domain.PitchDeck) {
	timeout := s.AITimeout
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	defer func() {
		if s.OnAnalysisDone != nil {
			s.OnAnalysisDone(deck.ID)
		}
	}()

	url, err := s.Files.PresignedURL(ctx, deck.FileKey, timeout+5*time.Minute)
	if err != nil {
		s.fail(owner, deck.ID, fmt.Errorf("presigning file: %w", err))
		return
	}

	raw, err := s.AI.Analyze(ctx, analysis.Request{
		Kind:        analysis.KindPitchDeck,
		FileURL:     url,
		Filename:    deck.Filename,
		FileType:    deck.FileType,
		TextContext: records.TextContext(ctx, s.Files, deck.FileKey, deck.FileType),
	})
	if err != nil {
		s.fail(owner, deck.ID, err)
		return
	}

	payload := analysis.Normalize(analysis.KindPitchDeck, raw)
	if err := s.Repo.SetResult(context.Background(), owner, deck.ID, records.StatusAnalyzed, &payload); err != nil {
		log.Printf("deck analysis result write failed: id=%s err=%v", deck.ID, err)
		return
	}
	log.Printf("deck analysis finished: id=%s structured=%v", deck.ID, payload.Structured())
}

// fail records the diagnostic so the user can read it and re-trigger.
func (s *Service) fail(owner string, id domain.DeckID, cause error) {
	log.Printf("deck analysis error: id=%s err=%v", id, cause)
	err := s.Repo.SetResult(context.Background(), owner, id, records.StatusError, analysis.FailurePayload(cause.Error()))
	if err != nil {
		log.Printf("deck analysis error write failed: id=%s err=%v", id, err)
	}
}

// List ambil semua deck milik owner, terbaru dulu
func (s *Service) List(ctx context.Context, owner string) ([]*domain.PitchDeck, error) {
	return s.Repo.List(ctx, owner, 100)
}

// Get ambil 1 deck by id
func (s *Service) Get(ctx context.Context, owner string, id domain.DeckID) (*domain.PitchDeck, error) {
	return s.Repo.Get(ctx, owner, id)
}

// Delete removes the record and its stored file. The blob goes after the
// row so a storage hiccup can be retried by deleting again.
func (s *Service) Delete(ctx context.Context, owner string, id domain.DeckID) error {
	deck, err := s.Repo.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, owner, id); err != nil {
		return err
	}
	if err := s.Files.Delete(ctx, deck.FileKey); err != nil {
		log.Printf("deck file delete failed: key=%s err=%v", deck.FileKey, err)
	}
	return nil
}
