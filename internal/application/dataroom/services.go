package dataroom

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/ventur-api/internal/application"
	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	domain "github.com/bryanwahyu/ventur-api/internal/domain/dataroom"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

// Service implements use-cases untuk data-room Document
type Service struct {
	Repo      domain.Repository
	Files     records.FileStore
	AI        analysis.Client
	Clock     application.Clock
	AITimeout time.Duration

	OnAnalysisDone func(id domain.DocumentID)
}

const defaultAITimeout = 60 * time.Second

// Command untuk upload dokumen data room
type UploadCommand struct {
	UserID      string
	Filename    string
	Size        int64
	Category    string
	Subcategory string
	Body        io.Reader
}

func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*domain.Document, error) {
	if !domain.ValidCategory(cmd.Category) {
		return nil, domain.ErrInvalidCategory
	}
	ext := records.FileExtension(cmd.Filename)
	if !records.DocumentExtensionAllowed(ext) {
		return nil, fmt.Errorf("%w: .%s", records.ErrUnsupportedFileType, ext)
	}

	now := s.Clock.Now().UTC()
	id := uuid.New().String()
	key := fmt.Sprintf("%s/dataroom/%s.%s", cmd.UserID, id, ext)

	if err := s.Files.Put(ctx, key, cmd.Body, cmd.Size, records.ContentTypeFor(ext)); err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	doc := &domain.Document{
		ID:          domain.DocumentID(id),
		UserID:      cmd.UserID,
		Filename:    cmd.Filename,
		FileKey:     key,
		FileType:    ext,
		FileSize:    cmd.Size,
		Category:    cmd.Category,
		Subcategory: cmd.Subcategory,
		Status:      records.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		_ = s.Files.Delete(ctx, key)
		return nil, err
	}
	return doc, nil
}

// Analyze mirrors the pitch-deck flow: conditional transition, immediate
// return, background provider call scoped to the document's category.
func (s *Service) Analyze(ctx context.Context, owner string, id domain.DocumentID) (*domain.Document, error) {
	doc, err := s.Repo.Get(ctx, owner, id)
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
	doc.Status = records.StatusAnalyzing

	// jalankan analisis di background sampai selesai
	go s.runAnalysis(owner, doc)

	return doc, nil
}

func (s *Service) runAnalysis(owner string, doc *domain.Document) {
	timeout := s.AITimeout
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	defer func() {
		if s.OnAnalysisDone != nil {
			s.OnAnalysisDone(doc.ID)
		}
	}()

	url, err := s.Files.PresignedURL(ctx, doc.FileKey, timeout+5*time.Minute)
	if err != nil {
		s.fail(owner, doc.ID, fmt.Errorf("presigning file: %w", err))
		return
	}

	raw, err := s.AI.Analyze(ctx, analysis.Request{
		Kind:        analysis.KindDataRoom,
		Category:    doc.Category,
		FileURL:     url,
		Filename:    doc.Filename,
		FileType:    doc.FileType,
		TextContext: records.TextContext(ctx, s.Files, doc.FileKey, doc.FileType),
	})
	if err != nil {
		s.fail(owner, doc.ID, err)
		return
	}

	payload := analysis.Normalize(analysis.KindDataRoom, raw)
	if err := s.Repo.SetResult(context.Background(), owner, doc.ID, records.StatusAnalyzed, &payload); err != nil {
		log.Printf("document analysis result write failed: id=%s err=%v", doc.ID, err)
		return
	}
	log.Printf("document analysis finished: id=%s category=%s structured=%v", doc.ID, doc.Category, payload.Structured())
}

func (s *Service) fail(owner string, id domain.DocumentID, cause error) {
	log.Printf("document analysis error: id=%s err=%v", id, cause)
	err := s.Repo.SetResult(context.Background(), owner, id, records.StatusError, analysis.FailurePayload(cause.Error()))
	if err != nil {
		log.Printf("document analysis error write failed: id=%s err=%v", id, err)
	}
}

// List ambil dokumen milik owner, optional filter kategori
func (s *Service) List(ctx context.Context, owner, category string) ([]*domain.Document, error) {
	if category != "" && !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}
	return s.Repo.List(ctx, owner, category, 500)
}

func (s *Service) Get(ctx context.Context, owner string, id domain.DocumentID) (*domain.Document, error) {
	return s.Repo.Get(ctx, owner, id)
}

func (s *Service) Delete(ctx context.Context, owner string, id domain.DocumentID) error {
	doc, err := s.Repo.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, owner, id); err != nil {
		return err
	}
	if err := s.Files.Delete(ctx, doc.FileKey); err != nil {
		log.Printf("document file delete failed: key=%s err=%v", doc.FileKey, err)
	}
	return nil
}
