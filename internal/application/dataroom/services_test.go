package dataroom

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/ventur-api/internal/application"
	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	domain "github.com/bryanwahyu/ventur-api/internal/domain/dataroom"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[domain.DocumentID]*domain.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: map[domain.DocumentID]*domain.Document{}}
}

func (r *fakeDocRepo) Create(ctx context.Context, d *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *fakeDocRepo) Get(ctx context.Context, owner string, id domain.DocumentID) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.UserID != owner {
		return nil, records.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocRepo) List(ctx context.Context, owner, category string, limit int) ([]*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Document
	for _, d := range r.docs {
		if d.UserID != owner {
			continue
		}
		if category != "" && d.Category != category {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDocRepo) TransitionStatus(ctx context.Context, owner string, id domain.DocumentID, from []records.Status, to records.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.UserID != owner {
		return false, nil
	}
	for _, f := range from {
		if d.Status == f {
			d.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDocRepo) SetResult(ctx context.Context, owner string, id domain.DocumentID, status records.Status, payload *analysis.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.UserID != owner {
		return records.ErrNotFound
	}
	d.Status = status
	d.Analysis = payload
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, owner string, id domain.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.UserID != owner {
		return records.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocRepo) DeleteByOwner(ctx context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.docs {
		if d.UserID == owner {
			delete(r.docs, id)
		}
	}
	return nil
}

func (r *fakeDocRepo) Counts(ctx context.Context, owner string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, analyzed int
	for _, d := range r.docs {
		if d.UserID != owner {
			continue
		}
		total++
		if d.Status == records.StatusAnalyzed {
			analyzed++
		}
	}
	return total, analyzed, nil
}

func (r *fakeDocRepo) CountByCategory(ctx context.Context, owner string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, d := range r.docs {
		if d.UserID == owner {
			out[d.Category]++
		}
	}
	return out, nil
}

type fakeFileStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: map[string][]byte{}}
}

func (f *fakeFileStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeFileStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeFileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeFileStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

type fakeAI struct {
	mu       sync.Mutex
	response string
	lastReq  analysis.Request
}

func (a *fakeAI) Analyze(ctx context.Context, req analysis.Request) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastReq = req
	return a.response, nil
}

func (a *fakeAI) last() analysis.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastReq
}

const validDocResponse = `{"document_type": "Cap Table", "completeness_score": 9, "summary": "Clean."}`

func newTestService(repo *fakeDocRepo, files *fakeFileStore, ai *fakeAI, done chan domain.DocumentID) *Service {
	return &Service{
		Repo:      repo,
		Files:     files,
		AI:        ai,
		Clock:     application.FixedClock{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		AITimeout: 5 * time.Second,
		OnAnalysisDone: func(id domain.DocumentID) {
			if done != nil {
				done <- id
			}
		},
	}
}

func TestUploadValidatesCategory(t *testing.T) {
	svc := newTestService(newFakeDocRepo(), newFakeFileStore(), &fakeAI{}, nil)

	_, err := svc.Upload(context.Background(), UploadCommand{
		UserID: "u1", Filename: "capt.xlsx", Category: "secrets", Body: strings.NewReader("x"),
	})
	if !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}

	doc, err := svc.Upload(context.Background(), UploadCommand{
		UserID: "u1", Filename: "capt.xlsx", Category: domain.CategoryFinancials,
		Subcategory: "cap table", Body: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.Category != "financials" || doc.Subcategory != "cap table" {
		t.Errorf("categories not kept: %+v", doc)
	}
	if !strings.HasPrefix(doc.FileKey, "u1/dataroom/") {
		t.Errorf("file key %q not scoped", doc.FileKey)
	}
}

func TestUploadAcceptsSpreadsheetTypes(t *testing.T) {
	svc := newTestService(newFakeDocRepo(), newFakeFileStore(), &fakeAI{}, nil)

	// the data room takes types the pitch-deck upload rejects
	for _, name := range []string{"pnl.xlsx", "pipeline.csv", "contract.docx"} {
		if _, err := svc.Upload(context.Background(), UploadCommand{
			UserID: "u1", Filename: name, Category: domain.CategoryOther, Body: strings.NewReader("x"),
		}); err != nil {
			t.Errorf("Upload(%q): %v", name, err)
		}
	}
	if _, err := svc.Upload(context.Background(), UploadCommand{
		UserID: "u1", Filename: "malware.exe", Category: domain.CategoryOther, Body: strings.NewReader("x"),
	}); !errors.Is(err, records.ErrUnsupportedFileType) {
		t.Errorf("exe upload err = %v, want ErrUnsupportedFileType", err)
	}
}

func TestAnalyzeCarriesCategoryAndTextContext(t *testing.T) {
	repo := newFakeDocRepo()
	files := newFakeFileStore()
	ai := &fakeAI{response: validDocResponse}
	done := make(chan domain.DocumentID, 1)
	svc := newTestService(repo, files, ai, done)
	ctx := context.Background()

	csv := "month,mrr\n2025-01,10000\n2025-02,12000\n"
	doc, err := svc.Upload(ctx, UploadCommand{
		UserID: "u1", Filename: "mrr.csv", Category: domain.CategoryMetrics,
		Body: strings.NewReader(csv),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Analyze(ctx, "u1", doc.ID); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("analysis did not finish")
	}

	req := ai.last()
	if req.Kind != analysis.KindDataRoom || req.Category != "metrics" {
		t.Errorf("provider request = %+v", req)
	}
	if req.TextContext != csv {
		t.Errorf("text context = %q, want the csv content", req.TextContext)
	}

	final, _ := svc.Get(ctx, "u1", doc.ID)
	if final.Status != records.StatusAnalyzed || final.Analysis == nil || final.Analysis.Document == nil {
		t.Errorf("final = %+v", final)
	}
	if final.Analysis.Document.DocumentType != "Cap Table" {
		t.Errorf("document_type = %q", final.Analysis.Document.DocumentType)
	}
}

func TestListFiltersByCategory(t *testing.T) {
	repo := newFakeDocRepo()
	svc := newTestService(repo, newFakeFileStore(), &fakeAI{}, nil)
	ctx := context.Background()

	for _, c := range []string{domain.CategoryLegal, domain.CategoryLegal, domain.CategoryStaff} {
		if _, err := svc.Upload(ctx, UploadCommand{
			UserID: "u1", Filename: "doc.pdf", Category: c, Body: strings.NewReader("x"),
		}); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}

	legal, err := svc.List(ctx, "u1", domain.CategoryLegal)
	if err != nil || len(legal) != 2 {
		t.Errorf("legal list = %d docs, %v; want 2", len(legal), err)
	}
	all, err := svc.List(ctx, "u1", "")
	if err != nil || len(all) != 3 {
		t.Errorf("full list = %d docs, %v; want 3", len(all), err)
	}
	if _, err := svc.List(ctx, "u1", "bogus"); !errors.Is(err, domain.ErrInvalidCategory) {
		t.Errorf("bogus category err = %v, want ErrInvalidCategory", err)
	}
}
