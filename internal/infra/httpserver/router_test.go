package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/ventur-api/internal/application"
	appauth "github.com/bryanwahyu/ventur-api/internal/application/auth"
	appdash "github.com/bryanwahyu/ventur-api/internal/application/dashboard"
	approom "github.com/bryanwahyu/ventur-api/internal/application/dataroom"
	appdecks "github.com/bryanwahyu/ventur-api/internal/application/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	domroom "github.com/bryanwahyu/ventur-api/internal/domain/dataroom"
	domdecks "github.com/bryanwahyu/ventur-api/internal/domain/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
	"github.com/bryanwahyu/ventur-api/internal/domain/users"
)

// memStore backs every port with maps so the whole HTTP surface can be
// exercised without MySQL, MinIO or the provider.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*users.User
	decks   map[domdecks.DeckID]*domdecks.PitchDeck
	docs    map[domroom.DocumentID]*domroom.Document
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*users.User{},
		decks:   map[domdecks.DeckID]*domdecks.PitchDeck{},
		docs:    map[domroom.DocumentID]*domroom.Document{},
		objects: map[string][]byte{},
	}
}

//
// users.Repository
//

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(ctx context.Context, u *users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = u
	return nil
}

func (r memUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (r memUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

//
// decks.Repository
//

type memDeckRepo struct{ s *memStore }

func (r memDeckRepo) Create(ctx context.Context, d *domdecks.PitchDeck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *d
	r.s.decks[d.ID] = &cp
	return nil
}

func (r memDeckRepo) Get(ctx context.Context, owner string, id domdecks.DeckID) (*domdecks.PitchDeck, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.decks[id]
	if !ok || d.UserID != owner {
		return nil, records.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r memDeckRepo) List(ctx context.Context, owner string, limit int) ([]*domdecks.PitchDeck, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domdecks.PitchDeck
	for _, d := range r.s.decks {
		if d.UserID == owner {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memDeckRepo) TransitionStatus(ctx context.Context, owner string, id domdecks.DeckID, from []records.Status, to records.Status) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.decks[id]
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

func (r memDeckRepo) SetResult(ctx context.Context, owner string, id domdecks.DeckID, status records.Status, payload *analysis.Payload) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.decks[id]
	if !ok || d.UserID != owner {
		return records.ErrNotFound
	}
	d.Status = status
	d.Analysis = payload
	return nil
}

func (r memDeckRepo) Delete(ctx context.Context, owner string, id domdecks.DeckID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.decks[id]
	if !ok || d.UserID != owner {
		return records.ErrNotFound
	}
	delete(r.s.decks, id)
	return nil
}

func (r memDeckRepo) DeleteByOwner(ctx context.Context, owner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.decks {
		if d.UserID == owner {
			delete(r.s.decks, id)
		}
	}
	return nil
}

func (r memDeckRepo) Counts(ctx context.Context, owner string) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total, analyzed int
	for _, d := range r.s.decks {
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

//
// dataroom.Repository
//

type memDocRepo struct{ s *memStore }

func (r memDocRepo) Create(ctx context.Context, d *domroom.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *d
	r.s.docs[d.ID] = &cp
	return nil
}

func (r memDocRepo) Get(ctx context.Context, owner string, id domroom.DocumentID) (*domroom.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok || d.UserID != owner {
		return nil, records.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r memDocRepo) List(ctx context.Context, owner, category string, limit int) ([]*domroom.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domroom.Document
	for _, d := range r.s.docs {
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

func (r memDocRepo) TransitionStatus(ctx context.Context, owner string, id domroom.DocumentID, from []records.Status, to records.Status) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
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

func (r memDocRepo) SetResult(ctx context.Context, owner string, id domroom.DocumentID, status records.Status, payload *analysis.Payload) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok || d.UserID != owner {
		return records.ErrNotFound
	}
	d.Status = status
	d.Analysis = payload
	return nil
}

func (r memDocRepo) Delete(ctx context.Context, owner string, id domroom.DocumentID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok || d.UserID != owner {
		return records.ErrNotFound
	}
	delete(r.s.docs, id)
	return nil
}

func (r memDocRepo) DeleteByOwner(ctx context.Context, owner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.docs {
		if d.UserID == owner {
			delete(r.s.docs, id)
		}
	}
	return nil
}

func (r memDocRepo) Counts(ctx context.Context, owner string) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total, analyzed int
	for _, d := range r.s.docs {
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

func (r memDocRepo) CountByCategory(ctx context.Context, owner string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]int{}
	for _, d := range r.s.docs {
		if d.UserID == owner {
			out[d.Category]++
		}
	}
	return out, nil
}

//
// records.FileStore
//

type memFileStore struct{ s *memStore }

func (f memFileStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.objects[key] = b
	return nil
}

func (f memFileStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	b, ok := f.s.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f memFileStore) Delete(ctx context.Context, key string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.objects, key)
	return nil
}

func (f memFileStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

type stubAI struct{ response string }

func (a stubAI) Analyze(ctx context.Context, req analysis.Request) (string, error) {
	return a.response, nil
}

//
// fixture
//

type fixture struct {
	srv      *httptest.Server
	deckDone chan domdecks.DeckID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	deckDone := make(chan domdecks.DeckID, 4)

	authSvc := appauth.NewService(memUserRepo{store}, "router-test-secret", time.Hour)
	deckSvc := &appdecks.Service{
		Repo:  memDeckRepo{store},
		Files: memFileStore{store},
		AI:    stubAI{response: `{"overall_score": 9, "executive_summary": "Tight."}`},
		Clock: application.SystemClock{},
		OnAnalysisDone: func(id domdecks.DeckID) {
			deckDone <- id
		},
	}
	roomSvc := &approom.Service{
		Repo:  memDocRepo{store},
		Files: memFileStore{store},
		AI:    stubAI{response: `{"document_type": "Org Chart", "completeness_score": 7, "summary": "OK."}`},
		Clock: application.SystemClock{},
	}
	dashSvc := &appdash.Service{Decks: memDeckRepo{store}, Documents: memDocRepo{store}, Files: memFileStore{store}}

	srv := httptest.NewServer(NewRouter(authSvc, deckSvc, roomSvc, dashSvc, 8<<20, nil))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, deckDone: deckDone}
}

func (f *fixture) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func (f *fixture) doJSON(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	b, _ := json.Marshal(payload)
	return f.do(t, method, path, token, bytes.NewReader(b), "application/json")
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	resp, body := f.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "supersecret", "name": "Ada",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, resp.StatusCode, body)
	}
	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &res); err != nil || res.AccessToken == "" {
		t.Fatalf("register %s: bad body %s", email, body)
	}
	return res.AccessToken
}

func multipartBody(t *testing.T, filename string, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func (f *fixture) uploadDeck(t *testing.T, token, filename string) domdecks.PitchDeck {
	t.Helper()
	body, ct := multipartBody(t, filename, "deck-bytes", nil)
	resp, b := f.do(t, http.MethodPost, "/api/pitch-deck/upload", token, body, ct)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", resp.StatusCode, b)
	}
	var deck domdecks.PitchDeck
	if err := json.Unmarshal(b, &deck); err != nil {
		t.Fatalf("upload body: %v", err)
	}
	return deck
}

//
// tests
//

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "founder@example.com")

	resp, body := f.do(t, http.MethodGet, "/api/auth/me", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d body %s", resp.StatusCode, body)
	}
	var u users.User
	if err := json.Unmarshal(body, &u); err != nil || u.Email != "founder@example.com" {
		t.Errorf("me body = %s", body)
	}
	if strings.Contains(string(body), "password") {
		t.Errorf("me leaks password material: %s", body)
	}

	resp, body = f.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "founder@example.com", "password": "supersecret", "name": "Ada",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate register: status %d body %s", resp.StatusCode, body)
	}

	resp, _ = f.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "founder@example.com", "password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: status %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/pitch-decks", "/api/data-room", "/api/dashboard/stats", "/api/history", "/api/auth/me"} {
		resp, _ := f.do(t, http.MethodGet, path, "", nil, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status %d, want 401", path, resp.StatusCode)
		}
		resp, _ = f.do(t, http.MethodGet, path, "garbage-token", nil, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s with garbage token: status %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestDeckUploadAndAnalyze(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "founder@example.com")

	deck := f.uploadDeck(t, token, "seed.pdf")
	if deck.Status != records.StatusUploaded || deck.FileType != "pdf" {
		t.Errorf("uploaded deck = %+v", deck)
	}

	resp, b := f.do(t, http.MethodPost, "/api/pitch-deck/"+string(deck.ID)+"/analyze", token, nil, "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("analyze: status %d body %s", resp.StatusCode, b)
	}
	var analyzing domdecks.PitchDeck
	if err := json.Unmarshal(b, &analyzing); err != nil || analyzing.Status != records.StatusAnalyzing {
		t.Errorf("analyze body = %s", b)
	}

	select {
	case <-f.deckDone:
	case <-time.After(3 * time.Second):
		t.Fatal("analysis did not finish")
	}

	resp, b = f.do(t, http.MethodGet, "/api/pitch-deck/"+string(deck.ID), token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status %d", resp.StatusCode)
	}
	var final domdecks.PitchDeck
	if err := json.Unmarshal(b, &final); err != nil {
		t.Fatal(err)
	}
	if final.Status != records.StatusAnalyzed || final.Analysis == nil || final.Analysis.Deck == nil {
		t.Errorf("final deck = %s", b)
	}
}

func TestDeckAnalyzeConflict(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "founder@example.com")
	deck := f.uploadDeck(t, token, "seed.pdf")

	resp, _ := f.do(t, http.MethodPost, "/api/pitch-deck/"+string(deck.ID)+"/analyze", token, nil, "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("first analyze: status %d", resp.StatusCode)
	}
	// second trigger races the background run; either it gets in before the
	// run finishes (409) or after (202). Only the in-flight window conflicts.
	resp, b := f.do(t, http.MethodPost, "/api/pitch-deck/"+string(deck.ID)+"/analyze", token, nil, "")
	if resp.StatusCode != http.StatusConflict && resp.StatusCode != http.StatusAccepted {
		t.Fatalf("second analyze: status %d body %s", resp.StatusCode, b)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-f.deckDone:
		case <-time.After(3 * time.Second):
			return
		}
	}
}

func TestDeckUploadRejectsBadType(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "founder@example.com")

	body, ct := multipartBody(t, "notes.exe", "x", nil)
	resp, b := f.do(t, http.MethodPost, "/api/pitch-deck/upload", token, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("exe upload: status %d body %s", resp.StatusCode, b)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	deck := f.uploadDeck(t, alice, "seed.pdf")

	resp, _ := f.do(t, http.MethodGet, "/api/pitch-deck/"+string(deck.ID), bob, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign get: status %d, want 404", resp.StatusCode)
	}
	resp, _ = f.do(t, http.MethodDelete, "/api/pitch-deck/"+string(deck.ID), bob, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign delete: status %d, want 404", resp.StatusCode)
	}

	resp, b := f.do(t, http.MethodGet, "/api/pitch-decks", bob, nil, "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(b)) != "[]" {
		t.Errorf("bob's list: status %d body %s, want empty array", resp.StatusCode, b)
	}
}

func TestDataRoomEndpoints(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "founder@example.com")

	resp, b := f.do(t, http.MethodGet, "/api/data-room/categories", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("categories: status %d", resp.StatusCode)
	}
	var cats []domroom.Category
	if err := json.Unmarshal(b, &cats); err != nil || len(cats) != 8 {
		t.Fatalf("categories body = %s", b)
	}

	body, ct := multipartBody(t, "pnl.xlsx", "cells", map[string]string{"category": "financials"})
	resp, b = f.do(t, http.MethodPost, "/api/data-room/upload", token, body, ct)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", resp.StatusCode, b)
	}
	var doc domroom.Document
	if err := json.Unmarshal(b, &doc); err != nil || doc.Category != "financials" {
		t.Fatalf("upload body = %s", b)
	}

	body, ct = multipartBody(t, "x.pdf", "x", map[string]string{"category": "nonsense"})
	resp, _ = f.do(t, http.MethodPost, "/api/data-room/upload", token, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad category upload: status %d", resp.StatusCode)
	}

	body, ct = multipartBody(t, "x.pdf", "x", nil)
	resp, _ = f.do(t, http.MethodPost, "/api/data-room/upload", token, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing category upload: status %d", resp.StatusCode)
	}

	resp, b = f.do(t, http.MethodGet, "/api/data-room?category=financials", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	var list []domroom.Document
	if err := json.Unmarshal(b, &list); err != nil || len(list) != 1 {
		t.Errorf("filtered list body = %s", b)
	}
	resp, b = f.do(t, http.MethodGet, "/api/data-room?category=legal", token, nil, "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(b)) != "[]" {
		t.Errorf("empty-category list: status %d body %s", resp.StatusCode, b)
	}
}

func TestDashboardAndHistory(t *testing.T) {
	f := newFixture(t)
	token := f.register(t, "founder@example.com")

	f.uploadDeck(t, token, "seed.pdf")
	body, ct := multipartBody(t, "org.pdf", "x", map[string]string{"category": "staff"})
	resp, b := f.do(t, http.MethodPost, "/api/data-room/upload", token, body, ct)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("doc upload: status %d body %s", resp.StatusCode, b)
	}

	resp, b = f.do(t, http.MethodGet, "/api/dashboard/stats", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: status %d", resp.StatusCode)
	}
	var stats appdash.Stats
	if err := json.Unmarshal(b, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalPitchDecks != 1 || stats.TotalDocuments != 1 || stats.PendingAnalysis != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.DocumentsByCategory) != 8 {
		t.Errorf("by-category keys = %d, want 8", len(stats.DocumentsByCategory))
	}

	resp, b = f.do(t, http.MethodGet, "/api/history", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: status %d", resp.StatusCode)
	}
	var hist []records.HistoryEntry
	if err := json.Unmarshal(b, &hist); err != nil || len(hist) != 2 {
		t.Fatalf("history body = %s", b)
	}

	resp, _ = f.do(t, http.MethodDelete, "/api/history/clear", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear: status %d", resp.StatusCode)
	}
	resp, b = f.do(t, http.MethodGet, "/api/history", token, nil, "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(b)) != "[]" {
		t.Errorf("history after clear: status %d body %s", resp.StatusCode, b)
	}
}
