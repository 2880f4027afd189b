package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	appauth "github.com/bryanwahyu/ventur-api/internal/application/auth"
	appdash "github.com/bryanwahyu/ventur-api/internal/application/dashboard"
	approom "github.com/bryanwahyu/ventur-api/internal/application/dataroom"
	appdecks "github.com/bryanwahyu/ventur-api/internal/application/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	domroom "github.com/bryanwahyu/ventur-api/internal/domain/dataroom"
	domdecks "github.com/bryanwahyu/ventur-api/internal/domain/decks"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
	"github.com/bryanwahyu/ventur-api/internal/domain/users"
	"github.com/bryanwahyu/ventur-api/internal/middleware"
)

type Router struct {
	authSvc   *appauth.Service
	deckSvc   *appdecks.Service
	roomSvc   *approom.Service
	dashSvc   *appdash.Service
	maxUpload int64
}

// NewRouter mounts the API surface under /api. Register/login/health are
// public; everything else sits behind the JWT middleware.
func NewRouter(authSvc *appauth.Service, deckSvc *appdecks.Service, roomSvc *approom.Service, dashSvc *appdash.Service, maxUpload int64, health http.HandlerFunc) http.Handler {
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	r := &Router{authSvc: authSvc, deckSvc: deckSvc, roomSvc: roomSvc, dashSvc: dashSvc, maxUpload: maxUpload}
	mux := chi.NewRouter()

	mux.Route("/api", func(rt chi.Router) {
		if health != nil {
			rt.Get("/health", health)
		} else {
			rt.Get("/health", func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte("ok"))
			})
		}

		rt.Post("/auth/register", r.wrap(r.handleRegister))
		rt.Post("/auth/login", r.wrap(r.handleLogin))

		rt.Group(func(pr chi.Router) {
			pr.Use(middleware.JWTAuth(r.authSvc.ParseToken))

			pr.Get("/auth/me", r.wrap(r.handleMe))

			pr.Post("/pitch-deck/upload", r.wrap(r.handleDeckUpload))
			pr.Post("/pitch-deck/{id}/analyze", r.wrap(r.handleDeckAnalyze))
			pr.Get("/pitch-decks", r.wrap(r.handleDeckList))
			pr.Get("/pitch-deck/{id}", r.wrap(r.handleDeckGet))
			pr.Delete("/pitch-deck/{id}", r.wrap(r.handleDeckDelete))

			pr.Get("/data-room/categories", r.wrap(r.handleCategories))
			pr.Post("/data-room/upload", r.wrap(r.handleRoomUpload))
			pr.Post("/data-room/{id}/analyze", r.wrap(r.handleRoomAnalyze))
			pr.Get("/data-room", r.wrap(r.handleRoomList))
			pr.Get("/data-room/{id}", r.wrap(r.handleRoomGet))
			pr.Delete("/data-room/{id}", r.wrap(r.handleRoomDelete))

			pr.Get("/dashboard/stats", r.wrap(r.handleStats))
			pr.Get("/history", r.wrap(r.handleHistory))
			pr.Delete("/history/clear", r.wrap(r.handleClearHistory))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// httpError lets a handler pick its own status code.
type httpError struct {
	code int
	msg  string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(msg string) error { return &httpError{code: http.StatusBadRequest, msg: msg} }

// wrap translates the error taxonomy into JSON responses. NotFound covers
// foreign-owned records too, so ownership never leaks.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var herr *httpError
		switch {
		case errors.As(err, &herr):
			writeError(w, herr.code, herr.msg)
		case errors.Is(err, records.ErrNotFound), errors.Is(err, users.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, appauth.ErrInvalidCredentials), errors.Is(err, appauth.ErrInvalidToken):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, appauth.ErrEmailTaken),
			errors.Is(err, appauth.ErrValidation),
			errors.Is(err, domroom.ErrInvalidCategory),
			errors.Is(err, records.ErrUnsupportedFileType):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, records.ErrAnalysisInFlight):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, analysis.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "ai quota exceeded")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	_ = writeJSON(w, code, map[string]string{"error": msg})
}

//
// ==== auth ====
//

// POST /api/auth/register
func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var in appauth.RegisterInput
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		return badRequest("invalid request body")
	}
	if err := middleware.ValidateEmail(strings.TrimSpace(in.Email)); err != nil {
		return badRequest(err.Error())
	}
	res, err := r.authSvc.Register(req.Context(), in)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, res)
}

// POST /api/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var in appauth.LoginInput
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		return badRequest("invalid request body")
	}
	res, err := r.authSvc.Login(req.Context(), in)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /api/auth/me
func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) error {
	u, err := r.authSvc.Me(req.Context(), middleware.GetUserID(req.Context()))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, u)
}

//
// ==== pitch decks ====
//

// POST /api/pitch-deck/upload (multipart: file)
func (r *Router) handleDeckUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		return badRequest("invalid multipart body or file too large")
	}
	file, hdr, err := req.FormFile("file")
	if err != nil {
		return badRequest("file field is required")
	}
	defer file.Close()
	if err := middleware.ValidateFilename(hdr.Filename); err != nil {
		return badRequest(err.Error())
	}

	middleware.IncrementUploads()
	deck, err := r.deckSvc.Upload(req.Context(), appdecks.UploadCommand{
		UserID:   middleware.GetUserID(req.Context()),
		Filename: hdr.Filename,
		Size:     hdr.Size,
		Body:     file,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, deck)
}

// POST /api/pitch-deck/{id}/analyze
// Flips the record to analyzing and returns immediately; the result lands
// in the background and the client polls the record for it.
func (r *Router) handleDeckAnalyze(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return badRequest(err.Error())
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	deck, err := r.deckSvc.Analyze(req.Context(), middleware.GetUserID(req.Context()), domdecks.DeckID(id))
	if err != nil {
		middleware.DecrementAnalysesRunning()
		return err
	}
	return writeJSON(w, http.StatusAccepted, deck)
}

// GET /api/pitch-decks
func (r *Router) handleDeckList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.deckSvc.List(req.Context(), middleware.GetUserID(req.Context()))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domdecks.PitchDeck{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/pitch-deck/{id}
func (r *Router) handleDeckGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	deck, err := r.deckSvc.Get(req.Context(), middleware.GetUserID(req.Context()), domdecks.DeckID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, deck)
}

// DELETE /api/pitch-deck/{id}
func (r *Router) handleDeckDelete(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := r.deckSvc.Delete(req.Context(), middleware.GetUserID(req.Context()), domdecks.DeckID(id)); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": "pitch deck deleted successfully"})
}

//
// ==== data room ====
//

// GET /api/data-room/categories
func (r *Router) handleCategories(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, domroom.Categories())
}

// POST /api/data-room/upload (multipart: file, category, subcategory?)
func (r *Router) handleRoomUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		return badRequest("invalid multipart body or file too large")
	}
	file, hdr, err := req.FormFile("file")
	if err != nil {
		return badRequest("file field is required")
	}
	defer file.Close()
	if err := middleware.ValidateFilename(hdr.Filename); err != nil {
		return badRequest(err.Error())
	}
	category := req.FormValue("category")
	if category == "" {
		return badRequest("category is required")
	}

	middleware.IncrementUploads()
	doc, err := r.roomSvc.Upload(req.Context(), approom.UploadCommand{
		UserID:      middleware.GetUserID(req.Context()),
		Filename:    hdr.Filename,
		Size:        hdr.Size,
		Category:    category,
		Subcategory: middleware.SanitizeString(req.FormValue("subcategory")),
		Body:        file,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, doc)
}

// POST /api/data-room/{id}/analyze
func (r *Router) handleRoomAnalyze(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return badRequest(err.Error())
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	doc, err := r.roomSvc.Analyze(req.Context(), middleware.GetUserID(req.Context()), domroom.DocumentID(id))
	if err != nil {
		middleware.DecrementAnalysesRunning()
		return err
	}
	return writeJSON(w, http.StatusAccepted, doc)
}

// GET /api/data-room?category=
func (r *Router) handleRoomList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.roomSvc.List(req.Context(), middleware.GetUserID(req.Context()), req.URL.Query().Get("category"))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domroom.Document{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/data-room/{id}
func (r *Router) handleRoomGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	doc, err := r.roomSvc.Get(req.Context(), middleware.GetUserID(req.Context()), domroom.DocumentID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, doc)
}

// DELETE /api/data-room/{id}
func (r *Router) handleRoomDelete(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := r.roomSvc.Delete(req.Context(), middleware.GetUserID(req.Context()), domroom.DocumentID(id)); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted successfully"})
}

//
// ==== dashboard & history ====
//

// GET /api/dashboard/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	stats, err := r.dashSvc.Stats(req.Context(), middleware.GetUserID(req.Context()))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, stats)
}

// GET /api/history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	list, err := r.dashSvc.History(req.Context(), middleware.GetUserID(req.Context()))
	if err != nil {
		return err
	}
	if list == nil {
		list = []records.HistoryEntry{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// DELETE /api/history/clear
func (r *Router) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	if err := r.dashSvc.ClearHistory(req.Context(), middleware.GetUserID(req.Context())); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": "history cleared successfully"})
}
