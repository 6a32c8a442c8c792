package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/processor"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/schema"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
	"github.com/MikeSquared-Agency/rescue/internal/store"
)

// maxBodyBytes caps the size of a script posted to /parse.
const maxBodyBytes = 16 << 20

// StatsSource reports event processing counters.
type StatsSource interface {
	Stats() processor.Stats
}

type Server struct {
	router  *chi.Mux
	port    int
	docs    store.Documents
	profile profile.Profile
	events  StatsSource
	http    *http.Server
}

// NewServer wires the HTTP API. docs and events may be nil; p is the profile
// used when a request names none.
func NewServer(port int, apiToken string, docs store.Documents, p profile.Profile, events StatsSource) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		docs:    docs,
		profile: p,
		events:  events,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1/rescue", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Get("/status", s.status)
		r.Get("/profiles", s.profiles)
		r.Post("/parse", s.parse)
		r.Get("/documents", s.listDocuments)
		r.Get("/documents/{slug}", s.getDocument)
	})

	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	slog.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// BearerAuthMiddleware rejects requests without the configured bearer
// token. An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"agent":          "rescue",
		"parser_version": document.ParserVersion,
		"profile":        s.profile.Name,
		"store":          s.docs != nil,
	}
	if s.events != nil {
		body["events"] = s.events.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) profiles(w http.ResponseWriter, r *http.Request) {
	var list []profile.Profile
	seen := false
	for _, name := range profile.Names() {
		p, err := profile.Named(name)
		if err != nil {
			continue
		}
		if p.Name == s.profile.Name {
			p, seen = s.profile, true
		}
		list = append(list, p)
	}
	if !seen {
		list = append(list, s.profile)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"default":  s.profile.Name,
		"profiles": list,
	})
}

// parse accepts either a JSON RawScript or bare script text. With
// ?save=true the result is also stored.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	p := s.profile
	if name := r.URL.Query().Get("profile"); name != "" && name != s.profile.Name {
		named, err := profile.Named(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p = named
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "script too large")
		return
	}

	var doc screenplay.ParsedDocument
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw screenplay.RawScript
		if err := json.Unmarshal(body, &raw); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
			return
		}
		doc, err = document.Parse(raw, p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		doc = document.ParseText(string(body), p)
		if slug := r.URL.Query().Get("slug"); slug != "" {
			doc.Slug = document.Slugify(slug)
			doc.Title = document.TitleFromSlug(doc.Slug)
			doc.Year = document.YearFromSlug(doc.Slug)
		}
	}

	if r.URL.Query().Get("save") == "true" {
		if s.docs == nil {
			writeError(w, http.StatusServiceUnavailable, "no document store configured")
			return
		}
		if err := schema.Validate(doc); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if _, err := s.docs.SaveDocument(r.Context(), doc); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("save failed: %v", err))
			return
		}
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		writeError(w, http.StatusServiceUnavailable, "no document store configured")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.docs.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list failed: %v", err))
		return
	}
	if rows == nil {
		rows = []store.DocumentRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": rows,
		"count":     len(rows),
	})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		writeError(w, http.StatusServiceUnavailable, "no document store configured")
		return
	}
	doc, err := s.docs.GetDocument(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
