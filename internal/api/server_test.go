package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/rescue/internal/processor"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
	"github.com/MikeSquared-Agency/rescue/internal/store"
)

const kitchen = "INT. KITCHEN - DAY\nJOHN\nHello there, how are you today?\nMARY\nI'm fine thanks for asking."

type fixedStats struct{}

func (fixedStats) Stats() processor.Stats { return processor.Stats{Processed: 7, Failed: 1} }

func newTestServer(t *testing.T, token string) (*Server, *store.SQLite) {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "rescue.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewServer(8760, token, db, profile.Default(), fixedStats{}), db
}

func do(srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	w := do(srv, "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	w := do(srv, "GET", "/api/v1/rescue/status", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Agent         string          `json:"agent"`
		ParserVersion string          `json:"parser_version"`
		Profile       string          `json:"profile"`
		Store         bool            `json:"store"`
		Events        processor.Stats `json:"events"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Agent != "rescue" || body.ParserVersion != "rescue-1.0" || body.Profile != "rescue" || !body.Store {
		t.Errorf("status = %+v", body)
	}
	if body.Events.Processed != 7 || body.Events.Failed != 1 {
		t.Errorf("events = %+v", body.Events)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	w := do(srv, "GET", "/nonexistent", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv, _ := newTestServer(t, "s3cret")

	if w := do(srv, "GET", "/api/v1/rescue/status", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/rescue/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/rescue/status", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", w.Code)
	}

	if w := do(srv, "GET", "/health", "", ""); w.Code != http.StatusOK {
		t.Errorf("health should not require auth, got %d", w.Code)
	}
}

func TestProfilesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	w := do(srv, "GET", "/api/v1/rescue/profiles", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Default  string            `json:"default"`
		Profiles []profile.Profile `json:"profiles"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Default != "rescue" || len(body.Profiles) != 2 {
		t.Errorf("profiles = %s / %d", body.Default, len(body.Profiles))
	}
}

func TestParseText(t *testing.T) {
	srv, db := newTestServer(t, "")

	w := do(srv, "POST", "/api/v1/rescue/parse?profile=direct&slug=kitchen-2001", "text/plain", kitchen)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var doc screenplay.ParsedDocument
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Profile != "direct" || doc.Slug != "kitchen-2001" || doc.Year != 2001 {
		t.Errorf("doc = %s/%s/%d", doc.Profile, doc.Slug, doc.Year)
	}
	if doc.Metrics.UniqueCharacters != 2 {
		t.Errorf("characters = %d", doc.Metrics.UniqueCharacters)
	}

	if _, err := db.GetDocument(context.Background(), "kitchen-2001"); err != store.ErrNotFound {
		t.Errorf("parse without save should not store, got %v", err)
	}
}

func TestParseJSONAndSave(t *testing.T) {
	srv, _ := newTestServer(t, "")

	raw := `{"title":"Heat","scenes":[{"slugline":"INT. BANK - DAY","action_text":"NEIL Nobody move, please."}]}`
	w := do(srv, "POST", "/api/v1/rescue/parse?save=true", "application/json", raw)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(srv, "GET", "/api/v1/rescue/documents/heat", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected stored document, got %d", w.Code)
	}
	var doc screenplay.ParsedDocument
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Heat" || doc.Metrics.TotalScenes != 1 {
		t.Errorf("doc = %+v", doc)
	}

	w = do(srv, "GET", "/api/v1/rescue/documents?limit=10", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list struct {
		Documents []store.DocumentRow `json:"documents"`
		Count     int                 `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 || list.Documents[0].Slug != "heat" {
		t.Errorf("list = %+v", list)
	}
}

func TestParseErrors(t *testing.T) {
	srv, _ := newTestServer(t, "")

	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		want        int
	}{
		{"unknown profile", "/api/v1/rescue/parse?profile=nope", "text/plain", kitchen, http.StatusBadRequest},
		{"bad json", "/api/v1/rescue/parse", "application/json", "{", http.StatusBadRequest},
		{"no identity", "/api/v1/rescue/parse", "application/json", `{"text":"hi"}`, http.StatusBadRequest},
		{"save without slug", "/api/v1/rescue/parse?save=true", "text/plain", kitchen, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(srv, "POST", tt.target, tt.contentType, tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestDocumentsErrors(t *testing.T) {
	srv, _ := newTestServer(t, "")

	if w := do(srv, "GET", "/api/v1/rescue/documents/missing", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing document: expected 404, got %d", w.Code)
	}
	if w := do(srv, "GET", "/api/v1/rescue/documents?limit=many", "", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}
	w := do(srv, "GET", "/api/v1/rescue/documents", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"documents":[]`) {
		t.Errorf("empty list = %d %s", w.Code, w.Body.String())
	}

	noStore := NewServer(8760, "", nil, profile.Default(), nil)
	if w := do(noStore, "GET", "/api/v1/rescue/documents", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("no store: expected 503, got %d", w.Code)
	}
	if w := do(noStore, "POST", "/api/v1/rescue/parse?save=true&slug=k", "text/plain", kitchen); w.Code != http.StatusServiceUnavailable {
		t.Errorf("save without store: expected 503, got %d", w.Code)
	}
}
