package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/rescue/internal/document"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatRunSummary(t *testing.T) {
	s := document.Summary{
		Version:    "rescue-1.0",
		Total:      3,
		Quality:    document.QualityStats{HighConfidence: 1, MediumConfidence: 1, LowConfidence: 1, CharactersPercent: 66.7},
		AvgMetrics: document.AvgMetrics{AvgScenes: 42.5, AvgRuntime: 101},
		Genres:     map[string]int{"drama": 1, "thriller": 2},
		TopExamples: []document.Example{
			{Slug: "heat-1995", Title: "Heat", Genre: "thriller", Scenes: 150, Characters: 30, Dialogues: 900},
		},
	}

	msg := FormatRunSummary(s, 3, []string{"broken.json: decode: unexpected EOF"})

	checks := []string{
		"rescue-1.0",
		"Processed: 3 | Errors: 1",
		"1 high, 1 medium, 1 low",
		"66.7%",
		"42.5 scenes",
		"thriller 2, drama 1",
		"1. Heat [thriller] 150 scenes",
		"broken.json: decode: unexpected EOF",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q\n%s", check, msg)
		}
	}
}

func TestFormatRunSummary_CapsErrors(t *testing.T) {
	var errs []string
	for i := 0; i < 8; i++ {
		errs = append(errs, fmt.Sprintf("doc-%d failed", i))
	}
	msg := FormatRunSummary(document.Summary{}, 0, errs)
	if !strings.Contains(msg, "...and 3 more") {
		t.Errorf("expected truncated error list, got %q", msg)
	}
	if strings.Contains(msg, "doc-5 failed") {
		t.Errorf("expected only the first %d errors listed", MaxListedErrors)
	}
}

func TestPostRunSummary_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}
		if payload["text"] != "hello" {
			t.Errorf("expected text hello, got %v", payload["text"])
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.PostRunSummary(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1234567890.123456" {
		t.Errorf("expected ts 1234567890.123456, got %q", ts)
	}
}

func TestPostRunSummary_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	if _, err := p.PostRunSummary(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for slack error response")
	}
}

func TestPostThread(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "2.0"})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	if err := p.PostThread(context.Background(), "1.0", "details"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["thread_ts"] != "1.0" || got["text"] != "details" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestFormatFailures(t *testing.T) {
	msg := FormatFailures([]string{"a.json: decode", "b.txt: duplicate slug"})
	for _, check := range []string{"*All failures* (2)", "- a.json: decode", "- b.txt: duplicate slug"} {
		if !strings.Contains(msg, check) {
			t.Errorf("expected %q in %q", check, msg)
		}
	}
}
