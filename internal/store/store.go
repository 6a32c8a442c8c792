// Package store persists parsed documents and batch summaries.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

// ErrNotFound is returned when no document has the requested slug.
var ErrNotFound = errors.New("document not found")

// Documents is implemented by both the Postgres and SQLite stores.
type Documents interface {
	SaveDocument(ctx context.Context, doc screenplay.ParsedDocument) (uuid.UUID, error)
	GetDocument(ctx context.Context, slug string) (*screenplay.ParsedDocument, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]DocumentRow, error)
	SaveSummary(ctx context.Context, runID uuid.UUID, s document.Summary) error
}

// DocumentRow is the list view of a stored document.
type DocumentRow struct {
	ID         uuid.UUID `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Year       int       `json:"year,omitempty"`
	Genre      string    `json:"genre"`
	Confidence string    `json:"confidence"`
	Scenes     int       `json:"scenes"`
	Characters int       `json:"characters"`
	Dialogues  int       `json:"dialogues"`
	ParsedAt   time.Time `json:"parsed_at"`
}

const defaultListLimit = 50

func listBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func encodeDocument(doc screenplay.ParsedDocument) ([]byte, error) {
	if doc.Slug == "" {
		return nil, fmt.Errorf("save document: %w", document.ErrNoIdentity)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte) (*screenplay.ParsedDocument, error) {
	var doc screenplay.ParsedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}
