package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS rescue_documents (
	id             UUID PRIMARY KEY,
	slug           TEXT NOT NULL UNIQUE,
	title          TEXT NOT NULL,
	year           INTEGER NOT NULL DEFAULT 0,
	genre          TEXT NOT NULL,
	confidence     TEXT NOT NULL,
	profile        TEXT NOT NULL,
	parser_version TEXT NOT NULL,
	scenes         INTEGER NOT NULL,
	characters     INTEGER NOT NULL,
	dialogues      INTEGER NOT NULL,
	document       JSONB NOT NULL,
	parsed_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS rescue_summaries (
	id         UUID PRIMARY KEY,
	version    TEXT NOT NULL,
	total      INTEGER NOT NULL,
	summary    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Postgres is the server-side document store.
type Postgres struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveDocument upserts doc by slug and returns the row id, which is stable
// across re-parses of the same slug.
func (s *Postgres) SaveDocument(ctx context.Context, doc screenplay.ParsedDocument) (uuid.UUID, error) {
	data, err := encodeDocument(doc)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = s.pool.QueryRow(ctx, `
		INSERT INTO rescue_documents
			(id, slug, title, year, genre, confidence, profile, parser_version, scenes, characters, dialogues, document, parsed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			year = EXCLUDED.year,
			genre = EXCLUDED.genre,
			confidence = EXCLUDED.confidence,
			profile = EXCLUDED.profile,
			parser_version = EXCLUDED.parser_version,
			scenes = EXCLUDED.scenes,
			characters = EXCLUDED.characters,
			dialogues = EXCLUDED.dialogues,
			document = EXCLUDED.document,
			parsed_at = now()
		RETURNING id`,
		uuid.New(), doc.Slug, doc.Title, doc.Year, doc.Genre.Primary, string(doc.Quality.Confidence),
		doc.Profile, doc.ParserVersion, doc.Metrics.TotalScenes, doc.Metrics.UniqueCharacters,
		doc.Metrics.DialogueCount, data,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert document %s: %w", doc.Slug, err)
	}
	return id, nil
}

func (s *Postgres) GetDocument(ctx context.Context, slug string) (*screenplay.ParsedDocument, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM rescue_documents WHERE slug = $1`, slug).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", slug, err)
	}
	return decodeDocument(data)
}

func (s *Postgres) ListDocuments(ctx context.Context, limit, offset int) ([]DocumentRow, error) {
	limit, offset = listBounds(limit, offset)
	rows, err := s.pool.Query(ctx, `
		SELECT id, slug, title, year, genre, confidence, scenes, characters, dialogues, parsed_at
		FROM rescue_documents
		ORDER BY slug
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var r DocumentRow
		if err := rows.Scan(&r.ID, &r.Slug, &r.Title, &r.Year, &r.Genre, &r.Confidence,
			&r.Scenes, &r.Characters, &r.Dialogues, &r.ParsedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Postgres) SaveSummary(ctx context.Context, runID uuid.UUID, sum document.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO rescue_summaries (id, version, total, summary, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		runID, sum.Version, sum.Total, data, timeOrNow(sum.ProcessedAt),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
