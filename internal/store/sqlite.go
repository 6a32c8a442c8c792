package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rescue_documents (
	id             TEXT PRIMARY KEY,
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
	document       TEXT NOT NULL,
	parsed_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rescue_summaries (
	id         TEXT PRIMARY KEY,
	version    TEXT NOT NULL,
	total      INTEGER NOT NULL,
	summary    TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

// SQLite is the single-file document store used by local batch runs.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return &SQLite{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the tables if they do not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLite) SaveDocument(ctx context.Context, doc screenplay.ParsedDocument) (uuid.UUID, error) {
	data, err := encodeDocument(doc)
	if err != nil {
		return uuid.Nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rescue_documents
			(id, slug, title, year, genre, confidence, profile, parser_version, scenes, characters, dialogues, document, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			genre = excluded.genre,
			confidence = excluded.confidence,
			profile = excluded.profile,
			parser_version = excluded.parser_version,
			scenes = excluded.scenes,
			characters = excluded.characters,
			dialogues = excluded.dialogues,
			document = excluded.document,
			parsed_at = excluded.parsed_at`,
		uuid.New().String(), doc.Slug, doc.Title, doc.Year, doc.Genre.Primary, string(doc.Quality.Confidence),
		doc.Profile, doc.ParserVersion, doc.Metrics.TotalScenes, doc.Metrics.UniqueCharacters,
		doc.Metrics.DialogueCount, string(data), now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert document %s: %w", doc.Slug, err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM rescue_documents WHERE slug = ?`, doc.Slug).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("read document id %s: %w", doc.Slug, err)
	}
	return uuid.Parse(id)
}

func (s *SQLite) GetDocument(ctx context.Context, slug string) (*screenplay.ParsedDocument, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM rescue_documents WHERE slug = ?`, slug).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", slug, err)
	}
	return decodeDocument([]byte(data))
}

func (s *SQLite) ListDocuments(ctx context.Context, limit, offset int) ([]DocumentRow, error) {
	limit, offset = listBounds(limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, title, year, genre, confidence, scenes, characters, dialogues, parsed_at
		FROM rescue_documents
		ORDER BY slug
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var (
			r            DocumentRow
			id, parsedAt string
		)
		if err := rows.Scan(&id, &r.Slug, &r.Title, &r.Year, &r.Genre, &r.Confidence,
			&r.Scenes, &r.Characters, &r.Dialogues, &parsedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse document id: %w", err)
		}
		if r.ParsedAt, err = time.Parse(time.RFC3339Nano, parsedAt); err != nil {
			return nil, fmt.Errorf("parse parsed_at: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveSummary(ctx context.Context, runID uuid.UUID, sum document.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rescue_summaries (id, version, total, summary, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		runID.String(), sum.Version, sum.Total, string(data), timeOrNow(sum.ProcessedAt).Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// SummaryCount reports how many batch summaries have been stored.
func (s *SQLite) SummaryCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rescue_summaries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}
	return n, nil
}
