// Package batch parses a directory of scraped scripts into ParsedDocuments
// and a corpus summary.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/hermes"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/schema"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
	"github.com/MikeSquared-Agency/rescue/internal/slack"
	"github.com/MikeSquared-Agency/rescue/internal/store"
)

// SummaryFile is written to the output directory after every run.
const SummaryFile = "summary.json"

// Publisher is the slice of the event bus the runner needs.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier posts a run summary somewhere humans will read it.
type Notifier interface {
	PostRunSummary(ctx context.Context, text string) (string, error)
	PostThread(ctx context.Context, threadTS, text string) error
}

// Config holds the batch command configuration.
type Config struct {
	InputDir     string
	OutputDir    string
	Profile      profile.Profile
	Workers      int
	StatePath    string // optional: resumable progress file
	Resume       bool   // skip files the state already lists
	SlackToken   string // optional: Slack bot token for the run summary
	SlackChannel string
}

// Report is the outcome of one run.
type Report struct {
	RunID     string           `json:"run_id"`
	Total     int              `json:"total"`
	Processed int              `json:"processed"`
	Skipped   int              `json:"skipped"`
	Errors    int              `json:"errors"`
	ErrorLog  []string         `json:"errorLog"`
	Summary   document.Summary `json:"summary"`
}

// Runner orchestrates a batch run.
type Runner struct {
	cfg       Config
	store     store.Documents
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner creates a batch runner. docs and pub may be nil.
func NewRunner(cfg Config, docs store.Documents, pub Publisher, logger *slog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	r := &Runner{
		cfg:       cfg,
		store:     docs,
		publisher: pub,
		logger:    logger,
		now:       time.Now,
	}
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		r.notifier = slack.NewPoster(cfg.SlackToken, cfg.SlackChannel, logger)
	}
	return r
}

type outcome struct {
	path string
	doc  screenplay.ParsedDocument
	err  error
}

// Run executes the batch. Per-document failures are logged into the report
// and never abort the run; only setup failures and cancellation return an
// error.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{ErrorLog: []string{}}

	state, err := LoadState(r.cfg.StatePath, r.cfg.Resume)
	if err != nil {
		return report, fmt.Errorf("load state: %w", err)
	}
	if err := state.Lock(); err != nil {
		return report, err
	}
	defer func() {
		if err := state.Unlock(); err != nil {
			r.logger.Warn("failed to release state lock", "error", err)
		}
	}()

	files, err := r.discoverFiles()
	if err != nil {
		return report, fmt.Errorf("discover files: %w", err)
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output dir: %w", err)
	}

	var pending []string
	for _, f := range files {
		if state.IsProcessed(f) {
			report.Skipped++
			continue
		}
		pending = append(pending, f)
	}
	report.Total = len(files)

	r.logger.Info("files discovered",
		"total", len(files),
		"pending", len(pending),
		"skipped", report.Skipped,
		"workers", r.cfg.Workers,
		"profile", r.cfg.Profile.Name,
	)

	outcomes := make([]outcome, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.parseFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Info("batch interrupted, saving state")
		_ = state.Save()
		return report, err
	}

	// Writes happen in discovery order so slug collisions resolve the same
	// way on every run.
	var docs []screenplay.ParsedDocument
	written := make(map[string]string)
	for _, o := range outcomes {
		err := o.err
		if err == nil {
			if first, dup := written[o.doc.Slug]; dup {
				err = fmt.Errorf("duplicate slug %q, already written from %s", o.doc.Slug, first)
			}
		}
		if err == nil {
			err = r.emit(ctx, o.doc)
		}
		if err != nil {
			r.logger.Warn("document failed", "path", o.path, "error", err)
			msg := fmt.Sprintf("%s: %v", o.path, err)
			report.ErrorLog = append(report.ErrorLog, msg)
			state.AddError(msg)
			continue
		}
		written[o.doc.Slug] = o.path
		docs = append(docs, o.doc)
		state.MarkProcessed(o.path)
	}
	report.Processed = len(docs)
	report.Errors = len(report.ErrorLog)

	runID := uuid.New()
	report.RunID = runID.String()
	report.Summary = document.Summarize(docs, document.ParserVersion, r.now())
	if err := writeJSON(filepath.Join(r.cfg.OutputDir, SummaryFile), report.Summary); err != nil {
		return report, fmt.Errorf("write summary: %w", err)
	}
	if r.store != nil {
		if err := r.store.SaveSummary(ctx, runID, report.Summary); err != nil {
			r.logger.Warn("failed to store summary", "run_id", runID, "error", err)
		}
	}
	r.publish(hermes.SubjectBatchCompleted, hermes.BatchCompleted{
		RunID:       report.RunID,
		Total:       report.Total,
		Processed:   report.Processed,
		Errors:      report.Errors,
		OutputDir:   r.cfg.OutputDir,
		CompletedAt: r.now().UTC(),
	})

	if err := state.Save(); err != nil {
		r.logger.Warn("failed to save state", "error", err)
	}
	r.postRunSummary(ctx, report)

	r.logger.Info("batch complete",
		"run_id", report.RunID,
		"processed", report.Processed,
		"errors", report.Errors,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (r *Runner) parseFile(path string) outcome {
	raw, err := LoadFile(path)
	if err != nil {
		return outcome{path: path, err: err}
	}
	doc, err := document.Parse(raw, r.cfg.Profile)
	if err != nil {
		return outcome{path: path, err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return outcome{path: path, err: err}
	}
	return outcome{path: path, doc: doc}
}

// ErrUnsafeSlug rejects slugs that cannot name a file in the output
// directory.
var ErrUnsafeSlug = errors.New("slug cannot be used as an output file name")

// outputPath maps a slug to its file in the output directory. The slug must
// be a single path element and must not shadow the summary file.
func (r *Runner) outputPath(slug string) (string, error) {
	if slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) ||
		strings.EqualFold(slug+".json", SummaryFile) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeSlug, slug)
	}
	return filepath.Join(r.cfg.OutputDir, slug+".json"), nil
}

// emit writes doc to the output directory, then the store, then the bus.
func (r *Runner) emit(ctx context.Context, doc screenplay.ParsedDocument) error {
	path, err := r.outputPath(doc.Slug)
	if err != nil {
		return err
	}
	if err := writeJSON(path, doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if r.store != nil {
		if _, err := r.store.SaveDocument(ctx, doc); err != nil {
			return fmt.Errorf("store document: %w", err)
		}
	}
	r.publish(hermes.SubjectDocumentParsed, hermes.NewDocumentParsed(doc, r.now()))
	return nil
}

func (r *Runner) publish(subject string, event any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(subject, event); err != nil {
		r.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// postRunSummary posts the run summary to Slack. If Slack is not
// configured, it logs the summary instead.
func (r *Runner) postRunSummary(ctx context.Context, report Report) {
	text := slack.FormatRunSummary(report.Summary, report.Processed, report.ErrorLog)
	if r.notifier == nil {
		r.logger.Debug("batch summary (no Slack configured)", "summary", text)
		return
	}
	ts, err := r.notifier.PostRunSummary(ctx, text)
	if err != nil {
		r.logger.Warn("failed to post batch summary to Slack, logging instead",
			"error", err,
			"summary", text,
		)
		return
	}
	if len(report.ErrorLog) > slack.MaxListedErrors {
		if err := r.notifier.PostThread(ctx, ts, slack.FormatFailures(report.ErrorLog)); err != nil {
			r.logger.Warn("failed to post failure list to Slack", "error", err)
		}
	}
}

func (r *Runner) discoverFiles() ([]string, error) {
	in, err := filepath.Abs(r.cfg.InputDir)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(r.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	if in == out {
		return nil, errors.New("input and output directories must differ")
	}
	info, err := os.Stat(in)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", in)
	}

	var files []string
	err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.logger.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path == out {
				return filepath.SkipDir
			}
			return nil
		}
		if Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
