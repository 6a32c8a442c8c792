package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/hermes"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/schema"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

// Saver persists parsed documents.
type Saver interface {
	SaveDocument(ctx context.Context, doc screenplay.ParsedDocument) (uuid.UUID, error)
}

// Publisher publishes events to the bus.
type Publisher interface {
	Publish(subject string, data any) error
}

// ScriptFetched is the inbound event: a raw script plus an optional
// heuristic profile name.
type ScriptFetched struct {
	screenplay.RawScript
	Profile string `json:"profile,omitempty"`
}

// Stats counts handled events since start.
type Stats struct {
	Processed int        `json:"processed"`
	Failed    int        `json:"failed"`
	LastSlug  string     `json:"last_slug,omitempty"`
	LastAt    *time.Time `json:"last_at,omitempty"`
}

// Processor turns fetched scripts into stored, announced documents.
type Processor struct {
	store   Saver
	hermes  Publisher
	profile profile.Profile
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	stats Stats
}

// New creates a processor. s and h may be nil; p is used when an event
// names no profile.
func New(s Saver, h Publisher, p profile.Profile, logger *slog.Logger) *Processor {
	return &Processor{
		store:   s,
		hermes:  h,
		profile: p,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleScriptFetched is the NATS handler for rescue.script.fetched.
func (p *Processor) HandleScriptFetched(subject string, data []byte) {
	ctx := context.Background()

	var evt ScriptFetched
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse script event", "subject", subject, "error", err)
		p.fail()
		return
	}

	prof := p.profile
	if evt.Profile != "" {
		named, err := profile.Named(evt.Profile)
		if err != nil {
			p.logger.Error("unknown profile", "slug", evt.Slug, "profile", evt.Profile, "error", err)
			p.fail()
			return
		}
		prof = named
	}

	doc, err := document.Parse(evt.RawScript, prof)
	if err != nil {
		p.logger.Error("parse failed", "slug", evt.Slug, "error", err)
		p.fail()
		return
	}
	if err := schema.Validate(doc); err != nil {
		p.logger.Error("parsed document failed validation", "slug", doc.Slug, "error", err)
		p.fail()
		return
	}

	if p.store != nil {
		id, err := p.store.SaveDocument(ctx, doc)
		if err != nil {
			p.logger.Error("persistence failed", "slug", doc.Slug, "error", err)
			p.fail()
			return
		}
		p.logger.Debug("document stored", "slug", doc.Slug, "id", id)
	}

	now := p.now()
	if p.hermes != nil {
		if err := p.hermes.Publish(hermes.SubjectDocumentParsed, hermes.NewDocumentParsed(doc, now)); err != nil {
			p.logger.Error("failed to publish document parsed", "slug", doc.Slug, "error", err)
		}
	}

	p.mu.Lock()
	p.stats.Processed++
	p.stats.LastSlug = doc.Slug
	at := now.UTC()
	p.stats.LastAt = &at
	p.mu.Unlock()

	p.logger.Info("script processed",
		"slug", doc.Slug,
		"profile", doc.Profile,
		"scenes", doc.Metrics.TotalScenes,
		"characters", doc.Metrics.UniqueCharacters,
		"confidence", doc.Quality.Confidence,
	)
}

// Stats returns a snapshot of the handled-event counters.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Processor) fail() {
	p.mu.Lock()
	p.stats.Failed++
	p.mu.Unlock()
}
