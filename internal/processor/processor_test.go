package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/rescue/internal/hermes"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

const kitchen = "INT. KITCHEN - DAY\nJOHN\nHello there, how are you today?\nMARY\nI'm fine thanks for asking."

type memStore struct {
	docs []screenplay.ParsedDocument
	err  error
}

func (m *memStore) SaveDocument(_ context.Context, doc screenplay.ParsedDocument) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	m.docs = append(m.docs, doc)
	return uuid.New(), nil
}

type published struct {
	subject string
	data    any
}

type memBus struct {
	events []published
}

func (m *memBus) Publish(subject string, data any) error {
	m.events = append(m.events, published{subject, data})
	return nil
}

func newTestProcessor(s Saver, h Publisher) *Processor {
	p := New(s, h, profile.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return p
}

func encode(t *testing.T, evt ScriptFetched) []byte {
	t.Helper()
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandleScriptFetched(t *testing.T) {
	st := &memStore{}
	bus := &memBus{}
	p := newTestProcessor(st, bus)

	p.HandleScriptFetched(hermes.SubjectScriptFetched, encode(t, ScriptFetched{
		RawScript: screenplay.RawScript{Slug: "kitchen-2001", Text: kitchen, Source: "imsdb"},
	}))

	if len(st.docs) != 1 {
		t.Fatalf("expected 1 stored doc, got %d", len(st.docs))
	}
	doc := st.docs[0]
	if doc.Slug != "kitchen-2001" || doc.Year != 2001 || doc.Profile != "rescue" {
		t.Errorf("doc = %s/%d/%s", doc.Slug, doc.Year, doc.Profile)
	}

	if len(bus.events) != 1 || bus.events[0].subject != hermes.SubjectDocumentParsed {
		t.Fatalf("events = %+v", bus.events)
	}
	evt, ok := bus.events[0].data.(hermes.DocumentParsed)
	if !ok {
		t.Fatalf("event payload type %T", bus.events[0].data)
	}
	if evt.Slug != "kitchen-2001" || evt.Characters != 2 {
		t.Errorf("event = %+v", evt)
	}

	stats := p.Stats()
	if stats.Processed != 1 || stats.Failed != 0 || stats.LastSlug != "kitchen-2001" || stats.LastAt == nil {
		t.Errorf("stats = %+v", stats)
	}
}

func TestHandleScriptFetched_ProfileOverride(t *testing.T) {
	st := &memStore{}
	p := newTestProcessor(st, nil)

	p.HandleScriptFetched(hermes.SubjectScriptFetched, encode(t, ScriptFetched{
		RawScript: screenplay.RawScript{Slug: "k", Text: kitchen},
		Profile:   "direct",
	}))
	if len(st.docs) != 1 || st.docs[0].Profile != "direct" {
		t.Fatalf("docs = %+v", st.docs)
	}

	p.HandleScriptFetched(hermes.SubjectScriptFetched, encode(t, ScriptFetched{
		RawScript: screenplay.RawScript{Slug: "k", Text: kitchen},
		Profile:   "nope",
	}))
	if len(st.docs) != 1 {
		t.Error("unknown profile should not store a document")
	}
	if p.Stats().Failed != 1 {
		t.Errorf("stats = %+v", p.Stats())
	}
}

func TestHandleScriptFetched_Failures(t *testing.T) {
	bus := &memBus{}
	p := newTestProcessor(&memStore{err: errors.New("db down")}, bus)

	p.HandleScriptFetched(hermes.SubjectScriptFetched, []byte("{garbage"))
	p.HandleScriptFetched(hermes.SubjectScriptFetched, encode(t, ScriptFetched{RawScript: screenplay.RawScript{Text: kitchen}}))
	p.HandleScriptFetched(hermes.SubjectScriptFetched, encode(t, ScriptFetched{RawScript: screenplay.RawScript{Slug: "ok", Text: kitchen}}))

	if len(bus.events) != 0 {
		t.Errorf("nothing should be published on failure, got %+v", bus.events)
	}
	if s := p.Stats(); s.Failed != 3 || s.Processed != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestHandleScriptFetched_NoStore(t *testing.T) {
	bus := &memBus{}
	p := newTestProcessor(nil, bus)
	p.HandleScriptFetched(hermes.SubjectScriptFetched, encode(t, ScriptFetched{RawScript: screenplay.RawScript{Title: "Heat", Text: kitchen}}))
	if len(bus.events) != 1 {
		t.Fatalf("expected publish without a store, got %d events", len(bus.events))
	}
	if got := bus.events[0].data.(hermes.DocumentParsed).Slug; got != "heat" {
		t.Errorf("slug = %q", got)
	}
}
