package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

const (
	// SubjectScriptFetched carries raw scripts from the scraper.
	SubjectScriptFetched = "rescue.script.fetched"
	// SubjectDocumentParsed announces each stored ParsedDocument.
	SubjectDocumentParsed = "rescue.document.parsed"
	// SubjectBatchCompleted announces the end of a batch run.
	SubjectBatchCompleted = "rescue.batch.completed"
)

// DocumentParsed is the compact event published after a document is parsed.
type DocumentParsed struct {
	Slug       string                `json:"slug"`
	Title      string                `json:"title"`
	Profile    string                `json:"profile"`
	Genre      string                `json:"genre"`
	Scenes     int                   `json:"scenes"`
	Characters int                   `json:"characters"`
	Dialogues  int                   `json:"dialogues"`
	Confidence screenplay.Confidence `json:"confidence"`
	ParsedAt   time.Time             `json:"parsed_at"`
}

// NewDocumentParsed summarizes doc for the event bus.
func NewDocumentParsed(doc screenplay.ParsedDocument, at time.Time) DocumentParsed {
	return DocumentParsed{
		Slug:       doc.Slug,
		Title:      doc.Title,
		Profile:    doc.Profile,
		Genre:      doc.Genre.Primary,
		Scenes:     doc.Metrics.TotalScenes,
		Characters: doc.Metrics.UniqueCharacters,
		Dialogues:  doc.Metrics.DialogueCount,
		Confidence: doc.Quality.Confidence,
		ParsedAt:   at.UTC(),
	}
}

// BatchCompleted is published once per batch run.
type BatchCompleted struct {
	RunID       string    `json:"run_id"`
	Total       int       `json:"total"`
	Processed   int       `json:"processed"`
	Errors      int       `json:"errors"`
	OutputDir   string    `json:"output_dir"`
	CompletedAt time.Time `json:"completed_at"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("rescue"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Connected reports whether the underlying connection is up.
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
