package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/rescue/internal/document"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// MaxListedErrors caps how many failed documents a summary names.
const MaxListedErrors = 5

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostRunSummary posts a batch run summary as a standalone message and
// returns its timestamp, which later thread replies hang off.
func (p *Poster) PostRunSummary(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	ts, err := p.post(ctx, body)
	if err != nil {
		return "", err
	}
	p.logger.Info("posted run summary to slack", "ts", ts)
	return ts, nil
}

// PostThread posts a threaded reply to a message.
func (p *Poster) PostThread(ctx context.Context, threadTS, text string) error {
	body, err := json.Marshal(map[string]any{
		"channel":   p.channel,
		"thread_ts": threadTS,
		"text":      text,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = p.post(ctx, body)
	return err
}

func (p *Poster) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

// FormatRunSummary renders a corpus summary and the run's failures as
// Slack mrkdwn.
func FormatRunSummary(s document.Summary, processed int, errorLog []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Rescue Batch Summary* (%s)\n", s.Version)
	fmt.Fprintf(&sb, "Processed: %d | Errors: %d\n\n", processed, len(errorLog))

	q := s.Quality
	fmt.Fprintf(&sb, "*Quality*: %d high, %d medium, %d low\n", q.HighConfidence, q.MediumConfidence, q.LowConfidence)
	fmt.Fprintf(&sb, "  with characters %.1f%% | with dialogue %.1f%% | with scenes %.1f%%\n",
		q.CharactersPercent, q.DialoguePercent, q.ScenesPercent)

	a := s.AvgMetrics
	fmt.Fprintf(&sb, "*Averages*: %.1f scenes, %.1f min, %.1f characters, %.1f dialogues, ratio %.2f\n",
		a.AvgScenes, a.AvgRuntime, a.AvgCharacters, a.AvgDialogues, a.AvgDialogueRatio)

	if len(s.Genres) > 0 {
		labels := make([]string, 0, len(s.Genres))
		for g := range s.Genres {
			labels = append(labels, g)
		}
		sort.Slice(labels, func(i, j int) bool {
			if s.Genres[labels[i]] != s.Genres[labels[j]] {
				return s.Genres[labels[i]] > s.Genres[labels[j]]
			}
			return labels[i] < labels[j]
		})
		parts := make([]string, 0, len(labels))
		for _, g := range labels {
			parts = append(parts, fmt.Sprintf("%s %d", g, s.Genres[g]))
		}
		fmt.Fprintf(&sb, "*Genres*: %s\n", strings.Join(parts, ", "))
	}

	if len(s.TopExamples) > 0 {
		sb.WriteString("\n*Top examples*\n")
		for i, ex := range s.TopExamples {
			fmt.Fprintf(&sb, "%d. %s [%s] %d scenes, %d characters, %d dialogues\n",
				i+1, ex.Title, ex.Genre, ex.Scenes, ex.Characters, ex.Dialogues)
		}
	}

	if len(errorLog) > 0 {
		sb.WriteString("\n*Failures*\n")
		for i, e := range errorLog {
			if i == MaxListedErrors {
				fmt.Fprintf(&sb, "  ...and %d more\n", len(errorLog)-MaxListedErrors)
				break
			}
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}

	return sb.String()
}

// FormatFailures lists every failed document, one per line, for a thread
// reply under a summary that had to truncate them.
func FormatFailures(errorLog []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*All failures* (%d)\n", len(errorLog))
	for _, e := range errorLog {
		fmt.Fprintf(&sb, "- %s\n", e)
	}
	return sb.String()
}
