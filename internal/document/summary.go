package document

import (
	"math"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

// TopExamples is how many documents the summary holds up as examples.
const TopExamples = 10

// Summary is the corpus-level reduction over parsed documents.
type Summary struct {
	Version     string         `json:"version"`
	Total       int            `json:"total"`
	ProcessedAt time.Time      `json:"processed_at"`
	Quality     QualityStats   `json:"quality"`
	AvgMetrics  AvgMetrics     `json:"avg_metrics"`
	Genres      map[string]int `json:"genres"`
	TopExamples []Example      `json:"top_examples"`
}

// QualityStats counts documents by what was recovered.
type QualityStats struct {
	WithCharacters    int     `json:"with_characters"`
	WithDialogue      int     `json:"with_dialogue"`
	WithScenes        int     `json:"with_scenes"`
	HighConfidence    int     `json:"high_confidence"`
	MediumConfidence  int     `json:"medium_confidence"`
	LowConfidence     int     `json:"low_confidence"`
	CharactersPercent float64 `json:"characters_percent"`
	DialoguePercent   float64 `json:"dialogue_percent"`
	ScenesPercent     float64 `json:"scenes_percent"`
	HighPercent       float64 `json:"high_percent"`
}

// AvgMetrics are per-document means.
type AvgMetrics struct {
	AvgScenes        float64 `json:"avg_scenes"`
	AvgRuntime       float64 `json:"avg_runtime"`
	AvgCharacters    float64 `json:"avg_characters"`
	AvgDialogues     float64 `json:"avg_dialogues"`
	AvgDialogueRatio float64 `json:"avg_dialogue_ratio"`
}

// Example is a compact pointer to a well-recovered document.
type Example struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Genre      string `json:"genre"`
	Scenes     int    `json:"scenes"`
	Characters int    `json:"characters"`
	Dialogues  int    `json:"dialogues"`
	Quality    int    `json:"quality"`
}

// Summarize reduces docs into a Summary stamped with version and now.
func Summarize(docs []screenplay.ParsedDocument, version string, now time.Time) Summary {
	s := Summary{
		Version:     version,
		Total:       len(docs),
		ProcessedAt: now.UTC(),
		Genres:      make(map[string]int),
		TopExamples: []Example{},
	}
	if len(docs) == 0 {
		return s
	}

	var scenes, runtime, chars, dialogues int
	var dialogueRatio float64
	for _, d := range docs {
		m := d.Metrics
		if m.UniqueCharacters > 0 {
			s.Quality.WithCharacters++
		}
		if m.DialogueCount > 0 {
			s.Quality.WithDialogue++
		}
		if d.Quality.SluglinesFound {
			s.Quality.WithScenes++
		}
		switch d.Quality.Confidence {
		case screenplay.ConfidenceHigh:
			s.Quality.HighConfidence++
		case screenplay.ConfidenceMedium:
			s.Quality.MediumConfidence++
		default:
			s.Quality.LowConfidence++
		}
		if d.Genre.Primary != "" {
			s.Genres[d.Genre.Primary]++
		}
		scenes += m.TotalScenes
		runtime += m.EstimatedRuntime
		chars += m.UniqueCharacters
		dialogues += m.DialogueCount
		dialogueRatio += m.DialogueRatio
	}

	n := float64(len(docs))
	pct := func(c int) float64 { return round(float64(c)/n*100, 1) }
	s.Quality.CharactersPercent = pct(s.Quality.WithCharacters)
	s.Quality.DialoguePercent = pct(s.Quality.WithDialogue)
	s.Quality.ScenesPercent = pct(s.Quality.WithScenes)
	s.Quality.HighPercent = pct(s.Quality.HighConfidence)

	s.AvgMetrics = AvgMetrics{
		AvgScenes:        round(float64(scenes)/n, 1),
		AvgRuntime:       round(float64(runtime)/n, 1),
		AvgCharacters:    round(float64(chars)/n, 1),
		AvgDialogues:     round(float64(dialogues)/n, 1),
		AvgDialogueRatio: round(dialogueRatio/n, 3),
	}

	ranked := make([]screenplay.ParsedDocument, len(docs))
	copy(ranked, docs)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Quality.Score != b.Quality.Score {
			return a.Quality.Score > b.Quality.Score
		}
		if a.Metrics.DialogueCount != b.Metrics.DialogueCount {
			return a.Metrics.DialogueCount > b.Metrics.DialogueCount
		}
		return a.Slug < b.Slug
	})
	for _, d := range limit(ranked, TopExamples) {
		s.TopExamples = append(s.TopExamples, Example{
			Slug:       d.Slug,
			Title:      d.Title,
			Genre:      d.Genre.Primary,
			Scenes:     d.Metrics.TotalScenes,
			Characters: d.Metrics.UniqueCharacters,
			Dialogues:  d.Metrics.DialogueCount,
			Quality:    d.Quality.Score,
		})
	}
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
