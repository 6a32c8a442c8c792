// Package classify derives whole-document signals from an assembled
// screenplay: metrics, genre, protagonist and a quality tier.
package classify

import (
	"math"
	"strings"

	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
	"github.com/MikeSquared-Agency/rescue/internal/slugline"
)

// Metrics computes the aggregate counts and ratios. text is the normalized
// document text; its whitespace tokens are the total word count.
func Metrics(text string, scenes []screenplay.Scene, chars []screenplay.CharacterStats, dialogues []screenplay.DialogueLine, wordsPerMinute int) screenplay.Metrics {
	m := screenplay.Metrics{
		TotalScenes:      len(scenes),
		TotalWords:       len(strings.Fields(text)),
		UniqueCharacters: len(chars),
		DialogueCount:    len(dialogues),
		NightRatio:       0.5,
	}

	if wordsPerMinute > 0 {
		m.EstimatedRuntime = int(math.Round(float64(m.TotalWords) / float64(wordsPerMinute)))
		m.EstimatedPages = m.EstimatedRuntime
	}

	locations := make(map[string]struct{})
	for _, s := range scenes {
		switch s.IntExt {
		case screenplay.Interior:
			m.IntCount++
		case screenplay.Exterior:
			m.ExtCount++
		}
		switch {
		case slugline.IsDay(s.Time):
			m.DayCount++
		case slugline.IsNight(s.Time):
			m.NightCount++
		}
		if s.Location != screenplay.Unknown && s.Location != "" {
			locations[s.Location] = struct{}{}
		}
	}
	m.UniqueLocations = len(locations)

	if m.TotalScenes > 0 {
		m.IntRatio = ratio(m.IntCount, m.TotalScenes)
	}
	if timed := m.DayCount + m.NightCount; timed > 0 {
		m.NightRatio = ratio(m.NightCount, timed)
	}

	for _, d := range dialogues {
		m.DialogueWords += d.Words
	}
	if m.TotalWords > 0 {
		m.DialogueRatio = ratio(m.DialogueWords, m.TotalWords)
	}
	return m
}

// ratio is num/den clamped to [0,1].
func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	r := float64(num) / float64(den)
	return math.Max(0, math.Min(1, r))
}
