package classify

import "github.com/MikeSquared-Agency/rescue/internal/screenplay"

const (
	highTier   = 70
	mediumTier = 40
)

// Quality grades how much structure was recovered. The points are additive
// and the tier thresholds fixed.
func Quality(m screenplay.Metrics, scenes []screenplay.Scene) screenplay.Quality {
	q := screenplay.Quality{
		CharactersFound: m.UniqueCharacters,
		DialoguesFound:  m.DialogueCount,
		ScenesFound:     m.TotalScenes,
	}
	for _, s := range scenes {
		if s.Slugline != screenplay.Unknown {
			q.SluglinesFound = true
			break
		}
	}

	if q.CharactersFound > 0 {
		q.Score += 25
	}
	if q.CharactersFound > 5 {
		q.Score += 15
	}
	if q.CharactersFound > 10 {
		q.Score += 10
	}
	if q.DialoguesFound > 0 {
		q.Score += 25
	}
	if q.DialoguesFound > 20 {
		q.Score += 15
	}
	if q.ScenesFound > 10 {
		q.Score += 10
	}

	switch {
	case q.Score >= highTier:
		q.Confidence = screenplay.ConfidenceHigh
	case q.Score >= mediumTier:
		q.Confidence = screenplay.ConfidenceMedium
	default:
		q.Confidence = screenplay.ConfidenceLow
	}
	return q
}
