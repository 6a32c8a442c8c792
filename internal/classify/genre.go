package classify

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

// Structural adjustments applied on top of keyword counts.
const (
	nightThriller  = 10
	nightHorror    = 15
	talkyComedy    = 10
	talkyDrama     = 10
	quietAction    = 15
	nightCutoff    = 0.5
	talkyCutoff    = 0.5
	quietCutoff    = 0.3
	secondaryShare = 0.5
)

// Genre scores every profile genre by case-insensitive whole-word keyword
// hits in text, then applies the night and dialogue adjustments. Ties go to
// the genre listed first in the profile.
func Genre(text string, m screenplay.Metrics, genres []profile.GenreKeywords) screenplay.GenreResult {
	res := screenplay.GenreResult{Scores: make(map[string]int, len(genres))}
	if len(genres) == 0 {
		return res
	}

	scores := make([]int, len(genres))
	for i, g := range genres {
		if re := keywordPattern(g.Keywords); re != nil {
			scores[i] = len(re.FindAllStringIndex(text, -1))
		}
	}

	adjust := func(label string, delta int) {
		for i, g := range genres {
			if g.Label == label {
				scores[i] += delta
			}
		}
	}
	if m.NightRatio > nightCutoff {
		adjust("thriller", nightThriller)
		adjust("horror", nightHorror)
	}
	if m.DialogueRatio > talkyCutoff {
		adjust("comedy", talkyComedy)
		adjust("drama", talkyDrama)
	}
	if m.DialogueRatio < quietCutoff {
		adjust("action", quietAction)
	}

	primary := 0
	for i := range scores {
		res.Scores[genres[i].Label] = scores[i]
		if scores[i] > scores[primary] {
			primary = i
		}
	}
	res.Primary = genres[primary].Label

	second := -1
	for i := range scores {
		if i == primary {
			continue
		}
		if second < 0 || scores[i] > scores[second] {
			second = i
		}
	}
	if second >= 0 && scores[second] > 0 && float64(scores[second]) >= secondaryShare*float64(scores[primary]) {
		res.Secondary = genres[second].Label
	}
	return res
}

func keywordPattern(keywords []string) *regexp.Regexp {
	var alts []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			alts = append(alts, regexp.QuoteMeta(k))
		}
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}
