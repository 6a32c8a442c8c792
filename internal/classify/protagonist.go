package classify

import (
	"math"
	"sort"

	"github.com/MikeSquared-Agency/rescue/internal/cast"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

type candidate struct {
	name  string
	score float64
}

// Protagonist ranks valid characters by scene presence, dialogue share and
// first/last scene appearance. It returns nil when no character qualifies.
func Protagonist(chars []screenplay.CharacterStats, totalScenes int, p *profile.Profile) *screenplay.Protagonist {
	var valid []screenplay.CharacterStats
	totalDialogues := 0
	for _, c := range chars {
		if !cast.ValidName(c.Name, p) {
			continue
		}
		valid = append(valid, c)
		totalDialogues += c.DialogueLines
	}
	if len(valid) == 0 {
		return nil
	}

	w := p.Weights
	ranked := make([]candidate, 0, len(valid))
	for _, c := range valid {
		var s float64
		if totalScenes > 0 {
			s += w.ScenePresence * float64(len(c.Scenes)) / float64(totalScenes)
		}
		if totalDialogues > 0 {
			s += w.Dialogue * float64(c.DialogueLines) / float64(totalDialogues)
		}
		if hasScene(c.Scenes, 0) {
			s += w.FirstScene
		}
		if totalScenes > 0 && hasScene(c.Scenes, totalScenes-1) {
			s += w.LastScene
		}
		ranked = append(ranked, candidate{name: c.Name, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	top := ranked[0]
	out := &screenplay.Protagonist{Name: top.name, Score: top.score}
	if len(ranked) > 1 {
		out.RunnerUp = ranked[1].name
	}

	switch {
	case len(ranked) >= 3 && top.score-ranked[2].score < w.EnsembleThreshold*top.score:
		out.IsEnsemble = true
		out.Confidence = w.EnsembleConfidence
	case len(ranked) > 1:
		out.Confidence = math.Min(w.ConfidenceBase+w.GapMultiplier*(top.score-ranked[1].score), 1)
	default:
		out.Confidence = math.Min(w.ConfidenceBase+w.GapMultiplier*w.SoloGap, 1)
	}
	return out
}

func hasScene(scenes []int, idx int) bool {
	for _, s := range scenes {
		if s == idx {
			return true
		}
	}
	return false
}
