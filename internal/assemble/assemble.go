// Package assemble joins slugline boundaries with the extracted cast: which
// characters are present in each scene, and how much dialogue it holds.
package assemble

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/rescue/internal/cast"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

// Assembly is the per-scene view of a document plus the cast with scene
// presence filled in.
type Assembly struct {
	Scenes     []screenplay.Scene
	Characters []screenplay.CharacterStats
	Dialogues  []screenplay.DialogueLine
}

// Assemble enriches each candidate. A character is present in a scene when
// its stored name occurs, case-sensitively, in the scene content. Dialogue is
// attributed to the scene whose byte span holds the utterance.
func Assemble(candidates []screenplay.SceneCandidate, found cast.Result, actionSample int) Assembly {
	chars := make([]screenplay.CharacterStats, len(found.Characters))
	copy(chars, found.Characters)
	for i := range chars {
		chars[i].Scenes = nil
	}

	scenes := make([]screenplay.Scene, 0, len(candidates))
	for si, c := range candidates {
		sc := screenplay.Scene{
			Number:       si + 1,
			Slugline:     c.Slugline,
			IntExt:       c.IntExt,
			Location:     c.Location,
			Time:         c.Time,
			Characters:   []string{},
			WordCount:    c.WordCount,
			ActionSample: truncate(c.Content, actionSample),
		}

		type hit struct {
			name string
			at   int
		}
		var present []hit
		if c.Content != "" {
			for ci := range chars {
				at := strings.Index(c.Content, chars[ci].Name)
				if at < 0 {
					continue
				}
				chars[ci].Scenes = append(chars[ci].Scenes, si)
				present = append(present, hit{chars[ci].Name, at})
			}
		}
		sort.SliceStable(present, func(i, j int) bool {
			if present[i].at != present[j].at {
				return present[i].at < present[j].at
			}
			return present[i].name < present[j].name
		})
		for _, h := range present {
			sc.Characters = append(sc.Characters, h.name)
		}

		for _, d := range found.Dialogues {
			if d.Offset >= c.Start && d.Offset < c.End {
				sc.DialogueCount++
			}
		}
		scenes = append(scenes, sc)
	}

	return Assembly{Scenes: scenes, Characters: chars, Dialogues: found.Dialogues}
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
