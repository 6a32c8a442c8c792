// Package document runs the full recovery pipeline for one screenplay and
// reduces many parsed documents into a corpus summary.
package document

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MikeSquared-Agency/rescue/internal/assemble"
	"github.com/MikeSquared-Agency/rescue/internal/cast"
	"github.com/MikeSquared-Agency/rescue/internal/classify"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
	"github.com/MikeSquared-Agency/rescue/internal/slugline"
	"github.com/MikeSquared-Agency/rescue/internal/textnorm"
)

// ParserVersion is stamped on every parsed document.
const ParserVersion = "rescue-1.0"

// ErrNoIdentity is returned when a script has neither a slug nor a title.
var ErrNoIdentity = errors.New("script has no slug and no title")

var (
	yearSuffix = regexp.MustCompile(`-(\d{4})$`)
	slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)
)

// Structure fractions of the scene count.
const (
	act1Fraction     = 0.25
	midpointFraction = 0.50
	act2Fraction     = 0.75
	climaxFraction   = 0.90
)

// Parse recovers a ParsedDocument from a loader record. Pre-segmented scenes
// are recombined into text when the record carries no raw text.
func Parse(raw screenplay.RawScript, p profile.Profile) (screenplay.ParsedDocument, error) {
	slug := strings.TrimSpace(raw.Slug)
	title := strings.TrimSpace(raw.Title)
	if slug == "" && title == "" {
		return screenplay.ParsedDocument{}, ErrNoIdentity
	}
	if slug == "" {
		slug = Slugify(title)
	}
	if title == "" {
		title = TitleFromSlug(slug)
	}

	text := raw.Text
	if strings.TrimSpace(text) == "" && len(raw.Scenes) > 0 {
		text = Recombine(raw.Scenes)
	}

	doc := ParseText(text, p)
	doc.Slug = slug
	doc.Title = title
	doc.Year = YearFromSlug(slug)
	doc.Format = raw.Format
	doc.Source = raw.Source
	return doc, nil
}

// ParseText runs the pipeline over bare text. It never fails.
func ParseText(text string, p profile.Profile) screenplay.ParsedDocument {
	norm := textnorm.Normalize(text)
	candidates := slugline.ExtractScenes(norm)
	found := cast.Extract(norm, p)
	asm := assemble.Assemble(candidates, found, p.ActionSample)

	metrics := classify.Metrics(norm, asm.Scenes, asm.Characters, asm.Dialogues, p.WordsPerMinute)

	doc := screenplay.ParsedDocument{
		Profile:         p.Name,
		ParserVersion:   ParserVersion,
		Genre:           classify.Genre(norm, metrics, p.Genres),
		Metrics:         metrics,
		Structure:       structure(metrics.TotalScenes),
		Protagonist:     classify.Protagonist(asm.Characters, metrics.TotalScenes, &p),
		Characters:      characters(asm.Characters, p.Limits.Characters),
		Locations:       locations(asm.Scenes, p.Limits.Locations),
		DialoguesSample: limit(asm.Dialogues, p.Limits.Dialogues),
		Scenes:          limit(asm.Scenes, p.Limits.Scenes),
		Quality:         classify.Quality(metrics, asm.Scenes),
	}
	if doc.DialoguesSample == nil {
		doc.DialoguesSample = []screenplay.DialogueLine{}
	}
	return doc
}

// Recombine joins pre-segmented scenes back into screenplay text, slugline
// first.
func Recombine(scenes []screenplay.SegmentedScene) string {
	parts := make([]string, 0, len(scenes))
	for _, s := range scenes {
		block := strings.TrimSpace(strings.TrimSpace(s.Slugline) + "\n" + strings.TrimSpace(s.ActionText))
		if block != "" {
			parts = append(parts, block)
		}
	}
	return strings.Join(parts, "\n\n")
}

// YearFromSlug reads a trailing "-YYYY" from slug, or 0.
func YearFromSlug(slug string) int {
	m := yearSuffix.FindStringSubmatch(slug)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// TitleFromSlug turns "the-big-sleep-1946" into "The Big Sleep".
func TitleFromSlug(slug string) string {
	base := yearSuffix.ReplaceAllString(slug, "")
	base = strings.Join(strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' }), " ")
	return cases.Title(language.English).String(base)
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func structure(total int) screenplay.Structure {
	at := func(f float64) int { return int(math.Round(f * float64(total))) }
	return screenplay.Structure{
		Act1End:  at(act1Fraction),
		Midpoint: at(midpointFraction),
		Act2End:  at(act2Fraction),
		Climax:   at(climaxFraction),
	}
}

func characters(stats []screenplay.CharacterStats, n int) []screenplay.CharacterEntry {
	out := make([]screenplay.CharacterEntry, 0, len(stats))
	for _, c := range stats {
		out = append(out, screenplay.CharacterEntry{
			Name:                c.Name,
			ScenesPresent:       len(c.Scenes),
			DialogueLines:       c.DialogueLines,
			TotalWords:          c.TotalWords,
			DetectedByFrequency: c.DetectedByFrequency,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ScenesPresent != b.ScenesPresent {
			return a.ScenesPresent > b.ScenesPresent
		}
		if a.DialogueLines != b.DialogueLines {
			return a.DialogueLines > b.DialogueLines
		}
		return a.Name < b.Name
	})
	return limit(out, n)
}

func locations(scenes []screenplay.Scene, n int) []screenplay.LocationEntry {
	counts := make(map[string]int)
	for _, s := range scenes {
		if s.Location != "" && s.Location != screenplay.Unknown {
			counts[s.Location]++
		}
	}
	out := make([]screenplay.LocationEntry, 0, len(counts))
	for name, c := range counts {
		out = append(out, screenplay.LocationEntry{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return limit(out, n)
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
