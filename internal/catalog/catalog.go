// Package catalog cross-references parsed script slugs against a film list.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ReportSize is how many entries of each list a review report keeps.
const ReportSize = 10

var (
	yearSuffix = regexp.MustCompile(`-\d{4}$`)
	punct      = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Pair is a script and the film it normalizes to.
type Pair struct {
	Script     string `json:"script"`
	Film       string `json:"film"`
	Normalized string `json:"normalized"`
}

// Stats are the headline counts of a matching run.
type Stats struct {
	TotalFilms      int     `json:"total_films"`
	TotalScripts    int     `json:"total_scripts"`
	MatchesFound    int     `json:"matches_found"`
	MatchPercentage float64 `json:"match_percentage"`
}

// Result is the full outcome of a matching run. Lists keep input order.
type Result struct {
	Matches          []Pair   `json:"matches"`
	UnmatchedScripts []string `json:"unmatched_scripts"`
	UnmatchedFilms   []string `json:"unmatched_films"`
	Stats            Stats    `json:"stats"`
}

// Report is the trimmed-down Result written for human review.
type Report struct {
	Summary                Stats    `json:"summary"`
	Matches                []Pair   `json:"matches"`
	SampleUnmatchedScripts []string `json:"sample_unmatched_scripts"`
	SampleUnmatchedFilms   []string `json:"sample_unmatched_films"`
}

// NormalizeTitle drops a trailing year and punctuation, then lowercases.
func NormalizeTitle(title string) string {
	clean := yearSuffix.ReplaceAllString(title, "")
	clean = punct.ReplaceAllString(clean, "")
	return strings.TrimSpace(strings.ToLower(clean))
}

// index maps normalized titles to the last original seen, keeping the
// position of the first.
type index struct {
	keys []string
	orig map[string]string
}

func newIndex(titles []string) index {
	ix := index{orig: make(map[string]string, len(titles))}
	for _, t := range titles {
		n := NormalizeTitle(t)
		if _, ok := ix.orig[n]; !ok {
			ix.keys = append(ix.keys, n)
		}
		ix.orig[n] = t
	}
	return ix
}

// Match cross-references scripts against films by normalized title.
// Percentages are relative to the raw script count.
func Match(films, scripts []string) Result {
	fi := newIndex(films)
	si := newIndex(scripts)

	res := Result{
		Matches:          []Pair{},
		UnmatchedScripts: []string{},
		UnmatchedFilms:   []string{},
	}
	for _, n := range si.keys {
		if film, ok := fi.orig[n]; ok {
			res.Matches = append(res.Matches, Pair{Script: si.orig[n], Film: film, Normalized: n})
		} else {
			res.UnmatchedScripts = append(res.UnmatchedScripts, si.orig[n])
		}
	}
	for _, n := range fi.keys {
		if _, ok := si.orig[n]; !ok {
			res.UnmatchedFilms = append(res.UnmatchedFilms, fi.orig[n])
		}
	}

	res.Stats = Stats{
		TotalFilms:   len(films),
		TotalScripts: len(scripts),
		MatchesFound: len(res.Matches),
	}
	if len(scripts) > 0 {
		res.Stats.MatchPercentage = float64(len(res.Matches)) / float64(len(scripts)) * 100
	}
	return res
}

// NewReport keeps the first n entries of each list.
func NewReport(r Result, n int) Report {
	return Report{
		Summary:                r.Stats,
		Matches:                head(r.Matches, n),
		SampleUnmatchedScripts: head(r.UnmatchedScripts, n),
		SampleUnmatchedFilms:   head(r.UnmatchedFilms, n),
	}
}

func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// LoadFilms reads a JSON array of film slugs.
func LoadFilms(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read films: %w", err)
	}
	var films []string
	if err := json.Unmarshal(data, &films); err != nil {
		return nil, fmt.Errorf("decode films: %w", err)
	}
	return films, nil
}

// ScriptSlugs lists the stems of the parsed documents in dir, skipping the
// batch summary.
func ScriptSlugs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob scripts: %w", err)
	}
	sort.Strings(matches)
	slugs := make([]string, 0, len(matches))
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), ".json")
		if stem == "summary" {
			continue
		}
		slugs = append(slugs, stem)
	}
	return slugs, nil
}
