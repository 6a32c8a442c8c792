// Package cast recovers characters and dialogue from normalized screenplay
// text. Three independent strategies each produce a partial result; the
// partials are merged by case-normalized name.
package cast

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/rescue/internal/profile"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
	"github.com/MikeSquared-Agency/rescue/internal/slugline"
)

const namePattern = `[A-Z][A-Z0-9'’.\-]+(?:[ \t]+[A-Z][A-Z0-9'’.\-]+)*(?:[ \t]*#\d+)?`

var (
	// NAME (parenthetical) Capitalized-text
	cuePattern = regexp.MustCompile(`\b(` + namePattern + `)\s*(\([^()]{1,60}\))?\s+([A-Z][a-z'’]|[AI]\s)`)

	// Where a dialogue span stops: the next caps word followed by a capital,
	// or a slugline prefix.
	stopPattern = regexp.MustCompile(`[A-Z][A-Z'’.\-]+\s+(?:\([^()]{1,60}\)\s*)?[A-Z]|(?i:\b(?:INT|EXT|I/E)\.)`)

	parentheticalLine = regexp.MustCompile(`\b(` + namePattern + `)\s*\([^()]{1,60}\)\s*[A-Z][^\n()]{14}`)
	sentenceLine      = regexp.MustCompile(`\b(` + namePattern + `)\s+[A-Z][a-z'’][^.!?\n]*[.!?]`)

	capsToken = regexp.MustCompile(`\b[A-Z][A-Z'’\-]{0,18}[A-Z]\b`)
)

// Result is the merged outcome of all strategies. Characters are in order of
// first discovery.
type Result struct {
	Characters []screenplay.CharacterStats
	Dialogues  []screenplay.DialogueLine
}

// Index maps case-normalized names to positions in Characters.
func (r Result) Index() map[string]int {
	idx := make(map[string]int, len(r.Characters))
	for i, c := range r.Characters {
		idx[Key(c.Name)] = i
	}
	return idx
}

// extensions are cue suffixes that mark delivery, not identity.
var extensions = map[string]bool{
	"V.O.": true, "V.O": true, "VO": true,
	"O.S.": true, "O.S": true, "OS": true,
	"O.C.": true, "O.C": true, "OC": true,
	"CONT'D": true, "CONT’D": true, "CONT": true, "CONT.": true,
}

// Key is the identity of a character across the document.
func Key(name string) string {
	return strings.ToUpper(canonicalName(name))
}

// canonicalName collapses whitespace and drops trailing extensions, so
// "JOHN V.O." and "JOHN" are the same character.
func canonicalName(name string) string {
	words := strings.Fields(name)
	for len(words) > 1 && extensions[strings.ToUpper(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// Extract runs every strategy over text and merges the results. It never
// fails; text with no matches yields an empty result.
func Extract(text string, p profile.Profile) Result {
	return merge(
		cueStrategy(text, &p),
		specificStrategy(text, &p),
		frequencyStrategy(text, &p),
	)
}

// ValidName is the character-validity predicate: bounded length, no leading
// run of words that is denied, and at least one alphabetic token bearing a
// vowel.
func ValidName(name string, p *profile.Profile) bool {
	name = canonicalName(name)
	n := utf8.RuneCountInString(name)
	if n < p.Cue.MinNameLen || n > p.Cue.MaxNameLen {
		return false
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}
	for i := range words {
		if p.Denied(strings.Join(words[:i+1], " ")) {
			return false
		}
	}
	for _, w := range words {
		if vowelWord(w) {
			return true
		}
	}
	return false
}

func vowelWord(w string) bool {
	hasVowel := false
	for _, r := range strings.Trim(w, "'’.-") {
		if !unicode.IsLetter(r) && r != '\'' && r != '’' && r != '.' && r != '-' {
			return false
		}
		switch unicode.ToUpper(r) {
		case 'A', 'E', 'I', 'O', 'U', 'Y':
			hasVowel = true
		}
	}
	return hasVowel
}

// partial is one strategy's findings, with names kept in discovery order.
type partial struct {
	strategy  screenplay.Strategy
	order     []string
	stats     map[string]*screenplay.CharacterStats
	dialogues []screenplay.DialogueLine
}

func newPartial(s screenplay.Strategy) *partial {
	return &partial{strategy: s, stats: make(map[string]*screenplay.CharacterStats)}
}

func (pt *partial) get(name string) *screenplay.CharacterStats {
	k := Key(name)
	if c, ok := pt.stats[k]; ok {
		return c
	}
	c := &screenplay.CharacterStats{Name: canonicalName(name)}
	pt.stats[k] = c
	pt.order = append(pt.order, k)
	return c
}

// cueStrategy splits text at NAME (parenthetical) Capitalized-text boundaries
// and keeps the segments that look like real dialogue.
func cueStrategy(text string, p *profile.Profile) *partial {
	pt := newPartial(screenplay.StrategyCue)
	matches := cuePattern.FindAllStringSubmatchIndex(text, -1)

	for i, m := range matches {
		name := strings.Join(strings.Fields(text[m[2]:m[3]]), " ")
		if !ValidName(name, p) {
			continue
		}

		start := m[6]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if loc := stopPattern.FindStringIndex(text[start+1 : end]); loc != nil {
			end = start + 1 + loc[0]
		}
		dialogue := strings.Join(strings.Fields(text[start:end]), " ")
		if len(dialogue) < p.Cue.MinDialogueLen {
			continue
		}
		if len(dialogue) > p.Cue.MaxUpperDialogue && dialogue == strings.ToUpper(dialogue) {
			continue
		}

		var paren string
		if m[4] >= 0 {
			paren = strings.TrimSpace(strings.Trim(text[m[4]:m[5]], "()"))
		}
		words := len(strings.Fields(dialogue))

		c := pt.get(name)
		c.DialogueLines++
		c.TotalWords += words
		pt.dialogues = append(pt.dialogues, screenplay.DialogueLine{
			Character:     c.Name,
			Parenthetical: paren,
			Text:          truncate(dialogue, p.DialogueSample),
			Offset:        m[0],
			Words:         words,
		})
	}
	return pt
}

// specificStrategy counts hits of two narrower cue shapes. It adds dialogue
// lines but derives no dialogue text.
func specificStrategy(text string, p *profile.Profile) *partial {
	pt := newPartial(screenplay.StrategySpecific)
	for _, re := range []*regexp.Regexp{parentheticalLine, sentenceLine} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			name := strings.Join(strings.Fields(text[m[2]:m[3]]), " ")
			if !ValidName(name, p) {
				continue
			}
			pt.get(name).DialogueLines++
		}
	}
	return pt
}

// frequencyStrategy registers caps tokens that recur often enough, or that
// are in the likely-character vocabulary, even without observed dialogue.
// Tokens inside scene headings are locations, not names, and are skipped.
func frequencyStrategy(text string, p *profile.Profile) *partial {
	pt := newPartial(screenplay.StrategyFrequency)
	headings := slugline.FindHeadings(text)
	counts := make(map[string]int)
	var order []string
	h := 0
	for _, loc := range capsToken.FindAllStringIndex(text, -1) {
		for h < len(headings) && headings[h].End <= loc[0] {
			h++
		}
		if h < len(headings) && headings[h].Start <= loc[0] {
			continue
		}
		tok := text[loc[0]:loc[1]]
		if p.Denied(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	for _, tok := range order {
		if counts[tok] < p.Cue.FrequencyThreshold && !p.Likely(tok) {
			continue
		}
		if !ValidName(tok, p) {
			continue
		}
		pt.get(tok)
	}
	return pt
}

// merge accumulates partials by key. Characters known only from the
// frequency pass are flagged, and dropped when they are just one word of a
// multi-word name found by a cue strategy.
func merge(parts ...*partial) Result {
	var order []string
	merged := make(map[string]*screenplay.CharacterStats)
	var dialogues []screenplay.DialogueLine

	for _, pt := range parts {
		for _, k := range pt.order {
			src := pt.stats[k]
			dst, ok := merged[k]
			if !ok {
				dst = &screenplay.CharacterStats{Name: src.Name}
				merged[k] = dst
				order = append(order, k)
			}
			dst.DialogueLines += src.DialogueLines
			dst.TotalWords += src.TotalWords
			dst.Strategies = append(dst.Strategies, pt.strategy)
		}
		dialogues = append(dialogues, pt.dialogues...)
	}

	cueWords := make(map[string]bool)
	for _, k := range order {
		if c := merged[k]; !frequencyOnly(c) && strings.Contains(k, " ") {
			for _, w := range strings.Fields(k) {
				cueWords[w] = true
			}
		}
	}

	res := Result{Dialogues: dialogues}
	for _, k := range order {
		c := merged[k]
		if frequencyOnly(c) {
			if cueWords[k] {
				continue
			}
			c.DetectedByFrequency = true
		}
		res.Characters = append(res.Characters, *c)
	}
	return res
}

func frequencyOnly(c *screenplay.CharacterStats) bool {
	return len(c.Strategies) == 1 && c.Strategies[0] == screenplay.StrategyFrequency
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
