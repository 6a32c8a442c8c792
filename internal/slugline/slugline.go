// Package slugline finds scene headings in normalized screenplay text and
// splits the text into scene candidates.
package slugline

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

var (
	prefixPattern = regexp.MustCompile(`(?i)\b(?:INT\.?\s?/\s?EXT|EXT\.?\s?/\s?INT|I/E|INT|EXT)\.`)
	tokenPattern  = regexp.MustCompile(`[-–—]+|[^ \t\-–—]+`)
	sceneNumber   = regexp.MustCompile(`^\*?\d+[A-Z]?\.?\*?$`)
)

// Times is the fixed time-of-day enumeration, longest phrases first.
var Times = []string{"MOMENTS LATER", "CONTINUOUS", "AFTERNOON", "MORNING", "EVENING", "NIGHT", "LATER", "DAWN", "DUSK", "SAME", "DAY"}

var dayTimes = map[string]bool{"DAY": true, "MORNING": true, "AFTERNOON": true, "DAWN": true}
var nightTimes = map[string]bool{"NIGHT": true, "EVENING": true, "DUSK": true}

// IsDay reports whether a time-of-day token counts toward daylight.
func IsDay(t string) bool { return dayTimes[t] }

// IsNight reports whether a time-of-day token counts toward night.
func IsNight(t string) bool { return nightTimes[t] }

// Heading is one parsed slugline.
type Heading struct {
	Start    int
	End      int
	Text     string
	IntExt   screenplay.IntExt
	Location string
	Time     string
}

// FindHeadings returns every slugline in text, in order.
func FindHeadings(text string) []Heading {
	var out []Heading
	for _, loc := range prefixPattern.FindAllStringIndex(text, -1) {
		if len(out) > 0 && loc[0] < out[len(out)-1].End {
			continue
		}
		out = append(out, parseHeading(text, loc[0], loc[1]))
	}
	return out
}

// ExtractScenes splits text into scene candidates. Each heading starts a
// scene that runs to the next heading or the end of text. Text with no
// headings becomes one UNKNOWN scene.
func ExtractScenes(text string) []screenplay.SceneCandidate {
	headings := FindHeadings(text)
	if len(headings) == 0 {
		content := strings.TrimSpace(text)
		return []screenplay.SceneCandidate{{
			Index:     0,
			Slugline:  screenplay.Unknown,
			IntExt:    screenplay.IntExtUnset,
			Location:  screenplay.Unknown,
			Time:      screenplay.Unknown,
			Start:     0,
			End:       len(text),
			Content:   content,
			WordCount: len(strings.Fields(content)),
		}}
	}

	scenes := make([]screenplay.SceneCandidate, 0, len(headings))
	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].Start
		}
		content := strings.TrimSpace(text[h.End:end])
		scenes = append(scenes, screenplay.SceneCandidate{
			Index:     i,
			Slugline:  h.Text,
			IntExt:    h.IntExt,
			Location:  h.Location,
			Time:      h.Time,
			Start:     h.Start,
			End:       end,
			Content:   content,
			WordCount: len(strings.Fields(content)),
		})
	}
	return scenes
}

type token struct {
	text       string
	start, end int
}

// parseHeading reads the heading body after the INT./EXT. prefix on the same
// line. The body is a run of capitalized tokens and dashes; the first
// lowercase-led token ends it, which keeps collapsed text from swallowing the
// action line.
func parseHeading(text string, start, prefixEnd int) Heading {
	h := Heading{
		Start:    start,
		End:      prefixEnd,
		IntExt:   intExtOf(text[start:prefixEnd]),
		Location: screenplay.Unknown,
		Time:     screenplay.Unknown,
	}

	lineEnd := strings.IndexByte(text[prefixEnd:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text)
	} else {
		lineEnd += prefixEnd
	}

	var toks []token
	for _, m := range tokenPattern.FindAllStringIndex(text[prefixEnd:lineEnd], -1) {
		tk := token{text: text[prefixEnd+m[0] : prefixEnd+m[1]], start: prefixEnd + m[0], end: prefixEnd + m[1]}
		if !headingToken(tk.text) {
			break
		}
		toks = append(toks, tk)
	}

	all := toks
	locEnd, timeEnd := -1, -1
	for i, tk := range toks {
		if !isDash(tk.text) || i == 0 {
			continue
		}
		if label, n := timeAt(toks, i+1); n > 0 {
			h.Time = label
			locEnd = i
			// the time phrase starts after the dash at i
			timeEnd = i + 1 + n
			break
		}
	}

	if locEnd < 0 {
		// No dash-separated time: keep the leading all-caps run, and accept a
		// bare trailing time token ("EXT. STREET NIGHT").
		n := 0
		for n < len(toks) && (isDash(toks[n].text) || allCaps(toks[n].text)) {
			n++
		}
		toks = toks[:n]
		for len(toks) > 0 && (isDash(toks[len(toks)-1].text) || sceneNumber.MatchString(toks[len(toks)-1].text)) {
			toks = toks[:len(toks)-1]
		}
		if len(toks) >= 2 {
			if label, k := timeAt(toks, len(toks)-1); k == 1 {
				h.Time = label
				locEnd = len(toks) - 1
				timeEnd = len(toks)
			}
		}
		if locEnd < 0 {
			locEnd = len(toks)
			timeEnd = len(toks)
		}
	}

	if locEnd > 0 {
		h.Location = cleanLocation(text[toks[0].start:toks[locEnd-1].end])
		h.End = toks[locEnd-1].end
	}
	if timeEnd > locEnd {
		h.End = toks[timeEnd-1].end
	}
	for i := timeEnd; i >= 0 && i < len(all) && sceneNumber.MatchString(all[i].text); i++ {
		h.End = all[i].end
	}

	h.Text = strings.TrimSpace(text[start:h.End])
	return h
}

// timeAt matches a time-of-day phrase starting at toks[i] and returns it and
// the number of tokens it spans.
func timeAt(toks []token, i int) (string, int) {
	if i >= len(toks) {
		return "", 0
	}
	first := timeWord(toks[i].text)
	if first == "MOMENTS" && i+1 < len(toks) && timeWord(toks[i+1].text) == "LATER" {
		return "MOMENTS LATER", 2
	}
	for _, t := range Times {
		if t == first {
			return t, 1
		}
	}
	return "", 0
}

func timeWord(s string) string {
	return strings.ToUpper(strings.Trim(s, "().,:;*"))
}

func intExtOf(prefix string) screenplay.IntExt {
	p := strings.ToUpper(prefix)
	if strings.HasPrefix(p, "EXT") {
		return screenplay.Exterior
	}
	return screenplay.Interior
}

func headingToken(s string) bool {
	if isDash(s) {
		return true
	}
	r := []rune(s)[0]
	return !unicode.IsLower(r)
}

func isDash(s string) bool {
	return strings.Trim(s, "-–—") == ""
}

func allCaps(s string) bool {
	hasAlnum := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			hasAlnum = true
		}
	}
	return hasAlnum
}

func cleanLocation(s string) string {
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "-–—.,:; "))
	if s == "" {
		return screenplay.Unknown
	}
	return s
}
