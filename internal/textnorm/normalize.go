// Package textnorm turns scraped, possibly HTML-contaminated screenplay text
// into plain text with canonical whitespace.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Normalize strips markup, decodes entities and canonicalizes whitespace.
// It is total: any input, including the empty string, yields a result.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.ToValidUTF8(raw, "")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	text := stripMarkup(raw)
	text = norm.NFKC.String(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = collapseHorizontal(line)
	}
	text = strings.Join(lines, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripMarkup drops tags and keeps text. Line-breaking elements become
// newlines; script and style bodies are discarded.
func stripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	z := html.NewTokenizer(strings.NewReader(raw))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch a := atom.Lookup(name); a {
			case atom.Script, atom.Style:
				skip++
			case atom.Br:
				sb.WriteByte('\n')
			default:
				if isBlock(a) {
					sb.WriteByte('\n')
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch a := atom.Lookup(name); a {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			default:
				if isBlock(a) {
					sb.WriteByte('\n')
				}
			}
		}
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Pre, atom.Tr, atom.Li, atom.Table, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

// collapseHorizontal squeezes runs of non-newline whitespace into one space,
// drops control characters and trims the line.
func collapseHorizontal(line string) string {
	var sb strings.Builder
	sb.Grow(len(line))
	prevSpace := false
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsControl(r), r == unicode.ReplacementChar:
		default:
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
