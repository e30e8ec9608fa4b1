package pricelist

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultMinLineLength is the shortest line, in visible characters, that is kept.
const DefaultMinLineLength = 2

// LineOptions controls NormalizeLines.
type LineOptions struct {
	MinLength int
	// Denylist holds boilerplate phrases. A line containing any of them is dropped.
	// Matching ignores case and accents.
	Denylist []string
}

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reCurrency   = regexp.MustCompile(`[€$£¥¢]`)
	reEuroSuffix = regexp.MustCompile(`(?i)(\d)\s?eur(?:os)?\b`)
	reEuroWord   = regexp.MustCompile(`(?i)\beur(?:os)?\b`)
	reCellSep    = regexp.MustCompile(`\t+|\s*\|\s*| {2,}`)
)

// NormalizeLines splits raw OCR text into cleaned lines. Tabs become spaces,
// currency symbols are removed, interior whitespace is collapsed, and empty,
// too-short, symbol-only or denylisted lines are dropped. Column cells are
// recorded before the whitespace is collapsed.
func NormalizeLines(raw string, opts LineOptions) []Line {
	if raw == "" {
		return nil
	}
	minLen := opts.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLineLength
	}
	deny := foldAll(opts.Denylist)

	raw = reCRLF.ReplaceAllString(sanitize(raw), "\n")
	var out []Line
	for pos, src := range strings.Split(raw, "\n") {
		src = strings.ReplaceAll(src, "\u00a0", " ")
		src = stripCurrency(src)

		text := collapse(strings.ReplaceAll(src, "|", " "))
		if text == "" || visibleLen(text) < minLen || !hasAlnum(text) {
			continue
		}
		if denied(text, deny) {
			continue
		}
		out = append(out, Line{Text: text, Cells: splitCells(src), Pos: pos})
	}
	return out
}

// sanitize drops invalid UTF-8 sequences and control characters other than
// tab and line breaks.
func sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r == '\f', r == '\v':
			return '\n'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

func stripCurrency(s string) string {
	s = reCurrency.ReplaceAllString(s, "")
	s = reEuroSuffix.ReplaceAllString(s, "$1")
	return reEuroWord.ReplaceAllString(s, "")
}

func splitCells(src string) []string {
	parts := reCellSep.Split(strings.TrimSpace(src), -1)
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = collapse(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

func denied(text string, deny []string) bool {
	if len(deny) == 0 {
		return false
	}
	folded := fold(text)
	for _, phrase := range deny {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	return false
}
