package pricelist

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reSpaces = regexp.MustCompile(`\s+`)

// fold lowercases s and strips diacritics, so "Código" and "codigo" compare equal.
// The transformer is built per call because transform.Chain is not safe for
// concurrent use.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := strings.TrimSpace(fold(s)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// visibleLen counts the non-space runes of s.
func visibleLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// removeSpans cuts the given tokens out of s and collapses the remaining whitespace.
// Tokens must have been matched against s itself.
func removeSpans(s string, toks ...Token) string {
	if len(toks) == 0 {
		return collapse(s)
	}
	sorted := append([]Token(nil), toks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	pos := 0
	for _, t := range sorted {
		if t.Start < pos || t.End > len(s) {
			continue
		}
		b.WriteString(s[pos:t.Start])
		b.WriteByte(' ')
		pos = t.End
	}
	b.WriteString(s[pos:])
	return collapse(b.String())
}

const fragmentTrim = " \t-–—_.,;:*·|/\\=+#'\"~"

// cleanFragment trims separators and stray punctuation left behind after tokens
// have been removed from a line.
func cleanFragment(s string) string {
	return strings.Trim(collapse(s), fragmentTrim)
}

// sentenceCase lowercases s and uppercases its first letter.
func sentenceCase(s string) string {
	s = strings.ToLower(s)
	for i, r := range s {
		if unicode.IsLetter(r) {
			return s[:i] + string(unicode.ToUpper(r)) + s[i+utf8.RuneLen(r):]
		}
	}
	return s
}

// letterBefore reports whether the rune ending at byte offset i of s is a letter.
func letterBefore(s string, i int) bool {
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r)
}

func letterAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r)
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
