package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-=~]{3,}[ \t]*$`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Clean removes ruler lines and surplus blank lines from engine output.
// Runs of spaces and tabs are kept: they separate table columns downstream.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.Trim(s, "\n")
}
