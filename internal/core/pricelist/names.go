package pricelist

import (
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
)

// DefaultSimilarityFloor is the lowest catalog similarity that rewrites a name.
const DefaultSimilarityFloor = 0.70

var reLeadingNumericCode = regexp.MustCompile(`^\d{2,6}\s+`)

type garbleRule struct {
	from string
	to   string
}

type catalogEntry struct {
	display string
	folded  string
}

// NameCorrector cleans OCR'd product names and snaps them to a catalog of known
// names. It is read-only after construction and safe for concurrent use.
type NameCorrector struct {
	garbles []garbleRule
	catalog []catalogEntry
	floor   float64
}

// NewNameCorrector builds a corrector from the vocabulary's garble table and
// catalog. A non-positive floor selects DefaultSimilarityFloor.
func NewNameCorrector(v *Vocabulary, floor float64) *NameCorrector {
	if v == nil {
		v = DefaultVocabulary()
	}
	if floor <= 0 {
		floor = DefaultSimilarityFloor
	}
	c := &NameCorrector{floor: floor}
	for _, g := range v.Garbles {
		from := strings.ToLower(strings.TrimSpace(g.From))
		if from == "" {
			continue
		}
		c.garbles = append(c.garbles, garbleRule{from: from, to: strings.ToLower(g.To)})
	}
	for _, name := range v.Catalog {
		name = collapse(name)
		if name == "" {
			continue
		}
		c.catalog = append(c.catalog, catalogEntry{display: sentenceCase(name), folded: fold(name)})
	}
	return c
}

// Correct returns the display form of a raw name. Names it cannot match are only
// cleaned and re-cased, never dropped.
func (c *NameCorrector) Correct(raw string) string {
	s := cleanName(raw)
	if s == "" {
		return ""
	}
	if fixed, ok := c.applyGarbles(s); ok {
		return sentenceCase(fixed)
	}
	if match, ok := c.lookup(s); ok {
		return match
	}
	return sentenceCase(s)
}

// cleanName strips a leading numeric code, collapses whitespace and trims
// surrounding punctuation.
func cleanName(raw string) string {
	s := cleanFragment(raw)
	s = reLeadingNumericCode.ReplaceAllString(s, "")
	return cleanFragment(s)
}

func (c *NameCorrector) applyGarbles(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, g := range c.garbles {
		if strings.Contains(lower, g.from) {
			return strings.Replace(lower, g.from, g.to, 1), true
		}
	}
	return "", false
}

// lookup returns the most similar catalog name at or above the floor. Ties keep
// the earlier catalog entry.
func (c *NameCorrector) lookup(s string) (string, bool) {
	folded := fold(s)
	best, bestScore := -1, 0.0
	for i, e := range c.catalog {
		score := levenshtein.Similarity(folded, e.folded, nil)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < c.floor {
		return "", false
	}
	return c.catalog[best].display, true
}
