package pricelist

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
)

// CodeShape is the shape of a product or line code token.
type CodeShape int

const (
	NoCode      CodeShape = iota
	LetterCode            // two letters followed by three or more digits: "AB1234"
	NumericCode           // two to five digits: "1023"
)

var (
	unitAlt = unitAlternation()

	reNumberRun = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

	reFormatPack = regexp.MustCompile(`(?i)(\d+)\s*[x×]\s*(\d+(?:[.,]\d+)?)\s*(` + unitAlt + `)\.?`)
	reFormatQty  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(` + unitAlt + `)\.?`)
	reFormatWord = regexp.MustCompile(`(?i)(` + unitAlt + `)\.?`)

	reUnitDirect = regexp.MustCompile(`(?i)^(` + unitAlt + `)`)
	reUnitSpaced = regexp.MustCompile(`(?i)^\s+(` + unitAlt + `)`)

	reLetterCode  = regexp.MustCompile(`^[A-Za-z]{2}\d{3,}$`)
	reNumericCode = regexp.MustCompile(`^\d{2,5}$`)

	rePackWord = regexp.MustCompile(`(?i)\b(?:cajas?|sacos?|mallas?|granel|formato|envases?|paquetes?|packs?|botes?|tarrinas?|piezas?|aprox)\b`)
)

func unitAlternation() string {
	words := constants.UnitWords()
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, "|")
}

type numContext int

const (
	numPlain    numContext = iota
	numSoft                // followed by a spaced unit word: "2,10 kg"
	numQuantity            // glued to a unit or preceded by a multiplier: "2,5kg", "x 2,5"
	numPercent
)

type numRun struct {
	tok   Token
	seps  int
	frac  int
	value float64
	ctx   numContext
}

// scanNumbers finds every digit run in line. Runs glued to a preceding letter
// belong to a code and are skipped.
func scanNumbers(line string) []numRun {
	var out []numRun
	for _, loc := range reNumberRun.FindAllStringIndex(line, -1) {
		s, e := loc[0], loc[1]
		if letterBefore(line, s) {
			continue
		}
		text := line[s:e]
		r := numRun{tok: Token{Text: text, Start: s, End: e}}
		last := strings.LastIndexAny(text, ".,")
		r.seps = strings.Count(text, ".") + strings.Count(text, ",")
		if last >= 0 {
			r.frac = len(text) - last - 1
		}
		if r.seps <= 1 {
			v, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
			if err != nil {
				continue
			}
			r.value = v
		}
		r.ctx = numberContext(line, s, e)
		out = append(out, r)
	}
	return out
}

func numberContext(line string, s, e int) numContext {
	after := line[e:]
	if strings.HasPrefix(strings.TrimLeft(after, " "), "%") {
		return numPercent
	}
	if m := reUnitDirect.FindStringIndex(after); m != nil && !letterAfter(after, m[1]) {
		return numQuantity
	}
	before := strings.TrimRight(line[:s], " ")
	if strings.HasSuffix(before, "×") {
		return numQuantity
	}
	if n := len(before); n > 0 && (before[n-1] == 'x' || before[n-1] == 'X') && !letterBefore(before, n-1) {
		return numQuantity
	}
	if m := reUnitSpaced.FindStringIndex(after); m != nil && !letterAfter(after, m[1]) {
		return numSoft
	}
	return numPlain
}

// isPrice reports whether a run has the per-unit price shape: exactly one decimal
// separator followed by one or two digits. Grouped amounts such as "12.345,67" and
// three-digit fractions such as "1.234" are not prices.
func (r numRun) isPrice() bool {
	return r.seps == 1 && r.frac >= 1 && r.frac <= 2 && (r.ctx == numPlain || r.ctx == numSoft)
}

func (r numRun) isDecimal() bool {
	return r.seps == 1 && r.frac >= 1 && r.frac <= 3 && r.ctx != numPercent
}

// FindPrices returns every price token of line in order.
func FindPrices(line string) []Price {
	var out []Price
	for _, r := range scanNumbers(line) {
		if r.isPrice() {
			out = append(out, Price{Token: r.tok, Value: r.value})
		}
	}
	return out
}

// FindPrice returns the first price of line. A number directly followed by a unit
// word ("2,10 kg") is only taken when the line has no other price.
//
// Prices carry one or two fractional digits. A three-digit fraction such as
// "1.234" is read as a thousands group or a weight, never as a price; FindDecimals
// still reports it.
func FindPrice(line string) (Price, bool) {
	var soft *Price
	for _, r := range scanNumbers(line) {
		if !r.isPrice() {
			continue
		}
		p := Price{Token: r.tok, Value: r.value}
		if r.ctx == numPlain {
			return p, true
		}
		if soft == nil {
			soft = &p
		}
	}
	if soft != nil {
		return *soft, true
	}
	return Price{}, false
}

func hasPrice(line string) bool {
	_, ok := FindPrice(line)
	return ok
}

// FindDecimals returns every decimal number of line, including three-digit
// fractions used for weights ("12,500").
func FindDecimals(line string) []Price {
	var out []Price
	for _, r := range scanNumbers(line) {
		if r.isDecimal() {
			out = append(out, Price{Token: r.tok, Value: r.value})
		}
	}
	return out
}

// FindFormat returns the first packaging token of line: a multipack
// ("4 x 2,5 kg"), then a quantity with unit ("125gr"), then a bare unit or
// container word ("Kg", "bandeja").
func FindFormat(line string) (Token, bool) {
	return findFormat(line, nil)
}

// findFormat is FindFormat ignoring matches that overlap avoid. A quantity that
// overlaps avoid, as in "2,10 kg" where "2,10" is the price, shrinks to its unit word.
func findFormat(line string, avoid *Token) (Token, bool) {
	for _, re := range []*regexp.Regexp{reFormatPack, reFormatQty, reFormatWord} {
		for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
			s, e := m[0], m[1]
			if letterBefore(line, s) || letterAfter(line, e) {
				continue
			}
			if avoid != nil && overlaps(s, e, avoid.Start, avoid.End) {
				us, ue := m[len(m)-2], m[len(m)-1]
				if overlaps(us, ue, avoid.Start, avoid.End) || letterAfter(line, ue) {
					continue
				}
				s, e = us, ue
			}
			return Token{Text: line[s:e], Start: s, End: e}, true
		}
	}
	return Token{}, false
}

// findPack returns the first multipack token ("4 x 2,5 kg") of line.
func findPack(line string) (Token, bool) {
	for _, m := range reFormatPack.FindAllStringIndex(line, -1) {
		s, e := m[0], m[1]
		if letterBefore(line, s) || letterAfter(line, e) {
			continue
		}
		return Token{Text: line[s:e], Start: s, End: e}, true
	}
	return Token{}, false
}

// MatchCode classifies a single whitespace token as a product or line code.
// Trailing punctuation is ignored.
func MatchCode(token string) CodeShape {
	t := strings.TrimRight(token, ".:-)")
	switch {
	case reLetterCode.MatchString(t):
		return LetterCode
	case reNumericCode.MatchString(t):
		return NumericCode
	default:
		return NoCode
	}
}

// LeadingCode matches the first whitespace token of line as a code.
func LeadingCode(line string) (Token, CodeShape) {
	start := len(line) - len(strings.TrimLeft(line, " "))
	end := strings.IndexByte(line[start:], ' ')
	if end < 0 {
		end = len(line)
	} else {
		end += start
	}
	if start >= end {
		return Token{}, NoCode
	}
	tok := Token{Text: line[start:end], Start: start, End: end}
	return tok, MatchCode(tok.Text)
}

// isAuxLine reports whether line carries no product name of its own: once
// numbers, packaging tokens and container words are removed, at most two
// letters remain.
func isAuxLine(line string) bool {
	s := reFormatPack.ReplaceAllString(line, " ")
	s = reFormatQty.ReplaceAllString(s, " ")
	s = reNumberRun.ReplaceAllString(s, " ")
	s = rePackWord.ReplaceAllString(s, " ")
	letters := 0
	for _, f := range strings.Fields(s) {
		if _, ok := constants.CanonicalizeUnit(strings.Trim(f, fragmentTrim)); ok {
			continue
		}
		letters += letterCount(f)
	}
	return letters <= 2
}

// isBareUnit reports whether line is nothing but a unit word.
func isBareUnit(line string) bool {
	_, ok := constants.CanonicalizeUnit(strings.Trim(line, fragmentTrim))
	return ok
}
