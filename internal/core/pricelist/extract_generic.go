package pricelist

import "regexp"

var reCellCode = regexp.MustCompile(`^(?:[A-Za-z]{1,4}[-.]?)?\d{2,8}[A-Za-z]?$`)

// extractGeneric reads column tables. The name is the first cell, or the second
// when the first cell is a code; price and format come from the remaining cells,
// the last matching cell winning for each.
func extractGeneric(lines []Line) []Candidate {
	var out []Candidate
	for i, l := range lines {
		if c, ok := genericRow(l.Cells); ok {
			c.Span = [2]int{i, i}
			out = append(out, c)
		}
	}
	return out
}

func genericRow(cells []string) (Candidate, bool) {
	if len(cells) < 2 {
		return Candidate{}, false
	}
	nameIdx := 0
	if looksLikeCode(cells[0]) {
		nameIdx = 1
	}
	if nameIdx >= len(cells) {
		return Candidate{}, false
	}

	var (
		price    Price
		hasPrice bool
		format   string
	)
	for k := nameIdx + 1; k < len(cells); k++ {
		cell := cells[k]
		p, pok := FindPrice(cell)
		if pok {
			price, hasPrice = p, true
		}
		var avoid *Token
		if pok {
			avoid = &p.Token
		}
		if t, ok := findFormat(cell, avoid); ok {
			if pok {
				format = t.Text
			} else {
				format = cell
			}
		}
	}
	if !hasPrice {
		return Candidate{}, false
	}

	name := cells[nameIdx]
	if format == "" {
		if t, ok := FindFormat(name); ok {
			format = t.Text
			name = removeSpans(name, t)
		}
	}
	name = cleanFragment(name)
	if name == "" {
		return Candidate{}, false
	}
	return Candidate{RawName: name, Price: price.Value, RawFormat: format}, true
}

func looksLikeCode(cell string) bool {
	if MatchCode(cell) != NoCode {
		return true
	}
	return reCellCode.MatchString(cell)
}
