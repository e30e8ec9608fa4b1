package pricelist

import "unicode/utf8"

const (
	verticalLookahead = 2
	minResidualName   = 3
)

// extractVertical walks a hand-formatted list where name, packaging label and
// price may sit on one line or be spread over up to three consecutive lines.
func extractVertical(lines []Line) []Candidate {
	var out []Candidate
	floor := 0
	for i := 0; i < len(lines); {
		c, next, ok := verticalItemAt(lines, i, floor)
		if ok {
			out = append(out, c)
			floor = next
		}
		i = next
	}
	return out
}

// verticalItemAt builds the item anchored at lines[i]. Lines below floor belong to
// an earlier item and are never reused. On success it returns the index of the
// first line not consumed by the item.
func verticalItemAt(lines []Line, i, floor int) (Candidate, int, bool) {
	text := lines[i].Text

	price, ok := FindPrice(text)
	priceLine := i
	if !ok {
		if isAuxLine(text) {
			return Candidate{}, i + 1, false
		}
		if price, priceLine, ok = lookaheadPrice(lines, i); !ok {
			return Candidate{}, i + 1, false
		}
	}

	fmtTok, fmtLine := verticalFormat(lines, i, floor, price, priceLine)

	var cut []Token
	if priceLine == i {
		cut = append(cut, price.Token)
	}
	if fmtLine == i {
		cut = append(cut, fmtTok)
	}
	name, nameLine := cleanFragment(removeSpans(text, cut...)), i

	if utf8.RuneCountInString(name) < minResidualName {
		if prev := i - 1; prev >= floor && prev != fmtLine {
			prevText := lines[prev].Text
			if !isBareUnit(prevText) && !hasPrice(prevText) {
				var prevCut []Token
				if fmtLine < 0 {
					if t, ok := FindFormat(prevText); ok {
						fmtTok, fmtLine = t, prev
						prevCut = append(prevCut, t)
					}
				}
				name, nameLine = cleanFragment(removeSpans(prevText, prevCut...)), prev
			}
		}
	}
	if name == "" {
		return Candidate{}, i + 1, false
	}

	last := max(i, priceLine, fmtLine)
	first := min(i, nameLine)
	if fmtLine >= 0 {
		first = min(first, fmtLine)
	}
	c := Candidate{
		RawName: name,
		Price:   price.Value,
		Span:    [2]int{first, last},
	}
	if fmtLine >= 0 {
		c.RawFormat = fmtTok.Text
	}
	return c, last + 1, true
}

// lookaheadPrice finds a price on the auxiliary lines right after lines[i]. The
// search stops at the first line that carries a name of its own.
func lookaheadPrice(lines []Line, i int) (Price, int, bool) {
	for j := i + 1; j <= i+verticalLookahead && j < len(lines); j++ {
		if !isAuxLine(lines[j].Text) {
			break
		}
		if p, ok := FindPrice(lines[j].Text); ok {
			return p, j, true
		}
	}
	return Price{}, -1, false
}

// verticalFormat looks for the packaging token of the item anchored at lines[i]:
// on the anchor itself, then on a label line right above it, then on the lines
// below. It returns -1 as the line index when nothing matches.
func verticalFormat(lines []Line, i, floor int, price Price, priceLine int) (Token, int) {
	avoidOn := func(j int) *Token {
		if j == priceLine {
			return &price.Token
		}
		return nil
	}

	if t, ok := findFormat(lines[i].Text, avoidOn(i)); ok {
		return t, i
	}

	if prev := i - 1; prev >= floor {
		prevText := lines[prev].Text
		if isAuxLine(prevText) && !hasPrice(prevText) {
			if t, ok := FindFormat(prevText); ok {
				return t, prev
			}
		}
	}

	for j := i + 1; j <= i+verticalLookahead && j < len(lines); j++ {
		text := lines[j].Text
		if priceLine > i {
			if j > priceLine {
				break
			}
			if t, ok := findFormat(text, avoidOn(j)); ok {
				return t, j
			}
			continue
		}
		// The price sat on the anchor, so a label below only belongs to it when no
		// other product line follows the label.
		if !isAuxLine(text) || hasPrice(text) {
			break
		}
		if j+1 < len(lines) && !isAuxLine(lines[j+1].Text) {
			break
		}
		if t, ok := FindFormat(text); ok {
			return t, j
		}
	}
	return Token{}, -1
}
