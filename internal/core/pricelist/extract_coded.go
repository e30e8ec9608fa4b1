package pricelist

const (
	codedFormatWindow = 4
	codedPriceWindow  = 7
)

func extractCoded(lines []Line) []Candidate {
	var out []Candidate
	for i := 0; i < len(lines); {
		c, next, ok := codedItemAt(lines, i)
		if ok {
			out = append(out, c)
		}
		i = next
	}
	return out
}

// codedItemAt builds the item whose code line is lines[i]. The item's window runs
// up to codedPriceWindow lines and stops before the next code line. It returns the
// index of the first line after the window.
func codedItemAt(lines []Line, i int) (Candidate, int, bool) {
	code, shape := LeadingCode(lines[i].Text)
	if shape != LetterCode {
		return Candidate{}, i + 1, false
	}
	end := i + 1
	for end < len(lines) && end < i+codedPriceWindow {
		if _, s := LeadingCode(lines[end].Text); s == LetterCode {
			break
		}
		end++
	}

	var price Price
	priceLine := -1
	for j := i; j < end; j++ {
		if p, ok := FindPrice(lines[j].Text); ok {
			price, priceLine = p, j
			break
		}
	}
	if priceLine < 0 {
		return Candidate{}, end, false
	}

	fmtTok, fmtLine := Token{}, -1
	for j := i; j < end && j < i+codedFormatWindow; j++ {
		if t, ok := findPack(lines[j].Text); ok {
			fmtTok, fmtLine = t, j
			break
		}
	}
	if fmtLine < 0 {
		var avoid *Token
		if priceLine == i {
			avoid = &price.Token
		}
		if t, ok := findFormat(lines[i].Text, avoid); ok && !overlaps(t.Start, t.End, code.Start, code.End) {
			fmtTok, fmtLine = t, i
		}
	}

	cut := func(j int, extra ...Token) string {
		toks := extra
		if priceLine == j {
			toks = append(toks, price.Token)
		}
		if fmtLine == j {
			toks = append(toks, fmtTok)
		}
		return cleanFragment(removeSpans(lines[j].Text, toks...))
	}
	name, nameLine := cut(i, code), i
	if name == "" && i+1 < end {
		name, nameLine = cut(i+1), i+1
	}
	if name == "" {
		return Candidate{}, end, false
	}

	c := Candidate{
		RawName: name,
		Price:   price.Value,
		Span:    [2]int{i, max(priceLine, fmtLine, nameLine)},
	}
	if fmtLine >= 0 {
		c.RawFormat = fmtTok.Text
	}
	return c, end, true
}
