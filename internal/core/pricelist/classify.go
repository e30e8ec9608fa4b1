package pricelist

import (
	"strings"
	"unicode"
)

const (
	headerWindow     = 15
	minInvoiceRows   = 2
	minInvoiceFields = 5
)

var (
	codeKeywords = map[string]struct{}{
		"codigo": {}, "cod": {}, "ref": {}, "referencia": {}, "art": {},
		"articulo": {}, "code": {}, "sku": {}, "item": {},
	}
	priceKeywords = map[string]struct{}{
		"precio": {}, "precios": {}, "pvp": {}, "importe": {},
		"price": {}, "tarifa": {},
	}
)

// Classify picks the page layout. Rules are tried in priority order and the first
// match wins: invoice rows, letter-coded rows, a table header, then the vertical
// list fallback.
func Classify(lines []Line) Layout {
	rows := 0
	for _, l := range lines {
		if _, ok := parseInvoiceRow(l.Text); ok {
			rows++
		}
	}
	if rows >= minInvoiceRows {
		return InvoiceTable
	}

	for _, l := range lines {
		if _, shape := LeadingCode(l.Text); shape == LetterCode {
			return CodedTable
		}
	}

	if hasTableHeader(lines) {
		return GenericTable
	}
	return VerticalList
}

// hasTableHeader reports whether the first lines of the page mention both a code
// column and a price column.
func hasTableHeader(lines []Line) bool {
	if len(lines) > headerWindow {
		lines = lines[:headerWindow]
	}
	var code, price bool
	for _, l := range lines {
		for _, w := range headerWords(l.Text) {
			if _, ok := codeKeywords[w]; ok {
				code = true
			}
			if _, ok := priceKeywords[w]; ok {
				price = true
			}
		}
		if code && price {
			return true
		}
	}
	return false
}

// headerWords splits a line into folded words with dots removed, so "P.V.P." and
// "Cód." become "pvp" and "cod".
func headerWords(text string) []string {
	fields := strings.FieldsFunc(fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '.'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.ReplaceAll(f, ".", ""); f != "" {
			out = append(out, f)
		}
	}
	return out
}
