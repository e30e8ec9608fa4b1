package pricelist

import (
	"strings"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
)

type invoiceRow struct {
	code     Token
	quantity Price
	price    Price
	desc     string
}

// parseInvoiceRow matches an invoice line: a numeric code, at least five fields and
// at least two decimals after the code. The first decimal is the weight in kg and
// the second the unit price; any further columns (amount, VAT) are ignored.
func parseInvoiceRow(text string) (invoiceRow, bool) {
	if len(strings.Fields(text)) < minInvoiceFields {
		return invoiceRow{}, false
	}
	code, shape := LeadingCode(text)
	if shape != NumericCode {
		return invoiceRow{}, false
	}
	decimals := FindDecimals(text[code.End:])
	if len(decimals) < 2 {
		return invoiceRow{}, false
	}
	qty, price := shift(decimals[0], code.End), shift(decimals[1], code.End)

	desc := removeSpans(text, code, qty.Token, price.Token)
	return invoiceRow{
		code:     code,
		quantity: qty,
		price:    price,
		desc:     invoiceDescription(desc),
	}, true
}

func shift(p Price, offset int) Price {
	p.Start += offset
	p.End += offset
	return p
}

// invoiceDescription drops the numeric columns and unit words left in a row once
// the code and the two matched numbers are gone.
func invoiceDescription(s string) string {
	var kept []string
	for _, f := range strings.Fields(s) {
		bare := strings.Trim(f, fragmentTrim+"%")
		if bare == "" || isAllNumeric(bare) {
			continue
		}
		if _, ok := constants.CanonicalizeUnit(bare); ok {
			continue
		}
		kept = append(kept, f)
	}
	return cleanFragment(strings.Join(kept, " "))
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return s != ""
}

func extractInvoice(lines []Line) []Candidate {
	var out []Candidate
	for i, l := range lines {
		row, ok := parseInvoiceRow(l.Text)
		if !ok || row.desc == "" {
			continue
		}
		out = append(out, Candidate{
			RawName: row.desc,
			Price:   row.price.Value,
			Span:    [2]int{i, i},
			Fixed: &Format{
				Quantity: row.quantity.Value,
				Unit:     constants.UnitKilogram,
			},
		})
	}
	return out
}
