// Package pricelist turns the OCR text of one supplier price-list page into
// structured line items.
//
// The pipeline normalizes the raw text into lines, classifies the page layout,
// runs the grammar for that layout, then normalizes each candidate's format and
// name and collapses duplicates.
package pricelist

import "github.com/joseph-ayodele/pricelist-tracker/constants"

// Layout is the visual arrangement of a price-list page.
type Layout int

const (
	VerticalList Layout = iota
	CodedTable
	GenericTable
	InvoiceTable
)

func (l Layout) String() string {
	switch l {
	case CodedTable:
		return "coded_table"
	case GenericTable:
		return "generic_table"
	case InvoiceTable:
		return "invoice_table"
	default:
		return "vertical_list"
	}
}

// Line is one normalized text line of a page.
type Line struct {
	Text  string   // trimmed, single-spaced, currency symbols removed
	Cells []string // column cells split on tabs, pipes or runs of two or more spaces
	Pos   int      // index of the source line in the raw text
}

// Token is a matched substring of a line, as byte offsets into that line.
type Token struct {
	Text  string
	Start int
	End   int
}

// Price is a decimal token with its parsed value.
type Price struct {
	Token
	Value float64
}

// Format is the normalized packaging of an item.
type Format struct {
	Quantity float64
	Unit     constants.Unit
	Display  string
}

// Candidate is an unnormalized item produced by a layout extractor.
type Candidate struct {
	RawName   string
	Price     float64
	RawFormat string
	Span      [2]int  // first and last line index the candidate was built from
	Fixed     *Format // set when the layout already decided the format
}

// LineItem is one extracted price-list entry.
type LineItem struct {
	Name          string         `json:"name"`
	Price         float64        `json:"price"`
	Unit          constants.Unit `json:"unit"`
	Quantity      float64        `json:"quantity"`
	DisplayFormat string         `json:"display_format"`
}

// Page is the result of extracting one page.
type Page struct {
	Layout     Layout
	Lines      int
	Candidates int
	Items      []LineItem
}
