package pricelist

import (
	"log/slog"
	"strings"
)

// Extractor runs the full page pipeline. It is immutable after construction and
// safe for concurrent use.
type Extractor struct {
	logger    *slog.Logger
	minLength int
	floor     float64
	denylist  []string
	corrector *NameCorrector
}

type Option func(*Extractor)

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMinLineLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minLength = n
		}
	}
}

func WithSimilarityFloor(f float64) Option {
	return func(e *Extractor) {
		if f > 0 && f <= 1 {
			e.floor = f
		}
	}
}

// NewExtractor builds an extractor over vocab; nil selects the embedded vocabulary.
func NewExtractor(vocab *Vocabulary, opts ...Option) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	e := &Extractor{
		logger:    slog.Default(),
		minLength: DefaultMinLineLength,
		floor:     DefaultSimilarityFloor,
	}
	for _, o := range opts {
		o(e)
	}
	e.denylist = foldAll(vocab.Denylist)
	e.corrector = NewNameCorrector(vocab, e.floor)
	return e
}

// Extract returns the line items of one page of OCR text.
func (e *Extractor) Extract(text string) []LineItem {
	return e.ExtractPage(text).Items
}

// ExtractPage returns the line items of one page together with the layout that
// was used. It never fails: text with nothing recognisable yields no items.
func (e *Extractor) ExtractPage(text string) Page {
	lines := NormalizeLines(text, LineOptions{MinLength: e.minLength, Denylist: e.denylist})
	layout := Classify(lines)

	var candidates []Candidate
	switch layout {
	case InvoiceTable:
		candidates = extractInvoice(lines)
	case CodedTable:
		candidates = extractCoded(lines)
	case GenericTable:
		candidates = extractGeneric(lines)
	default:
		candidates = extractVertical(lines)
	}

	items := make([]LineItem, 0, len(candidates))
	for _, c := range candidates {
		if it, ok := e.assemble(c); ok {
			items = append(items, it)
		}
	}
	items = Dedupe(items)

	e.logger.Debug("page extracted",
		"layout", layout.String(),
		"lines", len(lines),
		"candidates", len(candidates),
		"items", len(items))
	if len(items) == 0 && strings.TrimSpace(text) != "" {
		e.logger.Warn("no items extracted from non-empty page",
			"layout", layout.String(),
			"lines", len(lines))
	}

	return Page{
		Layout:     layout,
		Lines:      len(lines),
		Candidates: len(candidates),
		Items:      items,
	}
}

func (e *Extractor) assemble(c Candidate) (LineItem, bool) {
	name := e.corrector.Correct(c.RawName)
	if visibleLen(name) < 2 || c.Price < 0 {
		return LineItem{}, false
	}
	f := NormalizeFormat(c.RawFormat)
	if c.Fixed != nil {
		f = *c.Fixed
	}
	return LineItem{
		Name:          name,
		Price:         round2(c.Price),
		Unit:          f.Unit,
		Quantity:      f.Quantity,
		DisplayFormat: f.Display,
	}, true
}
