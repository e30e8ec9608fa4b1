package pricelist

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
)

func newTestExtractor(t *testing.T) (*Extractor, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewExtractor(nil, WithLogger(logger)), &buf
}

func TestExtractBagOnNextLine(t *testing.T) {
	e, _ := newTestExtractor(t)

	items := e.Extract("Ajos pelados bolsa 1kg\n4,79")
	require.Len(t, items, 1)
	assert.Equal(t, LineItem{
		Name:     "Ajos pelados bolsa",
		Price:    4.79,
		Unit:     constants.UnitKilogram,
		Quantity: 1,
	}, items[0])
}

func TestExtractUnitBetweenNameAndPrice(t *testing.T) {
	e, _ := newTestExtractor(t)

	items := e.Extract("Granadas Kg 2,10")
	require.Len(t, items, 1)
	assert.Equal(t, LineItem{
		Name:     "Granadas",
		Price:    2.10,
		Unit:     constants.UnitKilogram,
		Quantity: 1,
	}, items[0])
}

func TestExtractPageLayouts(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		layout Layout
		want   []LineItem
	}{
		{
			name: "coded table",
			text: strings.Join([]string{
				"FRUTAS GARCÍA",
				"CÓDIGO DESCRIPCIÓN PVP",
				"AB1234 Tomate pera",
				"Caja 4 x 2,5 kg",
				"12,40",
				"AB1235 Pimiento rojo 3,15",
			}, "\n"),
			layout: CodedTable,
			want: []LineItem{
				{Name: "Tomate pera", Price: 12.40, Unit: constants.UnitKilogram, Quantity: 2.5, DisplayFormat: "4 x 2,5 kg"},
				{Name: "Pimiento rojo", Price: 3.15, Unit: constants.UnitPiece, Quantity: 1},
			},
		},
		{
			name: "generic table",
			text: strings.Join([]string{
				"Cód.    Descripción      Formato      P.V.P.",
				"123     Tomate pera      Caja 5 kg    2,10 €",
				"124     Fresas           Bandeja      1,95 €",
			}, "\n"),
			layout: GenericTable,
			want: []LineItem{
				{Name: "Tomate pera", Price: 2.10, Unit: constants.UnitKilogram, Quantity: 5, DisplayFormat: "Caja 5 kg"},
				{Name: "Fresas", Price: 1.95, Unit: constants.UnitTray, Quantity: 1},
			},
		},
		{
			name: "invoice",
			text: strings.Join([]string{
				"FACTURA 2024/118",
				"1023 TOMATE PERA 12,500 1,35 16,88",
				"1045 CEBOLLA MORADA 5,000 0,90 4,50",
				"BASE IMPONIBLE 21,38",
			}, "\n"),
			layout: InvoiceTable,
			want: []LineItem{
				{Name: "Tomate pera", Price: 1.35, Unit: constants.UnitKilogram, Quantity: 12.5},
				{Name: "Cebolla morada", Price: 0.90, Unit: constants.UnitKilogram, Quantity: 5},
			},
		},
		{
			name: "vertical list",
			text: strings.Join([]string{
				"Kg",
				"Granadas 2,10",
				"Melon 1,20",
				"Tornate cherry",
				"Bandeja",
				"2,35",
				"No se admiten devoluciones",
			}, "\n"),
			layout: VerticalList,
			want: []LineItem{
				{Name: "Granadas", Price: 2.10, Unit: constants.UnitKilogram, Quantity: 1},
				{Name: "Melón", Price: 1.20, Unit: constants.UnitPiece, Quantity: 1},
				{Name: "Tomate cherry", Price: 2.35, Unit: constants.UnitTray, Quantity: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExtractor(t)
			p := e.ExtractPage(tt.text)
			assert.Equal(t, tt.layout, p.Layout)
			assert.Equal(t, tt.want, p.Items)
		})
	}
}

func TestExtractDropsDuplicates(t *testing.T) {
	e, _ := newTestExtractor(t)
	items := e.Extract("Granadas Kg 2,10\nGranadas Kg 2,10\nGranadas Kg 2,20")
	require.Len(t, items, 2)
	assert.InDelta(t, 2.10, items[0].Price, 1e-9)
	assert.InDelta(t, 2.20, items[1].Price, 1e-9)
}

func TestExtractBoilerplateAndShortLines(t *testing.T) {
	e, _ := newTestExtractor(t)
	items := e.Extract("Precios IVA incluido 2,50\nA\n7 1,00\nGranadas Kg 2,10")
	require.Len(t, items, 1)
	assert.Equal(t, "Granadas", items[0].Name)
}

func TestExtractWarnsOnEmptyResult(t *testing.T) {
	e, buf := newTestExtractor(t)

	p := e.ExtractPage("Listado de temporada\nSin precios esta semana")
	assert.Empty(t, p.Items)
	assert.Equal(t, 2, p.Lines)
	assert.Contains(t, buf.String(), "no items extracted")

	buf.Reset()
	assert.Empty(t, e.Extract(""))
	assert.NotContains(t, buf.String(), "no items extracted")
}

func TestExtractGarbage(t *testing.T) {
	e, _ := newTestExtractor(t)
	inputs := []string{
		"\x00\xff\xfe",
		"||| ,,, ... 1,2,3,4",
		strings.Repeat("x ", 500),
		"12.345,67\n1.234.567\n%%%",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { e.Extract(in) })
	}

	t.Run("invalid bytes never reach item names", func(t *testing.T) {
		items := e.Extract("\xff\xfe\x00garbage 1,2\nMel\xf3n\x07 Kg 1,20")
		require.NotEmpty(t, items)
		for _, it := range items {
			assert.True(t, utf8.ValidString(it.Name), "name %q", it.Name)
			assert.NotContains(t, it.Name, "\x00")
			assert.NotContains(t, it.Name, "\uFFFD")
			for _, r := range it.Name {
				assert.False(t, unicode.IsControl(r), "name %q", it.Name)
			}
		}
		assert.Equal(t, "Garbage", items[0].Name)
		assert.InDelta(t, 1.2, items[0].Price, 1e-9)
	})

	t.Run("only invalid bytes yields nothing", func(t *testing.T) {
		assert.Empty(t, NormalizeLines("\xff\xfe\x00\x01", LineOptions{}))
		assert.Empty(t, e.Extract("\x00\xff\xfe"))
	})
}

func TestExtractIdempotent(t *testing.T) {
	e, _ := newTestExtractor(t)
	text := "Kg\nGranadas 2,10\nMelón 1,20\nAjos pelados bolsa 1kg\n4,79"
	assert.Equal(t, e.Extract(text), e.Extract(text))
}

func TestExtractConcurrent(t *testing.T) {
	e := NewExtractor(nil)
	text := "Granadas Kg 2,10\nTomate pra 1,35"
	want := e.Extract(text)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, e.Extract(text))
		}()
	}
	wg.Wait()
}
