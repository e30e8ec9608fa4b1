package pricelist

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
)

var (
	reFormatPackExact = regexp.MustCompile(`(?i)(\d+)\s*[x×]\s*(\d+(?:[.,]\d+)?)\s*(` + unitAlt + `)\b`)
	reFormatQtyExact  = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(` + unitAlt + `)\.?$`)
	reFormatQtyLoose  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(` + unitAlt + `)\b`)
	reFormatUnitLoose = regexp.MustCompile(`(?i)\b(` + unitAlt + `)\b`)
)

// CanonicalUnit maps a unit or container word to its canonical unit.
func CanonicalUnit(word string) (constants.Unit, bool) {
	return constants.CanonicalizeUnit(word)
}

// NormalizeFormat turns a raw packaging string into quantity, unit and the display
// text kept for the user. Rules, first match wins:
//
//	"4 x 2,5 kg" -> 2.5 kg, display kept
//	"125gr"      -> 125 g, display empty
//	"Kg"         -> 1 kg, display empty
//	"Caja 5 kg"  -> 5 kg, display kept
//	anything else -> 1 unidad, display empty
func NormalizeFormat(raw string) Format {
	s := collapse(raw)
	if s == "" {
		return defaultFormat()
	}

	if m := reFormatPackExact.FindStringSubmatch(s); m != nil {
		q, qok := parseDecimal(m[2])
		u, uok := CanonicalUnit(m[3])
		if qok && uok {
			return Format{Quantity: q, Unit: u, Display: s}
		}
	}

	if m := reFormatQtyExact.FindStringSubmatch(s); m != nil {
		q, qok := parseDecimal(m[1])
		u, uok := CanonicalUnit(m[2])
		if qok && uok {
			return Format{Quantity: q, Unit: u}
		}
	}

	if u, ok := CanonicalUnit(s); ok {
		return Format{Quantity: 1, Unit: u}
	}

	if m := reFormatQtyLoose.FindStringSubmatch(s); m != nil {
		q, qok := parseDecimal(m[1])
		u, uok := CanonicalUnit(m[2])
		if qok && uok {
			return Format{Quantity: q, Unit: u, Display: s}
		}
	}

	if m := reFormatUnitLoose.FindStringSubmatch(s); m != nil {
		if u, ok := CanonicalUnit(m[1]); ok {
			return Format{Quantity: 1, Unit: u, Display: s}
		}
	}

	return defaultFormat()
}

func defaultFormat() Format {
	return Format{Quantity: 1, Unit: constants.UnitPiece}
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
