package constants

import (
	"sort"
	"strings"
)

// Unit is the canonical packaging unit of a price-list item.
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "L"
	UnitMilliliter Unit = "mL"
	UnitPiece      Unit = "unidad"
	UnitDozen      Unit = "docena"
	UnitTray       Unit = "bandeja"
	UnitBag        Unit = "bolsa"
	UnitBunch      Unit = "manojo"
)

var allUnits = []Unit{
	UnitKilogram,
	UnitGram,
	UnitLiter,
	UnitMilliliter,
	UnitPiece,
	UnitDozen,
	UnitTray,
	UnitBag,
	UnitBunch,
}

// unitSynonyms maps every spelling found on supplier lists to its canonical unit.
var unitSynonyms = map[string]Unit{
	"kg":         UnitKilogram,
	"kgs":        UnitKilogram,
	"kilo":       UnitKilogram,
	"kilos":      UnitKilogram,
	"kilogramo":  UnitKilogram,
	"kilogramos": UnitKilogram,
	"g":          UnitGram,
	"gr":         UnitGram,
	"grs":        UnitGram,
	"gramo":      UnitGram,
	"gramos":     UnitGram,
	"l":          UnitLiter,
	"lt":         UnitLiter,
	"lts":        UnitLiter,
	"litro":      UnitLiter,
	"litros":     UnitLiter,
	"ml":         UnitMilliliter,
	"mililitro":  UnitMilliliter,
	"mililitros": UnitMilliliter,
	"ud":         UnitPiece,
	"uds":        UnitPiece,
	"unidad":     UnitPiece,
	"unidades":   UnitPiece,
	"docena":     UnitDozen,
	"docenas":    UnitDozen,
	"bandeja":    UnitTray,
	"bandejas":   UnitTray,
	"bolsa":      UnitBag,
	"bolsas":     UnitBag,
	"manojo":     UnitBunch,
	"manojos":    UnitBunch,
}

// UnitsAsStringSlice lists the canonical unit values.
func UnitsAsStringSlice() []string {
	result := make([]string, len(allUnits))
	for i, u := range allUnits {
		result[i] = string(u)
	}
	return result
}

// CanonicalizeUnit maps a unit word to its canonical unit. A trailing dot is ignored.
func CanonicalizeUnit(input string) (Unit, bool) {
	normalized := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(input)), ".")
	if normalized == "" {
		return UnitPiece, false
	}
	if u, ok := unitSynonyms[normalized]; ok {
		return u, true
	}
	return UnitPiece, false
}

// UnitWords returns every recognised unit spelling, longest first, so that it can be
// joined into a regexp alternation without a short word shadowing a longer one.
func UnitWords() []string {
	words := make([]string, 0, len(unitSynonyms))
	for w := range unitSynonyms {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return words
}
