package ocr

import (
	"regexp"
	"strings"
)

var (
	rePriceLike = regexp.MustCompile(`\b\d{1,4}[.,]\d{2}\b`)
	reCurrency  = regexp.MustCompile(`€|\beur\b|\beuros?\b`)
	reUnitLike  = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s?(?:kg|gr?|l|ml)\b|\b(?:kg|kilo|unidad|ud|caja|docena|bandeja|manojo)\b`)
)

func hasPricePattern(s string) bool    { return rePriceLike.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurrency.MatchString(s) }
func hasUnitPattern(s string) bool     { return reUnitLike.MatchString(s) }

// heuristicConfidence scores decoded text by how much it looks like a price list.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasPricePattern(txtL) {
		score += 0.3
	}
	if len(rePriceLike.FindAllStringIndex(txtL, 5)) >= 5 {
		score += 0.1
	}
	if hasUnitPattern(txtL) {
		score += 0.15
	}
	if hasCurrencyPattern(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights engine confidence higher when the engine reported one.
func blendConfidence(engine, heuristic float32) float32 {
	conf := heuristic
	if engine > 0 {
		conf = 0.7*engine + 0.3*heuristic
	}
	return min(conf, 1.0)
}
