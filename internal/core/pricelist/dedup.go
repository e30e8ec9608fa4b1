package pricelist

import (
	"fmt"
	"math"
)

type dedupKey struct {
	name    string
	price   string
	display string
}

// Dedupe keeps one item per (name, price, display format). A later duplicate
// replaces the earlier one in place, so the output follows first-occurrence order.
func Dedupe(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	index := make(map[dedupKey]int, len(items))
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		k := dedupKey{name: it.Name, price: fmt.Sprintf("%.2f", it.Price), display: it.DisplayFormat}
		if i, ok := index[k]; ok {
			out[i] = it
			continue
		}
		index[k] = len(out)
		out = append(out, it)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
