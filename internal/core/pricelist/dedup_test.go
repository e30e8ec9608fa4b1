package pricelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
)

func TestDedupe(t *testing.T) {
	items := []LineItem{
		{Name: "Granadas", Price: 2.10, Unit: constants.UnitKilogram, Quantity: 1},
		{Name: "Melón", Price: 1.20, Unit: constants.UnitPiece, Quantity: 1},
		{Name: "Granadas", Price: 2.1, Unit: constants.UnitKilogram, Quantity: 2},
		{Name: "Granadas", Price: 2.10, Unit: constants.UnitKilogram, Quantity: 1, DisplayFormat: "Caja 5 kg"},
	}

	got := Dedupe(items)
	require.Len(t, got, 3)
	assert.Equal(t, "Granadas", got[0].Name)
	assert.InDelta(t, 2.0, got[0].Quantity, 1e-9, "last write wins")
	assert.Equal(t, "Melón", got[1].Name)
	assert.Equal(t, "Caja 5 kg", got[2].DisplayFormat)
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}
