package costing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

func TestClassify_BandasComida(t *testing.T) {
	cases := map[string]costing.Band{
		"12":    costing.BandVeryProfitable,
		"28":    costing.BandVeryProfitable,
		"29":    costing.BandProfitable,
		"33":    costing.BandProfitable,
		"34":    costing.BandTight,
		"38":    costing.BandTight,
		"38.01": costing.BandUnprofitable,
		"100":   costing.BandUnprofitable,
	}
	for pct, want := range cases {
		assert.Equal(t, want, costing.Classify(d(pct), costing.BandSetFood), "pct=%s", pct)
	}
}

// Vinos y bebidas usan bandas más amplias: no es un error, es regla de negocio.
func TestClassify_BandasBebida(t *testing.T) {
	assert.Equal(t, costing.BandExcellent, costing.Classify(d("40"), costing.BandSetBeverage))
	assert.Equal(t, costing.BandNormal, costing.Classify(d("41"), costing.BandSetBeverage))
	assert.Equal(t, costing.BandNormal, costing.Classify(d("50"), costing.BandSetBeverage))
	assert.Equal(t, costing.BandNeedsRepricing, costing.Classify(d("50.5"), costing.BandSetBeverage))
	// el mismo 35 % es "tight" en comida y "excellent" en vino
	assert.Equal(t, costing.BandTight, costing.Classify(d("35"), costing.BandSetFood))
	assert.Equal(t, costing.BandExcellent, costing.Classify(d("35"), costing.BandSetBeverage))
}

func TestBandSetFor(t *testing.T) {
	assert.Equal(t, costing.BandSetBeverage, costing.BandSetFor("Vinos"))
	assert.Equal(t, costing.BandSetBeverage, costing.BandSetFor(" bebidas "))
	assert.Equal(t, costing.BandSetFood, costing.BandSetFor("principales"))
	assert.Equal(t, costing.BandSetFood, costing.BandSetFor(""))
}

func TestFoodCostPercent_PrecioVentaCero(t *testing.T) {
	assert.True(t, costing.FoodCostPercent(d("3"), decimal.Zero).Equal(d("100")))
	assert.True(t, costing.FoodCostPercent(d("3"), d("-1")).Equal(d("100")))
	assert.True(t, costing.FoodCostPercent(d("1.65"), d("5.50")).Equal(d("30")))
}

func TestMarginFor(t *testing.T) {
	m := costing.MarginFor(d("1.65"), d("5.50"), costing.BandSetFood)
	assert.True(t, m.Margin.Equal(d("3.85")))
	assert.Equal(t, costing.BandProfitable, m.Band)
}

// Producción: 2 tandas de PLATO (1 porción) que usa 5 porciones de SALSA (10 porciones/tanda).
func TestExplode_BajaPorSubRecetas(t *testing.T) {
	snap := entity.NewSnapshot(
		[]entity.Ingredient{ingredient("TOM", "1"), ingredient("OIL", "1"), ingredient("PASTA", "1")},
		[]entity.Recipe{
			{ID: "SALSA", Category: "base", Portions: 10, Lines: []entity.RecipeLine{
				line(entity.IngredientRef("TOM"), "4"),
				line(entity.IngredientRef("OIL"), "0.5"),
			}},
			{ID: "PLATO", Portions: 1, Lines: []entity.RecipeLine{
				line(entity.IngredientRef("PASTA"), "0.1"),
				line(entity.SubRecipeRef("SALSA"), "5"),
				line(entity.IngredientRef("OIL"), "0.02"),
			}},
		},
		nil,
	)
	plato, _ := snap.Recipe("PLATO")
	out, warnings, err := costing.Explode(snap, plato, d("2"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, out, 3)
	assert.Equal(t, "PASTA", out[0].IngredientID)
	assert.True(t, out[0].Quantity.Equal(d("0.2")))
	assert.Equal(t, "TOM", out[1].IngredientID)
	assert.True(t, out[1].Quantity.Equal(d("4")), "got %s", out[1].Quantity)
	assert.Equal(t, "OIL", out[2].IngredientID)
	// 0.5 (salsa) + 0.04 (plato)
	assert.True(t, out[2].Quantity.Equal(d("0.54")), "got %s", out[2].Quantity)
}
