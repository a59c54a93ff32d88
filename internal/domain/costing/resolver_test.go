package costing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

func ingredient(id, unitPrice string) entity.Ingredient {
	return entity.Ingredient{
		ID: id, Name: "ing-" + id,
		PurchasePrice: d(unitPrice), UnitsPerFormat: decimal.NewFromInt(1),
		Active: true,
	}
}

func line(ref entity.ComponentRef, qty string) entity.RecipeLine {
	return entity.RecipeLine{Component: ref, Quantity: d(qty)}
}

// Receta 4 porciones: 2 × A(1.00) + 1 × B(2.00) = 4.00 → 1.00 por porción.
func TestResolve_RecetaSimple(t *testing.T) {
	snap := entity.NewSnapshot(
		[]entity.Ingredient{ingredient("A", "1.00"), ingredient("B", "2.00")},
		[]entity.Recipe{{ID: "R1", Portions: 4, Lines: []entity.RecipeLine{
			line(entity.IngredientRef("A"), "2"),
			line(entity.IngredientRef("B"), "1"),
		}}},
		nil,
	)
	res, err := costing.NewResolver(snap).Resolve("R1")
	require.NoError(t, err)
	assert.True(t, res.BatchCost.Equal(d("4.00")))
	assert.True(t, res.CostPerPortion.Equal(d("1.00")))
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "ing-A", res.Lines[0].Name)
}

// Sin sub-recetas el coste es round(Σ qty × precio / porciones, 2).
func TestResolve_FormulaSinSubRecetas(t *testing.T) {
	ings := []entity.Ingredient{ingredient("A", "0.333"), ingredient("B", "1.7"), ingredient("C", "12.05")}
	recipe := entity.Recipe{ID: "R", Portions: 3, Lines: []entity.RecipeLine{
		line(entity.IngredientRef("A"), "1.5"),
		line(entity.IngredientRef("B"), "0.25"),
		line(entity.IngredientRef("C"), "0.1"),
	}}
	snap := entity.NewSnapshot(ings, []entity.Recipe{recipe}, nil)

	want := d("1.5").Mul(d("0.333")).Add(d("0.25").Mul(d("1.7"))).Add(d("0.1").Mul(d("12.05"))).
		Div(decimal.NewFromInt(3)).Round(2)
	res, err := costing.NewResolver(snap).Resolve("R")
	require.NoError(t, err)
	assert.True(t, res.CostPerPortion.Equal(want), "want %s got %s", want, res.CostPerPortion)
}

func TestResolve_EstableAnteReordenacion(t *testing.T) {
	ings := []entity.Ingredient{ingredient("A", "0.37"), ingredient("B", "2.11"), ingredient("C", "5")}
	lines := []entity.RecipeLine{
		line(entity.IngredientRef("A"), "3"),
		line(entity.IngredientRef("B"), "0.7"),
		line(entity.IngredientRef("C"), "0.05"),
	}
	reversed := []entity.RecipeLine{lines[2], lines[0], lines[1]}
	snap := entity.NewSnapshot(ings, []entity.Recipe{
		{ID: "R1", Portions: 2, Lines: lines},
		{ID: "R2", Portions: 2, Lines: reversed},
	}, nil)
	r := costing.NewResolver(snap)
	a, err := r.Resolve("R1")
	require.NoError(t, err)
	b, err := r.Resolve("R2")
	require.NoError(t, err)
	assert.True(t, a.CostPerPortion.Equal(b.CostPerPortion))
}

func TestResolve_SubRecetaVaciaAportaCero(t *testing.T) {
	snap := entity.NewSnapshot(
		[]entity.Ingredient{ingredient("A", "2")},
		[]entity.Recipe{
			{ID: "BASE", Category: "base", Portions: 1},
			{ID: "R", Portions: 2, Lines: []entity.RecipeLine{
				line(entity.SubRecipeRef("BASE"), "3"),
				line(entity.IngredientRef("A"), "1"),
			}},
		},
		nil,
	)
	res, err := costing.NewResolver(snap).Resolve("R")
	require.NoError(t, err)
	assert.True(t, res.Lines[0].Total.IsZero())
	assert.True(t, res.CostPerPortion.Equal(d("1.00")))
}

// La sub-receta aporta su coste por porción multiplicado por la cantidad.
func TestResolve_SubRecetaAnidada(t *testing.T) {
	snap := entity.NewSnapshot(
		[]entity.Ingredient{ingredient("TOM", "1.20"), ingredient("OIL", "8")},
		[]entity.Recipe{
			// salsa: 10 porciones, 5 × 1.20 + 0.5 × 8 = 10 → 1.00 por porción
			{ID: "SALSA", Category: "base", Portions: 10, Lines: []entity.RecipeLine{
				line(entity.IngredientRef("TOM"), "5"),
				line(entity.IngredientRef("OIL"), "0.5"),
			}},
			// pasta: 2 porciones de salsa + 0.1 aceite = 2.80 → 2.80 por porción
			{ID: "PASTA", Portions: 1, Lines: []entity.RecipeLine{
				line(entity.SubRecipeRef("SALSA"), "2"),
				line(entity.IngredientRef("OIL"), "0.1"),
			}},
		},
		nil,
	)
	res, err := costing.NewResolver(snap).Resolve("PASTA")
	require.NoError(t, err)
	assert.True(t, res.Lines[0].UnitCost.Equal(d("1.00")))
	assert.True(t, res.CostPerPortion.Equal(d("2.80")), "got %s", res.CostPerPortion)
}

func TestResolve_ReferenciasAusentesGeneranAviso(t *testing.T) {
	snap := entity.NewSnapshot(
		[]entity.Ingredient{ingredient("A", "3")},
		[]entity.Recipe{{ID: "R", Portions: 1, Lines: []entity.RecipeLine{
			line(entity.IngredientRef("A"), "1"),
			line(entity.IngredientRef("GHOST"), "4"),
			line(entity.SubRecipeRef("NOPE"), "2"),
		}}},
		nil,
	)
	res, err := costing.NewResolver(snap).Resolve("R")
	require.NoError(t, err, "las referencias ausentes nunca producen error")
	assert.True(t, res.CostPerPortion.Equal(d("3.00")))
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, entity.IngredientRef("GHOST"), res.Warnings[0].Component)
	assert.Equal(t, entity.SubRecipeRef("NOPE"), res.Warnings[1].Component)
	assert.True(t, res.Lines[1].Missing)
}

func TestResolve_CicloDetectado(t *testing.T) {
	snap := entity.NewSnapshot(nil, []entity.Recipe{
		{ID: "A", Category: "base", Portions: 1, Lines: []entity.RecipeLine{line(entity.SubRecipeRef("B"), "1")}},
		{ID: "B", Category: "base", Portions: 1, Lines: []entity.RecipeLine{line(entity.SubRecipeRef("A"), "1")}},
	}, nil)
	_, err := costing.NewResolver(snap).Resolve("A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRecipeCycle))
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestResolve_AutoReferencia(t *testing.T) {
	snap := entity.NewSnapshot(nil, []entity.Recipe{
		{ID: "A", Portions: 1, Lines: []entity.RecipeLine{line(entity.SubRecipeRef("A"), "1")}},
	}, nil)
	_, err := costing.NewResolver(snap).Resolve("A")
	assert.ErrorIs(t, err, domain.ErrRecipeCycle)
}

// Una sub-receta usada dos veces (diamante) no es un ciclo.
func TestResolve_DiamanteNoEsCiclo(t *testing.T) {
	snap := entity.NewSnapshot(
		[]entity.Ingredient{ingredient("X", "1")},
		[]entity.Recipe{
			{ID: "FONDO", Category: "base", Portions: 1, Lines: []entity.RecipeLine{line(entity.IngredientRef("X"), "2")}},
			{ID: "SALSA", Category: "base", Portions: 1, Lines: []entity.RecipeLine{line(entity.SubRecipeRef("FONDO"), "1")}},
			{ID: "PLATO", Portions: 1, Lines: []entity.RecipeLine{
				line(entity.SubRecipeRef("FONDO"), "1"),
				line(entity.SubRecipeRef("SALSA"), "1"),
			}},
		},
		nil,
	)
	res, err := costing.NewResolver(snap).Resolve("PLATO")
	require.NoError(t, err)
	assert.True(t, res.CostPerPortion.Equal(d("4.00")))
}

func TestResolve_RecetaInexistente(t *testing.T) {
	_, err := costing.NewResolver(entity.NewSnapshot(nil, nil, nil)).Resolve("X")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Variante con factor 0.2 sobre receta de 8.25 por porción → 1.65.
func TestResolveVariant_FactorCopa(t *testing.T) {
	snap := entity.NewSnapshot(
		[]entity.Ingredient{ingredient("VINO", "8.25")},
		[]entity.Recipe{{ID: "BOT", Category: "vinos", Portions: 1, Lines: []entity.RecipeLine{
			line(entity.IngredientRef("VINO"), "1"),
		}}},
		nil,
	)
	vc, err := costing.NewResolver(snap).ResolveVariant(entity.RecipeVariant{
		ID: "copa", RecipeID: "BOT", Name: "copa", CostFactor: d("0.2"), SalePrice: d("4.50"),
	})
	require.NoError(t, err)
	assert.True(t, vc.ParentCost.Equal(d("8.25")))
	assert.True(t, vc.Cost.Equal(d("1.65")), "got %s", vc.Cost)
}

func TestUnitPrice_PrefierePrecioMedio(t *testing.T) {
	ing := entity.Ingredient{PurchasePrice: d("12"), UnitsPerFormat: d("6")}
	assert.True(t, ing.UnitPrice().Equal(d("2")))
	ing = ing.WithAveragePrice(d("2.5"))
	assert.True(t, ing.UnitPrice().Equal(d("2.5")))
}
