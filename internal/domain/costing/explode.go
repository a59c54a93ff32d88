package costing

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Consumption cantidad de un ingrediente consumida por una producción o venta.
type Consumption struct {
	IngredientID string
	Quantity     decimal.Decimal
}

// Explode despliega `batches` tandas de una receta en consumo de ingredientes,
// bajando por las sub-recetas. Una línea de sub-receta con cantidad q consume
// q / porciones(sub) tandas de la sub-receta. El resultado se agrega por ingrediente
// en orden de primera aparición.
func Explode(catalog Catalog, recipe entity.Recipe, batches decimal.Decimal) ([]Consumption, []Warning, error) {
	e := &exploder{
		catalog:    catalog,
		inProgress: make(map[string]bool),
		index:      make(map[string]int),
	}
	if err := e.walk(recipe, batches); err != nil {
		return nil, nil, err
	}
	return e.out, e.warnings, nil
}

type exploder struct {
	catalog    Catalog
	inProgress map[string]bool
	path       []string
	index      map[string]int
	out        []Consumption
	warnings   []Warning
}

func (e *exploder) walk(recipe entity.Recipe, batches decimal.Decimal) error {
	if e.inProgress[recipe.ID] {
		cycle := append(append([]string{}, e.path...), recipe.ID)
		return fmt.Errorf("%w: %s", domain.ErrRecipeCycle, strings.Join(cycle, " -> "))
	}
	e.inProgress[recipe.ID] = true
	e.path = append(e.path, recipe.ID)
	defer func() {
		delete(e.inProgress, recipe.ID)
		e.path = e.path[:len(e.path)-1]
	}()

	for _, line := range recipe.Lines {
		qty := line.Quantity.Mul(batches)
		if line.Component.IsSubRecipe() {
			sub, ok := e.catalog.Recipe(line.Component.ID)
			if !ok {
				e.warnings = append(e.warnings, Warning{RecipeID: recipe.ID, Component: line.Component, Message: "sub-receta inexistente"})
				continue
			}
			subBatches := qty.Div(decimal.NewFromInt(int64(sub.PortionCount())))
			if err := e.walk(sub, subBatches); err != nil {
				return err
			}
			continue
		}
		if _, ok := e.catalog.Ingredient(line.Component.ID); !ok {
			e.warnings = append(e.warnings, Warning{RecipeID: recipe.ID, Component: line.Component, Message: "ingrediente inexistente"})
			continue
		}
		e.add(line.Component.ID, qty)
	}
	return nil
}

func (e *exploder) add(ingredientID string, qty decimal.Decimal) {
	if i, ok := e.index[ingredientID]; ok {
		e.out[i].Quantity = e.out[i].Quantity.Add(qty)
		return
	}
	e.index[ingredientID] = len(e.out)
	e.out = append(e.out, Consumption{IngredientID: ingredientID, Quantity: qty})
}
