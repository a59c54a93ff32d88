package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Categorías con significado para el motor.
const (
	RecipeCategoryBase = "base" // receta utilizable como sub-receta
)

// ComponentKind discrimina el tipo de componente de una línea de receta.
type ComponentKind string

const (
	ComponentIngredient ComponentKind = "ingredient"
	ComponentRecipe     ComponentKind = "recipe"
)

// ComponentRef referencia etiquetada: un ingrediente o una sub-receta.
// Se decodifica una única vez en el borde de carga de datos.
type ComponentRef struct {
	Kind ComponentKind
	ID   string
}

// IngredientRef construye una referencia a ingrediente.
func IngredientRef(id string) ComponentRef {
	return ComponentRef{Kind: ComponentIngredient, ID: id}
}

// SubRecipeRef construye una referencia a sub-receta.
func SubRecipeRef(id string) ComponentRef {
	return ComponentRef{Kind: ComponentRecipe, ID: id}
}

// IsSubRecipe indica si la referencia apunta a otra receta.
func (r ComponentRef) IsSubRecipe() bool { return r.Kind == ComponentRecipe }

// Valid indica si la referencia tiene tipo conocido e ID.
func (r ComponentRef) Valid() bool {
	return r.ID != "" && (r.Kind == ComponentIngredient || r.Kind == ComponentRecipe)
}

// RecipeLine línea de receta: componente y cantidad (unidades base o porciones de la sub-receta).
type RecipeLine struct {
	Component ComponentRef
	Quantity  decimal.Decimal
}

// Recipe representa una receta (escandallo).
type Recipe struct {
	ID        string
	Name      string
	Category  string
	Portions  int
	SalePrice decimal.Decimal
	Lines     []RecipeLine
	Active    bool
}

// IsBase indica si la receta puede usarse como sub-receta.
func (r Recipe) IsBase() bool {
	return strings.EqualFold(strings.TrimSpace(r.Category), RecipeCategoryBase)
}

// PortionCount devuelve las porciones, nunca menos de 1.
func (r Recipe) PortionCount() int {
	if r.Portions < 1 {
		return 1
	}
	return r.Portions
}

// RecipeVariant formato alternativo de venta de una receta (copa, botella).
// Comparte el coste de la receta padre escalado por CostFactor.
type RecipeVariant struct {
	ID         string
	RecipeID   string
	Name       string
	CostFactor decimal.Decimal
	SalePrice  decimal.Decimal
	Code       string
}
