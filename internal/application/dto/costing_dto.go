package dto

import "github.com/shopspring/decimal"

// CostLineDTO desglose de una línea de escandallo.
type CostLineDTO struct {
	Kind        string          `json:"kind"` // ingredient | recipe
	ComponentID string          `json:"component_id"`
	Name        string          `json:"name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Total       decimal.Decimal `json:"total"`
	Missing     bool            `json:"missing,omitempty"`
}

// WarningDTO referencia rota encontrada al resolver (aporta coste cero).
type WarningDTO struct {
	RecipeID    string `json:"recipe_id"`
	Kind        string `json:"kind"`
	ComponentID string `json:"component_id"`
	Message     string `json:"message"`
}

// RecipeCostResponse coste, margen y clasificación de una receta.
type RecipeCostResponse struct {
	RecipeID       string          `json:"recipe_id"`
	Name           string          `json:"name"`
	Category       string          `json:"category,omitempty"`
	Portions       int             `json:"portions"`
	BatchCost      decimal.Decimal `json:"batch_cost"`
	CostPerPortion decimal.Decimal `json:"cost_per_portion"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	Margin         decimal.Decimal `json:"margin"`
	FoodCostPct    decimal.Decimal `json:"food_cost_pct"`
	BandSet        string          `json:"band_set"`
	Band           string          `json:"band"`
	Lines          []CostLineDTO   `json:"lines,omitempty"`
	Warnings       []WarningDTO    `json:"warnings,omitempty"`
}

// VariantCostResponse coste de una variante (coste por porción del padre * factor).
type VariantCostResponse struct {
	VariantID   string          `json:"variant_id"`
	RecipeID    string          `json:"recipe_id"`
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	CostFactor  decimal.Decimal `json:"cost_factor"`
	ParentCost  decimal.Decimal `json:"parent_cost"`
	Cost        decimal.Decimal `json:"cost"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Margin      decimal.Decimal `json:"margin"`
	FoodCostPct decimal.Decimal `json:"food_cost_pct"`
	Band        string          `json:"band"`
}

// MenuCostReport carta completa ordenada por food cost % descendente.
type MenuCostReport struct {
	Items      []RecipeCostResponse `json:"items"`
	Generation uint64               `json:"generation"`
	Warnings   int                  `json:"warnings"`
}

// RecipeLineRequest línea de receta en la entrada. Kind: ingredient | recipe.
type RecipeLineRequest struct {
	Kind        string          `json:"kind"`
	ComponentID string          `json:"component_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// UpdateRecipeRequest body para PUT /api/recipes/:id.
type UpdateRecipeRequest struct {
	Name      string              `json:"name" validate:"required"`
	Category  string              `json:"category"`
	Portions  int                 `json:"portions" validate:"min=1"`
	SalePrice decimal.Decimal     `json:"sale_price"`
	Lines     []RecipeLineRequest `json:"lines"`
	Active    *bool               `json:"active,omitempty"`
}

// VariantRequest body para crear o actualizar una variante.
type VariantRequest struct {
	Name       string          `json:"name" validate:"required"`
	Code       string          `json:"code"`
	CostFactor decimal.Decimal `json:"cost_factor"`
	SalePrice  decimal.Decimal `json:"sale_price"`
}
