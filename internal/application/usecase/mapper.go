package usecase

import (
	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

func toIngredientResponse(i entity.Ingredient) dto.IngredientResponse {
	out := dto.IngredientResponse{
		ID:               i.ID,
		Name:             i.Name,
		Unit:             i.Unit,
		PurchaseFormat:   i.PurchaseFormat,
		PurchasePrice:    i.PurchasePrice,
		UnitsPerFormat:   i.UnitsPerFormat,
		AveragePrice:     i.AveragePrice,
		UnitPrice:        i.UnitPrice(),
		StockQuantity:    i.StockQuantity,
		ReorderThreshold: i.ReorderThreshold,
		BelowReorder:     i.BelowReorder(),
		Active:           i.Active,
	}
	if !i.UpdatedAt.IsZero() {
		t := i.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// ToWarningDTOs convierte avisos del resolvedor al formato de respuesta.
func ToWarningDTOs(ws []costing.Warning) []dto.WarningDTO {
	if len(ws) == 0 {
		return nil
	}
	out := make([]dto.WarningDTO, 0, len(ws))
	for _, w := range ws {
		out = append(out, dto.WarningDTO{
			RecipeID:    w.RecipeID,
			Kind:        string(w.Component.Kind),
			ComponentID: w.Component.ID,
			Message:     w.Message,
		})
	}
	return out
}

func toRecipeCost(recipe entity.Recipe, res costing.Resolution, withLines bool) *dto.RecipeCostResponse {
	set := costing.BandSetFor(recipe.Category)
	m := costing.MarginFor(res.CostPerPortion, recipe.SalePrice, set)
	out := &dto.RecipeCostResponse{
		RecipeID:       recipe.ID,
		Name:           recipe.Name,
		Category:       recipe.Category,
		Portions:       recipe.PortionCount(),
		BatchCost:      res.BatchCost.Round(2),
		CostPerPortion: res.CostPerPortion,
		SalePrice:      recipe.SalePrice,
		Margin:         m.Margin,
		FoodCostPct:    m.FoodCostPct,
		BandSet:        string(set),
		Band:           string(m.Band),
		Warnings:       ToWarningDTOs(res.Warnings),
	}
	if withLines {
		out.Lines = make([]dto.CostLineDTO, 0, len(res.Lines))
		for _, l := range res.Lines {
			out.Lines = append(out.Lines, dto.CostLineDTO{
				Kind:        string(l.Component.Kind),
				ComponentID: l.Component.ID,
				Name:        l.Name,
				Quantity:    l.Quantity,
				UnitCost:    l.UnitCost.Round(4),
				Total:       l.Total.Round(4),
				Missing:     l.Missing,
			})
		}
	}
	return out
}

func toVariantCost(parent entity.Recipe, vc costing.VariantCost) dto.VariantCostResponse {
	m := costing.MarginFor(vc.Cost, vc.Variant.SalePrice, costing.BandSetFor(parent.Category))
	return dto.VariantCostResponse{
		VariantID:   vc.Variant.ID,
		RecipeID:    vc.Variant.RecipeID,
		Name:        vc.Variant.Name,
		Code:        vc.Variant.Code,
		CostFactor:  vc.Variant.CostFactor,
		ParentCost:  vc.ParentCost,
		Cost:        vc.Cost,
		SalePrice:   vc.Variant.SalePrice,
		Margin:      m.Margin,
		FoodCostPct: m.FoodCostPct,
		Band:        string(m.Band),
	}
}
