package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

var idealStockFactor = decimal.NewFromFloat(1.5)

// InventoryUseCase lecturas de ingredientes desde el ledger y recarga manual del snapshot.
type InventoryUseCase struct {
	catalog CatalogView
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(catalog CatalogView) *InventoryUseCase {
	return &InventoryUseCase{catalog: catalog}
}

// List ingredientes ordenados por nombre.
func (uc *InventoryUseCase) List(ctx context.Context) (*dto.IngredientListResponse, error) {
	snap, gen, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.IngredientResponse, 0, len(snap.Ingredients))
	for _, ing := range sortedIngredients(snap) {
		items = append(items, toIngredientResponse(ing))
	}
	return &dto.IngredientListResponse{Items: items, Generation: gen}, nil
}

// GetByID ingrediente cacheado.
func (uc *InventoryUseCase) GetByID(ctx context.Context, id string) (*dto.IngredientResponse, error) {
	snap, _, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	ing, ok := snap.Ingredient(id)
	if !ok {
		return nil, fmt.Errorf("ingrediente %s: %w", id, domain.ErrNotFound)
	}
	out := toIngredientResponse(ing)
	return &out, nil
}

// LowStock lista de compra: ingredientes activos en o bajo su stock mínimo con la cantidad
// sugerida para llegar a 1.5 veces el mínimo. Prioridad por déficit relativo y luego coste.
func (uc *InventoryUseCase) LowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	snap, _, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	items := []dto.LowStockItemDTO{}
	for _, ing := range sortedIngredients(snap) {
		if !ing.Active || !ing.BelowReorder() {
			continue
		}
		ideal := ing.ReorderThreshold.Mul(idealStockFactor)
		qty := ideal.Sub(ing.StockQuantity)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		price := ing.UnitPrice()
		items = append(items, dto.LowStockItemDTO{
			IngredientID:       ing.ID,
			Name:               ing.Name,
			Unit:               ing.Unit,
			CurrentStock:       ing.StockQuantity,
			ReorderThreshold:   ing.ReorderThreshold,
			IdealStock:         ideal,
			SuggestedOrderQty:  qty,
			UnitPrice:          price,
			EstimatedOrderCost: qty.Mul(price).Round(2),
		})
	}

	// Primero el que más lejos está de su mínimo (en proporción); a igualdad, el pedido más caro.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ra := a.CurrentStock.Div(a.ReorderThreshold)
		rb := b.CurrentStock.Div(b.ReorderThreshold)
		if !ra.Equal(rb) {
			return ra.LessThan(rb)
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}

// Reload fuerza la recarga del snapshot y devuelve su estado.
func (uc *InventoryUseCase) Reload(ctx context.Context) (*dto.SnapshotStatusResponse, error) {
	if _, err := uc.catalog.Snapshot(ctx); err != nil {
		return nil, err
	}
	snap, gen, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	variants := 0
	for _, vs := range snap.Variants {
		variants += len(vs)
	}
	return &dto.SnapshotStatusResponse{
		Generation:  gen,
		Ingredients: len(snap.Ingredients),
		Recipes:     len(snap.Recipes),
		Variants:    variants,
		LoadedAt:    snap.LoadedAt,
	}, nil
}

func sortedIngredients(snap *entity.Snapshot) []entity.Ingredient {
	out := make([]entity.Ingredient, 0, len(snap.Ingredients))
	for _, i := range snap.Ingredients {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out
}
