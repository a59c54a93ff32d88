package batch

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// SnapshotProvider da acceso al snapshot actual (ledger.ReloadGuard.Current).
type SnapshotProvider interface {
	Current(ctx context.Context) (*entity.Snapshot, error)
}

// ProductionUseCase traduce producciones y ventas de recetas en lotes de salidas de stock.
type ProductionUseCase struct {
	snapshots   SnapshotProvider
	coordinator *Coordinator
}

// NewProductionUseCase construye el caso de uso.
func NewProductionUseCase(snapshots SnapshotProvider, coordinator *Coordinator) *ProductionUseCase {
	return &ProductionUseCase{snapshots: snapshots, coordinator: coordinator}
}

// ConsumptionResult lote aplicado más los avisos de integridad del despliegue.
type ConsumptionResult struct {
	BatchResult
	Warnings []costing.Warning
}

// Produce descuenta los ingredientes de `batches` tandas de la receta (bajando por sub-recetas).
func (uc *ProductionUseCase) Produce(ctx context.Context, meta Meta, recipeID string, batches decimal.Decimal) (ConsumptionResult, error) {
	if recipeID == "" || !batches.IsPositive() {
		return ConsumptionResult{}, fmt.Errorf("receta y tandas > 0 requeridas: %w", domain.ErrInvalidInput)
	}
	snap, err := uc.snapshots.Current(ctx)
	if err != nil {
		return ConsumptionResult{}, err
	}
	recipe, ok := snap.Recipe(recipeID)
	if !ok {
		return ConsumptionResult{}, fmt.Errorf("receta %s: %w", recipeID, domain.ErrNotFound)
	}
	return uc.consume(ctx, meta, snap, recipe, batches, entity.ReasonProduction, "producción "+recipe.Name)
}

// RegisterSale descuenta las porciones vendidas. Con variante, cada unidad consume
// CostFactor porciones de la receta padre.
func (uc *ProductionUseCase) RegisterSale(ctx context.Context, meta Meta, recipeID, variantID string, units decimal.Decimal) (ConsumptionResult, error) {
	if recipeID == "" || !units.IsPositive() {
		return ConsumptionResult{}, fmt.Errorf("receta y unidades > 0 requeridas: %w", domain.ErrInvalidInput)
	}
	snap, err := uc.snapshots.Current(ctx)
	if err != nil {
		return ConsumptionResult{}, err
	}
	recipe, ok := snap.Recipe(recipeID)
	if !ok {
		return ConsumptionResult{}, fmt.Errorf("receta %s: %w", recipeID, domain.ErrNotFound)
	}
	portions := units
	note := "venta " + recipe.Name
	if variantID != "" {
		v, ok := snap.Variant(recipeID, variantID)
		if !ok {
			return ConsumptionResult{}, fmt.Errorf("variante %s: %w", variantID, domain.ErrNotFound)
		}
		portions = units.Mul(v.CostFactor)
		note += " (" + v.Name + ")"
	}
	batches := portions.Div(decimal.NewFromInt(int64(recipe.PortionCount())))
	return uc.consume(ctx, meta, snap, recipe, batches, entity.ReasonSale, note)
}

func (uc *ProductionUseCase) consume(
	ctx context.Context, meta Meta, snap *entity.Snapshot,
	recipe entity.Recipe, batches decimal.Decimal, reason entity.Reason, note string,
) (ConsumptionResult, error) {
	consumption, warnings, err := costing.Explode(snap, recipe, batches)
	if err != nil {
		return ConsumptionResult{}, err
	}
	mutations := make([]entity.StockMutation, 0, len(consumption))
	for _, c := range consumption {
		if c.Quantity.IsZero() {
			continue
		}
		mutations = append(mutations, entity.StockMutation{
			IngredientID:  c.IngredientID,
			QuantityDelta: c.Quantity.Neg(),
			Reason:        reason,
			Note:          note,
		})
	}
	if len(mutations) == 0 {
		return ConsumptionResult{}, fmt.Errorf("la receta %s no consume ingredientes: %w", recipe.ID, domain.ErrInvalidInput)
	}
	res, err := uc.coordinator.ApplyBatch(ctx, meta, mutations)
	if err != nil {
		return ConsumptionResult{}, err
	}
	return ConsumptionResult{BatchResult: res, Warnings: warnings}, nil
}
