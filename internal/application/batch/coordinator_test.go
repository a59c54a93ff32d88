package batch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Escandallo-api/internal/application/batch"
	"github.com/jhoicas/Escandallo-api/internal/application/ledger"
	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/memory"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

func d(s string) decimal.Decimal             { return decimal.RequireFromString(s) }
func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

type fixture struct {
	store *memory.Store
	led   *ledger.StockLedger
	guard *ledger.ReloadGuard
	coord *batch.Coordinator
}

func newFixture(t *testing.T, ings ...entity.Ingredient) fixture {
	t.Helper()
	store := memory.NewStore()
	for _, i := range ings {
		store.PutIngredient(i)
	}
	led := ledger.NewStockLedger()
	src := ledger.NewRepositorySource(store.Ingredients(), store.Recipes(), store.Variants())
	guard := ledger.NewReloadGuard(src, led, ledger.RetryPolicy{}, logger.Nop())
	_, err := guard.Snapshot(context.Background())
	require.NoError(t, err)
	coord := batch.NewCoordinator(store.Ingredients(), store.WasteLog(), nil, led, guard, logger.Nop())
	return fixture{store: store, led: led, guard: guard, coord: coord}
}

func stockOf(t *testing.T, s *memory.Store, id string) entity.Ingredient {
	t.Helper()
	ing, err := s.Ingredients().GetByID(context.Background(), id)
	require.NoError(t, err)
	return *ing
}

func ing(id, stock, price string) entity.Ingredient {
	return entity.Ingredient{ID: id, Name: id, StockQuantity: d(stock), PurchasePrice: d(price), UnitsPerFormat: d("1"), Active: true}
}

func TestApplyBatch_MermaDescuentaYRegistra(t *testing.T) {
	f := newFixture(t, ing("TOM", "10", "1.50"))
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{UserID: "u1"}, []entity.StockMutation{
		{IngredientID: "TOM", QuantityDelta: d("-2"), Reason: entity.ReasonExpired, Note: "cámara 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, batch.OutcomeComplete, res.Outcome())
	require.Len(t, res.Succeeded, 1)
	assert.True(t, res.Succeeded[0].StockBefore.Equal(d("10")))
	assert.True(t, res.Succeeded[0].StockAfter.Equal(d("8")))
	assert.True(t, stockOf(t, f.store, "TOM").StockQuantity.Equal(d("8")))

	waste := f.store.Waste()
	require.Len(t, waste, 1)
	assert.True(t, waste[0].LossValue.Equal(d("3.00")))
	assert.Equal(t, "u1", waste[0].RecordedBy)
	assert.True(t, res.Reloaded)

	cached, _ := f.led.Ingredient("TOM")
	assert.True(t, cached.StockQuantity.Equal(d("8")))
}

func TestApplyBatch_StockNuncaNegativo(t *testing.T) {
	f := newFixture(t, ing("SAL", "1", "0.5"))
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, []entity.StockMutation{
		{IngredientID: "SAL", QuantityDelta: d("-5"), Reason: entity.ReasonWaste},
	})
	require.NoError(t, err)
	assert.True(t, res.Succeeded[0].StockAfter.IsZero())
	assert.True(t, stockOf(t, f.store, "SAL").StockQuantity.IsZero())
}

// La misma entrada dos veces en el lote: la segunda parte del resultado de la primera.
func TestApplyBatch_SecuencialMismoIngrediente(t *testing.T) {
	f := newFixture(t, ing("HAR", "10", "1"))
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, []entity.StockMutation{
		{IngredientID: "HAR", QuantityDelta: d("-3"), Reason: entity.ReasonProduction},
		{IngredientID: "HAR", QuantityDelta: d("-4"), Reason: entity.ReasonProduction},
	})
	require.NoError(t, err)
	require.Len(t, res.Succeeded, 2)
	assert.True(t, res.Succeeded[1].StockBefore.Equal(d("7")))
	assert.True(t, stockOf(t, f.store, "HAR").StockQuantity.Equal(d("3")))
}

// N peticiones con la k-ésima fallando: las demás se aplican y no se deshace nada.
func TestApplyBatch_FalloParcialSinRollback(t *testing.T) {
	f := newFixture(t, ing("A", "5", "1"), ing("B", "5", "1"), ing("C", "5", "1"), ing("D", "5", "1"))
	f.store.FailNext(memory.UpdateIngredientOp("B"), fmt.Errorf("409: %w", domain.ErrRejected))

	muts := []entity.StockMutation{
		{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
		{IngredientID: "B", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
		{IngredientID: "C", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
		{IngredientID: "D", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
	}
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, muts)
	require.NoError(t, err)

	assert.Equal(t, batch.OutcomePartial, res.Outcome())
	assert.Equal(t, len(muts), len(res.Succeeded)+len(res.Failed))
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 1, res.Failed[0].Index)
	assert.ErrorIs(t, res.Failed[0].Err(), domain.ErrRejected)

	ids := []string{}
	for _, s := range res.Succeeded {
		ids = append(ids, s.IngredientID)
	}
	assert.Equal(t, []string{"A", "C", "D"}, ids)
	assert.True(t, stockOf(t, f.store, "A").StockQuantity.Equal(d("4")), "lo aplicado antes del fallo se mantiene")
	assert.True(t, stockOf(t, f.store, "B").StockQuantity.Equal(d("5")))
	assert.Len(t, f.store.Waste(), 3)
}

func TestApplyBatch_IngredienteInexistenteFallaSoloEsaLinea(t *testing.T) {
	f := newFixture(t, ing("A", "5", "1"))
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, []entity.StockMutation{
		{IngredientID: "GHOST", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
		{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
	})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Err(), domain.ErrNotFound)
	assert.Len(t, res.Succeeded, 1)
}

func TestApplyBatch_TodoFallido(t *testing.T) {
	f := newFixture(t, ing("A", "5", "1"))
	f.store.FailNext(memory.OpUpdateIngredient, domain.ErrTransient)
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, []entity.StockMutation{
		{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
	})
	require.NoError(t, err)
	assert.Equal(t, batch.OutcomeFailed, res.Outcome())
	assert.False(t, res.Reloaded)
	assert.Equal(t, 1, f.store.Calls(memory.OpUpdateIngredient), "las mutaciones nunca se reintentan")
}

// Compra en mercado: recalcula el precio medio ponderado.
func TestApplyBatch_CompraMercadoRecalculaPrecioMedio(t *testing.T) {
	f := newFixture(t, ing("ACE", "10", "2.00"))
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, []entity.StockMutation{
		{IngredientID: "ACE", QuantityDelta: d("5"), Reason: entity.ReasonMarketPurchase, UnitPrice: ptr(d("4.00"))},
	})
	require.NoError(t, err)
	require.Len(t, res.Succeeded, 1)
	after := stockOf(t, f.store, "ACE")
	assert.True(t, after.StockQuantity.Equal(d("15")))
	require.NotNil(t, after.AveragePrice)
	assert.True(t, after.UnitPrice().Round(3).Equal(d("2.667")))
	assert.Empty(t, f.store.Waste(), "las compras no son mermas")
}

func TestApplyBatch_AuditoriaFallidaNoDeshaceStock(t *testing.T) {
	f := newFixture(t, ing("A", "5", "1"))
	f.store.FailNext(memory.OpSubmitWaste, domain.ErrTransient)
	res, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, []entity.StockMutation{
		{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonBroken},
	})
	require.NoError(t, err)
	assert.Equal(t, batch.OutcomeComplete, res.Outcome())
	assert.NotEmpty(t, res.AuditError)
	assert.True(t, stockOf(t, f.store, "A").StockQuantity.Equal(d("4")))
}

func TestValidate_FallaAntesDeLlamarAlAlmacen(t *testing.T) {
	f := newFixture(t, ing("A", "5", "1"))
	cases := map[string][]entity.StockMutation{
		"vacío":              nil,
		"sin ingrediente":    {{QuantityDelta: d("-1"), Reason: entity.ReasonWaste}},
		"motivo desconocido": {{IngredientID: "A", QuantityDelta: d("-1"), Reason: "robo"}},
		"cantidad cero":      {{IngredientID: "A", Reason: entity.ReasonWaste}},
		"merma positiva":     {{IngredientID: "A", QuantityDelta: d("1"), Reason: entity.ReasonWaste}},
		"compra sin precio":  {{IngredientID: "A", QuantityDelta: d("1"), Reason: entity.ReasonMarketPurchase}},
		"compra negativa":    {{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonMarketPurchase, UnitPrice: ptr(d("1"))}},
		"segunda línea mala": {{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonWaste}, {IngredientID: "A", Reason: entity.ReasonWaste}},
	}
	for name, muts := range cases {
		_, err := f.coord.ApplyBatch(context.Background(), batch.Meta{}, muts)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
	assert.Equal(t, 0, f.store.Calls(memory.OpGetIngredient))
}

func TestApplyBatch_PublicaEventoPorMutacionAplicada(t *testing.T) {
	f := newFixture(t, ing("A", "5", "1"))
	events := memory.NewEventLog()
	coord := batch.NewCoordinator(f.store.Ingredients(), f.store.WasteLog(), events, f.led, f.guard, logger.Nop())

	res, err := coord.ApplyBatch(context.Background(), batch.Meta{UserID: "u1"}, []entity.StockMutation{
		{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
		{IngredientID: "GHOST", QuantityDelta: d("-1"), Reason: entity.ReasonWaste},
	})
	require.NoError(t, err)
	assert.Equal(t, batch.OutcomePartial, res.Outcome())

	got := events.Events()
	require.Len(t, got, 1, "solo las aplicadas generan evento")
	assert.Equal(t, repository.EventMovementApplied, got[0].Type)
	assert.Equal(t, "A", got[0].Key)
}

func TestApplyBatch_FalloDePublicacionNoAfectaAlLote(t *testing.T) {
	f := newFixture(t, ing("A", "5", "1"))
	events := memory.NewEventLog()
	events.FailWith(fmt.Errorf("broker caído: %w", domain.ErrTransient))
	coord := batch.NewCoordinator(f.store.Ingredients(), f.store.WasteLog(), events, f.led, f.guard, logger.Nop())

	res, err := coord.ApplyBatch(context.Background(), batch.Meta{}, []entity.StockMutation{
		{IngredientID: "A", QuantityDelta: d("-1"), Reason: entity.ReasonProduction},
	})
	require.NoError(t, err)
	assert.Equal(t, batch.OutcomeComplete, res.Outcome())
	assert.True(t, stockOf(t, f.store, "A").StockQuantity.Equal(d("4")))
}
