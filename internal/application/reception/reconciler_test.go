package reception_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Escandallo-api/internal/application/ledger"
	"github.com/jhoicas/Escandallo-api/internal/application/reception"
	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/memory"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

func d(s string) decimal.Decimal             { return decimal.RequireFromString(s) }
func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func order(lines ...entity.OrderLine) entity.Order {
	return entity.Order{ID: "P1", SupplierID: "PROV", Status: entity.OrderStatusPending, Lines: lines}
}

func line(id, qty, price string) entity.OrderLine {
	return entity.OrderLine{IngredientID: id, QuantityOrdered: d(qty), UnitPriceOrdered: d(price)}
}

func TestReconcile_LineaIgualQuedaConciliada(t *testing.T) {
	rec, err := reception.Reconcile(order(line("TOM", "10", "2")), []reception.ReceivedLine{
		{IngredientID: "TOM", QuantityReceived: ptr(d("10")), UnitPriceReceived: ptr(d("2.005"))},
	})
	require.NoError(t, err)
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, entity.LineReconciled, rec.Lines[0].LineStatus)
	assert.True(t, rec.TotalOrdered.Equal(d("20")))
	assert.True(t, rec.TotalReceived.Sub(rec.TotalOrdered).Abs().LessThanOrEqual(d("0.1")))
}

func TestReconcile_SinEntradaSeRecibeComoSePidio(t *testing.T) {
	rec, err := reception.Reconcile(order(line("TOM", "10", "2")), nil)
	require.NoError(t, err)
	assert.Equal(t, entity.LineReconciled, rec.Lines[0].LineStatus)
	assert.True(t, rec.TotalReceived.Equal(d("20")))
	assert.True(t, rec.TotalVariance.IsZero())
}

func TestReconcile_Diferencias(t *testing.T) {
	rec, err := reception.Reconcile(order(line("TOM", "10", "2"), line("SAL", "1", "0.5"), line("ACE", "5", "3")),
		[]reception.ReceivedLine{
			{IngredientID: "TOM", QuantityReceived: ptr(d("8"))},
			{IngredientID: "SAL", NotDelivered: true},
			{IngredientID: "ACE", UnitPriceReceived: ptr(d("3.5"))},
		})
	require.NoError(t, err)
	assert.Equal(t, entity.LineVarianceDetected, rec.Lines[0].LineStatus)
	assert.Equal(t, entity.LineNotDelivered, rec.Lines[1].LineStatus)
	assert.True(t, rec.Lines[1].SubtotalReceived.IsZero(), "no entregada aporta 0")
	assert.Equal(t, entity.LineVarianceDetected, rec.Lines[2].LineStatus)
	// pedido 20 + 0.5 + 15 = 35.5; recibido 16 + 0 + 17.5 = 33.5
	assert.True(t, rec.TotalOrdered.Equal(d("35.5")))
	assert.True(t, rec.TotalReceived.Equal(d("33.5")))
	assert.True(t, rec.TotalVariance.Equal(d("-2")))
}

func TestReconcile_Validaciones(t *testing.T) {
	o := order(line("TOM", "10", "2"))
	cases := map[string][]reception.ReceivedLine{
		"ingrediente ajeno": {{IngredientID: "OTRO"}},
		"repetido":          {{IngredientID: "TOM"}, {IngredientID: "TOM"}},
		"cantidad negativa": {{IngredientID: "TOM", QuantityReceived: ptr(d("-1"))}},
		"precio negativo":   {{IngredientID: "TOM", UnitPriceReceived: ptr(d("-1"))}},
		"sin ingrediente":   {{}},
	}
	for name, rl := range cases {
		_, err := reception.Reconcile(o, rl)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}

	o.Status = entity.OrderStatusReceived
	_, err := reception.Reconcile(o, nil)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyReceived)
}

type fixture struct {
	store  *memory.Store
	events *memory.EventLog
	led    *ledger.StockLedger
	rec    *reception.Reconciler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutIngredient(entity.Ingredient{ID: "TOM", Name: "tomate", StockQuantity: d("10"), PurchasePrice: d("2"), UnitsPerFormat: d("1"), Active: true})
	store.PutIngredient(entity.Ingredient{ID: "SAL", Name: "sal", StockQuantity: d("0"), PurchasePrice: d("0.5"), UnitsPerFormat: d("1"), Active: true})
	store.PutOrder(order(line("TOM", "5", "4"), line("SAL", "2", "0.5")))

	led := ledger.NewStockLedger()
	guard := ledger.NewReloadGuard(ledger.NewRepositorySource(store.Ingredients(), store.Recipes(), store.Variants()), led, ledger.RetryPolicy{}, logger.Nop())
	require.NoError(t, guard.Reload(context.Background()))
	events := memory.NewEventLog()
	rec := reception.NewReconciler(store.Orders(), store.Ingredients(), events, led, guard, logger.Nop())
	return fixture{store: store, events: events, led: led, rec: rec}
}

// 10 @ 2 en stock + 5 @ 4 recibidos → 15 @ 2.667.
func TestReceive_AplicaPrecioMedioYStock(t *testing.T) {
	f := newFixture(t)
	res, err := f.rec.Receive(context.Background(), "u1", "P1", []reception.ReceivedLine{
		{IngredientID: "SAL", NotDelivered: true},
	})
	require.NoError(t, err)
	assert.True(t, res.Reloaded)
	require.Len(t, res.Applied, 1)
	assert.Empty(t, res.Failed)

	tom, err := f.store.Ingredients().GetByID(context.Background(), "TOM")
	require.NoError(t, err)
	assert.True(t, tom.StockQuantity.Equal(d("15")))
	assert.True(t, tom.UnitPrice().Round(3).Equal(d("2.667")))

	sal, err := f.store.Ingredients().GetByID(context.Background(), "SAL")
	require.NoError(t, err)
	assert.True(t, sal.StockQuantity.IsZero(), "línea no entregada no toca stock")

	o, err := f.store.Orders().GetByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.True(t, o.IsReceived())
	require.NotNil(t, o.ReceivedAt)
	assert.Equal(t, entity.LineNotDelivered, o.Lines[1].LineStatus)

	cached, _ := f.led.Ingredient("TOM")
	assert.True(t, cached.StockQuantity.Equal(d("15")))

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, repository.EventOrderReceived, evs[0].Type)
	assert.Equal(t, "P1", evs[0].Key)
}

func TestReceive_SegundaVezRechazada(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.Receive(context.Background(), "", "P1", nil)
	require.NoError(t, err)
	_, err = f.rec.Receive(context.Background(), "", "P1", nil)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyReceived)

	tom, _ := f.store.Ingredients().GetByID(context.Background(), "TOM")
	assert.True(t, tom.StockQuantity.Equal(d("15")), "no se aplica dos veces")
}

func TestReceive_FalloDeLineaNoBloqueaCierre(t *testing.T) {
	f := newFixture(t)
	f.store.FailNext(memory.UpdateIngredientOp("TOM"), domain.ErrTransient)
	res, err := f.rec.Receive(context.Background(), "", "P1", nil)
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "TOM", res.Failed[0].IngredientID)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "SAL", res.Applied[0].IngredientID)

	o, err := f.store.Orders().GetByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.True(t, o.IsReceived())

	// la línea fallida no se recupera recepcionando de nuevo
	_, err = f.rec.Receive(context.Background(), "", "P1", nil)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyReceived)
}

func TestReceive_ErrorAlCerrarNoTocaStockYPermiteReintentar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.FailNext(memory.OpUpdateOrder, domain.ErrTransient)

	_, err := f.rec.Receive(ctx, "", "P1", nil)
	require.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, 0, f.store.Calls(memory.OpUpdateIngredient))
	assert.Empty(t, f.events.Events())
	tom, _ := f.store.Ingredients().GetByID(ctx, "TOM")
	assert.True(t, tom.StockQuantity.Equal(d("10")))

	res, err := f.rec.Receive(ctx, "", "P1", nil)
	require.NoError(t, err)
	assert.Len(t, res.Applied, 2)
	tom, _ = f.store.Ingredients().GetByID(ctx, "TOM")
	assert.True(t, tom.StockQuantity.Equal(d("15")), "la entrega se aplica una sola vez")

	_, err = f.rec.Receive(ctx, "", "P1", nil)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyReceived)
	tom, _ = f.store.Ingredients().GetByID(ctx, "TOM")
	assert.True(t, tom.StockQuantity.Equal(d("15")))
}

func TestReceive_PedidoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.Receive(context.Background(), "", "NOPE", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.store.Calls(memory.OpUpdateIngredient))
}

func TestPreview_SinEfectos(t *testing.T) {
	f := newFixture(t)
	rec, err := f.rec.Preview(context.Background(), "P1", []reception.ReceivedLine{{IngredientID: "TOM", QuantityReceived: ptr(d("4"))}})
	require.NoError(t, err)
	assert.Equal(t, entity.LineVarianceDetected, rec.Lines[0].LineStatus)
	assert.Equal(t, 0, f.store.Calls(memory.OpUpdateIngredient))
}
