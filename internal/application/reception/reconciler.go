package reception

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

// Reloader dispara la recarga del snapshot tras la recepción.
type Reloader interface {
	Reload(ctx context.Context) error
}

// IngredientCache escritura de arrastre en el ledger tras persistir.
type IngredientCache interface {
	ApplyIngredient(ing entity.Ingredient)
}

// StockApplication efecto de una línea recibida sobre el ingrediente.
type StockApplication struct {
	IngredientID     string
	QuantityReceived decimal.Decimal
	StockBefore      decimal.Decimal
	StockAfter       decimal.Decimal
	PriceBefore      decimal.Decimal
	PriceAfter       decimal.Decimal
	Error            string
}

// ReceptionResult conciliación más el efecto en stock. El pedido ya está cerrado
// cuando se aplican las líneas: las que fallan no se reintentan con otra recepción,
// quedan listadas para conciliación manual.
type ReceptionResult struct {
	Reconciliation
	Applied  []StockApplication
	Failed   []StockApplication
	Reloaded bool
}

// Reconciler recepciona pedidos: concilia, actualiza precio medio y stock y cierra el pedido.
type Reconciler struct {
	orders      repository.OrderRepository
	ingredients repository.IngredientRepository
	events      repository.EventPublisher
	cache       IngredientCache
	reloader    Reloader
	log         *logger.Logger
}

// NewReconciler construye el caso de uso de recepción. events y reloader pueden ser nil.
func NewReconciler(
	orders repository.OrderRepository,
	ingredients repository.IngredientRepository,
	events repository.EventPublisher,
	cache IngredientCache,
	reloader Reloader,
	log *logger.Logger,
) *Reconciler {
	return &Reconciler{
		orders:      orders,
		ingredients: ingredients,
		events:      events,
		cache:       cache,
		reloader:    reloader,
		log:         log.Component("reception"),
	}
}

// Preview concilia sin efectos (vista previa antes de confirmar).
func (r *Reconciler) Preview(ctx context.Context, orderID string, received []ReceivedLine) (Reconciliation, error) {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconcile(*order, received)
}

// Receive confirma la recepción. Primero persiste el pedido como recibido con sus
// líneas conciliadas; si eso falla devuelve el error sin tocar stock y la recepción
// puede repetirse. Después, para cada línea no marcada como no entregada, aplica
// precio medio ponderado y suma stock (en orden, una a una).
func (r *Reconciler) Receive(ctx context.Context, userID, orderID string, received []ReceivedLine) (ReceptionResult, error) {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return ReceptionResult{}, err
	}
	rec, err := Reconcile(*order, received)
	if err != nil {
		return ReceptionResult{}, err
	}

	now := time.Now()
	closed := *order
	closed.Status = entity.OrderStatusReceived
	closed.ReceivedAt = &now
	closed.Lines = make([]entity.OrderLine, 0, len(rec.Lines))
	for _, l := range rec.Lines {
		closed.Lines = append(closed.Lines, l.OrderLine)
	}
	if err := r.orders.Update(ctx, &closed); err != nil {
		return ReceptionResult{}, fmt.Errorf("cerrar pedido %s: %w", orderID, err)
	}

	result := ReceptionResult{Reconciliation: rec}
	for _, line := range rec.Lines {
		if line.LineStatus == entity.LineNotDelivered || line.QuantityReceived.IsZero() {
			continue
		}
		app, err := r.applyLine(ctx, line.OrderLine, now)
		if err != nil {
			app.Error = err.Error()
			result.Failed = append(result.Failed, app)
			r.log.Warn().Err(err).Str("order_id", orderID).Str("ingredient_id", line.IngredientID).
				Msg("línea recibida no aplicada al stock")
			continue
		}
		result.Applied = append(result.Applied, app)
	}

	r.publish(ctx, userID, order.SupplierID, now, result)

	if r.reloader != nil {
		if err := r.reloader.Reload(ctx); err != nil {
			r.log.Warn().Err(err).Str("order_id", orderID).Msg("recarga tras recepción fallida")
		} else {
			result.Reloaded = true
		}
	}

	r.log.Info().
		Str("order_id", orderID).
		Str("total_ordered", rec.TotalOrdered.StringFixed(2)).
		Str("total_received", rec.TotalReceived.StringFixed(2)).
		Str("variance", rec.TotalVariance.StringFixed(2)).
		Int("applied", len(result.Applied)).
		Int("failed", len(result.Failed)).
		Msg("pedido recepcionado")
	return result, nil
}

func (r *Reconciler) applyLine(ctx context.Context, line entity.OrderLine, now time.Time) (StockApplication, error) {
	app := StockApplication{IngredientID: line.IngredientID, QuantityReceived: line.QuantityReceived}
	current, err := r.ingredients.GetByID(ctx, line.IngredientID)
	if err != nil {
		return app, fmt.Errorf("leer ingrediente: %w", err)
	}
	app.StockBefore = current.StockQuantity
	app.PriceBefore = current.UnitPrice()

	price := costing.AveragePrice(current.StockQuantity, current.UnitPrice(), line.QuantityReceived, line.UnitPriceReceived)
	next := current.WithAveragePrice(price).WithStock(current.StockQuantity.Add(line.QuantityReceived))
	next.UpdatedAt = now
	if err := r.ingredients.Update(ctx, &next); err != nil {
		return app, fmt.Errorf("persistir ingrediente: %w", err)
	}
	if r.cache != nil {
		r.cache.ApplyIngredient(next)
	}
	app.StockAfter = next.StockQuantity
	app.PriceAfter = next.UnitPrice()
	return app, nil
}

type receptionPayload struct {
	OrderID       string          `json:"order_id"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	TotalOrdered  decimal.Decimal `json:"total_ordered"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalVariance decimal.Decimal `json:"total_variance"`
	Applied       int             `json:"applied"`
	Failed        int             `json:"failed"`
	UserID        string          `json:"user_id,omitempty"`
}

func (r *Reconciler) publish(ctx context.Context, userID, supplierID string, at time.Time, res ReceptionResult) {
	if r.events == nil {
		return
	}
	ev := repository.Event{
		Type:       repository.EventOrderReceived,
		Key:        res.OrderID,
		OccurredAt: at,
		Payload: receptionPayload{
			OrderID:       res.OrderID,
			SupplierID:    supplierID,
			TotalOrdered:  res.TotalOrdered,
			TotalReceived: res.TotalReceived,
			TotalVariance: res.TotalVariance,
			Applied:       len(res.Applied),
			Failed:        len(res.Failed),
			UserID:        userID,
		},
	}
	if err := r.events.Publish(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("order_id", res.OrderID).Msg("publicación de evento fallida")
	}
}
