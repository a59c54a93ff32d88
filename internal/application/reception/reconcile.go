package reception

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// tolerance por debajo de la cual una diferencia de cantidad o precio es ruido de coma flotante.
var tolerance = decimal.RequireFromString("0.01")

// ReceivedLine lo recibido para un ingrediente del pedido.
// Los campos nil toman el valor pedido; NotDelivered marca la línea como no entregada.
type ReceivedLine struct {
	IngredientID      string
	QuantityReceived  *decimal.Decimal
	UnitPriceReceived *decimal.Decimal
	NotDelivered      bool
}

// LineReconciliation línea conciliada con sus subtotales.
type LineReconciliation struct {
	entity.OrderLine
	SubtotalOrdered  decimal.Decimal
	SubtotalReceived decimal.Decimal
}

// Reconciliation resultado de comparar pedido y recepción.
type Reconciliation struct {
	OrderID       string
	Lines         []LineReconciliation
	TotalOrdered  decimal.Decimal
	TotalReceived decimal.Decimal
	TotalVariance decimal.Decimal // TotalReceived - TotalOrdered
}

// Reconcile clasifica cada línea del pedido y calcula totales. Es puro: no toca stock ni red.
// Cada entrada recibida se asigna a la primera línea aún libre con ese ingrediente;
// las líneas sin entrada se consideran recibidas tal como se pidieron.
func Reconcile(order entity.Order, received []ReceivedLine) (Reconciliation, error) {
	if order.IsReceived() {
		return Reconciliation{}, fmt.Errorf("pedido %s: %w", order.ID, domain.ErrOrderAlreadyReceived)
	}
	assigned, err := assign(order, received)
	if err != nil {
		return Reconciliation{}, err
	}

	rec := Reconciliation{OrderID: order.ID, TotalOrdered: decimal.Zero, TotalReceived: decimal.Zero}
	for i, line := range order.Lines {
		out := line
		out.QuantityReceived = line.QuantityOrdered
		out.UnitPriceReceived = line.UnitPriceOrdered
		out.LineStatus = entity.LineReconciled

		if r, ok := assigned[i]; ok {
			if r.QuantityReceived != nil {
				out.QuantityReceived = *r.QuantityReceived
			}
			if r.UnitPriceReceived != nil {
				out.UnitPriceReceived = *r.UnitPriceReceived
			}
			if r.NotDelivered {
				out.LineStatus = entity.LineNotDelivered
			}
		}
		if out.LineStatus != entity.LineNotDelivered && hasVariance(out) {
			out.LineStatus = entity.LineVarianceDetected
		}

		lr := LineReconciliation{
			OrderLine:        out,
			SubtotalOrdered:  out.QuantityOrdered.Mul(out.UnitPriceOrdered),
			SubtotalReceived: decimal.Zero,
		}
		if out.LineStatus != entity.LineNotDelivered {
			lr.SubtotalReceived = out.QuantityReceived.Mul(out.UnitPriceReceived)
		}
		rec.TotalOrdered = rec.TotalOrdered.Add(lr.SubtotalOrdered)
		rec.TotalReceived = rec.TotalReceived.Add(lr.SubtotalReceived)
		rec.Lines = append(rec.Lines, lr)
	}
	rec.TotalVariance = rec.TotalReceived.Sub(rec.TotalOrdered)
	return rec, nil
}

func hasVariance(l entity.OrderLine) bool {
	return l.QuantityReceived.Sub(l.QuantityOrdered).Abs().GreaterThan(tolerance) ||
		l.UnitPriceReceived.Sub(l.UnitPriceOrdered).Abs().GreaterThan(tolerance)
}

// assign valida las entradas recibidas y las asocia a índices de línea del pedido.
func assign(order entity.Order, received []ReceivedLine) (map[int]ReceivedLine, error) {
	out := make(map[int]ReceivedLine, len(received))
	for _, r := range received {
		if r.IngredientID == "" {
			return nil, fmt.Errorf("línea recibida sin ingrediente: %w", domain.ErrInvalidInput)
		}
		if r.QuantityReceived != nil && r.QuantityReceived.IsNegative() {
			return nil, fmt.Errorf("cantidad recibida negativa para %s: %w", r.IngredientID, domain.ErrInvalidInput)
		}
		if r.UnitPriceReceived != nil && r.UnitPriceReceived.IsNegative() {
			return nil, fmt.Errorf("precio recibido negativo para %s: %w", r.IngredientID, domain.ErrInvalidInput)
		}
		idx := -1
		for i, line := range order.Lines {
			if _, taken := out[i]; !taken && line.IngredientID == r.IngredientID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("ingrediente %s no está en el pedido %s (o está repetido): %w", r.IngredientID, order.ID, domain.ErrInvalidInput)
		}
		out[idx] = r
	}
	return out, nil
}
