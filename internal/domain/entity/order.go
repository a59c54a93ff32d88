package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pedido a proveedor.
const (
	OrderStatusPending  = "pending"
	OrderStatusReceived = "received"
)

// LineStatus estado de una línea tras la recepción.
type LineStatus string

const (
	LineReconciled       LineStatus = "reconciled"
	LineVarianceDetected LineStatus = "variance_detected"
	LineNotDelivered     LineStatus = "not_delivered"
)

// OrderLine línea de pedido. Los campos *Received se completan en la recepción.
type OrderLine struct {
	IngredientID      string
	QuantityOrdered   decimal.Decimal
	UnitPriceOrdered  decimal.Decimal
	QuantityReceived  decimal.Decimal
	UnitPriceReceived decimal.Decimal
	LineStatus        LineStatus
}

// Order pedido a proveedor.
type Order struct {
	ID         string
	SupplierID string
	Status     string
	Lines      []OrderLine
	CreatedAt  time.Time
	ReceivedAt *time.Time
}

// IsReceived indica si el pedido ya pasó a recibido.
func (o Order) IsReceived() bool { return o.Status == OrderStatusReceived }
