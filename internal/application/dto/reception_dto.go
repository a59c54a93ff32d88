package dto

import "github.com/shopspring/decimal"

// ReceivedLineRequest lo recibido de un ingrediente. Los campos omitidos toman lo pedido.
type ReceivedLineRequest struct {
	IngredientID      string           `json:"ingredient_id" validate:"required"`
	QuantityReceived  *decimal.Decimal `json:"quantity_received,omitempty"`
	UnitPriceReceived *decimal.Decimal `json:"unit_price_received,omitempty"`
	NotDelivered      bool             `json:"not_delivered,omitempty"`
}

// ReceiveOrderRequest body para POST /api/orders/:id/reconcile y /receive.
type ReceiveOrderRequest struct {
	Lines []ReceivedLineRequest `json:"lines"`
}

// ReconciledLineDTO línea conciliada.
type ReconciledLineDTO struct {
	IngredientID      string          `json:"ingredient_id"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	UnitPriceOrdered  decimal.Decimal `json:"unit_price_ordered"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	UnitPriceReceived decimal.Decimal `json:"unit_price_received"`
	Status            string          `json:"status"`
	SubtotalOrdered   decimal.Decimal `json:"subtotal_ordered"`
	SubtotalReceived  decimal.Decimal `json:"subtotal_received"`
}

// ReconciliationResponse comparación pedido / recepción.
type ReconciliationResponse struct {
	OrderID       string              `json:"order_id"`
	Lines         []ReconciledLineDTO `json:"lines"`
	TotalOrdered  decimal.Decimal     `json:"total_ordered"`
	TotalReceived decimal.Decimal     `json:"total_received"`
	TotalVariance decimal.Decimal     `json:"total_variance"`
}

// StockApplicationDTO efecto de una línea recibida en el ingrediente.
type StockApplicationDTO struct {
	IngredientID     string          `json:"ingredient_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	StockBefore      decimal.Decimal `json:"stock_before"`
	StockAfter       decimal.Decimal `json:"stock_after"`
	PriceBefore      decimal.Decimal `json:"price_before"`
	PriceAfter       decimal.Decimal `json:"price_after"`
	Error            string          `json:"error,omitempty"`
}

// ReceptionResponse recepción confirmada.
type ReceptionResponse struct {
	ReconciliationResponse
	Applied  []StockApplicationDTO `json:"applied"`
	Failed   []StockApplicationDTO `json:"failed"`
	Reloaded bool                  `json:"reloaded"`
}
