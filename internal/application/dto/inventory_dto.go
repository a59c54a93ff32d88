package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngredientResponse ingrediente tal como lo ve el motor (precio efectivo incluido).
type IngredientResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Unit             string           `json:"unit"`
	PurchaseFormat   string           `json:"purchase_format,omitempty"`
	PurchasePrice    decimal.Decimal  `json:"purchase_price"`
	UnitsPerFormat   decimal.Decimal  `json:"units_per_format"`
	AveragePrice     *decimal.Decimal `json:"average_price,omitempty"`
	UnitPrice        decimal.Decimal  `json:"unit_price"` // precio medio si existe, si no precio / unidades por formato
	StockQuantity    decimal.Decimal  `json:"stock_quantity"`
	ReorderThreshold decimal.Decimal  `json:"reorder_threshold"`
	BelowReorder     bool             `json:"below_reorder"`
	Active           bool             `json:"active"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`
}

// IngredientListResponse listado de ingredientes del snapshot actual.
type IngredientListResponse struct {
	Items      []IngredientResponse `json:"items"`
	Generation uint64               `json:"generation"`
}

// LowStockItemDTO ingrediente en o bajo su stock mínimo con la cantidad sugerida de compra.
type LowStockItemDTO struct {
	IngredientID       string          `json:"ingredient_id"`
	Name               string          `json:"name"`
	Unit               string          `json:"unit"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	ReorderThreshold   decimal.Decimal `json:"reorder_threshold"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`         // ReorderThreshold * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitPrice          decimal.Decimal `json:"unit_price"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitPrice
	Priority           int             `json:"priority"`             // 1 = más urgente
}

// SnapshotStatusResponse estado del snapshot tras una recarga.
type SnapshotStatusResponse struct {
	Generation  uint64    `json:"generation"`
	Ingredients int       `json:"ingredients"`
	Recipes     int       `json:"recipes"`
	Variants    int       `json:"variants"`
	LoadedAt    time.Time `json:"loaded_at"`
}
