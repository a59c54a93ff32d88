package dto

import "github.com/shopspring/decimal"

// WasteItemRequest merma a registrar. Quantity es la cantidad perdida (positiva).
type WasteItemRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason"` // merma | caducado | roto
	Note         string          `json:"note,omitempty"`
}

// WasteBatchRequest body para POST /api/waste.
type WasteBatchRequest struct {
	Items []WasteItemRequest `json:"items"`
}

// PurchaseItemRequest compra en mercado: entra stock y recalcula precio medio.
type PurchaseItemRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Note         string          `json:"note,omitempty"`
}

// PurchaseBatchRequest body para POST /api/purchases.
type PurchaseBatchRequest struct {
	Items []PurchaseItemRequest `json:"items"`
}

// ProductionRequest body para POST /api/production.
type ProductionRequest struct {
	RecipeID string          `json:"recipe_id" validate:"required"`
	Batches  decimal.Decimal `json:"batches"`
}

// SaleRequest body para POST /api/sales.
type SaleRequest struct {
	RecipeID  string          `json:"recipe_id" validate:"required"`
	VariantID string          `json:"variant_id,omitempty"`
	Units     decimal.Decimal `json:"units"`
}

// BatchItemDTO resultado de una mutación del lote.
type BatchItemDTO struct {
	Index         int              `json:"index"`
	IngredientID  string           `json:"ingredient_id"`
	Reason        string           `json:"reason"`
	QuantityDelta decimal.Decimal  `json:"quantity_delta"`
	StockBefore   *decimal.Decimal `json:"stock_before,omitempty"`
	StockAfter    *decimal.Decimal `json:"stock_after,omitempty"`
	PriceBefore   *decimal.Decimal `json:"price_before,omitempty"`
	PriceAfter    *decimal.Decimal `json:"price_after,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// BatchResponse resultado estructurado de un lote (complete | partial | failed).
type BatchResponse struct {
	BatchID    string         `json:"batch_id"`
	Outcome    string         `json:"outcome"`
	Succeeded  []BatchItemDTO `json:"succeeded"`
	Failed     []BatchItemDTO `json:"failed"`
	AuditError string         `json:"audit_error,omitempty"`
	Reloaded   bool           `json:"reloaded"`
	Warnings   []WarningDTO   `json:"warnings,omitempty"`
}
