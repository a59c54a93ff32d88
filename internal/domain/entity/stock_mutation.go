package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reason motivo de una mutación de stock.
type Reason string

const (
	ReasonWaste          Reason = "merma"         // merma genérica
	ReasonExpired        Reason = "caducado"      // merma por caducidad
	ReasonBroken         Reason = "roto"          // merma por rotura
	ReasonProduction     Reason = "produccion"    // consumo por producción
	ReasonSale           Reason = "venta"         // consumo por venta
	ReasonMarketPurchase Reason = "compra_mercado" // compra puntual con precio (recalcula PMP)
	ReasonAdjustment     Reason = "ajuste"        // ajuste manual de inventario
)

// IsWaste indica si el motivo es una merma (se registra en el histórico de mermas).
func (r Reason) IsWaste() bool {
	switch r {
	case ReasonWaste, ReasonExpired, ReasonBroken:
		return true
	}
	return false
}

// ChangesPrice indica si el motivo aporta precio y recalcula el precio medio ponderado.
func (r Reason) ChangesPrice() bool { return r == ReasonMarketPurchase }

// Known indica si el motivo es uno de los soportados.
func (r Reason) Known() bool {
	switch r {
	case ReasonWaste, ReasonExpired, ReasonBroken, ReasonProduction, ReasonSale, ReasonMarketPurchase, ReasonAdjustment:
		return true
	}
	return false
}

// StockMutation entrada de un lote de mutaciones de stock.
// QuantityDelta positivo suma stock, negativo resta. UnitPrice solo aplica a compras.
type StockMutation struct {
	IngredientID  string
	QuantityDelta decimal.Decimal
	Reason        Reason
	UnitPrice     *decimal.Decimal
	Note          string
}

// WasteRecord registro de merma enviado al histórico remoto.
type WasteRecord struct {
	IngredientID string
	Quantity     decimal.Decimal // positivo
	Reason       Reason
	LossValue    decimal.Decimal
	Note         string
	RecordedBy   string
	RecordedAt   time.Time
}
