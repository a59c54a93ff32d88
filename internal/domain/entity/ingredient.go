package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient representa un ingrediente de cocina con su stock y precio.
// PurchasePrice es el precio del formato de compra (caja, saco, botella);
// AveragePrice es el precio medio ponderado por unidad base (nil hasta el primer cálculo).
type Ingredient struct {
	ID               string
	Name             string
	Unit             string          // unidad base: kg, l, ud
	PurchaseFormat   string          // formato de compra (ej. "caja 6 ud")
	PurchasePrice    decimal.Decimal // precio por formato de compra
	UnitsPerFormat   decimal.Decimal // unidades base por formato
	AveragePrice     *decimal.Decimal
	StockQuantity    decimal.Decimal // en unidades base, nunca negativo
	ReorderThreshold decimal.Decimal
	Active           bool
	UpdatedAt        time.Time
}

// UnitPrice devuelve el precio por unidad base: el medio ponderado si existe,
// si no PurchasePrice / UnitsPerFormat.
func (i Ingredient) UnitPrice() decimal.Decimal {
	if i.AveragePrice != nil {
		return *i.AveragePrice
	}
	if i.UnitsPerFormat.GreaterThan(decimal.Zero) {
		return i.PurchasePrice.Div(i.UnitsPerFormat)
	}
	return i.PurchasePrice
}

// WithStock devuelve una copia con el stock indicado, recortado a cero.
func (i Ingredient) WithStock(qty decimal.Decimal) Ingredient {
	if qty.LessThan(decimal.Zero) {
		qty = decimal.Zero
	}
	i.StockQuantity = qty
	return i
}

// WithAveragePrice devuelve una copia con el precio medio ponderado fijado.
func (i Ingredient) WithAveragePrice(price decimal.Decimal) Ingredient {
	p := price
	i.AveragePrice = &p
	return i
}

// BelowReorder indica si el stock está en o por debajo del umbral de reposición.
func (i Ingredient) BelowReorder() bool {
	return i.ReorderThreshold.GreaterThan(decimal.Zero) && i.StockQuantity.LessThanOrEqual(i.ReorderThreshold)
}
