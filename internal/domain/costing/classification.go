package costing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BandSet conjunto de bandas de food cost a aplicar.
type BandSet string

const (
	BandSetFood     BandSet = "food"
	BandSetBeverage BandSet = "beverage"
)

// Band clasificación de rentabilidad según food cost %.
type Band string

const (
	BandVeryProfitable Band = "very_profitable"
	BandProfitable     Band = "profitable"
	BandTight          Band = "tight"
	BandUnprofitable   Band = "unprofitable"

	BandExcellent      Band = "excellent"
	BandNormal         Band = "normal"
	BandNeedsRepricing Band = "needs_repricing"
)

var (
	hundred = decimal.NewFromInt(100)

	foodVeryProfitable = decimal.NewFromInt(28)
	foodProfitable     = decimal.NewFromInt(33)
	foodTight          = decimal.NewFromInt(38)

	beverageExcellent = decimal.NewFromInt(40)
	beverageNormal    = decimal.NewFromInt(50)
)

// categorías de bebida: vino y bebidas usan bandas más amplias (regla de negocio).
var beverageCategories = map[string]struct{}{
	"vino":     {},
	"vinos":    {},
	"wine":     {},
	"bebida":   {},
	"bebidas":  {},
	"beverage": {},
	"cocteles": {},
}

// BandSetFor elige el conjunto de bandas a partir de la categoría de la receta.
func BandSetFor(category string) BandSet {
	if _, ok := beverageCategories[strings.ToLower(strings.TrimSpace(category))]; ok {
		return BandSetBeverage
	}
	return BandSetFood
}

// FoodCostPercent devuelve coste / precio de venta * 100, redondeado a 2 decimales.
// Con precio de venta <= 0 devuelve 100.
func FoodCostPercent(cost, salePrice decimal.Decimal) decimal.Decimal {
	if salePrice.LessThanOrEqual(decimal.Zero) {
		return hundred
	}
	return cost.Div(salePrice).Mul(hundred).Round(2)
}

// Classify asigna la banda según food cost % y conjunto de bandas.
func Classify(foodCostPct decimal.Decimal, set BandSet) Band {
	if set == BandSetBeverage {
		switch {
		case foodCostPct.LessThanOrEqual(beverageExcellent):
			return BandExcellent
		case foodCostPct.LessThanOrEqual(beverageNormal):
			return BandNormal
		default:
			return BandNeedsRepricing
		}
	}
	switch {
	case foodCostPct.LessThanOrEqual(foodVeryProfitable):
		return BandVeryProfitable
	case foodCostPct.LessThanOrEqual(foodProfitable):
		return BandProfitable
	case foodCostPct.LessThanOrEqual(foodTight):
		return BandTight
	default:
		return BandUnprofitable
	}
}

// Margin resume coste, margen y clasificación de un precio de venta.
type Margin struct {
	Cost        decimal.Decimal
	SalePrice   decimal.Decimal
	Margin      decimal.Decimal
	FoodCostPct decimal.Decimal
	Band        Band
}

// MarginFor calcula margen, food cost % y banda para un coste y precio de venta.
func MarginFor(cost, salePrice decimal.Decimal, set BandSet) Margin {
	pct := FoodCostPercent(cost, salePrice)
	return Margin{
		Cost:        cost,
		SalePrice:   salePrice,
		Margin:      salePrice.Sub(cost),
		FoodCostPct: pct,
		Band:        Classify(pct, set),
	}
}
