package costing

import "github.com/shopspring/decimal"

// AveragePrice implementa el precio medio ponderado (servicio de dominio, sin efectos).
// NuevoPrecio = ((StockPrevio * PrecioPrevio) + (CantEntrada * PrecioEntrada)) / (StockPrevio + CantEntrada)
// Si la suma de cantidades es cero o negativa el resultado es el precio de entrada.
func AveragePrice(priorQty, priorPrice, incomingQty, incomingPrice decimal.Decimal) decimal.Decimal {
	sum := priorQty.Add(incomingQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return incomingPrice
	}
	num := priorQty.Mul(priorPrice).Add(incomingQty.Mul(incomingPrice))
	return num.Div(sum)
}
