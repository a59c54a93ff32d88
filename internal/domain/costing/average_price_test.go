package costing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Escenario de recepción: stock 10 @ 2.00, entran 5 @ 4.00 → (10·2+5·4)/15 = 2.667.
func TestAveragePrice_EscenarioRecepcion(t *testing.T) {
	got := costing.AveragePrice(d("10"), d("2.00"), d("5"), d("4.00"))
	assert.True(t, got.Round(3).Equal(d("2.667")), "precio medio esperado 2.667, obtenido %s", got)
}

func TestAveragePrice_SinStockPrevioDevuelvePrecioEntrada(t *testing.T) {
	for _, prior := range []string{"0", "3.5", "999"} {
		got := costing.AveragePrice(decimal.Zero, d(prior), d("7"), d("1.25"))
		assert.True(t, got.Equal(d("1.25")), "prior=%s got=%s", prior, got)
	}
}

func TestAveragePrice_SumaNoPositivaDevuelvePrecioEntrada(t *testing.T) {
	assert.True(t, costing.AveragePrice(decimal.Zero, d("2"), decimal.Zero, d("3")).Equal(d("3")))
	assert.True(t, costing.AveragePrice(d("-5"), d("2"), d("2"), d("3")).Equal(d("3")))
}

// El resultado siempre queda entre el mínimo y el máximo de ambos precios.
func TestAveragePrice_AcotadoEntrePrecios(t *testing.T) {
	cases := []struct{ pq, pp, iq, ip string }{
		{"1", "0", "1", "10"},
		{"100", "2.5", "0.001", "99"},
		{"0.3", "7", "12", "1.1"},
		{"5", "3", "5", "3"},
		{"0", "8", "4", "2"},
		{"4", "2", "0", "8"},
	}
	for _, c := range cases {
		pp, ip := d(c.pp), d(c.ip)
		got := costing.AveragePrice(d(c.pq), pp, d(c.iq), ip)
		lo, hi := decimal.Min(pp, ip), decimal.Max(pp, ip)
		assert.True(t, got.GreaterThanOrEqual(lo) && got.LessThanOrEqual(hi),
			"%+v → %s fuera de [%s, %s]", c, got, lo, hi)
	}
}
