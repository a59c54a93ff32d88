package batch

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// Outcome resumen del lote para la presentación: completo, parcial o fallido.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
)

// ItemResult resultado de una mutación: valores antes/después o el error.
type ItemResult struct {
	Index         int
	IngredientID  string
	Reason        entity.Reason
	QuantityDelta decimal.Decimal
	StockBefore   decimal.Decimal
	StockAfter    decimal.Decimal
	PriceBefore   decimal.Decimal
	PriceAfter    decimal.Decimal
	Error         string

	err error
}

// Err error original (solo en fallidas) para errors.Is.
func (i ItemResult) Err() error { return i.err }

// BatchResult resultado estructurado del lote. len(Succeeded)+len(Failed) == len(lote).
// Lo aplicado no se deshace: el operador concilia a mano con ambas listas.
type BatchResult struct {
	BatchID    string
	Succeeded  []ItemResult
	Failed     []ItemResult
	AuditError string // fallo al registrar mermas en el histórico
	Reloaded   bool
}

// Outcome clasifica el resultado.
func (r BatchResult) Outcome() Outcome {
	switch {
	case len(r.Failed) == 0:
		return OutcomeComplete
	case len(r.Succeeded) == 0:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}
