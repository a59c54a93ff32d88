package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

// Reloader dispara la recarga del snapshot tras las mutaciones (ledger.ReloadGuard).
type Reloader interface {
	Reload(ctx context.Context) error
}

// IngredientCache escritura de arrastre en el ledger tras persistir.
type IngredientCache interface {
	ApplyIngredient(ing entity.Ingredient)
}

// Meta correlación que aporta el llamador (quién/cuándo). Solo viaja a la auditoría.
type Meta struct {
	UserID string
	At     time.Time
}

// Coordinator aplica lotes de mutaciones de stock (mermas, producción, ventas, compras)
// de forma SECUENCIAL: cada mutación lee y escribe la misma entrada del almacén y
// una aplicación concurrente perdería actualizaciones. Un fallo no aborta el lote
// ni deshace lo ya aplicado: el resultado separa aplicadas y fallidas.
type Coordinator struct {
	ingredients repository.IngredientRepository
	waste       repository.WasteRepository
	events      repository.EventPublisher
	cache       IngredientCache
	reloader    Reloader
	log         *logger.Logger
}

// NewCoordinator construye el coordinador. events y reloader pueden ser nil.
func NewCoordinator(
	ingredients repository.IngredientRepository,
	waste repository.WasteRepository,
	events repository.EventPublisher,
	cache IngredientCache,
	reloader Reloader,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		ingredients: ingredients,
		waste:       waste,
		events:      events,
		cache:       cache,
		reloader:    reloader,
		log:         log.Component("batch"),
	}
}

// ApplyBatch valida el lote completo (sin tocar red) y aplica cada mutación en orden.
// Solo devuelve error para fallos de validación; el resto queda en BatchResult.
func (c *Coordinator) ApplyBatch(ctx context.Context, meta Meta, mutations []entity.StockMutation) (BatchResult, error) {
	if err := Validate(mutations); err != nil {
		return BatchResult{}, err
	}
	if meta.At.IsZero() {
		meta.At = time.Now()
	}

	result := BatchResult{BatchID: uuid.New().String()}
	for idx, m := range mutations {
		item, err := c.applyOne(ctx, idx, m, meta.At)
		if err != nil {
			item.Error = err.Error()
			item.err = err
			result.Failed = append(result.Failed, item)
			c.log.Warn().Err(err).
				Str("batch_id", result.BatchID).
				Int("index", idx).
				Str("ingredient_id", m.IngredientID).
				Str("reason", string(m.Reason)).
				Msg("mutación fallida, se continúa con el lote")
			continue
		}
		result.Succeeded = append(result.Succeeded, item)
	}

	c.recordWaste(ctx, meta, mutations, &result)
	c.publish(ctx, meta, &result)

	if len(result.Succeeded) > 0 && c.reloader != nil {
		if err := c.reloader.Reload(ctx); err != nil {
			c.log.Warn().Err(err).Str("batch_id", result.BatchID).Msg("recarga tras lote fallida")
		} else {
			result.Reloaded = true
		}
	}

	c.log.Info().
		Str("batch_id", result.BatchID).
		Str("outcome", string(result.Outcome())).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("lote de mutaciones aplicado")
	return result, nil
}

func (c *Coordinator) applyOne(ctx context.Context, idx int, m entity.StockMutation, now time.Time) (ItemResult, error) {
	item := ItemResult{Index: idx, IngredientID: m.IngredientID, Reason: m.Reason, QuantityDelta: m.QuantityDelta}

	current, err := c.ingredients.GetByID(ctx, m.IngredientID)
	if err != nil {
		return item, fmt.Errorf("leer ingrediente: %w", err)
	}
	item.StockBefore = current.StockQuantity
	item.PriceBefore = current.UnitPrice()

	next := *current
	if m.Reason.ChangesPrice() {
		price := costing.AveragePrice(current.StockQuantity, current.UnitPrice(), m.QuantityDelta, *m.UnitPrice)
		next = next.WithAveragePrice(price)
	}
	next = next.WithStock(current.StockQuantity.Add(m.QuantityDelta))
	next.UpdatedAt = now

	if err := c.ingredients.Update(ctx, &next); err != nil {
		return item, fmt.Errorf("persistir ingrediente: %w", err)
	}
	if c.cache != nil {
		c.cache.ApplyIngredient(next)
	}
	item.StockAfter = next.StockQuantity
	item.PriceAfter = next.UnitPrice()
	return item, nil
}

// recordWaste envía al histórico las mermas aplicadas en una sola llamada.
// Un fallo aquí no deshace el stock: se informa en el resultado.
func (c *Coordinator) recordWaste(ctx context.Context, meta Meta, mutations []entity.StockMutation, result *BatchResult) {
	if c.waste == nil {
		return
	}
	var records []entity.WasteRecord
	for _, s := range result.Succeeded {
		m := mutations[s.Index]
		if !m.Reason.IsWaste() {
			continue
		}
		qty := m.QuantityDelta.Abs()
		records = append(records, entity.WasteRecord{
			IngredientID: m.IngredientID,
			Quantity:     qty,
			Reason:       m.Reason,
			LossValue:    qty.Mul(s.PriceBefore).Round(2),
			Note:         m.Note,
			RecordedBy:   meta.UserID,
			RecordedAt:   meta.At,
		})
	}
	if len(records) == 0 {
		return
	}
	if err := c.waste.SubmitBatch(ctx, records); err != nil {
		result.AuditError = err.Error()
		c.log.Error().Err(err).Str("batch_id", result.BatchID).Int("records", len(records)).
			Msg("registro de mermas fallido; stock ya aplicado")
	}
}

func (c *Coordinator) publish(ctx context.Context, meta Meta, result *BatchResult) {
	if c.events == nil || len(result.Succeeded) == 0 {
		return
	}
	events := make([]repository.Event, 0, len(result.Succeeded))
	for _, s := range result.Succeeded {
		events = append(events, repository.Event{
			Type:       repository.EventMovementApplied,
			Key:        s.IngredientID,
			OccurredAt: meta.At,
			Payload: movementPayload{
				BatchID:       result.BatchID,
				IngredientID:  s.IngredientID,
				Reason:        string(s.Reason),
				QuantityDelta: s.QuantityDelta,
				StockBefore:   s.StockBefore,
				StockAfter:    s.StockAfter,
				PriceBefore:   s.PriceBefore,
				PriceAfter:    s.PriceAfter,
				UserID:        meta.UserID,
			},
		})
	}
	if err := c.events.Publish(ctx, events...); err != nil {
		c.log.Warn().Err(err).Str("batch_id", result.BatchID).Msg("publicación de eventos fallida")
	}
}

type movementPayload struct {
	BatchID       string          `json:"batch_id"`
	IngredientID  string          `json:"ingredient_id"`
	Reason        string          `json:"reason"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	StockBefore   decimal.Decimal `json:"stock_before"`
	StockAfter    decimal.Decimal `json:"stock_after"`
	PriceBefore   decimal.Decimal `json:"price_before"`
	PriceAfter    decimal.Decimal `json:"price_after"`
	UserID        string          `json:"user_id,omitempty"`
}

// Validate rechaza el lote antes de cualquier llamada de red.
func Validate(mutations []entity.StockMutation) error {
	if len(mutations) == 0 {
		return fmt.Errorf("lote vacío: %w", domain.ErrInvalidInput)
	}
	for i, m := range mutations {
		if err := validateOne(m); err != nil {
			return fmt.Errorf("línea %d (%s): %s: %w", i, m.IngredientID, err.Error(), domain.ErrInvalidInput)
		}
	}
	return nil
}

func validateOne(m entity.StockMutation) error {
	switch {
	case m.IngredientID == "":
		return fmt.Errorf("ingrediente requerido")
	case !m.Reason.Known():
		return fmt.Errorf("motivo desconocido %q", m.Reason)
	case m.QuantityDelta.IsZero():
		return fmt.Errorf("cantidad cero")
	}
	switch {
	case m.Reason.IsWaste(), m.Reason == entity.ReasonProduction, m.Reason == entity.ReasonSale:
		if m.QuantityDelta.IsPositive() {
			return fmt.Errorf("el motivo %s solo admite salidas", m.Reason)
		}
	case m.Reason.ChangesPrice():
		if m.QuantityDelta.IsNegative() {
			return fmt.Errorf("una compra solo admite entradas")
		}
		if m.UnitPrice == nil || m.UnitPrice.IsNegative() {
			return fmt.Errorf("precio unitario requerido y no negativo")
		}
	}
	return nil
}
