package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/application/batch"
	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/application/usecase"
	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// BatchHandler lotes de mutaciones de stock: mermas, compras, producción y ventas.
type BatchHandler struct {
	coordinator *batch.Coordinator
	production  *batch.ProductionUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(coordinator *batch.Coordinator, production *batch.ProductionUseCase) *BatchHandler {
	return &BatchHandler{coordinator: coordinator, production: production}
}

func meta(c *fiber.Ctx) batch.Meta {
	return batch.Meta{UserID: GetUserID(c), At: time.Now()}
}

// Waste godoc
// @Summary      Registrar mermas
// @Description  Cada línea descuenta stock; las aplicadas se envían al histórico de mermas.
// @Tags         batch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WasteBatchRequest  true  "mermas"
// @Success      200   {object}  dto.BatchResponse
// @Success      207   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.BatchResponse
// @Router       /api/waste [post]
func (h *BatchHandler) Waste(c *fiber.Ctx) error {
	var in dto.WasteBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mutations := make([]entity.StockMutation, 0, len(in.Items))
	for _, it := range in.Items {
		reason := entity.Reason(it.Reason)
		if reason == "" {
			reason = entity.ReasonWaste
		}
		if !reason.IsWaste() {
			return respondError(c, fmt.Errorf("motivo %q no es una merma: %w", it.Reason, domain.ErrInvalidInput))
		}
		mutations = append(mutations, entity.StockMutation{
			IngredientID:  it.IngredientID,
			QuantityDelta: it.Quantity.Neg(),
			Reason:        reason,
			Note:          it.Note,
		})
	}
	res, err := h.coordinator.ApplyBatch(c.UserContext(), meta(c), mutations)
	if err != nil {
		return respondError(c, err)
	}
	return respondBatch(c, res, nil)
}

// Purchases godoc
// @Summary      Compras en mercado
// @Description  Suma stock y recalcula el precio medio ponderado con el precio pagado.
// @Tags         batch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseBatchRequest  true  "compras"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/purchases [post]
func (h *BatchHandler) Purchases(c *fiber.Ctx) error {
	var in dto.PurchaseBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mutations := make([]entity.StockMutation, 0, len(in.Items))
	for _, it := range in.Items {
		price := it.UnitPrice
		mutations = append(mutations, entity.StockMutation{
			IngredientID:  it.IngredientID,
			QuantityDelta: it.Quantity,
			Reason:        entity.ReasonMarketPurchase,
			UnitPrice:     &price,
			Note:          it.Note,
		})
	}
	res, err := h.coordinator.ApplyBatch(c.UserContext(), meta(c), mutations)
	if err != nil {
		return respondError(c, err)
	}
	return respondBatch(c, res, nil)
}

// Production godoc
// @Summary      Registrar producción
// @Description  Descuenta los ingredientes de N tandas de la receta, bajando por sub-recetas.
// @Tags         batch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionRequest  true  "receta y tandas"
// @Success      200   {object}  dto.BatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/production [post]
func (h *BatchHandler) Production(c *fiber.Ctx) error {
	var in dto.ProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.production.Produce(c.UserContext(), meta(c), in.RecipeID, in.Batches)
	if err != nil {
		return respondError(c, err)
	}
	return respondBatch(c, res.BatchResult, res.Warnings)
}

// Sales godoc
// @Summary      Registrar ventas
// @Description  Descuenta las porciones vendidas; con variante escala por su factor de coste.
// @Tags         batch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "receta, variante opcional y unidades"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/sales [post]
func (h *BatchHandler) Sales(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.production.RegisterSale(c.UserContext(), meta(c), in.RecipeID, in.VariantID, in.Units)
	if err != nil {
		return respondError(c, err)
	}
	return respondBatch(c, res.BatchResult, res.Warnings)
}

// respondBatch 200 completo, 207 parcial, 422 todo fallido.
func respondBatch(c *fiber.Ctx, res batch.BatchResult, warnings []costing.Warning) error {
	status := fiber.StatusOK
	switch res.Outcome() {
	case batch.OutcomePartial:
		status = fiber.StatusMultiStatus
	case batch.OutcomeFailed:
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(toBatchResponse(res, warnings))
}

func toBatchResponse(res batch.BatchResult, warnings []costing.Warning) dto.BatchResponse {
	out := dto.BatchResponse{
		BatchID:    res.BatchID,
		Outcome:    string(res.Outcome()),
		Succeeded:  make([]dto.BatchItemDTO, 0, len(res.Succeeded)),
		Failed:     make([]dto.BatchItemDTO, 0, len(res.Failed)),
		AuditError: res.AuditError,
		Reloaded:   res.Reloaded,
		Warnings:   usecase.ToWarningDTOs(warnings),
	}
	for _, it := range res.Succeeded {
		item := batchItem(it)
		item.StockBefore = decPtr(it.StockBefore)
		item.StockAfter = decPtr(it.StockAfter)
		item.PriceBefore = decPtr(it.PriceBefore)
		item.PriceAfter = decPtr(it.PriceAfter)
		out.Succeeded = append(out.Succeeded, item)
	}
	for _, it := range res.Failed {
		out.Failed = append(out.Failed, batchItem(it))
	}
	return out
}

func batchItem(it batch.ItemResult) dto.BatchItemDTO {
	return dto.BatchItemDTO{
		Index:         it.Index,
		IngredientID:  it.IngredientID,
		Reason:        string(it.Reason),
		QuantityDelta: it.QuantityDelta,
		Error:         it.Error,
	}
}

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }
