package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/application/reception"
)

// ReceptionHandler recepción de pedidos a proveedor.
type ReceptionHandler struct {
	uc *reception.Reconciler
}

// NewReceptionHandler construye el handler.
func NewReceptionHandler(uc *reception.Reconciler) *ReceptionHandler {
	return &ReceptionHandler{uc: uc}
}

// Reconcile godoc
// @Summary      Vista previa de la conciliación
// @Description  Compara lo pedido con lo recibido sin tocar stock ni el pedido.
// @Tags         reception
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del pedido"
// @Param        body  body  dto.ReceiveOrderRequest  true  "líneas recibidas (omitidas = como se pidió)"
// @Success      200   {object}  dto.ReconciliationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reconcile [post]
func (h *ReceptionHandler) Reconcile(c *fiber.Ctx) error {
	lines, err := receivedLines(c)
	if err != nil {
		return badBody(c)
	}
	rec, err := h.uc.Preview(c.UserContext(), c.Params("id"), lines)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReconciliationResponse(rec))
}

// Receive godoc
// @Summary      Confirmar recepción
// @Description  Aplica precio medio y stock por línea y cierra el pedido. 207 si alguna línea
//
//	no se aplicó o el pedido no pudo cerrarse.
//
// @Tags         reception
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del pedido"
// @Param        body  body  dto.ReceiveOrderRequest  true  "líneas recibidas"
// @Success      200   {object}  dto.ReceptionResponse
// @Success      207   {object}  dto.ReceptionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receive [post]
func (h *ReceptionHandler) Receive(c *fiber.Ctx) error {
	lines, err := receivedLines(c)
	if err != nil {
		return badBody(c)
	}
	res, err := h.uc.Receive(c.UserContext(), GetUserID(c), c.Params("id"), lines)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if len(res.Failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(toReceptionResponse(res))
}

// receivedLines admite cuerpo vacío: todo se recibió tal como se pidió.
func receivedLines(c *fiber.Ctx) ([]reception.ReceivedLine, error) {
	var in dto.ReceiveOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return nil, err
		}
	}
	out := make([]reception.ReceivedLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		out = append(out, reception.ReceivedLine{
			IngredientID:      l.IngredientID,
			QuantityReceived:  l.QuantityReceived,
			UnitPriceReceived: l.UnitPriceReceived,
			NotDelivered:      l.NotDelivered,
		})
	}
	return out, nil
}

func toReconciliationResponse(rec reception.Reconciliation) dto.ReconciliationResponse {
	out := dto.ReconciliationResponse{
		OrderID:       rec.OrderID,
		Lines:         make([]dto.ReconciledLineDTO, 0, len(rec.Lines)),
		TotalOrdered:  rec.TotalOrdered,
		TotalReceived: rec.TotalReceived,
		TotalVariance: rec.TotalVariance,
	}
	for _, l := range rec.Lines {
		out.Lines = append(out.Lines, dto.ReconciledLineDTO{
			IngredientID:      l.IngredientID,
			QuantityOrdered:   l.QuantityOrdered,
			UnitPriceOrdered:  l.UnitPriceOrdered,
			QuantityReceived:  l.QuantityReceived,
			UnitPriceReceived: l.UnitPriceReceived,
			Status:            string(l.LineStatus),
			SubtotalOrdered:   l.SubtotalOrdered,
			SubtotalReceived:  l.SubtotalReceived,
		})
	}
	return out
}

func toReceptionResponse(res reception.ReceptionResult) dto.ReceptionResponse {
	return dto.ReceptionResponse{
		ReconciliationResponse: toReconciliationResponse(res.Reconciliation),
		Applied:                toStockApplications(res.Applied),
		Failed:                 toStockApplications(res.Failed),
		Reloaded:               res.Reloaded,
	}
}

func toStockApplications(apps []reception.StockApplication) []dto.StockApplicationDTO {
	out := make([]dto.StockApplicationDTO, 0, len(apps))
	for _, a := range apps {
		out = append(out, dto.StockApplicationDTO{
			IngredientID:     a.IngredientID,
			QuantityReceived: a.QuantityReceived,
			StockBefore:      a.StockBefore,
			StockAfter:       a.StockAfter,
			PriceBefore:      a.PriceBefore,
			PriceAfter:       a.PriceAfter,
			Error:            a.Error,
		})
	}
	return out
}
