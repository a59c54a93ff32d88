package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Escandallo-api/internal/application/usecase"
)

// InventoryHandler consultas de ingredientes sobre el snapshot y recarga manual.
type InventoryHandler struct {
	uc *usecase.InventoryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *usecase.InventoryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// List godoc
// @Summary      Listar ingredientes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.IngredientListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/ingredients [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ingrediente
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ingrediente"
// @Success      200  {object}  dto.IngredientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Lista de reposición
// @Description  Ingredientes en o por debajo del umbral, con cantidad sugerida y coste estimado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockItemDTO
// @Router       /api/ingredients/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"items": list,
	})
}

// Reload godoc
// @Summary      Recargar snapshot
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SnapshotStatusResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/snapshot/reload [post]
func (h *InventoryHandler) Reload(c *fiber.Ctx) error {
	out, err := h.uc.Reload(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
