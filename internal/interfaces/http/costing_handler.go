package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/application/usecase"
)

// CostingHandler escandallos: costes de receta, variantes, informe de carta y mantenimiento.
type CostingHandler struct {
	costing *usecase.CostingUseCase
	recipes *usecase.RecipeUseCase
}

// NewCostingHandler construye el handler.
func NewCostingHandler(costing *usecase.CostingUseCase, recipes *usecase.RecipeUseCase) *CostingHandler {
	return &CostingHandler{costing: costing, recipes: recipes}
}

// RecipeCost godoc
// @Summary      Coste de una receta
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la receta"
// @Success      200  {object}  dto.RecipeCostResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id}/cost [get]
func (h *CostingHandler) RecipeCost(c *fiber.Ctx) error {
	out, err := h.costing.RecipeCost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// VariantCosts godoc
// @Summary      Coste de las variantes de una receta
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la receta"
// @Success      200  {array}   dto.VariantCostResponse
// @Router       /api/recipes/{id}/variants/cost [get]
func (h *CostingHandler) VariantCosts(c *fiber.Ctx) error {
	out, err := h.costing.VariantCosts(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MenuReport godoc
// @Summary      Informe de costes de la carta
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MenuCostReport
// @Router       /api/recipes/costs [get]
func (h *CostingHandler) MenuReport(c *fiber.Ctx) error {
	out, err := h.costing.MenuReport(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateRecipe godoc
// @Summary      Actualizar receta
// @Description  Valida porciones, sub-recetas base y ciclos antes de persistir.
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la receta"
// @Param        body  body  dto.UpdateRecipeRequest  true  "receta"
// @Success      200   {object}  dto.RecipeCostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [put]
func (h *CostingHandler) UpdateRecipe(c *fiber.Ctx) error {
	var in dto.UpdateRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.recipes.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateVariant godoc
// @Summary      Crear variante
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la receta"
// @Param        body  body  dto.VariantRequest  true  "variante"
// @Success      201   {object}  dto.VariantCostResponse
// @Router       /api/recipes/{id}/variants [post]
func (h *CostingHandler) CreateVariant(c *fiber.Ctx) error {
	var in dto.VariantRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.recipes.CreateVariant(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateVariant godoc
// @Summary      Actualizar variante
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id         path  string              true  "ID de la receta"
// @Param        variantId  path  string              true  "ID de la variante"
// @Param        body       body  dto.VariantRequest  true  "variante"
// @Success      200   {object}  dto.VariantCostResponse
// @Router       /api/recipes/{id}/variants/{variantId} [put]
func (h *CostingHandler) UpdateVariant(c *fiber.Ctx) error {
	var in dto.VariantRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.recipes.UpdateVariant(c.UserContext(), c.Params("id"), c.Params("variantId"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
