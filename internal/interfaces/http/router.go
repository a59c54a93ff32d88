package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Escandallo-api/internal/application/batch"
	"github.com/jhoicas/Escandallo-api/internal/application/reception"
	"github.com/jhoicas/Escandallo-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *usecase.InventoryUseCase
	CostingUC   *usecase.CostingUseCase
	RecipeUC    *usecase.RecipeUseCase
	Reconciler  *reception.Reconciler
	Coordinator *batch.Coordinator
	Production  *batch.ProductionUseCase
	JWTSecret   string
	JWTIssuer   string
}

// Router registra las rutas de la API. Todo bajo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	managers := RequireRole(RoleAdmin, RoleChef)

	// Ingredientes y snapshot
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	ingredients := api.Group("/ingredients")
	ingredients.Get("/", inventoryHandler.List)
	ingredients.Get("/low-stock", inventoryHandler.LowStock)
	ingredients.Get("/:id", inventoryHandler.GetByID)
	api.Post("/snapshot/reload", inventoryHandler.Reload)

	// Escandallos
	costingHandler := NewCostingHandler(deps.CostingUC, deps.RecipeUC)
	recipes := api.Group("/recipes")
	recipes.Get("/costs", costingHandler.MenuReport)
	recipes.Get("/:id/cost", costingHandler.RecipeCost)
	recipes.Get("/:id/variants/cost", costingHandler.VariantCosts)
	recipes.Put("/:id", managers, costingHandler.UpdateRecipe)
	recipes.Post("/:id/variants", managers, costingHandler.CreateVariant)
	recipes.Put("/:id/variants/:variantId", managers, costingHandler.UpdateVariant)

	// Recepción de pedidos
	receptionHandler := NewReceptionHandler(deps.Reconciler)
	orders := api.Group("/orders")
	orders.Post("/:id/reconcile", receptionHandler.Reconcile)
	orders.Post("/:id/receive", managers, receptionHandler.Receive)

	// Lotes de stock
	batchHandler := NewBatchHandler(deps.Coordinator, deps.Production)
	api.Post("/waste", batchHandler.Waste)
	api.Post("/production", batchHandler.Production)
	api.Post("/sales", batchHandler.Sales)
	api.Post("/purchases", managers, batchHandler.Purchases)
}
