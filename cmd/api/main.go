package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Escandallo-api/internal/application/batch"
	"github.com/jhoicas/Escandallo-api/internal/application/ledger"
	"github.com/jhoicas/Escandallo-api/internal/application/reception"
	"github.com/jhoicas/Escandallo-api/internal/application/usecase"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/cache"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/events"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/memory"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/restclient"
	httpRouter "github.com/jhoicas/Escandallo-api/internal/interfaces/http"
	"github.com/jhoicas/Escandallo-api/pkg/config"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

// stores repositorios del almacén remoto elegido por STORE_DRIVER.
type stores struct {
	ingredients repository.IngredientRepository
	recipes     repository.RecipeRepository
	variants    repository.VariantRepository
	orders      repository.OrderRepository
	waste       repository.WasteRepository
	close       func()
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) stores {
	switch cfg.Store.Driver {
	case config.StoreDriverREST:
		c := restclient.New(cfg.Store.BaseURL, cfg.Store.Timeout, log)
		log.Info().Str("base_url", cfg.Store.BaseURL).Msg("almacén remoto REST")
		return stores{c.Ingredients(), c.Recipes(), c.Variants(), c.Orders(), c.WasteLog(), func() {}}
	case config.StoreDriverMemory:
		s := memory.NewStore()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return stores{s.Ingredients(), s.Recipes(), s.Variants(), s.Orders(), s.WasteLog(), func() {}}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema PostgreSQL")
		}
		s := postgres.NewStore(pool)
		return stores{s.Ingredients(), s.Recipes(), s.Variants(), s.Orders(), s.WasteLog(), pool.Close}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st := openStores(ctx, cfg, log)
	defer st.close()

	// sin brokers no se publican eventos de auditoría
	var publisher repository.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos de auditoría en Kafka")
	}

	var costCache usecase.CostCache = usecase.NopCostCache{}
	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, costes sin caché")
		} else {
			defer client.Close()
			costCache = cache.NewRedisCostCache(client, cfg.Redis.TTL)
		}
	}

	led := ledger.NewStockLedger()
	guard := ledger.NewReloadGuard(
		ledger.NewRepositorySource(st.ingredients, st.recipes, st.variants),
		led,
		ledger.RetryPolicy{MaxRetries: cfg.Reload.MaxRetries, BaseDelay: cfg.Reload.BaseDelay},
		log,
	)
	if _, err := guard.Snapshot(ctx); err != nil {
		// el primer acceso volverá a intentarlo
		log.Warn().Err(err).Msg("carga inicial del snapshot fallida")
	}

	coordinator := batch.NewCoordinator(st.ingredients, st.waste, publisher, led, guard, log)
	deps := httpRouter.RouterDeps{
		InventoryUC: usecase.NewInventoryUseCase(guard),
		CostingUC:   usecase.NewCostingUseCase(guard, costCache, log),
		RecipeUC:    usecase.NewRecipeUseCase(st.recipes, st.variants, guard, log),
		Reconciler:  reception.NewReconciler(st.orders, st.ingredients, publisher, led, guard, log),
		Coordinator: coordinator,
		Production:  batch.NewProductionUseCase(guard, coordinator),
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Escandallo API",
	}))

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
