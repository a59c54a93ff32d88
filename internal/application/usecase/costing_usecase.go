package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

// CostingUseCase consultas de coste sobre el snapshot del ledger. Nunca llama a red
// salvo en la primera carga; los resultados se memorizan por generación.
// La generación es local al proceso: la clave de caché la combina con un
// identificador de instancia para que otro proceso, o este mismo tras reiniciar,
// nunca lea costes de un snapshot ajeno.
type CostingUseCase struct {
	catalog  CatalogView
	cache    CostCache
	instance string
	log      *logger.Logger
}

// NewCostingUseCase construye el caso de uso. cache nil equivale a sin caché.
func NewCostingUseCase(catalog CatalogView, cache CostCache, log *logger.Logger) *CostingUseCase {
	if cache == nil {
		cache = NopCostCache{}
	}
	return &CostingUseCase{catalog: catalog, cache: cache, instance: uuid.NewString(), log: log.Component("costing")}
}

// cacheVersion versión de caché del snapshot con generación gen.
func (uc *CostingUseCase) cacheVersion(gen uint64) string {
	return fmt.Sprintf("%s.%d", uc.instance, gen)
}

// RecipeCost coste por porción, margen y banda de una receta, con desglose de líneas.
func (uc *CostingUseCase) RecipeCost(ctx context.Context, recipeID string) (*dto.RecipeCostResponse, error) {
	snap, gen, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	version := uc.cacheVersion(gen)
	if cached, ok, err := uc.cache.Get(ctx, version, recipeID); err != nil {
		uc.log.Warn().Err(err).Str("recipe_id", recipeID).Msg("caché de costes no disponible")
	} else if ok {
		return cached, nil
	}

	recipe, ok := snap.Recipe(recipeID)
	if !ok {
		return nil, fmt.Errorf("receta %s: %w", recipeID, domain.ErrNotFound)
	}
	res, err := costing.NewResolver(snap).ResolveRecipe(recipe)
	if err != nil {
		return nil, err
	}
	out := toRecipeCost(recipe, res, true)
	if err := uc.cache.Set(ctx, version, recipeID, out); err != nil {
		uc.log.Warn().Err(err).Str("recipe_id", recipeID).Msg("no se pudo guardar el coste en caché")
	}
	return out, nil
}

// VariantCosts coste de cada variante de la receta, en el orden en que se cargaron.
func (uc *CostingUseCase) VariantCosts(ctx context.Context, recipeID string) ([]dto.VariantCostResponse, error) {
	snap, _, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	parent, ok := snap.Recipe(recipeID)
	if !ok {
		return nil, fmt.Errorf("receta %s: %w", recipeID, domain.ErrNotFound)
	}
	resolver := costing.NewResolver(snap)
	variants := snap.Variants[recipeID]
	out := make([]dto.VariantCostResponse, 0, len(variants))
	for _, v := range variants {
		vc, err := resolver.ResolveVariant(v)
		if err != nil {
			return nil, err
		}
		out = append(out, toVariantCost(parent, vc))
	}
	return out, nil
}

// MenuReport coste de todas las recetas activas, de peor a mejor food cost.
// Una receta en ciclo no rompe el informe: se omite y se registra.
func (uc *CostingUseCase) MenuReport(ctx context.Context) (*dto.MenuCostReport, error) {
	snap, gen, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	resolver := costing.NewResolver(snap)
	report := &dto.MenuCostReport{Items: []dto.RecipeCostResponse{}, Generation: gen}
	for _, recipe := range snap.Recipes {
		if !recipe.Active {
			continue
		}
		res, err := resolver.ResolveRecipe(recipe)
		if err != nil {
			uc.log.Warn().Err(err).Str("recipe_id", recipe.ID).Msg("receta omitida del informe")
			continue
		}
		item := toRecipeCost(recipe, res, false)
		report.Warnings += len(item.Warnings)
		report.Items = append(report.Items, *item)
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if !a.FoodCostPct.Equal(b.FoodCostPct) {
			return a.FoodCostPct.GreaterThan(b.FoodCostPct)
		}
		return a.Name < b.Name
	})
	return report, nil
}
