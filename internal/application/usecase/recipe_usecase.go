package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/costing"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

// RecipeUseCase mantenimiento de recetas y variantes. Valida contra el snapshot
// (incluida la ausencia de ciclos) antes de escribir en el almacén y recarga después.
type RecipeUseCase struct {
	recipes  repository.RecipeRepository
	variants repository.VariantRepository
	catalog  CatalogView
	log      *logger.Logger
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(
	recipes repository.RecipeRepository,
	variants repository.VariantRepository,
	catalog CatalogView,
	log *logger.Logger,
) *RecipeUseCase {
	return &RecipeUseCase{recipes: recipes, variants: variants, catalog: catalog, log: log.Component("recipes")}
}

// Update sustituye una receta existente y devuelve su coste resultante.
func (uc *RecipeUseCase) Update(ctx context.Context, id string, in dto.UpdateRecipeRequest) (*dto.RecipeCostResponse, error) {
	snap, _, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := snap.Recipe(id)
	if !ok {
		return nil, fmt.Errorf("receta %s: %w", id, domain.ErrNotFound)
	}
	recipe, err := buildRecipe(id, in, current)
	if err != nil {
		return nil, err
	}
	res, err := validateRecipe(snap, recipe)
	if err != nil {
		return nil, err
	}

	if err := uc.recipes.Update(ctx, &recipe); err != nil {
		return nil, err
	}
	uc.reload(ctx, "receta", id)
	uc.log.Info().Str("recipe_id", id).Str("cost_per_portion", res.CostPerPortion.StringFixed(2)).Msg("receta actualizada")
	return toRecipeCost(recipe, res, true), nil
}

// CreateVariant añade una variante a la receta.
func (uc *RecipeUseCase) CreateVariant(ctx context.Context, recipeID string, in dto.VariantRequest) (*dto.VariantCostResponse, error) {
	v := entity.RecipeVariant{
		ID:         uuid.New().String(),
		RecipeID:   recipeID,
		Name:       strings.TrimSpace(in.Name),
		Code:       strings.TrimSpace(in.Code),
		CostFactor: in.CostFactor,
		SalePrice:  in.SalePrice,
	}
	return uc.saveVariant(ctx, v, uc.variants.Create)
}

// UpdateVariant modifica una variante existente.
func (uc *RecipeUseCase) UpdateVariant(ctx context.Context, recipeID, variantID string, in dto.VariantRequest) (*dto.VariantCostResponse, error) {
	snap, _, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Variant(recipeID, variantID); !ok {
		return nil, fmt.Errorf("variante %s de %s: %w", variantID, recipeID, domain.ErrNotFound)
	}
	v := entity.RecipeVariant{
		ID:         variantID,
		RecipeID:   recipeID,
		Name:       strings.TrimSpace(in.Name),
		Code:       strings.TrimSpace(in.Code),
		CostFactor: in.CostFactor,
		SalePrice:  in.SalePrice,
	}
	return uc.saveVariant(ctx, v, uc.variants.Update)
}

func (uc *RecipeUseCase) saveVariant(
	ctx context.Context,
	v entity.RecipeVariant,
	save func(context.Context, *entity.RecipeVariant) error,
) (*dto.VariantCostResponse, error) {
	if v.Name == "" {
		return nil, fmt.Errorf("nombre de variante requerido: %w", domain.ErrInvalidInput)
	}
	if !v.CostFactor.IsPositive() {
		return nil, fmt.Errorf("factor de coste debe ser > 0: %w", domain.ErrInvalidInput)
	}
	if v.SalePrice.IsNegative() {
		return nil, fmt.Errorf("precio de venta negativo: %w", domain.ErrInvalidInput)
	}
	snap, _, err := uc.catalog.View(ctx)
	if err != nil {
		return nil, err
	}
	parent, ok := snap.Recipe(v.RecipeID)
	if !ok {
		return nil, fmt.Errorf("receta %s: %w", v.RecipeID, domain.ErrNotFound)
	}
	vc, err := costing.NewResolver(snap).ResolveVariant(v)
	if err != nil {
		return nil, err
	}
	if err := save(ctx, &v); err != nil {
		return nil, err
	}
	vc.Variant = v
	uc.reload(ctx, "variante", v.ID)
	out := toVariantCost(parent, vc)
	return &out, nil
}

func (uc *RecipeUseCase) reload(ctx context.Context, kind, id string) {
	if _, err := uc.catalog.Snapshot(ctx); err != nil {
		uc.log.Warn().Err(err).Str(kind, id).Msg("recarga tras escritura fallida")
	}
}

func buildRecipe(id string, in dto.UpdateRecipeRequest, current entity.Recipe) (entity.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Recipe{}, fmt.Errorf("nombre de receta requerido: %w", domain.ErrInvalidInput)
	}
	if in.Portions < 1 {
		return entity.Recipe{}, fmt.Errorf("porciones debe ser >= 1: %w", domain.ErrInvalidInput)
	}
	if in.SalePrice.IsNegative() {
		return entity.Recipe{}, fmt.Errorf("precio de venta negativo: %w", domain.ErrInvalidInput)
	}
	recipe := entity.Recipe{
		ID:        id,
		Name:      name,
		Category:  strings.TrimSpace(in.Category),
		Portions:  in.Portions,
		SalePrice: in.SalePrice,
		Active:    current.Active,
		Lines:     make([]entity.RecipeLine, 0, len(in.Lines)),
	}
	if in.Active != nil {
		recipe.Active = *in.Active
	}
	for i, l := range in.Lines {
		ref := entity.ComponentRef{Kind: entity.ComponentKind(strings.ToLower(strings.TrimSpace(l.Kind))), ID: l.ComponentID}
		if ref.Kind == "" {
			ref.Kind = entity.ComponentIngredient
		}
		if !ref.Valid() {
			return entity.Recipe{}, fmt.Errorf("línea %d: componente inválido: %w", i, domain.ErrInvalidInput)
		}
		if !l.Quantity.IsPositive() {
			return entity.Recipe{}, fmt.Errorf("línea %d: cantidad debe ser > 0: %w", i, domain.ErrInvalidInput)
		}
		recipe.Lines = append(recipe.Lines, entity.RecipeLine{Component: ref, Quantity: l.Quantity})
	}
	return recipe, nil
}

// validateRecipe comprueba referencias y ciclos resolviendo la receta candidata
// como si ya estuviera en el catálogo.
func validateRecipe(snap *entity.Snapshot, recipe entity.Recipe) (costing.Resolution, error) {
	for _, l := range recipe.Lines {
		if l.Component.IsSubRecipe() {
			sub, ok := snap.Recipe(l.Component.ID)
			if !ok {
				return costing.Resolution{}, fmt.Errorf("sub-receta %s inexistente: %w", l.Component.ID, domain.ErrInvalidInput)
			}
			if l.Component.ID != recipe.ID && !sub.IsBase() {
				return costing.Resolution{}, fmt.Errorf("la receta %s no es de categoría base: %w", sub.ID, domain.ErrInvalidInput)
			}
			continue
		}
		if _, ok := snap.Ingredient(l.Component.ID); !ok {
			return costing.Resolution{}, fmt.Errorf("ingrediente %s inexistente: %w", l.Component.ID, domain.ErrInvalidInput)
		}
	}
	return costing.NewResolver(overlay{snap: snap, recipe: recipe}).ResolveRecipe(recipe)
}

// overlay catálogo con una receta sustituida por su versión candidata.
type overlay struct {
	snap   *entity.Snapshot
	recipe entity.Recipe
}

func (o overlay) Ingredient(id string) (entity.Ingredient, bool) { return o.snap.Ingredient(id) }

func (o overlay) Recipe(id string) (entity.Recipe, bool) {
	if id == o.recipe.ID {
		return o.recipe, true
	}
	return o.snap.Recipe(id)
}
