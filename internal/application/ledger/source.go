package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
)

// RepositorySource compone el snapshot a partir de los repositorios remotos.
type RepositorySource struct {
	ingredients repository.IngredientRepository
	recipes     repository.RecipeRepository
	variants    repository.VariantRepository
}

// NewRepositorySource construye la fuente de snapshot.
func NewRepositorySource(
	ingredients repository.IngredientRepository,
	recipes repository.RecipeRepository,
	variants repository.VariantRepository,
) *RepositorySource {
	return &RepositorySource{ingredients: ingredients, recipes: recipes, variants: variants}
}

// FetchSnapshot lee ingredientes, recetas y variantes y los indexa.
func (s *RepositorySource) FetchSnapshot(ctx context.Context) (*entity.Snapshot, error) {
	ings, err := s.ingredients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar ingredientes: %w", err)
	}
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar recetas: %w", err)
	}
	variants, err := s.variants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar variantes: %w", err)
	}
	return entity.NewSnapshot(ings, recipes, variants), nil
}
