package repository

import (
	"context"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// RecipeRepository puerto de persistencia de recetas.
type RecipeRepository interface {
	List(ctx context.Context) ([]entity.Recipe, error)
	Update(ctx context.Context, recipe *entity.Recipe) error
}

// VariantRepository puerto de persistencia de variantes de receta.
type VariantRepository interface {
	List(ctx context.Context) ([]entity.RecipeVariant, error)
	Create(ctx context.Context, variant *entity.RecipeVariant) error
	Update(ctx context.Context, variant *entity.RecipeVariant) error
}
