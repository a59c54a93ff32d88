package repository

import (
	"context"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// IngredientRepository puerto hacia el almacén remoto de ingredientes (DIP).
// Update persiste precio y stock; el almacén remoto es la fuente de verdad.
type IngredientRepository interface {
	List(ctx context.Context) ([]entity.Ingredient, error)
	GetByID(ctx context.Context, id string) (*entity.Ingredient, error)
	Update(ctx context.Context, ingredient *entity.Ingredient) error
}
