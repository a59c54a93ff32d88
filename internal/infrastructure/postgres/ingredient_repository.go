package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

// IngredientRepo implementación de IngredientRepository sobre PostgreSQL.
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

const ingredientColumns = `id, name, unit, purchase_format, purchase_price, units_per_format,
	average_price, stock_quantity, reorder_threshold, active, updated_at`

func scanIngredient(row pgx.Row) (entity.Ingredient, error) {
	var (
		i   entity.Ingredient
		avg decimal.NullDecimal
	)
	err := row.Scan(&i.ID, &i.Name, &i.Unit, &i.PurchaseFormat, &i.PurchasePrice, &i.UnitsPerFormat,
		&avg, &i.StockQuantity, &i.ReorderThreshold, &i.Active, &i.UpdatedAt)
	if avg.Valid {
		p := avg.Decimal
		i.AveragePrice = &p
	}
	return i, err
}

func (r *IngredientRepo) List(ctx context.Context) ([]entity.Ingredient, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", mapError(err))
	}
	defer rows.Close()
	var out []entity.Ingredient
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", mapError(err))
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", mapError(err))
	}
	return out, nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	i, err := scanIngredient(r.q.QueryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("ingrediente %s: %w", id, mapError(err))
	}
	return &i, nil
}

// Update persiste stock, precios y datos del ingrediente.
func (r *IngredientRepo) Update(ctx context.Context, i *entity.Ingredient) error {
	var avg decimal.NullDecimal
	if i.AveragePrice != nil {
		avg = decimal.NewNullDecimal(*i.AveragePrice)
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE ingredients SET
			name = $2, unit = $3, purchase_format = $4, purchase_price = $5, units_per_format = $6,
			average_price = $7, stock_quantity = $8, reorder_threshold = $9, active = $10, updated_at = now()
		WHERE id = $1`,
		i.ID, i.Name, i.Unit, i.PurchaseFormat, i.PurchasePrice, i.UnitsPerFormat,
		avg, i.StockQuantity, i.ReorderThreshold, i.Active)
	if err != nil {
		return fmt.Errorf("update ingrediente %s: %w", i.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ingrediente %s: %w", i.ID, domain.ErrNotFound)
	}
	return nil
}
