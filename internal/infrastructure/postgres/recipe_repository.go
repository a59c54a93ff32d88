package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
)

var (
	_ repository.RecipeRepository  = (*RecipeRepo)(nil)
	_ repository.VariantRepository = (*VariantRepo)(nil)
)

// RecipeRepo recetas con sus líneas. El tipo de componente se guarda explícito en component_kind.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador.
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

func (r *RecipeRepo) List(ctx context.Context) ([]entity.Recipe, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, category, portions, sale_price, active FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", mapError(err))
	}
	recipes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Recipe, error) {
		var rc entity.Recipe
		err := row.Scan(&rc.ID, &rc.Name, &rc.Category, &rc.Portions, &rc.SalePrice, &rc.Active)
		return rc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan recipes: %w", mapError(err))
	}

	lineRows, err := r.q.Query(ctx, `
		SELECT recipe_id, component_kind, component_id, quantity
		FROM recipe_lines ORDER BY recipe_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", mapError(err))
	}
	defer lineRows.Close()
	lines := make(map[string][]entity.RecipeLine)
	for lineRows.Next() {
		var (
			recipeID, kind, componentID string
			line                        entity.RecipeLine
		)
		if err := lineRows.Scan(&recipeID, &kind, &componentID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", mapError(err))
		}
		line.Component = entity.ComponentRef{Kind: entity.ComponentKind(kind), ID: componentID}
		lines[recipeID] = append(lines[recipeID], line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", mapError(err))
	}
	for i := range recipes {
		recipes[i].Lines = lines[recipes[i].ID]
	}
	return recipes, nil
}

// Update reemplaza cabecera y líneas en una transacción.
func (r *RecipeRepo) Update(ctx context.Context, rc *entity.Recipe) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE recipes SET name = $2, category = $3, portions = $4, sale_price = $5, active = $6
			WHERE id = $1`, rc.ID, rc.Name, rc.Category, rc.PortionCount(), rc.SalePrice, rc.Active)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("receta %s: %w", rc.ID, domain.ErrNotFound)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_lines WHERE recipe_id = $1`, rc.ID); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for pos, l := range rc.Lines {
			batch.Queue(`
				INSERT INTO recipe_lines (recipe_id, position, component_kind, component_id, quantity)
				VALUES ($1, $2, $3, $4, $5)`, rc.ID, pos, string(l.Component.Kind), l.Component.ID, l.Quantity)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("update receta %s: %w", rc.ID, mapError(err))
	}
	return nil
}

// VariantRepo variantes de venta de recetas.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador.
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

func (r *VariantRepo) List(ctx context.Context) ([]entity.RecipeVariant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, recipe_id, name, cost_factor, sale_price, code
		FROM recipe_variants ORDER BY recipe_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", mapError(err))
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.RecipeVariant, error) {
		var v entity.RecipeVariant
		err := row.Scan(&v.ID, &v.RecipeID, &v.Name, &v.CostFactor, &v.SalePrice, &v.Code)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan variants: %w", mapError(err))
	}
	return out, nil
}

func (r *VariantRepo) Create(ctx context.Context, v *entity.RecipeVariant) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recipe_variants (id, recipe_id, name, cost_factor, sale_price, code)
		VALUES ($1, $2, $3, $4, $5, $6)`, v.ID, v.RecipeID, v.Name, v.CostFactor, v.SalePrice, v.Code)
	if err != nil {
		return fmt.Errorf("crear variante %s: %w", v.ID, mapError(err))
	}
	return nil
}

func (r *VariantRepo) Update(ctx context.Context, v *entity.RecipeVariant) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE recipe_variants SET name = $3, cost_factor = $4, sale_price = $5, code = $6
		WHERE id = $1 AND recipe_id = $2`, v.ID, v.RecipeID, v.Name, v.CostFactor, v.SalePrice, v.Code)
	if err != nil {
		return fmt.Errorf("update variante %s: %w", v.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variante %s: %w", v.ID, domain.ErrNotFound)
	}
	return nil
}
