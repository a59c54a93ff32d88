package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
)

var (
	_ repository.IngredientRepository = (*IngredientRepo)(nil)
	_ repository.RecipeRepository     = (*RecipeRepo)(nil)
	_ repository.VariantRepository    = (*VariantRepo)(nil)
	_ repository.OrderRepository      = (*OrderRepo)(nil)
	_ repository.WasteRepository      = (*WasteRepo)(nil)
)

type IngredientRepo struct{ c *Client }
type RecipeRepo struct{ c *Client }
type VariantRepo struct{ c *Client }
type OrderRepo struct{ c *Client }
type WasteRepo struct{ c *Client }

func (c *Client) Ingredients() *IngredientRepo { return &IngredientRepo{c} }
func (c *Client) Recipes() *RecipeRepo         { return &RecipeRepo{c} }
func (c *Client) Variants() *VariantRepo       { return &VariantRepo{c} }
func (c *Client) Orders() *OrderRepo           { return &OrderRepo{c} }
func (c *Client) WasteLog() *WasteRepo         { return &WasteRepo{c} }

func esc(id string) string { return url.PathEscape(id) }

func (r *IngredientRepo) List(ctx context.Context) ([]entity.Ingredient, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, http.MethodGet, "/ingredients", nil, &raw); err != nil {
		return nil, err
	}
	wires, err := decodeList[ingredientWire](raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar ingredientes: %w", err)
	}
	out := make([]entity.Ingredient, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toEntity())
	}
	return out, nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, http.MethodGet, "/ingredients/"+esc(id), nil, &raw); err != nil {
		return nil, err
	}
	w, err := decodeOne[ingredientWire](raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar ingrediente %s: %w", id, err)
	}
	ing := w.toEntity()
	if ing.ID == "" {
		ing.ID = id
	}
	return &ing, nil
}

func (r *IngredientRepo) Update(ctx context.Context, ing *entity.Ingredient) error {
	return r.c.do(ctx, http.MethodPut, "/ingredients/"+esc(ing.ID), ingredientToWire(*ing), nil)
}

func (r *RecipeRepo) List(ctx context.Context) ([]entity.Recipe, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, http.MethodGet, "/recipes", nil, &raw); err != nil {
		return nil, err
	}
	wires, err := decodeList[recipeWire](raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar recetas: %w", err)
	}
	out := make([]entity.Recipe, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toEntity())
	}
	return out, nil
}

func (r *RecipeRepo) Update(ctx context.Context, recipe *entity.Recipe) error {
	w, err := recipeToWire(*recipe)
	if err != nil {
		return err
	}
	return r.c.do(ctx, http.MethodPut, "/recipes/"+esc(recipe.ID), w, nil)
}

// List recorre las recetas y pide las variantes de cada una.
func (r *VariantRepo) List(ctx context.Context) ([]entity.RecipeVariant, error) {
	recipes, err := r.c.Recipes().List(ctx)
	if err != nil {
		return nil, err
	}
	var out []entity.RecipeVariant
	for _, rc := range recipes {
		vs, err := r.ListByRecipe(ctx, rc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// ListByRecipe variantes de una receta.
func (r *VariantRepo) ListByRecipe(ctx context.Context, recipeID string) ([]entity.RecipeVariant, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, http.MethodGet, "/recipes/"+esc(recipeID)+"/variants", nil, &raw); err != nil {
		return nil, err
	}
	wires, err := decodeList[variantWire](raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar variantes de %s: %w", recipeID, err)
	}
	out := make([]entity.RecipeVariant, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toEntity(recipeID))
	}
	return out, nil
}

// Create da de alta la variante; si el almacén asigna ID se copia en v.
func (r *VariantRepo) Create(ctx context.Context, v *entity.RecipeVariant) error {
	var raw json.RawMessage
	if err := r.c.do(ctx, http.MethodPost, "/recipes/"+esc(v.RecipeID)+"/variants", variantToWire(*v), &raw); err != nil {
		return err
	}
	if len(raw) > 0 {
		if w, err := decodeOne[variantWire](raw); err == nil && w.ID != "" {
			v.ID = string(w.ID)
		}
	}
	return nil
}

func (r *VariantRepo) Update(ctx context.Context, v *entity.RecipeVariant) error {
	path := "/recipes/" + esc(v.RecipeID) + "/variants/" + esc(v.ID)
	return r.c.do(ctx, http.MethodPut, path, variantToWire(*v), nil)
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, http.MethodGet, "/orders/"+esc(id), nil, &raw); err != nil {
		return nil, err
	}
	w, err := decodeOne[orderWire](raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar pedido %s: %w", id, err)
	}
	o := w.toEntity()
	if o.ID == "" {
		o.ID = id
	}
	return &o, nil
}

func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	return r.c.do(ctx, http.MethodPut, "/orders/"+esc(o.ID), orderToWire(*o), nil)
}

// SubmitBatch envía todas las mermas en una sola llamada.
func (r *WasteRepo) SubmitBatch(ctx context.Context, records []entity.WasteRecord) error {
	if len(records) == 0 {
		return nil
	}
	body := make([]wasteWire, 0, len(records))
	for _, rec := range records {
		body = append(body, wasteToWire(rec))
	}
	return r.c.do(ctx, http.MethodPost, "/mermas/batch", body, nil)
}
