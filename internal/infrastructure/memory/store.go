// Package memory implementa el almacén remoto en memoria (desarrollo local y tests).
// Permite inyectar fallos por operación para simular rechazos y cortes de red.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/Escandallo-api/internal/domain"
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

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu          sync.RWMutex
	ingredients map[string]entity.Ingredient
	recipes     map[string]entity.Recipe
	variants    map[string]entity.RecipeVariant
	orders      map[string]entity.Order
	waste       []entity.WasteRecord

	failures map[string][]error // op -> errores pendientes (se consumen en orden)
	calls    map[string]int
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		ingredients: make(map[string]entity.Ingredient),
		recipes:     make(map[string]entity.Recipe),
		variants:    make(map[string]entity.RecipeVariant),
		orders:      make(map[string]entity.Order),
		failures:    make(map[string][]error),
		calls:       make(map[string]int),
	}
}

// Claves de operación para FailNext y Calls.
const (
	OpListIngredients  = "ingredients.list"
	OpGetIngredient    = "ingredients.get"
	OpUpdateIngredient = "ingredients.update"
	OpListRecipes      = "recipes.list"
	OpUpdateRecipe     = "recipes.update"
	OpListVariants     = "variants.list"
	OpSaveVariant      = "variants.save"
	OpGetOrder         = "orders.get"
	OpUpdateOrder      = "orders.update"
	OpSubmitWaste      = "waste.submit"
)

// UpdateIngredientOp clave de fallo para el Update de un ingrediente concreto.
func UpdateIngredientOp(id string) string { return OpUpdateIngredient + ":" + id }

// FailNext hace que las próximas llamadas a op devuelvan los errores indicados (uno por llamada).
func (s *Store) FailNext(op string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], errs...)
}

// Calls número de llamadas registradas para op.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// hit registra la llamada y consume un fallo pendiente. Debe llamarse con mu tomado.
func (s *Store) hit(ops ...string) error {
	s.calls[ops[0]]++
	for _, op := range ops {
		if pending := s.failures[op]; len(pending) > 0 {
			s.failures[op] = pending[1:]
			return pending[0]
		}
	}
	return nil
}

// PutIngredient, PutRecipe, PutVariant, PutOrder siembran datos sin pasar por los fallos.
func (s *Store) PutIngredient(i entity.Ingredient) {
	s.mu.Lock()
	s.ingredients[i.ID] = i
	s.mu.Unlock()
}

func (s *Store) PutRecipe(r entity.Recipe) {
	s.mu.Lock()
	s.recipes[r.ID] = r
	s.mu.Unlock()
}

func (s *Store) PutVariant(v entity.RecipeVariant) {
	s.mu.Lock()
	s.variants[v.ID] = v
	s.mu.Unlock()
}

func (s *Store) PutOrder(o entity.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
}

// Waste devuelve los registros de merma recibidos.
func (s *Store) Waste() []entity.WasteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.WasteRecord(nil), s.waste...)
}

// Repositorios que comparten el Store.

type IngredientRepo struct{ s *Store }
type RecipeRepo struct{ s *Store }
type VariantRepo struct{ s *Store }
type OrderRepo struct{ s *Store }
type WasteRepo struct{ s *Store }

func (s *Store) Ingredients() *IngredientRepo { return &IngredientRepo{s} }
func (s *Store) Recipes() *RecipeRepo         { return &RecipeRepo{s} }
func (s *Store) Variants() *VariantRepo       { return &VariantRepo{s} }
func (s *Store) Orders() *OrderRepo           { return &OrderRepo{s} }
func (s *Store) WasteLog() *WasteRepo         { return &WasteRepo{s} }

func (r *IngredientRepo) List(_ context.Context) ([]entity.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpListIngredients); err != nil {
		return nil, err
	}
	out := make([]entity.Ingredient, 0, len(r.s.ingredients))
	for _, i := range r.s.ingredients {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *IngredientRepo) GetByID(_ context.Context, id string) (*entity.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpGetIngredient); err != nil {
		return nil, err
	}
	i, ok := r.s.ingredients[id]
	if !ok {
		return nil, fmt.Errorf("ingrediente %s: %w", id, domain.ErrNotFound)
	}
	return &i, nil
}

func (r *IngredientRepo) Update(_ context.Context, ing *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpUpdateIngredient, UpdateIngredientOp(ing.ID)); err != nil {
		return err
	}
	if _, ok := r.s.ingredients[ing.ID]; !ok {
		return fmt.Errorf("ingrediente %s: %w", ing.ID, domain.ErrNotFound)
	}
	r.s.ingredients[ing.ID] = *ing
	return nil
}

func (r *RecipeRepo) List(_ context.Context) ([]entity.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpListRecipes); err != nil {
		return nil, err
	}
	out := make([]entity.Recipe, 0, len(r.s.recipes))
	for _, rc := range r.s.recipes {
		out = append(out, rc)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *RecipeRepo) Update(_ context.Context, recipe *entity.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpUpdateRecipe); err != nil {
		return err
	}
	if _, ok := r.s.recipes[recipe.ID]; !ok {
		return fmt.Errorf("receta %s: %w", recipe.ID, domain.ErrNotFound)
	}
	r.s.recipes[recipe.ID] = *recipe
	return nil
}

func (r *VariantRepo) List(_ context.Context) ([]entity.RecipeVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpListVariants); err != nil {
		return nil, err
	}
	out := make([]entity.RecipeVariant, 0, len(r.s.variants))
	for _, v := range r.s.variants {
		out = append(out, v)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *VariantRepo) Create(_ context.Context, v *entity.RecipeVariant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpSaveVariant); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if _, ok := r.s.variants[v.ID]; ok {
		return fmt.Errorf("variante %s: %w", v.ID, domain.ErrConflict)
	}
	r.s.variants[v.ID] = *v
	return nil
}

func (r *VariantRepo) Update(_ context.Context, v *entity.RecipeVariant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpSaveVariant); err != nil {
		return err
	}
	if _, ok := r.s.variants[v.ID]; !ok {
		return fmt.Errorf("variante %s: %w", v.ID, domain.ErrNotFound)
	}
	r.s.variants[v.ID] = *v
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpGetOrder); err != nil {
		return nil, err
	}
	o, ok := r.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("pedido %s: %w", id, domain.ErrNotFound)
	}
	o.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &o, nil
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpUpdateOrder); err != nil {
		return err
	}
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return fmt.Errorf("pedido %s: %w", o.ID, domain.ErrNotFound)
	}
	if cur.IsReceived() {
		return fmt.Errorf("pedido %s: %w", o.ID, domain.ErrOrderAlreadyReceived)
	}
	cp := *o
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	r.s.orders[o.ID] = cp
	return nil
}

func (r *WasteRepo) SubmitBatch(_ context.Context, records []entity.WasteRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(OpSubmitWaste); err != nil {
		return err
	}
	r.s.waste = append(r.s.waste, records...)
	return nil
}
