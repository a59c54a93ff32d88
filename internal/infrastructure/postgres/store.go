package postgres

// Store agrupa los repositorios sobre un mismo pool, con la misma forma que los adaptadores REST y en memoria.
type Store struct {
	q Querier
}

// NewStore construye el almacén PostgreSQL.
func NewStore(q Querier) *Store { return &Store{q: q} }

func (s *Store) Ingredients() *IngredientRepo { return NewIngredientRepository(s.q) }
func (s *Store) Recipes() *RecipeRepo         { return NewRecipeRepository(s.q) }
func (s *Store) Variants() *VariantRepo       { return NewVariantRepository(s.q) }
func (s *Store) Orders() *OrderRepo           { return NewOrderRepository(s.q) }
func (s *Store) WasteLog() *WasteRepo         { return NewWasteRepository(s.q) }
