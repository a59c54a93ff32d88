package entity

import "time"

// Snapshot foto del almacén remoto en un instante: ingredientes, recetas y variantes.
// Se trata como inmutable una vez publicada en el ledger.
type Snapshot struct {
	Ingredients map[string]Ingredient
	Recipes     map[string]Recipe
	Variants    map[string][]RecipeVariant // por RecipeID
	LoadedAt    time.Time
}

// NewSnapshot construye un snapshot indexado a partir de listas.
func NewSnapshot(ingredients []Ingredient, recipes []Recipe, variants []RecipeVariant) *Snapshot {
	s := &Snapshot{
		Ingredients: make(map[string]Ingredient, len(ingredients)),
		Recipes:     make(map[string]Recipe, len(recipes)),
		Variants:    make(map[string][]RecipeVariant),
		LoadedAt:    time.Now(),
	}
	for _, i := range ingredients {
		s.Ingredients[i.ID] = i
	}
	for _, r := range recipes {
		s.Recipes[r.ID] = r
	}
	for _, v := range variants {
		s.Variants[v.RecipeID] = append(s.Variants[v.RecipeID], v)
	}
	return s
}

// Ingredient busca un ingrediente por ID.
func (s *Snapshot) Ingredient(id string) (Ingredient, bool) {
	if s == nil {
		return Ingredient{}, false
	}
	i, ok := s.Ingredients[id]
	return i, ok
}

// Recipe busca una receta por ID.
func (s *Snapshot) Recipe(id string) (Recipe, bool) {
	if s == nil {
		return Recipe{}, false
	}
	r, ok := s.Recipes[id]
	return r, ok
}

// Variant busca una variante por receta e ID.
func (s *Snapshot) Variant(recipeID, variantID string) (RecipeVariant, bool) {
	if s == nil {
		return RecipeVariant{}, false
	}
	for _, v := range s.Variants[recipeID] {
		if v.ID == variantID {
			return v, true
		}
	}
	return RecipeVariant{}, false
}
