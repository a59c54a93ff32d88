package ledger

import (
	"sort"
	"sync"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// StockLedger caché en memoria del stock y precio de ingredientes (más recetas y variantes).
// No es la fuente de verdad: se sustituye entera tras cada recarga y solo recibe
// escrituras de arrastre después de una persistencia remota correcta.
// El snapshot publicado es inmutable; las escrituras publican una copia nueva.
type StockLedger struct {
	mu         sync.RWMutex
	snap       *entity.Snapshot
	generation uint64
	writeSeq   uint64
	writes     []trailingWrite
}

// trailingWrite escritura de arrastre pendiente de verse reflejada por una recarga.
type trailingWrite struct {
	seq uint64
	ing entity.Ingredient
}

// NewStockLedger construye un ledger vacío (generación 0 = sin cargar).
func NewStockLedger() *StockLedger {
	return &StockLedger{snap: entity.NewSnapshot(nil, nil, nil)}
}

// Snapshot devuelve el snapshot actual y su generación.
func (l *StockLedger) Snapshot() (*entity.Snapshot, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap, l.generation
}

// Generation cambia en cada ReplaceSnapshot o ApplyIngredient.
func (l *StockLedger) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

// Loaded indica si ya se cargó al menos un snapshot.
func (l *StockLedger) Loaded() bool {
	return l.Generation() > 0
}

// Ingredient devuelve el ingrediente cacheado.
func (l *StockLedger) Ingredient(id string) (entity.Ingredient, bool) {
	s, _ := l.Snapshot()
	return s.Ingredient(id)
}

// Ingredients devuelve todos los ingredientes ordenados por nombre.
func (l *StockLedger) Ingredients() []entity.Ingredient {
	s, _ := l.Snapshot()
	out := make([]entity.Ingredient, 0, len(s.Ingredients))
	for _, i := range s.Ingredients {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// Recipe devuelve la receta cacheada.
func (l *StockLedger) Recipe(id string) (entity.Recipe, bool) {
	s, _ := l.Snapshot()
	return s.Recipe(id)
}

// Recipes devuelve todas las recetas ordenadas por nombre.
func (l *StockLedger) Recipes() []entity.Recipe {
	s, _ := l.Snapshot()
	out := make([]entity.Recipe, 0, len(s.Recipes))
	for _, r := range s.Recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// Variants devuelve las variantes de una receta.
func (l *StockLedger) Variants(recipeID string) []entity.RecipeVariant {
	s, _ := l.Snapshot()
	return append([]entity.RecipeVariant(nil), s.Variants[recipeID]...)
}

// ReplaceSnapshot sustituye el snapshot completo (tras una recarga).
func (l *StockLedger) ReplaceSnapshot(s *entity.Snapshot) {
	if s == nil {
		return
	}
	l.mu.Lock()
	l.snap = s
	l.generation++
	l.writes = nil
	l.mu.Unlock()
}

// WriteMark marca la posición actual de las escrituras de arrastre. Se toma
// antes de pedir un snapshot al almacén y se pasa a ReplaceSnapshotSince.
func (l *StockLedger) WriteMark() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.writeSeq
}

// ReplaceSnapshotSince sustituye el snapshot conservando las escrituras de arrastre
// posteriores a mark: la lectura remota pudo empezar antes de que se persistieran.
// Devuelve el snapshot publicado.
func (l *StockLedger) ReplaceSnapshotSince(s *entity.Snapshot, mark uint64) *entity.Snapshot {
	if s == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	next := s
	for _, w := range l.writes {
		if w.seq <= mark {
			continue
		}
		if next == s {
			next = &entity.Snapshot{
				Ingredients: make(map[string]entity.Ingredient, len(s.Ingredients)+1),
				Recipes:     s.Recipes,
				Variants:    s.Variants,
				LoadedAt:    s.LoadedAt,
			}
			for k, v := range s.Ingredients {
				next.Ingredients[k] = v
			}
		}
		next.Ingredients[w.ing.ID] = w.ing
	}
	l.snap = next
	l.generation++
	l.writes = nil
	return next
}

// ApplyIngredient escritura de arrastre tras persistir el ingrediente en remoto.
func (l *StockLedger) ApplyIngredient(ing entity.Ingredient) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := &entity.Snapshot{
		Ingredients: make(map[string]entity.Ingredient, len(l.snap.Ingredients)+1),
		Recipes:     l.snap.Recipes,
		Variants:    l.snap.Variants,
		LoadedAt:    l.snap.LoadedAt,
	}
	for k, v := range l.snap.Ingredients {
		next.Ingredients[k] = v
	}
	next.Ingredients[ing.ID] = ing
	l.snap = next
	l.generation++
	l.writeSeq++
	l.writes = append(l.writes, trailingWrite{seq: l.writeSeq, ing: ing})
}
