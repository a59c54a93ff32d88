package costing

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Catalog puerto de lectura que necesita el resolvedor (lo implementa entity.Snapshot).
type Catalog interface {
	Ingredient(id string) (entity.Ingredient, bool)
	Recipe(id string) (entity.Recipe, bool)
}

// Warning aviso de integridad: una referencia de la receta no existe y aporta coste cero.
type Warning struct {
	RecipeID  string
	Component entity.ComponentRef
	Message   string
}

// LineCost desglose del coste de una línea de la receta resuelta.
type LineCost struct {
	Component entity.ComponentRef
	Name      string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal // precio unidad base o coste por porción de la sub-receta
	Total     decimal.Decimal
	Missing   bool
}

// Resolution resultado de resolver el coste de una receta.
type Resolution struct {
	RecipeID       string
	BatchCost      decimal.Decimal
	CostPerPortion decimal.Decimal // BatchCost / porciones, 2 decimales
	Lines          []LineCost
	Warnings       []Warning
}

// VariantCost coste de una variante: coste por porción de la receta padre * factor.
type VariantCost struct {
	Variant    entity.RecipeVariant
	ParentCost decimal.Decimal
	Cost       decimal.Decimal
	Warnings   []Warning
}

// Resolver resuelve recursivamente el coste por porción de recetas y sub-recetas.
// Es total salvo ante ciclos: las referencias ausentes aportan cero y generan Warning.
type Resolver struct {
	catalog Catalog
}

// NewResolver construye el resolvedor sobre un catálogo (normalmente el snapshot del ledger).
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve resuelve una receta del catálogo por ID.
func (r *Resolver) Resolve(recipeID string) (Resolution, error) {
	recipe, ok := r.catalog.Recipe(recipeID)
	if !ok {
		return Resolution{}, fmt.Errorf("receta %s: %w", recipeID, domain.ErrNotFound)
	}
	return r.ResolveRecipe(recipe)
}

// ResolveRecipe resuelve una receta concreta, que puede no estar aún en el catálogo
// (validación de una receta candidata antes de persistirla).
func (r *Resolver) ResolveRecipe(recipe entity.Recipe) (Resolution, error) {
	st := &resolution{
		catalog:    r.catalog,
		inProgress: make(map[string]bool),
		memo:       make(map[string]decimal.Decimal),
	}
	res, err := st.resolve(recipe, true)
	if err != nil {
		return Resolution{}, err
	}
	res.Warnings = st.warnings
	return res, nil
}

// ResolveVariant resuelve el coste de una variante a partir de su receta padre.
func (r *Resolver) ResolveVariant(variant entity.RecipeVariant) (VariantCost, error) {
	parent, err := r.Resolve(variant.RecipeID)
	if err != nil {
		return VariantCost{}, err
	}
	return VariantCost{
		Variant:    variant,
		ParentCost: parent.CostPerPortion,
		Cost:       parent.CostPerPortion.Mul(variant.CostFactor).Round(2),
		Warnings:   parent.Warnings,
	}, nil
}

// resolution estado de una resolución: ruta en curso (detección de ciclos) y memo de sub-recetas.
type resolution struct {
	catalog    Catalog
	inProgress map[string]bool
	path       []string
	memo       map[string]decimal.Decimal
	warnings   []Warning
}

func (s *resolution) resolve(recipe entity.Recipe, withLines bool) (Resolution, error) {
	if s.inProgress[recipe.ID] {
		cycle := append(append([]string{}, s.path...), recipe.ID)
		return Resolution{}, fmt.Errorf("%w: %s", domain.ErrRecipeCycle, strings.Join(cycle, " -> "))
	}
	s.inProgress[recipe.ID] = true
	s.path = append(s.path, recipe.ID)
	defer func() {
		delete(s.inProgress, recipe.ID)
		s.path = s.path[:len(s.path)-1]
	}()

	res := Resolution{RecipeID: recipe.ID, BatchCost: decimal.Zero}
	for _, line := range recipe.Lines {
		lc := LineCost{Component: line.Component, Quantity: line.Quantity}
		if line.Component.IsSubRecipe() {
			sub, ok := s.catalog.Recipe(line.Component.ID)
			if !ok {
				lc.Missing = true
				s.warn(recipe.ID, line.Component, "sub-receta inexistente")
			} else {
				cost, err := s.subRecipeCost(sub)
				if err != nil {
					return Resolution{}, err
				}
				lc.Name = sub.Name
				lc.UnitCost = cost
			}
		} else {
			ing, ok := s.catalog.Ingredient(line.Component.ID)
			if !ok {
				lc.Missing = true
				s.warn(recipe.ID, line.Component, "ingrediente inexistente")
			} else {
				lc.Name = ing.Name
				lc.UnitCost = ing.UnitPrice()
			}
		}
		lc.Total = lc.UnitCost.Mul(line.Quantity)
		res.BatchCost = res.BatchCost.Add(lc.Total)
		if withLines {
			res.Lines = append(res.Lines, lc)
		}
	}
	res.CostPerPortion = res.BatchCost.Div(decimal.NewFromInt(int64(recipe.PortionCount()))).Round(2)
	return res, nil
}

func (s *resolution) subRecipeCost(sub entity.Recipe) (decimal.Decimal, error) {
	if cost, ok := s.memo[sub.ID]; ok && !s.inProgress[sub.ID] {
		return cost, nil
	}
	res, err := s.resolve(sub, false)
	if err != nil {
		return decimal.Zero, err
	}
	s.memo[sub.ID] = res.CostPerPortion
	return res.CostPerPortion, nil
}

func (s *resolution) warn(recipeID string, ref entity.ComponentRef, msg string) {
	s.warnings = append(s.warnings, Warning{RecipeID: recipeID, Component: ref, Message: msg})
}
