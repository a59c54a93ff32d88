package usecase

import (
	"context"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// CatalogView acceso al snapshot del ledger (lo implementa ledger.ReloadGuard).
type CatalogView interface {
	// View devuelve el snapshot actual y su generación, cargándolo si hace falta.
	View(ctx context.Context) (*entity.Snapshot, uint64, error)
	// Snapshot fuerza una recarga desde el almacén remoto.
	Snapshot(ctx context.Context) (*entity.Snapshot, error)
}

// CostCache memoriza costes resueltos por versión de snapshot y receta.
// version identifica un snapshot concreto de un proceso concreto; una versión
// nueva invalida implícitamente todo lo anterior.
type CostCache interface {
	Get(ctx context.Context, version, recipeID string) (*dto.RecipeCostResponse, bool, error)
	Set(ctx context.Context, version, recipeID string, cost *dto.RecipeCostResponse) error
}

// NopCostCache caché vacía: siempre falla la búsqueda.
type NopCostCache struct{}

func (NopCostCache) Get(context.Context, string, string) (*dto.RecipeCostResponse, bool, error) {
	return nil, false, nil
}

func (NopCostCache) Set(context.Context, string, string, *dto.RecipeCostResponse) error { return nil }
