package repository

import (
	"context"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia de pedidos a proveedor.
// Update guarda las líneas conciliadas y la transición de estado.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
}
