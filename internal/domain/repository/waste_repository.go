package repository

import (
	"context"

	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// WasteRepository histórico de mermas: recibe los registros de un lote en una sola llamada.
type WasteRepository interface {
	SubmitBatch(ctx context.Context, records []entity.WasteRecord) error
}
