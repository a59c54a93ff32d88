package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
)

var (
	_ repository.OrderRepository = (*OrderRepo)(nil)
	_ repository.WasteRepository = (*WasteRepo)(nil)
)

// OrderRepo pedidos a proveedor con sus líneas.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, `
		SELECT id, supplier_id, status, created_at, received_at
		FROM supplier_orders WHERE id = $1`, id).
		Scan(&o.ID, &o.SupplierID, &o.Status, &o.CreatedAt, &o.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("pedido %s: %w", id, mapError(err))
	}
	rows, err := r.q.Query(ctx, `
		SELECT ingredient_id, quantity_ordered, unit_price_ordered,
		       quantity_received, unit_price_received, line_status
		FROM supplier_order_lines WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("líneas de pedido %s: %w", id, mapError(err))
	}
	o.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.OrderLine, error) {
		var (
			l      entity.OrderLine
			status string
		)
		err := row.Scan(&l.IngredientID, &l.QuantityOrdered, &l.UnitPriceOrdered,
			&l.QuantityReceived, &l.UnitPriceReceived, &status)
		l.LineStatus = entity.LineStatus(status)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan líneas de pedido %s: %w", id, mapError(err))
	}
	return &o, nil
}

// Update persiste estado y líneas conciliadas. La transición a recibido solo se
// aplica si el pedido sigue pendiente, para no recepcionar dos veces.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE supplier_orders SET supplier_id = $2, status = $3, received_at = $4
			WHERE id = $1 AND status <> $5`,
			o.ID, o.SupplierID, o.Status, o.ReceivedAt, entity.OrderStatusReceived)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var status string
			if err := tx.QueryRow(ctx, `SELECT status FROM supplier_orders WHERE id = $1`, o.ID).Scan(&status); err != nil {
				return err
			}
			return fmt.Errorf("pedido %s: %w", o.ID, domain.ErrOrderAlreadyReceived)
		}
		for pos, l := range o.Lines {
			if _, err := tx.Exec(ctx, `
				UPDATE supplier_order_lines SET quantity_received = $3, unit_price_received = $4, line_status = $5
				WHERE order_id = $1 AND position = $2`,
				o.ID, pos, l.QuantityReceived, l.UnitPriceReceived, string(l.LineStatus)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update pedido %s: %w", o.ID, mapError(err))
	}
	return nil
}

// WasteRepo registro de mermas.
type WasteRepo struct {
	q Querier
}

// NewWasteRepository construye el adaptador.
func NewWasteRepository(q Querier) *WasteRepo {
	return &WasteRepo{q: q}
}

// SubmitBatch inserta todas las mermas en una transacción.
func (r *WasteRepo) SubmitBatch(ctx context.Context, records []entity.WasteRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{uuid.New(), rec.IngredientID, rec.Quantity, string(rec.Reason),
			rec.LossValue, rec.Note, rec.RecordedBy, rec.RecordedAt})
	}
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"waste_records"},
			[]string{"id", "ingredient_id", "quantity", "reason", "loss_value", "note", "recorded_by", "recorded_at"},
			pgx.CopyFromRows(rows))
		return err
	})
	if err != nil {
		return fmt.Errorf("registrar mermas: %w", mapError(err))
	}
	return nil
}
