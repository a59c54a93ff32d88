package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Escandallo-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation 23503: referencia a una fila inexistente.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// mapError traduce errores de pgx a la taxonomía del dominio.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%v: %w", err, domain.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%v: %w", err, domain.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%v: %w", err, domain.ErrRejected)
	case errors.Is(err, context.DeadlineExceeded), pgconn.SafeToRetry(err), errors.As(err, &netErr):
		return fmt.Errorf("%v: %w", err, domain.ErrTransient)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// clase 08: excepciones de conexión; 57P0x: servidor apagándose
		if len(pgErr.Code) == 5 && (pgErr.Code[:2] == "08" || pgErr.Code[:4] == "57P0") {
			return fmt.Errorf("%v: %w", err, domain.ErrTransient)
		}
		return fmt.Errorf("%v: %w", err, domain.ErrRejected)
	}
	return err
}
