package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los adaptadores los envuelven con fmt.Errorf("...: %w", err); los llamadores usan errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnauthorized = errors.New("no autorizado")

	// ErrTransient fallo de red o timeout en el almacén remoto. Solo las lecturas se reintentan.
	ErrTransient = errors.New("error transitorio del almacén remoto")
	// ErrRejected el almacén remoto rechazó la mutación de forma definitiva. Nunca se reintenta.
	ErrRejected = errors.New("mutación rechazada por el almacén remoto")

	ErrRecipeCycle          = errors.New("dependencia circular entre recetas")
	ErrOrderAlreadyReceived = errors.New("el pedido ya fue recibido")
)

// IsRetryable indica si el error admite reintento (solo lecturas).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
