package repository

import (
	"context"
	"time"
)

// Tipos de evento de auditoría.
const (
	EventMovementApplied = "movement.applied"
	EventOrderReceived   = "order.received"
)

// Event evento de auditoría de inventario. Payload se serializa a JSON.
type Event struct {
	Type       string
	Key        string
	OccurredAt time.Time
	Payload    any
}

// EventPublisher publica eventos de auditoría. Un fallo de publicación no invalida la mutación.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
