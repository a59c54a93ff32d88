package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
)

var _ repository.EventPublisher = (*EventLog)(nil)

// EventLog publicador que guarda los eventos en memoria. Sustituye a Kafka sin brokers configurados.
type EventLog struct {
	mu     sync.Mutex
	events []repository.Event
	fail   error
}

// NewEventLog crea un registro vacío.
func NewEventLog() *EventLog { return &EventLog{} }

// FailWith hace que las próximas publicaciones devuelvan err (nil restablece).
func (l *EventLog) FailWith(err error) {
	l.mu.Lock()
	l.fail = err
	l.mu.Unlock()
}

func (l *EventLog) Publish(_ context.Context, events ...repository.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return l.fail
	}
	l.events = append(l.events, events...)
	return nil
}

// Events copia de lo publicado.
func (l *EventLog) Events() []repository.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]repository.Event(nil), l.events...)
}
