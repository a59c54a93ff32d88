package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
)

var _ repository.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher publica eventos de auditoría en un tópico Kafka.
// La clave del mensaje es Event.Key, así los eventos de un mismo lote o pedido caen en la misma partición.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher crea el writer síncrono hacia brokers/topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

// Publish envía todos los eventos en una única escritura.
func (p *KafkaPublisher) Publish(ctx context.Context, evs ...repository.Event) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evs))
	for _, ev := range evs {
		msg, err := Message(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Message serializa un evento: valor JSON con tipo, fecha y payload; cabecera "type".
func Message(ev repository.Event) (kafka.Message, error) {
	body, err := json.Marshal(envelope{Type: ev.Type, OccurredAt: ev.OccurredAt, Payload: ev.Payload})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serializar evento %s: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:     []byte(ev.Key),
		Value:   body,
		Time:    ev.OccurredAt,
		Headers: []kafka.Header{{Key: "type", Value: []byte(ev.Type)}},
	}, nil
}

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}
