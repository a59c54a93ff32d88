package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Escandallo-api/internal/domain/repository"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/events"
)

func TestMessage_ClaveCabeceraYCuerpo(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msg, err := events.Message(repository.Event{
		Type:       repository.EventOrderReceived,
		Key:        "P-1",
		OccurredAt: at,
		Payload:    map[string]string{"order_id": "P-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "P-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, repository.EventOrderReceived, string(msg.Headers[0].Value))

	var body struct {
		Type       string            `json:"type"`
		OccurredAt time.Time         `json:"occurred_at"`
		Payload    map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, repository.EventOrderReceived, body.Type)
	assert.True(t, at.Equal(body.OccurredAt))
	assert.Equal(t, "P-1", body.Payload["order_id"])
}

func TestMessage_PayloadNoSerializable(t *testing.T) {
	_, err := events.Message(repository.Event{Type: "x", Payload: make(chan int)})
	assert.Error(t, err)
}

func TestPublish_SinEventosNoEscribe(t *testing.T) {
	p := events.NewKafkaPublisher([]string{"127.0.0.1:1"}, "t")
	defer p.Close()
	assert.NoError(t, p.Publish(context.Background()))
}
