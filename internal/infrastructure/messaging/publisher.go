// Package messaging publica en Kafka los eventos del outbox.
package messaging

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

// MessageWriter lo cumple *kafkago.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NewWriter crea el writer de Kafka. El topic viaja en cada mensaje; la clave es el ID del
// agregado, así los eventos de un mismo documento caen en la misma partición.
func NewWriter(brokers []string) (*kafkago.Writer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: brokers requeridos")
	}
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}, nil
}

func publishEvent(ctx context.Context, writer MessageWriter, event *entity.OutboxEvent) error {
	msg := kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
	}
	return writer.WriteMessages(ctx, msg)
}
