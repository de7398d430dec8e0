package pushgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the gateway needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaGateway hands pushes to the device fan-out workers through a Kafka topic.
// Delivery confirmation arrives out of band, so status is always pending here.
type KafkaGateway struct {
	writer MessageWriter
}

// NewKafkaWriter builds the synchronous writer used by KafkaGateway
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// NewKafkaGateway creates a new KafkaGateway
func NewKafkaGateway(writer MessageWriter) *KafkaGateway {
	return &KafkaGateway{writer: writer}
}

func (g *KafkaGateway) Name() string { return "KAFKA" }

type pushEnvelope struct {
	MessageID string    `json:"messageId"`
	Message   Message   `json:"message"`
	QueuedAt  time.Time `json:"queuedAt"`
}

// Send publishes the push keyed by user id so one user's pushes stay ordered
func (g *KafkaGateway) Send(ctx context.Context, msg Message) (string, error) {
	env := pushEnvelope{
		MessageID: uuid.NewString(),
		Message:   msg,
		QueuedAt:  time.Now().UTC(),
	}
	value, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal push: %w", err)
	}
	err = g.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.UserID, 10)),
		Value: value,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish push: %w", err)
	}
	return env.MessageID, nil
}

// GetDeliveryStatus always reports pending; receipts are recorded by the fan-out workers
func (g *KafkaGateway) GetDeliveryStatus(_ context.Context, _ string) (string, error) {
	return StatusPending, ErrStatusPending
}
