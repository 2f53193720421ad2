package stream

import (
	"context"
	"encoding/json"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// DetectionEvent is the message published whenever a new field detection
// is recorded, so downstream consumers (alerting, analytics) can react
// without polling the database.
type DetectionEvent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	Diagnosis    string    `json:"diagnosis"`
	Category     string    `json:"category,omitempty"`
	Severity     string    `json:"severity"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Municipality string    `json:"municipio,omitempty"`
	Department   string    `json:"departamento,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Publisher produces detection events to a Kafka topic. A nil Publisher
// is valid and drops events, so deployments without brokers need no
// special casing.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates the producer, or nil when no brokers are
// configured.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w}
}

// PublishDetection emits one event. Failures are logged, not returned:
// event delivery must never fail the request that recorded the detection.
func (p *Publisher) PublishDetection(ctx context.Context, event DetectionEvent) {
	if p == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to serialize detection event %s: %v", event.ID, err)
		return
	}
	msg := kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(event.Severity)},
			{Key: "created_at", Value: []byte(event.CreatedAt.Format(time.RFC3339))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("failed to publish detection event %s: %v", event.ID, err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
