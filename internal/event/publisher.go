package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"gameswap-api/internal/model"

	"github.com/segmentio/kafka-go"
)

// Publisher appends event envelopes to a named topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, evt model.Event) error
	Close() error
}

// KafkaPublisher implements Publisher on top of a shared kafka-go writer.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers. The writer
// carries no fixed topic; each message names its own.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish serializes the envelope and appends it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, evt model.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(evt.EventType),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", evt.EventType, topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// EnsureTopics creates the system's topics (1 partition, replication 1)
// via the cluster controller. Already-existing topics are fine.
func EnsureTopics(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find controller: %w", err)
	}

	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	configs := make([]kafka.TopicConfig, 0, len(Topics()))
	for _, topic := range Topics() {
		configs = append(configs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	if err := controllerConn.CreateTopics(configs...); err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}

	log.Printf("[Events] Topics ready: %v", Topics())
	return nil
}

// Async wraps a publisher so Publish returns immediately. The append
// happens in the background with a bounded timeout; failures are logged,
// never surfaced, and never affect the already-committed state transition.
type Async struct {
	inner   Publisher
	timeout time.Duration
}

// NewAsync wraps inner with fire-and-forget semantics.
func NewAsync(inner Publisher) *Async {
	return &Async{inner: inner, timeout: 5 * time.Second}
}

// Publish hands the envelope to a background goroutine and returns nil.
func (a *Async) Publish(_ context.Context, topic string, evt model.Event) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.inner.Publish(ctx, topic, evt); err != nil {
			log.Printf("[Events] %v", err)
		}
	}()
	return nil
}

// Close closes the wrapped publisher.
func (a *Async) Close() error {
	return a.inner.Close()
}
