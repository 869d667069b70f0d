package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InsurancePublisher publishes insurance lifecycle events to RabbitMQ.
// Publishing is best-effort: a nil publisher or a broker failure never
// blocks the transaction that already committed. Counters are atomic;
// Publish is called from concurrent request goroutines.
type InsurancePublisher struct {
	conn              *RabbitMQConnection
	messagesPublished atomic.Int64
	messagesFailed    atomic.Int64
	lastPublishNanos  atomic.Int64
}

func NewInsurancePublisher(conn *RabbitMQConnection) *InsurancePublisher {
	p := &InsurancePublisher{conn: conn}
	p.lastPublishNanos.Store(time.Now().UnixNano())
	return p
}

// Publish sends an event envelope to the insurance events queue. It
// satisfies services.EventPublisher.
func (p *InsurancePublisher) Publish(ctx context.Context, eventType string, payload any) {
	if err := p.publish(ctx, eventType, payload); err != nil {
		p.recordFailure()
		slog.Error("Failed to publish insurance event",
			"queue", InsuranceEventQueue,
			"event_type", eventType,
			"error", err)
		return
	}

	p.recordSuccess()

	slog.Info("Insurance event published",
		"queue", InsuranceEventQueue,
		"event_type", eventType)
}

func (p *InsurancePublisher) recordSuccess() {
	p.messagesPublished.Add(1)
	p.lastPublishNanos.Store(time.Now().UnixNano())
}

func (p *InsurancePublisher) recordFailure() {
	p.messagesFailed.Add(1)
}

// Stats reports how many events were published and dropped, and when the
// last successful publish happened.
func (p *InsurancePublisher) Stats() (published, failed int64, lastPublish time.Time) {
	return p.messagesPublished.Load(),
		p.messagesFailed.Load(),
		time.Unix(0, p.lastPublishNanos.Load())
}

func (p *InsurancePublisher) publish(ctx context.Context, eventType string, payload any) error {
	// Ensure the queue exists
	_, err := p.conn.Channel.QueueDeclare(
		InsuranceEventQueue, // queue name
		true,                // durable
		false,               // delete when unused
		false,               // exclusive
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(InsuranceEvent{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal insurance event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                  // exchange
		InsuranceEventQueue, // routing key (queue name)
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish insurance event: %w", err)
	}
	return nil
}
