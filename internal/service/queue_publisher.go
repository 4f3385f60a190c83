package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/dorm-finder/internal/queue"
)

// Publisher sends review events to the broker.
type Publisher interface {
	PublishReviewSubmitted(ctx context.Context, ev q.ReviewSubmittedEvent) error
}

// AMQPPublisher dials the broker once per message.
type AMQPPublisher struct {
	URL    string
	Logger *log.Logger
}

// PublishReviewSubmitted publishes ev as a persistent message on the
// review.submitted queue. Errors are logged and returned; callers treat them
// as non-fatal.
func (p *AMQPPublisher) PublishReviewSubmitted(ctx context.Context, ev q.ReviewSubmittedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Logger.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Logger.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(q.ReviewSubmittedQueue, true, false, false, false, nil); err != nil {
		p.Logger.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.ReviewSubmittedQueue, false, false, pub); err != nil {
		p.Logger.Warnf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishReviewSubmitted(context.Context, q.ReviewSubmittedEvent) error { return nil }
