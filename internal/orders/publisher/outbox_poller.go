package publisher

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/diprojose/nimvu-store/internal/orders/repository"
)

// OutboxPoller drains the order_outbox table into kafka. Confirmation mail
// and downstream fulfillment consume the order-events topic; the outbox row
// is written in the same transaction as the order, so nothing is lost if the
// broker is down when the order lands.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	repo      repository.OrderRepository
	writer    *kafka.Writer
}

func NewOutboxPoller(repo repository.OrderRepository, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		timeout:   5 * time.Second,
		eventTick: time.Second,
		repo:      repo,
		writer:    w,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.eventTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id for per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(writeCtx, msg)
}
