package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/segmentio/kafka-go"
)

// Producer publishes bill lifecycle events for downstream consumers
// (notifications, accounting). Delivery is fire-and-forget: a broker outage
// must never fail a webhook response back to the provider.
type Producer struct {
	l     *slog.Logger
	w     *kafka.Writer
	topic string
}

func NewProducer(l *slog.Logger, brokers []string, topic string) *Producer {
	l = l.WithGroup("kafka").With("topic", topic)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		Logger:                 &infoLogger{l: l},
		ErrorLogger:            &errorLogger{l: l},
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		l:     l,
		w:     w,
		topic: topic,
	}
}

type BillResolvedEvent struct {
	BillID     string `json:"billId"`
	Status     string `json:"status"`
	Amount     string `json:"amount,omitempty"`
	OccurredAt string `json:"occurredAt"`
}

func (p *Producer) BillResolved(ctx context.Context, billID uuid.UUID, status, amount string) {
	event := BillResolvedEvent{
		BillID:     billID.String(),
		Status:     status,
		Amount:     amount,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}

	b, err := json.Marshal(event)
	if err != nil {
		p.l.Error(fmt.Sprintf("marshal event: %s", err))
		return
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(billID.String()),
		Value: b,
		Topic: p.topic,
	})
	if err != nil {
		p.l.Error(fmt.Sprintf("write kafka message: %s", err))
		return
	}
}

func (p *Producer) Close() {
	err := p.w.Close()
	if err != nil {
		p.l.Error(fmt.Sprintf("close kafka writer: %s", err))
	}
}

// Noop replaces the Kafka producer when no brokers are configured.
type Noop struct{}

func (Noop) BillResolved(context.Context, uuid.UUID, string, string) {}
