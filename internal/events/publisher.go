package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/shinmori2020/shop-portfolio-sub000/internal/checkout"
)

const orderDraftTopic = "order-drafts"

// OrderDraft is the validated hand-off to the downstream order-creation
// flow. Only prices approved by validation are allowed in here.
type OrderDraft struct {
	ID        string                   `json:"id"`
	SessionID string                   `json:"session_id"`
	Items     []checkout.ValidatedItem `json:"items"`
	Totals    checkout.Totals          `json:"totals"`
	CreatedAt time.Time                `json:"created_at"`
}

// NewDraft builds an order draft from a validated cart.
func NewDraft(sessionID string, items []checkout.ValidatedItem, totals checkout.Totals) OrderDraft {
	return OrderDraft{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Items:     items,
		Totals:    totals,
		CreatedAt: time.Now(),
	}
}

// messageWriter matches the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  orderDraftTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) PublishDraft(ctx context.Context, draft OrderDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal order draft: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(draft.SessionID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order draft: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if closer, ok := p.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
