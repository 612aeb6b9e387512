// Package kafka streams booking lifecycle events. Publishing is optional and
// fire-and-forget: a down broker degrades to warnings, never to failed
// bookings.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"event-ticketing/internal/models"
)

type Topics struct {
	BookingCreated   string
	BookingCancelled string
	UserRegistered   string
}

type Producer struct {
	writer *kafka.Writer
	topics Topics
}

func NewProducer(brokers []string, topics Topics) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topics: topics}
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) PublishBookingCreated(ctx context.Context, b models.Booking) error {
	return p.publish(ctx, p.topics.BookingCreated, fmt.Sprintf("%d", b.BookingID), b)
}

func (p *Producer) PublishBookingCancelled(ctx context.Context, b models.Booking) error {
	return p.publish(ctx, p.topics.BookingCancelled, fmt.Sprintf("%d", b.BookingID), b)
}

func (p *Producer) PublishUserRegistered(ctx context.Context, a models.AccountInfo) error {
	return p.publish(ctx, p.topics.UserRegistered, fmt.Sprintf("%d", a.ID), a)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
