package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// EventHandler processes one engagement event. Handlers must be idempotent:
// the bus guarantees at-least-once delivery, not exactly-once.
type EventHandler func(ctx context.Context, event *EngagementEvent) error

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := ch.Qos(32, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set channel qos: %w", err)
	}

	return &Consumer{conn: conn, channel: ch}, nil
}

// Consume reads the queue until ctx is done, dispatching each event to the
// handler. A failed delivery is requeued once; a redelivered failure is
// dropped so one poison message cannot wedge the queue.
func (c *Consumer) Consume(ctx context.Context, queue string, handler EventHandler) error {
	deliveries, err := c.channel.Consume(
		queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for queue %s", queue)
			}

			var event EngagementEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				logrus.Errorf("mq: dropping malformed event on %s: %v", queue, err)
				d.Nack(false, false)
				continue
			}

			if err := handler(ctx, &event); err != nil {
				logrus.Errorf("mq: handler failed on %s for event %s: %v", queue, event.EventID, err)
				d.Nack(false, !d.Redelivered)
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
