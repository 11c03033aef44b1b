package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"studybuddy/internal/model"
)

// ResponsePublisher enqueues raw generator responses so the persist
// worker can write them onto chat session rows off the request path.
type ResponsePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewResponsePublisher(conn *amqp.Connection, queueName string) *ResponsePublisher {
	return &ResponsePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ResponsePublisher) Publish(ctx context.Context, update model.ResponseUpdate) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal response update failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish response update failed: %w", err)
	}
	return nil
}
