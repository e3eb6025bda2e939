package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finlet/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrChannelClosed = errors.New("delivery channel closed")

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func New(urlForConn string, queueName string) (*RabbitMQClient, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

// SendMessage publishes msg as a persistent JSON message on the queue.
func (r *RabbitMQClient) SendMessage(ctx context.Context, msg models.Message) error {
	const op = "rabbitmq.SendMessage"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Handler processes one queued message. A returned error requeues it unless
// it wraps ErrDrop.
type Handler func(ctx context.Context, msg models.Message) error

// ErrDrop marks a message that can never be processed.
var ErrDrop = errors.New("drop message")

// StartReading consumes the queue until ctx is cancelled.
func (r *RabbitMQClient) StartReading(ctx context.Context, handle Handler) error {
	const op = "rabbitmq.StartReading"

	if err := r.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	deliveries, err := r.channel.ConsumeWithContext(ctx, r.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%s: %w", op, ErrChannelClosed)
			}

			_ = Dispatch(ctx, d, handle)
		}
	}
}

// Acknowledger is the part of amqp.Delivery that Dispatch needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Dispatch decodes one delivery, runs handle and settles the delivery.
func Dispatch(ctx context.Context, d amqp.Delivery, handle Handler) error {
	return settle(ctx, d, d.Body, handle)
}

func settle(ctx context.Context, ack Acknowledger, body []byte, handle Handler) error {
	var msg models.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		_ = ack.Nack(false, false)
		return fmt.Errorf("rabbitmq.settle: %w: %w", ErrDrop, err)
	}

	if err := handle(ctx, msg); err != nil {
		_ = ack.Nack(false, !errors.Is(err, ErrDrop))
		return err
	}

	return ack.Ack(false)
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}
