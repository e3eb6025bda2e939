// Package events publishes domain events to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finlet/internal/auth"

	"github.com/nats-io/nats.go"
)

type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func New(url string, opts ...nats.Option) (*Bus, error) {
	const op = "events.New"

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Bus{conn: nc, js: js}, nil
}

func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish encodes v as JSON and publishes it to subj.
func (b *Bus) Publish(ctx context.Context, subj string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(subj, data, nats.Context(ctx))
	return err
}

type Publisher interface {
	Publish(ctx context.Context, subj string, v any) error
}

type AccountCreated struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountCreatedHook publishes an AccountCreated event for every sign-up.
func AccountCreatedHook(pub Publisher, subject string) auth.AfterSignUpHook {
	return func(ctx context.Context, id auth.Identity) error {
		evt := AccountCreated{
			UserID:    id.User.ID,
			Email:     id.User.Email,
			CreatedAt: id.User.CreatedAt,
		}

		if err := pub.Publish(ctx, subject, evt); err != nil {
			return fmt.Errorf("events.AccountCreatedHook: %w", err)
		}

		return nil
	}
}
