package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"finlet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func body(t *testing.T, msg models.Message) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestSettle_Ack(t *testing.T) {
	ack := &fakeAck{}
	var got models.Message

	err := settle(context.Background(), ack, body(t, models.Message{Email: "a@x.com", Link: "l"}), func(_ context.Context, msg models.Message) error {
		got = msg
		return nil
	})
	require.NoError(t, err)

	assert.True(t, ack.acked)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestSettle_RequeueOnFailure(t *testing.T) {
	ack := &fakeAck{}

	err := settle(context.Background(), ack, body(t, models.Message{}), func(context.Context, models.Message) error {
		return errors.New("smtp down")
	})
	require.Error(t, err)

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
}

func TestSettle_DropPermanentFailure(t *testing.T) {
	ack := &fakeAck{}

	err := settle(context.Background(), ack, body(t, models.Message{}), func(context.Context, models.Message) error {
		return fmt.Errorf("bad address: %w", ErrDrop)
	})
	require.Error(t, err)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestSettle_Malformed(t *testing.T) {
	ack := &fakeAck{}
	called := false

	err := settle(context.Background(), ack, []byte("{"), func(context.Context, models.Message) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrDrop)
	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}
