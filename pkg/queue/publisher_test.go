package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declareErr error
	publishErr error
	declared   string
	kind       string
	published  []amqp091.Publishing
	keys       []string
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	c.declared = name
	c.kind = kind
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "echo.ledger", discard())
	require.NoError(t, err)
	assert.Equal(t, "echo.ledger", ch.declared)
	assert.Equal(t, "topic", ch.kind)

	payload := map[string]string{"id": "abc", "type": "transaction"}
	require.NoError(t, p.Publish(context.Background(), "draft.committed", payload))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "draft.committed", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newPublisher(ch, "echo.ledger", discard())
	require.NoError(t, err)

	err = p.Publish(context.Background(), "draft.committed", struct{}{})
	assert.ErrorContains(t, err, "publish message")
}

func TestPublisher_MarshalError(t *testing.T) {
	p, err := newPublisher(&fakeChannel{}, "echo.ledger", discard())
	require.NoError(t, err)

	err = p.Publish(context.Background(), "draft.committed", make(chan int))
	assert.ErrorContains(t, err, "marshal message")
}

func TestNewPublisher_DeclareError(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newPublisher(ch, "echo.ledger", discard())
	assert.ErrorContains(t, err, "declare exchange")
	assert.True(t, ch.closed)
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "echo.ledger", discard())
	require.NoError(t, err)

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
