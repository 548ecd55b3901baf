package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_PublishEvent(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.PublishEvent(context.Background(), "account_events", "42", map[string]any{
		"type":   "account_registered",
		"UserID": 42,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "account_events", msg.Topic)
	assert.Equal(t, []byte("42"), msg.Key)
	assert.False(t, msg.Time.IsZero())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "account_registered", payload["type"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishEvent_Errors(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := &Producer{writer: w}

	err := p.PublishEvent(context.Background(), "account_events", "1", map[string]any{"type": "x"})
	assert.ErrorContains(t, err, "leader not available")

	err = p.PublishEvent(context.Background(), "", "1", map[string]any{"type": "x"})
	assert.Error(t, err)

	err = p.PublishEvent(context.Background(), "account_events", "1", make(chan int))
	assert.ErrorContains(t, err, "json.Marshal")
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
