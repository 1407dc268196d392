package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReader hands out queued messages and then blocks until ctx is done.
type fakeReader struct {
	queue     []kafkago.Message
	fetched   []int64
	committed []int64
	onCommit  func()
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	r.fetched = append(r.fetched, msg.Offset)
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	if r.onCommit != nil {
		r.onCommit()
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestConsumer(r *fakeReader) *Consumer {
	c := newConsumer(r, zap.NewNop())
	c.backoff = time.Millisecond
	c.maxBackoff = 4 * time.Millisecond
	return c
}

func TestConsumer_RetriesFailedMessageBeforeMovingOn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{queue: []kafkago.Message{
		{Topic: "event.lifecycle", Offset: 5},
		{Topic: "event.lifecycle", Offset: 6},
	}}
	reader.onCommit = func() {
		if len(reader.committed) == 2 {
			cancel()
		}
	}

	var handled []int64
	failures := 2
	handler := func(_ context.Context, msg kafkago.Message) error {
		handled = append(handled, msg.Offset)
		if msg.Offset == 5 && failures > 0 {
			failures--
			return errors.New("venue store unavailable")
		}
		return nil
	}

	err := newTestConsumer(reader).Consume(ctx, handler)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{5, 5, 5, 6}, handled)
	assert.Equal(t, []int64{5, 6}, reader.fetched)
	assert.Equal(t, []int64{5, 6}, reader.committed)
}

func TestConsumer_CancelWhileRetryingLeavesMessageUncommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{queue: []kafkago.Message{
		{Topic: "event.lifecycle", Offset: 9},
		{Topic: "event.lifecycle", Offset: 10},
	}}

	attempts := 0
	handler := func(_ context.Context, _ kafkago.Message) error {
		attempts++
		if attempts == 3 {
			cancel()
		}
		return errors.New("still failing")
	}

	err := newTestConsumer(reader).Consume(ctx, handler)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int64{9}, reader.fetched)
	assert.Empty(t, reader.committed)
}
