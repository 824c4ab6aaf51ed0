package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type payload struct {
	Value string
}

func newTestQueue(t *testing.T) *Queue[payload] {
	config := Config{
		BasePath:   t.TempDir(),
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	}
	queue, err := NewQueue[payload](afs.New(), config)
	assert.Nil(t, err)
	return queue
}

func TestQueue_PublishConsumeAck(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t)

	assert.Nil(t, queue.Publish(ctx, &payload{Value: "first"}))

	msg, err := queue.Consume(ctx)
	assert.Nil(t, err)
	if !assert.NotNil(t, msg) {
		return
	}
	assert.Equal(t, "first", msg.T().Value)
	assert.Nil(t, msg.Ack())

	// Queue drained.
	msg, err = queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Nil(t, msg)
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t)

	assert.Nil(t, queue.Publish(ctx, &payload{Value: "flaky"}))

	// First failure lands in the failed directory and is retried.
	msg, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Nil(t, msg.Nack(assert.AnError))

	msg, err = queue.Consume(ctx)
	assert.Nil(t, err)
	if !assert.NotNil(t, msg) {
		return
	}
	assert.Equal(t, "flaky", msg.T().Value)

	// Second failure exceeds the retry limit and dead-letters the message.
	assert.Nil(t, msg.Nack(assert.AnError))
	msg, err = queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Nil(t, msg)
}
