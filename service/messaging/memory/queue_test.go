package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Value string
}

func TestQueue_PublishConsume(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[payload](DefaultConfig())

	assert.Nil(t, queue.Publish(ctx, &payload{Value: "first"}))
	assert.Nil(t, queue.Publish(ctx, &payload{Value: "second"}))
	assert.Equal(t, 2, queue.Size())

	msg, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Equal(t, "first", msg.T().Value)
	assert.Nil(t, msg.Ack())
	assert.NotNil(t, msg.Ack(), "double ack must fail")
}

func TestQueue_ConsumeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := NewQueue[payload](DefaultConfig())
	cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	config := Config{
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 10,
	}
	queue := NewQueue[payload](config)
	assert.Nil(t, queue.Publish(ctx, &payload{Value: "flaky"}))

	// First failure requeues the message.
	msg, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Nil(t, msg.Nack(assert.AnError))

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	msg, err = queue.Consume(waitCtx)
	assert.Nil(t, err)
	assert.Equal(t, "flaky", msg.T().Value)

	// Second failure exceeds the retry limit and dead-letters it.
	assert.Nil(t, msg.Nack(assert.AnError))
	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, queue.Size())
}
