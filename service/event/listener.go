package event

import (
	"context"
	"errors"
	"log"
	"time"
)

// idlePollInterval spaces out consume attempts when the underlying queue
// reports empty rather than blocking (the fs vendor).
const idlePollInterval = 50 * time.Millisecond

// Listener runs a consume loop delivering events to a handler goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener creates a listener; call Start to begin delivery.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop terminates the consume loop.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start launches the consume loop.
func (l *Listener[T]) Start() {
	go func() {
		for {
			select {
			case <-l.ctx.Done():
				return
			default:
			}
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("event: failed to consume: %v", err)
				continue
			}
			if event == nil {
				select {
				case <-l.ctx.Done():
					return
				case <-time.After(idlePollInterval):
				}
				continue
			}
			l.handler(event)
		}
	}()
}
