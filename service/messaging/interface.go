// Package messaging defines the queue abstraction engine notifications
// travel through before reaching the listeners. Implementations provide
// at-least-once delivery; consumers ack or nack each message explicitly.
package messaging

import (
	"context"
)

// Vendor names a queue implementation.
type Vendor string

const (
	// VendorMemory is the in-process channel backed queue.
	VendorMemory Vendor = "memory"

	// VendorFS is the filesystem journaled queue.
	VendorFS Vendor = "fs"
)

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message. A nil message with a nil error
	// means the queue is currently empty.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a single consumed message awaiting acknowledgement.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack records a processing failure; the message is retried until the
	// retry limit, then parked on the dead letter queue.
	Nack(err error) error
}
