package model

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrReceiveTimeout signifies that a blocking dequeue gave up waiting.
	ErrReceiveTimeout = errors.New("timeout expired while waiting for packet batches")

	// ErrRouteClosed indicates that the ingress route was closed while
	// reading or writing.
	ErrRouteClosed = errors.New("ingress route is closed")
)

// PacketBatchReceiver is the banking stage's view of the delivery channel
// that connects it to the signature verification stage. Implementations may
// have any number of concurrent producers; the banking stage is always the
// single consumer.
type PacketBatchReceiver interface {
	// DequeueWithTimeout blocks until a delivery is available and returns
	// it, or fails with ErrReceiveTimeout once the given timeout expires,
	// or with ErrRouteClosed if the route was closed.
	DequeueWithTimeout(timeout time.Duration) (Delivery, error)

	// MaybeDequeue returns an immediately available delivery without
	// blocking. ok is false when no delivery is waiting. It fails with
	// ErrRouteClosed once the route is closed and drained.
	MaybeDequeue() (delivery Delivery, ok bool, err error)
}
