package ingress

import (
	"sync"
	"time"

	"github.com/meraknet/merakd/domain/bankingstage/model"
	"github.com/pkg/errors"
)

const (
	// DefaultMaxDeliveries is the default capacity for a route created
	// without an explicit capacity.
	DefaultMaxDeliveries = 1000
)

// ErrRouteCapacityReached indicates that the route's capacity has been reached
var ErrRouteCapacityReached = errors.New("route capacity has been reached")

// Route is the delivery queue between the signature verification stage and
// the banking stage. Any number of producers may enqueue concurrently; the
// banking stage is the single consumer. It implements
// model.PacketBatchReceiver.
type Route struct {
	name    string
	channel chan model.Delivery
	// closed and closeLock are used to protect us from writing to a closed
	// channel. Reads use the channel's built-in mechanism to check if the
	// channel is closed.
	closed    bool
	closeLock sync.Mutex
	capacity  int
}

// NewRoute creates a new Route with the default capacity.
func NewRoute(name string) *Route {
	return NewRouteWithCapacity(name, DefaultMaxDeliveries)
}

// NewRouteWithCapacity creates a new Route with the given delivery capacity.
func NewRouteWithCapacity(name string, capacity int) *Route {
	return &Route{
		name:     name,
		channel:  make(chan model.Delivery, capacity),
		closed:   false,
		capacity: capacity,
	}
}

// Enqueue enqueues a delivery to the Route
func (r *Route) Enqueue(delivery model.Delivery) error {
	r.closeLock.Lock()
	defer r.closeLock.Unlock()

	if r.closed {
		return errors.WithStack(model.ErrRouteClosed)
	}
	if len(r.channel) == r.capacity {
		return errors.Wrapf(ErrRouteCapacityReached, "route '%s' reached capacity of %d", r.name, r.capacity)
	}
	r.channel <- delivery
	return nil
}

// Dequeue dequeues a delivery from the Route, blocking until one is available
func (r *Route) Dequeue() (model.Delivery, error) {
	delivery, isOpen := <-r.channel
	if !isOpen {
		return nil, errors.Wrapf(model.ErrRouteClosed, "route '%s' is closed", r.name)
	}
	return delivery, nil
}

// DequeueWithTimeout attempts to dequeue a delivery from the Route
// and returns an error if the given timeout expires first.
func (r *Route) DequeueWithTimeout(timeout time.Duration) (model.Delivery, error) {
	select {
	case <-time.After(timeout):
		return nil, errors.Wrapf(model.ErrReceiveTimeout, "route '%s' got timeout after %s", r.name, timeout)
	case delivery, isOpen := <-r.channel:
		if !isOpen {
			return nil, errors.Wrapf(model.ErrRouteClosed, "route '%s' is closed", r.name)
		}
		return delivery, nil
	}
}

// MaybeDequeue dequeues an immediately available delivery without blocking.
// ok is false when the route is currently empty.
func (r *Route) MaybeDequeue() (delivery model.Delivery, ok bool, err error) {
	select {
	case delivery, isOpen := <-r.channel:
		if !isOpen {
			return nil, false, errors.Wrapf(model.ErrRouteClosed, "route '%s' is closed", r.name)
		}
		return delivery, true, nil
	default:
		return nil, false, nil
	}
}

// Close closes this route
func (r *Route) Close() {
	r.closeLock.Lock()
	defer r.closeLock.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	close(r.channel)
	log.Tracef("Route '%s' closed", r.name)
}
