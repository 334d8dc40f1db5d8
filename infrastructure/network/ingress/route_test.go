package ingress

import (
	"sync"
	"testing"
	"time"

	"github.com/meraknet/merakd/domain/bankingstage/model"
	"github.com/meraknet/merakd/util/threads"
	"github.com/pkg/errors"
)

func testDelivery(packetCount int) model.Delivery {
	packetBatch := make(model.PacketBatch, 0, packetCount)
	for i := 0; i < packetCount; i++ {
		packetBatch = append(packetBatch, model.NewPacket([]byte{byte(i)}))
	}
	return model.Delivery{packetBatch}
}

func TestRouteEnqueueDequeue(t *testing.T) {
	route := NewRoute("test")
	defer route.Close()

	enqueued := testDelivery(3)
	if err := route.Enqueue(enqueued); err != nil {
		t.Fatalf("Enqueue: unexpected error: %+v", err)
	}

	dequeued, err := route.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: unexpected error: %+v", err)
	}
	if dequeued.PacketCount() != enqueued.PacketCount() {
		t.Fatalf("dequeued %d packets, enqueued %d", dequeued.PacketCount(), enqueued.PacketCount())
	}
}

func TestRouteDequeueWithTimeout(t *testing.T) {
	route := NewRoute("test")
	defer route.Close()

	_, err := route.DequeueWithTimeout(time.Millisecond)
	if !errors.Is(err, model.ErrReceiveTimeout) {
		t.Fatalf("expected ErrReceiveTimeout, got %+v", err)
	}

	if err := route.Enqueue(testDelivery(1)); err != nil {
		t.Fatalf("Enqueue: unexpected error: %+v", err)
	}
	if _, err := route.DequeueWithTimeout(time.Second); err != nil {
		t.Fatalf("DequeueWithTimeout: unexpected error: %+v", err)
	}
}

func TestRouteMaybeDequeue(t *testing.T) {
	route := NewRoute("test")
	defer route.Close()

	_, ok, err := route.MaybeDequeue()
	if err != nil {
		t.Fatalf("MaybeDequeue: unexpected error: %+v", err)
	}
	if ok {
		t.Fatal("expected MaybeDequeue on an empty route to return ok=false")
	}

	if err := route.Enqueue(testDelivery(1)); err != nil {
		t.Fatalf("Enqueue: unexpected error: %+v", err)
	}
	_, ok, err = route.MaybeDequeue()
	if err != nil {
		t.Fatalf("MaybeDequeue: unexpected error: %+v", err)
	}
	if !ok {
		t.Fatal("expected MaybeDequeue on a non-empty route to return ok=true")
	}
}

func TestRouteCapacity(t *testing.T) {
	const capacity = 2
	route := NewRouteWithCapacity("test", capacity)
	defer route.Close()

	for i := 0; i < capacity; i++ {
		if err := route.Enqueue(testDelivery(1)); err != nil {
			t.Fatalf("Enqueue %d: unexpected error: %+v", i, err)
		}
	}
	err := route.Enqueue(testDelivery(1))
	if !errors.Is(err, ErrRouteCapacityReached) {
		t.Fatalf("expected ErrRouteCapacityReached, got %+v", err)
	}

	// Dequeueing frees a slot.
	if _, err := route.Dequeue(); err != nil {
		t.Fatalf("Dequeue: unexpected error: %+v", err)
	}
	if err := route.Enqueue(testDelivery(1)); err != nil {
		t.Fatalf("Enqueue after Dequeue: unexpected error: %+v", err)
	}
}

func TestRouteClose(t *testing.T) {
	route := NewRoute("test")
	if err := route.Enqueue(testDelivery(1)); err != nil {
		t.Fatalf("Enqueue: unexpected error: %+v", err)
	}
	route.Close()
	route.Close() // Close is idempotent

	if err := route.Enqueue(testDelivery(1)); !errors.Is(err, model.ErrRouteClosed) {
		t.Fatalf("expected ErrRouteClosed on Enqueue, got %+v", err)
	}

	// A buffered delivery survives the close.
	if _, err := route.Dequeue(); err != nil {
		t.Fatalf("Dequeue of buffered delivery: unexpected error: %+v", err)
	}
	if _, err := route.Dequeue(); !errors.Is(err, model.ErrRouteClosed) {
		t.Fatalf("expected ErrRouteClosed on Dequeue, got %+v", err)
	}
	if _, err := route.DequeueWithTimeout(time.Second); !errors.Is(err, model.ErrRouteClosed) {
		t.Fatalf("expected ErrRouteClosed on DequeueWithTimeout, got %+v", err)
	}
	if _, _, err := route.MaybeDequeue(); !errors.Is(err, model.ErrRouteClosed) {
		t.Fatalf("expected ErrRouteClosed on MaybeDequeue, got %+v", err)
	}
}

func TestRouteConcurrentProducers(t *testing.T) {
	const deliveriesPerProducer = 100
	producers := threads.ProcessingThreadCount()
	route := NewRouteWithCapacity("test", producers*deliveriesPerProducer)

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < deliveriesPerProducer; j++ {
				if err := route.Enqueue(testDelivery(1)); err != nil {
					t.Errorf("Enqueue: unexpected error: %+v", err)
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		route.Close()
	}()

	dequeued := 0
	for {
		_, err := route.Dequeue()
		if errors.Is(err, model.ErrRouteClosed) {
			break
		}
		if err != nil {
			t.Fatalf("Dequeue: unexpected error: %+v", err)
		}
		dequeued++
	}
	if dequeued != producers*deliveriesPerProducer {
		t.Fatalf("dequeued %d deliveries, expected %d", dequeued, producers*deliveriesPerProducer)
	}
}
