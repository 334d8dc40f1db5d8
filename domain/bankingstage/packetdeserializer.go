package bankingstage

import (
	"time"

	"github.com/meraknet/merakd/domain/bankingstage/model"
)

// ReceivePacketResults is everything one ReceivePackets call produced: the
// accepted packets in batch-then-index order, plus the per-cause stats.
type ReceivePacketResults struct {
	// DeserializedPackets are the packets that passed deserialization,
	// sanitization and the admission filter.
	DeserializedPackets []*DeserializedPacket

	// PacketStats counts packets received and every error recorded during
	// deserialization and filtering.
	PacketStats PacketReceiverStats
}

// PacketDeserializer receives packet batches from the signature verification
// stage and turns them into deserialized packets for scheduling. It is the
// single consumer of its receiver; one call runs entirely on the calling
// goroutine.
type PacketDeserializer struct {
	packetBatchReceiver model.PacketBatchReceiver
}

// NewPacketDeserializer returns a PacketDeserializer consuming the given
// receiver.
func NewPacketDeserializer(packetBatchReceiver model.PacketBatchReceiver) *PacketDeserializer {
	return &PacketDeserializer{
		packetBatchReceiver: packetBatchReceiver,
	}
}

// ReceivePackets performs one bounded receive: it blocks up to recvTimeout
// for the first delivery, coalesces whatever else is immediately available up
// to the capacity ceiling, and runs everything through deserialization and
// the admission filter. A failed first receive (timeout or closed route)
// fails the whole call with no partial results; the caller owns any retry
// policy.
func (pd *PacketDeserializer) ReceivePackets(recvTimeout time.Duration, capacity int,
	packetFilter PacketFilter) (*ReceivePacketResults, error) {

	packetCount, deliveries, err := pd.receiveUntil(recvTimeout, capacity)
	if err != nil {
		return nil, err
	}

	results := deserializeAndCollectPackets(packetCount, deliveries, packetFilter)
	if dropped := results.PacketStats.TotalDropped(); dropped > 0 {
		log.Debugf("Dropped %d of %d packets post-sigverify", dropped,
			results.PacketStats.PassedSigverifyCount)
	}
	reportReceiveMetrics(results)
	return results, nil
}

// receiveUntil performs exactly one blocking receive and then drains the
// route without blocking, until the deadline measured from call start
// elapses, the accumulated packet count reaches the ceiling, or nothing more
// is immediately available. The ceiling is only checked between deliveries,
// so a single oversized delivery may push the total past it.
func (pd *PacketDeserializer) receiveUntil(recvTimeout time.Duration,
	packetCountUpperBound int) (int, []model.Delivery, error) {

	start := time.Now()

	delivery, err := pd.packetBatchReceiver.DequeueWithTimeout(recvTimeout)
	if err != nil {
		return 0, nil, err
	}
	numPacketsReceived := delivery.PacketCount()
	deliveries := []model.Delivery{delivery}

	for time.Since(start) < recvTimeout && numPacketsReceived < packetCountUpperBound {
		delivery, ok, err := pd.packetBatchReceiver.MaybeDequeue()
		if err != nil || !ok {
			break
		}
		log.Tracef("got another delivery of %d packet batches in packet deserializer", len(delivery))
		numPacketsReceived += delivery.PacketCount()
		deliveries = append(deliveries, delivery)
	}

	return numPacketsReceived, deliveries, nil
}

// deserializeAndCollectPackets flattens the deliveries through the index
// filter, the deserializer and the admission filter, tallying every drop.
func deserializeAndCollectPackets(packetCount int, deliveries []model.Delivery,
	packetFilter PacketFilter) *ReceivePacketResults {

	results := &ReceivePacketResults{
		DeserializedPackets: make([]*DeserializedPacket, 0, packetCount),
	}

	for _, delivery := range deliveries {
		for _, packetBatch := range delivery {
			packetIndexes := generatePacketIndexes(packetBatch)

			results.PacketStats.incrementSigverifyCounts(
				uint64(len(packetIndexes)),
				uint64(len(packetBatch)-len(packetIndexes)))

			deserializePackets(packetBatch, packetIndexes, &results.PacketStats, packetFilter,
				func(packet *DeserializedPacket) {
					results.DeserializedPackets = append(results.DeserializedPackets, packet)
				})
		}
	}

	return results
}

// generatePacketIndexes returns the in-order positions of the packets that
// were not discard-flagged by the signature verification stage.
func generatePacketIndexes(packetBatch model.PacketBatch) []int {
	packetIndexes := make([]int, 0, len(packetBatch))
	for index, packet := range packetBatch {
		if !packet.Meta.Discard {
			packetIndexes = append(packetIndexes, index)
		}
	}
	return packetIndexes
}

// deserializePackets clones and deserializes each surviving packet, applies
// the admission filter, and hands accepted packets to onAccepted. Drops are
// absorbed into packetStats; processing always continues with the next
// packet.
func deserializePackets(packetBatch model.PacketBatch, packetIndexes []int,
	packetStats *PacketReceiverStats, packetFilter PacketFilter,
	onAccepted func(*DeserializedPacket)) {

	for _, packetIndex := range packetIndexes {
		packet, err := NewDeserializedPacket(packetBatch[packetIndex])
		if err == nil {
			packet, err = packetFilter(packet)
		}
		if err != nil {
			packetStats.incrementErrorCount(err)
			continue
		}
		onAccepted(packet)
	}
}
