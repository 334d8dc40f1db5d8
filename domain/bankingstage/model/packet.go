package model

const (
	// MaxPacketPayloadSize is the maximum number of payload bytes a single
	// packet may carry. Larger payloads are truncated by the network layer
	// before they ever reach the banking stage.
	MaxPacketPayloadSize = 1232
)

// PacketMeta holds the per-packet metadata stamped by earlier pipeline
// stages. The Discard flag is authoritative: a flagged packet must not be
// processed further, whatever the underlying reason was.
type PacketMeta struct {
	Discard       bool
	SenderAddress string
}

// Packet is a raw packet as handed over from the signature verification
// stage: an opaque payload plus metadata.
type Packet struct {
	Payload []byte
	Meta    PacketMeta
}

// NewPacket returns a packet carrying its own copy of the given payload.
func NewPacket(payload []byte) *Packet {
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)
	return &Packet{Payload: payloadCopy}
}

// Clone returns a deep copy of the packet. The clone owns its payload
// independently of the batch the original belongs to.
func (p *Packet) Clone() *Packet {
	payloadCopy := make([]byte, len(p.Payload))
	copy(payloadCopy, p.Payload)
	return &Packet{
		Payload: payloadCopy,
		Meta:    p.Meta,
	}
}

// PacketBatch is an ordered collection of packets delivered atomically from
// the signature verification stage.
type PacketBatch []*Packet

// Delivery is one receive-worth of packet batches: everything handed over
// the ingress route in a single send.
type Delivery []PacketBatch

// PacketCount returns the total number of packets across all batches in the
// delivery, including discard-flagged ones.
func (d Delivery) PacketCount() int {
	count := 0
	for _, batch := range d {
		count += len(batch)
	}
	return count
}
