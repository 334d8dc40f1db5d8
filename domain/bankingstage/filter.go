package bankingstage

import (
	"fmt"
)

const (
	// MaxAllowedPrecompileSignatures is the maximum number of precompile
	// signatures a transaction may declare before it is dropped. Each one
	// costs a full signature verification downstream, so a packet-sized
	// transaction declaring hundreds of them is a cheap way to burn CPU.
	MaxAllowedPrecompileSignatures = 8

	// minInstructionComputeUnits is the compute unit floor per
	// instruction. A transaction declaring a limit below instructions *
	// floor can't possibly execute and is dropped at admission.
	minInstructionComputeUnits = 150
)

// PacketFilter is the caller-supplied admission gate applied after
// sanitization. It returns the accepted packet (possibly unchanged), or a
// PacketError with one of RejectPrioritization, RejectVoteTransaction,
// RejectExcessivePrecompiles or RejectInsufficientComputeLimit.
type PacketFilter func(*DeserializedPacket) (*DeserializedPacket, error)

// IdentityFilter accepts every packet unchanged.
func IdentityFilter(packet *DeserializedPacket) (*DeserializedPacket, error) {
	return packet, nil
}

// CheckExcessivePrecompiles fails when the packet's transaction declares more
// precompile signatures than allowed.
func (dp *DeserializedPacket) CheckExcessivePrecompiles() error {
	precompileSignatureCount := dp.transaction.PrecompileSignatureCount()
	if precompileSignatureCount > MaxAllowedPrecompileSignatures {
		return NewPacketError(RejectExcessivePrecompiles,
			fmt.Sprintf("transaction %s declares %d precompile signatures, maximum allowed is %d",
				dp.messageHash, precompileSignatureCount, MaxAllowedPrecompileSignatures))
	}
	return nil
}

// CheckInsufficientComputeUnitLimit fails when the packet's granted compute
// unit limit cannot cover even the per-instruction floor.
func (dp *DeserializedPacket) CheckInsufficientComputeUnitLimit() error {
	minimumLimit := uint64(len(dp.transaction.Message.Instructions)) * minInstructionComputeUnits
	if uint64(dp.ComputeUnitLimit()) < minimumLimit {
		return NewPacketError(RejectInsufficientComputeLimit,
			fmt.Sprintf("transaction %s declares a compute unit limit of %d, which is below the minimum of %d",
				dp.messageHash, dp.ComputeUnitLimit(), minimumLimit))
	}
	return nil
}

// ChainFilters composes filters into a single filter that applies them in
// order, stopping at the first rejection.
func ChainFilters(filters ...PacketFilter) PacketFilter {
	return func(packet *DeserializedPacket) (*DeserializedPacket, error) {
		for _, filter := range filters {
			var err error
			packet, err = filter(packet)
			if err != nil {
				return nil, err
			}
		}
		return packet, nil
	}
}

// NewDefaultPacketFilter returns the standard admission gate: precompile and
// compute limit checks, plus vote rejection when excludeVotes is set.
func NewDefaultPacketFilter(excludeVotes bool) PacketFilter {
	return func(packet *DeserializedPacket) (*DeserializedPacket, error) {
		if err := packet.CheckExcessivePrecompiles(); err != nil {
			return nil, err
		}
		if err := packet.CheckInsufficientComputeUnitLimit(); err != nil {
			return nil, err
		}
		if excludeVotes && packet.IsSimpleVote() {
			return nil, NewPacketError(RejectVoteTransaction,
				fmt.Sprintf("transaction %s is a vote, and votes are excluded", packet.MessageHash()))
		}
		return packet, nil
	}
}
