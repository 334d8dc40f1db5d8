package bankingstage

import (
	utilMath "github.com/meraknet/merakd/util/math"
)

// PacketReceiverStats counts the packets observed during one ReceivePackets
// call and every drop cause. The counters saturate instead of wrapping, and
// the sigverify pair always sums to the total packet count observed.
type PacketReceiverStats struct {
	// PassedSigverifyCount is the number of packets not discard-flagged by
	// the signature verification stage. The flag's underlying cause is
	// opaque and not necessarily signature-specific; the name is part of
	// the downstream telemetry contract.
	PassedSigverifyCount uint64

	// FailedSigverifyCount is the number of discard-flagged packets.
	FailedSigverifyCount uint64

	// FailedSanitizationCount is the number of packets dropped due to a
	// deserialization or sanitization error.
	FailedSanitizationCount uint64

	// FailedPrioritizationCount is the number of packets dropped because
	// their fee or compute budget could not be computed.
	FailedPrioritizationCount uint64

	// InvalidVoteCount is the number of vote packets dropped.
	InvalidVoteCount uint64

	// ExcessivePrecompileCount is the number of packets dropped due to
	// excessive precompile signatures.
	ExcessivePrecompileCount uint64

	// InsufficientComputeLimitCount is the number of packets dropped due
	// to an insufficient declared compute unit limit.
	InsufficientComputeLimitCount uint64
}

// incrementSigverifyCounts adds one batch's pass/fail split in a single step.
func (s *PacketReceiverStats) incrementSigverifyCounts(passed, failed uint64) {
	s.PassedSigverifyCount = utilMath.SaturatingAddUint64(s.PassedSigverifyCount, passed)
	s.FailedSigverifyCount = utilMath.SaturatingAddUint64(s.FailedSigverifyCount, failed)
}

// incrementErrorCount classifies one drop cause into exactly one bucket.
func (s *PacketReceiverStats) incrementErrorCount(err error) {
	code, ok := extractRejectCode(err)
	if !ok {
		log.Debugf("Classifying untyped packet error as %s: %s", code, err)
	}

	switch code {
	case RejectMalformedLength, RejectDeserialization, RejectSignatureOverflow, RejectSanitization:
		s.FailedSanitizationCount = utilMath.SaturatingAddUint64(s.FailedSanitizationCount, 1)
	case RejectPrioritization:
		s.FailedPrioritizationCount = utilMath.SaturatingAddUint64(s.FailedPrioritizationCount, 1)
	case RejectVoteTransaction:
		s.InvalidVoteCount = utilMath.SaturatingAddUint64(s.InvalidVoteCount, 1)
	case RejectExcessivePrecompiles:
		s.ExcessivePrecompileCount = utilMath.SaturatingAddUint64(s.ExcessivePrecompileCount, 1)
	case RejectInsufficientComputeLimit:
		s.InsufficientComputeLimitCount = utilMath.SaturatingAddUint64(s.InsufficientComputeLimitCount, 1)
	default:
		// A code outside the taxonomy still represents a dropped packet.
		log.Debugf("Counting unknown reject code %s as failed sanitization: %s", code, err)
		s.FailedSanitizationCount = utilMath.SaturatingAddUint64(s.FailedSanitizationCount, 1)
	}
}

// TotalDropped returns the number of packets dropped after sigverify.
func (s *PacketReceiverStats) TotalDropped() uint64 {
	total := utilMath.SaturatingAddUint64(s.FailedSanitizationCount, s.FailedPrioritizationCount)
	total = utilMath.SaturatingAddUint64(total, s.InvalidVoteCount)
	total = utilMath.SaturatingAddUint64(total, s.ExcessivePrecompileCount)
	return utilMath.SaturatingAddUint64(total, s.InsufficientComputeLimitCount)
}
