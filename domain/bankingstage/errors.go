package bankingstage

import (
	"fmt"

	"github.com/meraknet/merakd/domain/transaction"
	"github.com/pkg/errors"
)

// RejectCode identifies why a packet was dropped between deserialization and
// admission. Every drop maps to exactly one code, and every code maps to
// exactly one stats bucket.
type RejectCode byte

// These constants define the supported reject codes.
const (
	// RejectMalformedLength indicates a malformed short vec length prefix.
	RejectMalformedLength RejectCode = iota

	// RejectDeserialization indicates any other decoding failure.
	RejectDeserialization

	// RejectSignatureOverflow indicates a signature count outside the
	// representable range.
	RejectSignatureOverflow

	// RejectSanitization indicates a structural sanitization failure.
	RejectSanitization

	// RejectPrioritization indicates the fee or compute budget could not
	// be computed.
	RejectPrioritization

	// RejectVoteTransaction indicates a vote transaction arrived while
	// votes are excluded.
	RejectVoteTransaction

	// RejectExcessivePrecompiles indicates too many precompile signatures.
	RejectExcessivePrecompiles

	// RejectInsufficientComputeLimit indicates a declared compute unit
	// limit below what the transaction needs.
	RejectInsufficientComputeLimit
)

// Map of reject codes back to strings for pretty printing.
var rejectCodeStrings = map[RejectCode]string{
	RejectMalformedLength:          "REJECT_MALFORMED_LENGTH",
	RejectDeserialization:          "REJECT_DESERIALIZATION",
	RejectSignatureOverflow:        "REJECT_SIGNATURE_OVERFLOW",
	RejectSanitization:             "REJECT_SANITIZATION",
	RejectPrioritization:           "REJECT_PRIORITIZATION",
	RejectVoteTransaction:          "REJECT_VOTE_TRANSACTION",
	RejectExcessivePrecompiles:     "REJECT_EXCESSIVE_PRECOMPILES",
	RejectInsufficientComputeLimit: "REJECT_INSUFFICIENT_COMPUTE_LIMIT",
}

// String returns the RejectCode in human-readable form.
func (code RejectCode) String() string {
	if s, ok := rejectCodeStrings[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown RejectCode (%d)", byte(code))
}

// PacketError identifies a packet drop. The caller can use errors.As to
// access the RejectCode and ascertain the specific drop reason.
type PacketError struct {
	RejectCode  RejectCode // The code the stats aggregator buckets by
	Description string     // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e PacketError) Error() string {
	return e.Description
}

// NewPacketError creates a PacketError with the given reject code. Admission
// filters use it to return typed rejections.
func NewPacketError(code RejectCode, description string) error {
	return errors.WithStack(PacketError{RejectCode: code, Description: description})
}

// packetErrorFromTransactionError converts a typed error from the transaction
// package into a PacketError carrying the matching reject code.
func packetErrorFromTransactionError(err error) error {
	if errors.Is(err, transaction.ErrShortVecOutOfRange) ||
		errors.Is(err, transaction.ErrShortVecNonMinimal) {
		return NewPacketError(RejectMalformedLength, err.Error())
	}

	var signatureCountErr transaction.SignatureCountError
	if errors.As(err, &signatureCountErr) {
		return NewPacketError(RejectSignatureOverflow, err.Error())
	}

	var sanitizeErr transaction.SanitizeError
	if errors.As(err, &sanitizeErr) {
		return NewPacketError(RejectSanitization, err.Error())
	}

	var prioritizationErr transaction.PrioritizationError
	if errors.As(err, &prioritizationErr) {
		return NewPacketError(RejectPrioritization, err.Error())
	}

	return NewPacketError(RejectDeserialization, err.Error())
}

// extractRejectCode attempts to return the reject code for a given error by
// examining the error for known types. It returns true if a code was
// successfully extracted. Untyped errors fall back to RejectDeserialization,
// so classification stays total even for misbehaving filters.
func extractRejectCode(err error) (RejectCode, bool) {
	var packetErr PacketError
	if errors.As(err, &packetErr) {
		return packetErr.RejectCode, true
	}
	return RejectDeserialization, false
}
