package bankingstage

import (
	"testing"

	"github.com/meraknet/merakd/domain/transaction"
	"github.com/meraknet/merakd/domain/transaction/testutil"
	"github.com/pkg/errors"
)

func deserializedPacket(t *testing.T, tx *transaction.Transaction) *DeserializedPacket {
	packet, err := NewDeserializedPacket(packetFromTransaction(t, tx))
	if err != nil {
		t.Fatalf("failed to deserialize packet: %+v", err)
	}
	return packet
}

func checkRejectCode(t *testing.T, name string, err error, expected RejectCode) {
	if err == nil {
		t.Fatalf("%s: expected a rejection, got none", name)
	}
	var packetErr PacketError
	if !errors.As(err, &packetErr) {
		t.Fatalf("%s: expected a PacketError, got %+v", name, err)
	}
	if packetErr.RejectCode != expected {
		t.Fatalf("%s: expected reject code %s, got %s", name, expected, packetErr.RejectCode)
	}
}

func TestCheckExcessivePrecompiles(t *testing.T) {
	withinLimit, err := testutil.NewSignedTransactionWithPrecompileSignatures(MaxAllowedPrecompileSignatures)
	if err != nil {
		t.Fatalf("failed to build transaction: %+v", err)
	}
	if err := deserializedPacket(t, withinLimit).CheckExcessivePrecompiles(); err != nil {
		t.Fatalf("expected %d precompile signatures to pass, got %+v",
			MaxAllowedPrecompileSignatures, err)
	}

	overLimit, err := testutil.NewSignedTransactionWithPrecompileSignatures(MaxAllowedPrecompileSignatures + 1)
	if err != nil {
		t.Fatalf("failed to build transaction: %+v", err)
	}
	err = deserializedPacket(t, overLimit).CheckExcessivePrecompiles()
	checkRejectCode(t, "over limit", err, RejectExcessivePrecompiles)
}

func TestCheckInsufficientComputeUnitLimit(t *testing.T) {
	// Three instructions need at least 3 * minInstructionComputeUnits.
	sufficient, err := testutil.NewSignedTransferTransactionWithBudget(
		1000, 3*minInstructionComputeUnits, 0)
	if err != nil {
		t.Fatalf("failed to build transaction: %+v", err)
	}
	if err := deserializedPacket(t, sufficient).CheckInsufficientComputeUnitLimit(); err != nil {
		t.Fatalf("expected a sufficient limit to pass, got %+v", err)
	}

	insufficient, err := testutil.NewSignedTransferTransactionWithBudget(
		1000, 3*minInstructionComputeUnits-1, 0)
	if err != nil {
		t.Fatalf("failed to build transaction: %+v", err)
	}
	err = deserializedPacket(t, insufficient).CheckInsufficientComputeUnitLimit()
	checkRejectCode(t, "insufficient limit", err, RejectInsufficientComputeLimit)
}

func TestDefaultPacketFilterVotes(t *testing.T) {
	voteTx, err := testutil.NewSignedVoteTransaction()
	if err != nil {
		t.Fatalf("failed to build vote transaction: %+v", err)
	}
	votePacket := deserializedPacket(t, voteTx)
	if !votePacket.IsSimpleVote() {
		t.Fatal("expected the vote transaction to classify as a simple vote")
	}

	_, err = NewDefaultPacketFilter(true)(votePacket)
	checkRejectCode(t, "votes excluded", err, RejectVoteTransaction)

	accepted, err := NewDefaultPacketFilter(false)(votePacket)
	if err != nil {
		t.Fatalf("expected the vote to pass when votes are included, got %+v", err)
	}
	if accepted != votePacket {
		t.Fatal("expected the filter to return the packet unchanged")
	}
}

func TestDefaultPacketFilterAcceptsTransfers(t *testing.T) {
	transferTx, err := testutil.NewSignedTransferTransaction(1000)
	if err != nil {
		t.Fatalf("failed to build transaction: %+v", err)
	}
	packet := deserializedPacket(t, transferTx)

	accepted, err := NewDefaultPacketFilter(true)(packet)
	if err != nil {
		t.Fatalf("expected the transfer to pass the default filter, got %+v", err)
	}
	if accepted.IsSimpleVote() {
		t.Fatal("expected the transfer not to classify as a vote")
	}
}

func TestChainFilters(t *testing.T) {
	transferTx, err := testutil.NewSignedTransferTransaction(1000)
	if err != nil {
		t.Fatalf("failed to build transaction: %+v", err)
	}
	packet := deserializedPacket(t, transferTx)

	calls := 0
	counting := func(packet *DeserializedPacket) (*DeserializedPacket, error) {
		calls++
		return packet, nil
	}
	rejecting := func(packet *DeserializedPacket) (*DeserializedPacket, error) {
		return nil, NewPacketError(RejectPrioritization, "rejected")
	}

	accepted, err := ChainFilters(counting, counting)(packet)
	if err != nil {
		t.Fatalf("ChainFilters: unexpected error: %+v", err)
	}
	if accepted != packet {
		t.Fatal("expected the chain to return the packet unchanged")
	}
	if calls != 2 {
		t.Fatalf("expected both filters to run, got %d calls", calls)
	}

	// The first rejection short-circuits the chain.
	calls = 0
	_, err = ChainFilters(counting, rejecting, counting)(packet)
	checkRejectCode(t, "chained rejection", err, RejectPrioritization)
	if calls != 1 {
		t.Fatalf("expected the chain to stop at the rejection, got %d calls", calls)
	}
}

func TestIdentityFilter(t *testing.T) {
	transferTx, err := testutil.NewSignedTransferTransaction(1000)
	if err != nil {
		t.Fatalf("failed to build transaction: %+v", err)
	}
	packet := deserializedPacket(t, transferTx)

	accepted, err := IdentityFilter(packet)
	if err != nil {
		t.Fatalf("IdentityFilter: unexpected error: %+v", err)
	}
	if accepted != packet {
		t.Fatal("expected IdentityFilter to return the packet unchanged")
	}
}
