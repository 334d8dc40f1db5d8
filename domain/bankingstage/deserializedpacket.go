package bankingstage

import (
	"github.com/meraknet/merakd/domain/bankingstage/model"
	"github.com/meraknet/merakd/domain/transaction"
)

// DeserializedPacket is an immutable, sanitized transaction representation
// derived from one raw packet. It owns its payload independently of the batch
// the packet arrived in.
type DeserializedPacket struct {
	originalPacket       *model.Packet
	transaction          *transaction.Transaction
	messageHash          transaction.Hash
	isSimpleVote         bool
	computeBudgetDetails transaction.ComputeBudgetDetails
}

// NewDeserializedPacket clones the given packet and runs it through
// deserialization, sanitization and compute budget extraction. Any failure
// returns a PacketError carrying the matching reject code; malformed input is
// ordinary, expected input here and never escalates beyond that.
func NewDeserializedPacket(packet *model.Packet) (*DeserializedPacket, error) {
	packetClone := packet.Clone()

	tx, err := transaction.FromBytes(packetClone.Payload)
	if err != nil {
		return nil, packetErrorFromTransactionError(err)
	}
	if err := tx.Sanitize(); err != nil {
		return nil, packetErrorFromTransactionError(err)
	}
	computeBudgetDetails, err := tx.ComputeBudgetDetails()
	if err != nil {
		return nil, packetErrorFromTransactionError(err)
	}
	messageHash, err := tx.Message.MessageHash()
	if err != nil {
		return nil, packetErrorFromTransactionError(err)
	}

	return &DeserializedPacket{
		originalPacket:       packetClone,
		transaction:          tx,
		messageHash:          messageHash,
		isSimpleVote:         tx.IsSimpleVote(),
		computeBudgetDetails: *computeBudgetDetails,
	}, nil
}

// OriginalPacket returns the cloned raw packet this was deserialized from.
func (dp *DeserializedPacket) OriginalPacket() *model.Packet {
	return dp.originalPacket
}

// Transaction returns the sanitized transaction.
func (dp *DeserializedPacket) Transaction() *transaction.Transaction {
	return dp.transaction
}

// MessageHash returns the hash of the transaction's message.
func (dp *DeserializedPacket) MessageHash() transaction.Hash {
	return dp.messageHash
}

// IsSimpleVote reports whether the transaction is a plain consensus vote.
func (dp *DeserializedPacket) IsSimpleVote() bool {
	return dp.isSimpleVote
}

// ComputeUnitLimit returns the transaction's granted compute unit limit.
func (dp *DeserializedPacket) ComputeUnitLimit() uint32 {
	return dp.computeBudgetDetails.ComputeUnitLimit
}

// ComputeUnitPrice returns the transaction's offered price per compute unit.
func (dp *DeserializedPacket) ComputeUnitPrice() uint64 {
	return dp.computeBudgetDetails.ComputeUnitPrice
}
