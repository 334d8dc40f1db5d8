// Package testutil builds well-formed, signed transactions for tests and
// benchmarks. Nothing in the ingress path verifies signatures (that is the
// upstream stage's job), but realistic inputs should still carry real ones.
package testutil

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/kaspanet/go-secp256k1"
	"github.com/meraknet/merakd/domain/transaction"
	"github.com/pkg/errors"
)

// KeyPair couples a signing key with its serialized public key.
type KeyPair struct {
	keyPair   *secp256k1.SchnorrKeyPair
	PublicKey transaction.PublicKey
}

// GenerateKeyPair returns a fresh random keypair.
func GenerateKeyPair() (*KeyPair, error) {
	keyPair, err := secp256k1.GenerateSchnorrKeyPair()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate private key")
	}
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive public key")
	}
	serialized, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize public key")
	}

	result := &KeyPair{keyPair: keyPair}
	copy(result.PublicKey[:], serialized[:])
	return result, nil
}

// Sign fills in the transaction's signatures by signing its message hash with
// the given keys, in signer order.
func Sign(tx *transaction.Transaction, signers ...*KeyPair) error {
	messageHash, err := tx.Message.MessageHash()
	if err != nil {
		return err
	}
	secpHash := secp256k1.Hash(messageHash)

	tx.Signatures = make([]transaction.Signature, len(signers))
	for i, signer := range signers {
		signature, err := signer.keyPair.SchnorrSign(&secpHash)
		if err != nil {
			return errors.Wrapf(err, "failed to sign with key %d", i)
		}
		copy(tx.Signatures[i][:], signature.Serialize()[:])
	}
	return nil
}

// RandomEntryHash returns a random recent entry hash.
func RandomEntryHash() (transaction.Hash, error) {
	var hash transaction.Hash
	if _, err := rand.Read(hash[:]); err != nil {
		return transaction.Hash{}, errors.Wrap(err, "failed to read random bytes")
	}
	return hash, nil
}

// NewSignedTransferTransaction builds a single-signer transfer of amount to a
// freshly generated recipient, signed by a freshly generated payer.
func NewSignedTransferTransaction(amount uint64) (*transaction.Transaction, error) {
	payer, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	recipient, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	entryHash, err := RandomEntryHash()
	if err != nil {
		return nil, err
	}

	transferData := make([]byte, 9)
	transferData[0] = 0x02 // transfer tag
	binary.LittleEndian.PutUint64(transferData[1:], amount)

	tx := &transaction.Transaction{
		Message: transaction.Message{
			Header: transaction.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys: []transaction.PublicKey{
				payer.PublicKey,
				recipient.PublicKey,
				transaction.SystemProgramID,
			},
			RecentEntryHash: entryHash,
			Instructions: []transaction.Instruction{{
				ProgramIndex:   2,
				AccountIndexes: []uint8{0, 1},
				Data:           transferData,
			}},
		},
	}
	if err := Sign(tx, payer); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewSignedVoteTransaction builds a single-signer transaction whose only
// instruction invokes the vote program.
func NewSignedVoteTransaction() (*transaction.Transaction, error) {
	voter, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	voteAccount, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	entryHash, err := RandomEntryHash()
	if err != nil {
		return nil, err
	}

	tx := &transaction.Transaction{
		Message: transaction.Message{
			Header: transaction.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys: []transaction.PublicKey{
				voter.PublicKey,
				voteAccount.PublicKey,
				transaction.VoteProgramID,
			},
			RecentEntryHash: entryHash,
			Instructions: []transaction.Instruction{{
				ProgramIndex:   2,
				AccountIndexes: []uint8{0, 1},
				Data:           []byte{0x01},
			}},
		},
	}
	if err := Sign(tx, voter); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewSignedTransactionWithPrecompileSignatures builds a single-signer
// transaction carrying one ed25519 verifier instruction declaring the given
// number of precompile signatures.
func NewSignedTransactionWithPrecompileSignatures(signatureCount uint8) (*transaction.Transaction, error) {
	payer, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	entryHash, err := RandomEntryHash()
	if err != nil {
		return nil, err
	}

	tx := &transaction.Transaction{
		Message: transaction.Message{
			Header: transaction.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys: []transaction.PublicKey{
				payer.PublicKey,
				transaction.Ed25519VerifierProgramID,
			},
			RecentEntryHash: entryHash,
			Instructions: []transaction.Instruction{{
				ProgramIndex: 1,
				Data:         []byte{signatureCount},
			}},
		},
	}
	if err := Sign(tx, payer); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewSignedTransferTransactionWithBudget builds a transfer like
// NewSignedTransferTransaction, plus compute budget instructions requesting
// the given unit limit and price.
func NewSignedTransferTransactionWithBudget(amount uint64, computeUnitLimit uint32,
	computeUnitPrice uint64) (*transaction.Transaction, error) {

	payer, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	recipient, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	entryHash, err := RandomEntryHash()
	if err != nil {
		return nil, err
	}

	transferData := make([]byte, 9)
	transferData[0] = 0x02
	binary.LittleEndian.PutUint64(transferData[1:], amount)
	limitData := make([]byte, 5)
	limitData[0] = 0x00
	binary.LittleEndian.PutUint32(limitData[1:], computeUnitLimit)
	priceData := make([]byte, 9)
	priceData[0] = 0x01
	binary.LittleEndian.PutUint64(priceData[1:], computeUnitPrice)

	tx := &transaction.Transaction{
		Message: transaction.Message{
			Header: transaction.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 2,
			},
			AccountKeys: []transaction.PublicKey{
				payer.PublicKey,
				recipient.PublicKey,
				transaction.SystemProgramID,
				transaction.ComputeBudgetProgramID,
			},
			RecentEntryHash: entryHash,
			Instructions: []transaction.Instruction{
				{ProgramIndex: 2, AccountIndexes: []uint8{0, 1}, Data: transferData},
				{ProgramIndex: 3, Data: limitData},
				{ProgramIndex: 3, Data: priceData},
			},
		},
	}
	if err := Sign(tx, payer); err != nil {
		return nil, err
	}
	return tx, nil
}
