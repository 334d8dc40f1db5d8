package transaction

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	utilMath "github.com/meraknet/merakd/util/math"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Signature is a 64-byte transaction signature.
type Signature [SignatureSize]byte

// PublicKey is a 32-byte account key.
type PublicKey [PublicKeySize]byte

// String returns the PublicKey as a hexadecimal string.
func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// Hash is a 32-byte hash.
type Hash [HashSize]byte

// String returns the Hash as a hexadecimal string.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// SignatureCountError indicates a declared signature count that cannot be
// represented on the wire.
type SignatureCountError struct {
	Count int
}

func (e SignatureCountError) Error() string {
	return fmt.Sprintf("signature count %d exceeds the representable maximum of %d",
		e.Count, MaxSignatures)
}

// MessageHeader declares how the message's account keys are split between
// signers and non-signers, writable and readonly.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// Instruction is a single program invocation within a message. Account
// indexes refer into the message's account keys.
type Instruction struct {
	ProgramIndex   uint8
	AccountIndexes []uint8
	Data           []byte
}

// Message is the signed portion of a transaction.
type Message struct {
	Header          MessageHeader
	AccountKeys     []PublicKey
	RecentEntryHash Hash
	Instructions    []Instruction
}

// Transaction is a decoded, not-yet-sanitized transaction.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

// FromBytes decodes a transaction from its wire representation. The input is
// adversarial: every length is bounded against the remaining payload before
// anything is allocated, and any structural mismatch fails with a typed
// error.
func FromBytes(payload []byte) (*Transaction, error) {
	r := bytes.NewReader(payload)
	tx := &Transaction{}

	numSignatures, err := ReadShortVecLen(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read signature count")
	}
	if int(numSignatures) > MaxSignatures {
		return nil, errors.WithStack(SignatureCountError{Count: int(numSignatures)})
	}

	tx.Signatures = make([]Signature, 0, utilMath.MinInt(int(numSignatures), r.Len()/SignatureSize+1))
	for i := 0; i < int(numSignatures); i++ {
		var signature Signature
		if _, err := io.ReadFull(r, signature[:]); err != nil {
			return nil, errors.Wrapf(err, "failed to read signature %d", i)
		}
		tx.Signatures = append(tx.Signatures, signature)
	}

	err = tx.Message.deserialize(r)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, errors.Errorf("serialized transaction has %d trailing bytes", r.Len())
	}
	return tx, nil
}

func (m *Message) deserialize(r *bytes.Reader) error {
	var header [messageHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return errors.Wrap(err, "failed to read message header")
	}
	m.Header = MessageHeader{
		NumRequiredSignatures:       header[0],
		NumReadonlySignedAccounts:   header[1],
		NumReadonlyUnsignedAccounts: header[2],
	}

	numAccountKeys, err := ReadShortVecLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read account key count")
	}
	m.AccountKeys = make([]PublicKey, 0, utilMath.MinInt(int(numAccountKeys), r.Len()/PublicKeySize+1))
	for i := 0; i < int(numAccountKeys); i++ {
		var key PublicKey
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return errors.Wrapf(err, "failed to read account key %d", i)
		}
		m.AccountKeys = append(m.AccountKeys, key)
	}

	if _, err := io.ReadFull(r, m.RecentEntryHash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent entry hash")
	}

	numInstructions, err := ReadShortVecLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	m.Instructions = make([]Instruction, 0, utilMath.MinInt(int(numInstructions), r.Len()+1))
	for i := 0; i < int(numInstructions); i++ {
		instruction, err := deserializeInstruction(r)
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction %d", i)
		}
		m.Instructions = append(m.Instructions, *instruction)
	}
	return nil
}

func deserializeInstruction(r *bytes.Reader) (*Instruction, error) {
	programIndex, err := r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read program index")
	}

	numAccountIndexes, err := ReadShortVecLen(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read account index count")
	}
	// Zero-length fields decode to nil so that decoded transactions compare
	// equal to constructed ones.
	var accountIndexes []uint8
	if numAccountIndexes > 0 {
		accountIndexes = make([]uint8, utilMath.MinInt(int(numAccountIndexes), r.Len()))
		if _, err := io.ReadFull(r, accountIndexes); err != nil {
			return nil, errors.Wrap(err, "failed to read account indexes")
		}
		if len(accountIndexes) != int(numAccountIndexes) {
			return nil, errors.Errorf("account index count %d exceeds remaining payload", numAccountIndexes)
		}
	}

	dataLen, err := ReadShortVecLen(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read instruction data length")
	}
	if int(dataLen) > r.Len() {
		return nil, errors.Errorf("instruction data length %d exceeds remaining payload", dataLen)
	}
	var data []byte
	if dataLen > 0 {
		data = make([]byte, dataLen)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, errors.Wrap(err, "failed to read instruction data")
		}
	}

	return &Instruction{
		ProgramIndex:   programIndex,
		AccountIndexes: accountIndexes,
		Data:           data,
	}, nil
}

// Serialize returns the wire representation of the transaction.
func (tx *Transaction) Serialize() ([]byte, error) {
	w := &bytes.Buffer{}
	if len(tx.Signatures) > MaxSignatures {
		return nil, errors.WithStack(SignatureCountError{Count: len(tx.Signatures)})
	}
	if err := WriteShortVecLen(w, uint16(len(tx.Signatures))); err != nil {
		return nil, err
	}
	for _, signature := range tx.Signatures {
		if _, err := w.Write(signature[:]); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	messageBytes, err := tx.Message.Serialize()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(messageBytes); err != nil {
		return nil, errors.WithStack(err)
	}
	return w.Bytes(), nil
}

// Serialize returns the wire representation of the message. This is also the
// blob that gets signed and hashed.
func (m *Message) Serialize() ([]byte, error) {
	w := &bytes.Buffer{}
	w.Write([]byte{
		m.Header.NumRequiredSignatures,
		m.Header.NumReadonlySignedAccounts,
		m.Header.NumReadonlyUnsignedAccounts,
	})

	if len(m.AccountKeys) > maxShortVecValue {
		return nil, errors.WithStack(ErrShortVecOutOfRange)
	}
	if err := WriteShortVecLen(w, uint16(len(m.AccountKeys))); err != nil {
		return nil, err
	}
	for _, key := range m.AccountKeys {
		w.Write(key[:])
	}

	w.Write(m.RecentEntryHash[:])

	if len(m.Instructions) > maxShortVecValue {
		return nil, errors.WithStack(ErrShortVecOutOfRange)
	}
	if err := WriteShortVecLen(w, uint16(len(m.Instructions))); err != nil {
		return nil, err
	}
	for _, instruction := range m.Instructions {
		w.WriteByte(instruction.ProgramIndex)
		if len(instruction.AccountIndexes) > maxShortVecValue || len(instruction.Data) > maxShortVecValue {
			return nil, errors.WithStack(ErrShortVecOutOfRange)
		}
		if err := WriteShortVecLen(w, uint16(len(instruction.AccountIndexes))); err != nil {
			return nil, err
		}
		w.Write(instruction.AccountIndexes)
		if err := WriteShortVecLen(w, uint16(len(instruction.Data))); err != nil {
			return nil, err
		}
		w.Write(instruction.Data)
	}
	return w.Bytes(), nil
}

// MessageHash returns the blake2b hash of the serialized message.
func (m *Message) MessageHash() (Hash, error) {
	messageBytes, err := m.Serialize()
	if err != nil {
		return Hash{}, err
	}
	return blake2b.Sum256(messageBytes), nil
}
