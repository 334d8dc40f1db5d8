package transaction

import (
	"fmt"

	"github.com/pkg/errors"
)

// SanitizeError identifies a structural rule violation in a decoded
// transaction: the bytes parsed, but the result is not a well-formed
// transaction.
type SanitizeError struct {
	Description string
}

func (e SanitizeError) Error() string {
	return e.Description
}

func sanitizeError(format string, args ...interface{}) error {
	return errors.WithStack(SanitizeError{Description: fmt.Sprintf(format, args...)})
}

// Sanitize checks the structural invariants that deserialization alone can't
// enforce: header counts consistent with the account list, a writable signing
// payer, and every index within bounds. It must be called before any other
// inspection of the transaction.
func (tx *Transaction) Sanitize() error {
	header := &tx.Message.Header
	numAccountKeys := len(tx.Message.AccountKeys)

	if header.NumRequiredSignatures == 0 {
		return sanitizeError("transaction requires no signatures")
	}
	if len(tx.Signatures) != int(header.NumRequiredSignatures) {
		return sanitizeError("transaction carries %d signatures but the header requires %d",
			len(tx.Signatures), header.NumRequiredSignatures)
	}
	if int(header.NumRequiredSignatures) > numAccountKeys {
		return sanitizeError("header requires %d signatures but the message has only %d account keys",
			header.NumRequiredSignatures, numAccountKeys)
	}

	// The first account is the payer; it must be a writable signer.
	if header.NumReadonlySignedAccounts >= header.NumRequiredSignatures {
		return sanitizeError("all %d signing accounts are readonly, leaving no writable payer",
			header.NumRequiredSignatures)
	}
	numUnsignedAccounts := numAccountKeys - int(header.NumRequiredSignatures)
	if int(header.NumReadonlyUnsignedAccounts) > numUnsignedAccounts {
		return sanitizeError("header declares %d readonly unsigned accounts but only %d accounts are unsigned",
			header.NumReadonlyUnsignedAccounts, numUnsignedAccounts)
	}

	for i, instruction := range tx.Message.Instructions {
		if int(instruction.ProgramIndex) >= numAccountKeys {
			return sanitizeError("instruction %d program index %d is out of bounds (%d account keys)",
				i, instruction.ProgramIndex, numAccountKeys)
		}
		if instruction.ProgramIndex == 0 {
			return sanitizeError("instruction %d uses the payer account as a program", i)
		}
		for _, accountIndex := range instruction.AccountIndexes {
			if int(accountIndex) >= numAccountKeys {
				return sanitizeError("instruction %d account index %d is out of bounds (%d account keys)",
					i, accountIndex, numAccountKeys)
			}
		}
	}
	return nil
}

// ProgramID returns the program the instruction invokes. It must only be
// called on a sanitized transaction, where the index is known to be in
// bounds.
func (m *Message) ProgramID(instruction *Instruction) PublicKey {
	return m.AccountKeys[instruction.ProgramIndex]
}
