package transaction_test

import (
	"testing"

	"github.com/meraknet/merakd/domain/transaction"
	"github.com/pkg/errors"
)

// unsanitizedTransaction builds a structurally valid two-account transfer
// without real signatures; Sanitize doesn't inspect signature bytes.
func unsanitizedTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		Signatures: make([]transaction.Signature, 1),
		Message: transaction.Message{
			Header: transaction.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys: []transaction.PublicKey{
				{0x01}, {0x02}, transaction.SystemProgramID,
			},
			Instructions: []transaction.Instruction{{
				ProgramIndex:   2,
				AccountIndexes: []uint8{0, 1},
				Data:           []byte{0x02},
			}},
		},
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tx *transaction.Transaction)
		wantErr bool
	}{
		{"well-formed", func(tx *transaction.Transaction) {}, false},
		{"no required signatures", func(tx *transaction.Transaction) {
			tx.Message.Header.NumRequiredSignatures = 0
			tx.Signatures = nil
		}, true},
		{"signature count mismatch", func(tx *transaction.Transaction) {
			tx.Signatures = make([]transaction.Signature, 2)
		}, true},
		{"more signers than accounts", func(tx *transaction.Transaction) {
			tx.Message.Header.NumRequiredSignatures = 4
			tx.Signatures = make([]transaction.Signature, 4)
		}, true},
		{"no writable payer", func(tx *transaction.Transaction) {
			tx.Message.Header.NumReadonlySignedAccounts = 1
		}, true},
		{"too many readonly unsigned", func(tx *transaction.Transaction) {
			tx.Message.Header.NumReadonlyUnsignedAccounts = 3
		}, true},
		{"program index out of bounds", func(tx *transaction.Transaction) {
			tx.Message.Instructions[0].ProgramIndex = 3
		}, true},
		{"payer used as program", func(tx *transaction.Transaction) {
			tx.Message.Instructions[0].ProgramIndex = 0
		}, true},
		{"account index out of bounds", func(tx *transaction.Transaction) {
			tx.Message.Instructions[0].AccountIndexes = []uint8{0, 3}
		}, true},
	}

	for _, test := range tests {
		tx := unsanitizedTransaction()
		test.mutate(tx)

		err := tx.Sanitize()
		if test.wantErr {
			if err == nil {
				t.Fatalf("%s: expected a sanitize error", test.name)
			}
			var sanitizeErr transaction.SanitizeError
			if !errors.As(err, &sanitizeErr) {
				t.Fatalf("%s: got %+v, expected a SanitizeError", test.name, err)
			}
		} else if err != nil {
			t.Fatalf("%s: unexpected error: %+v", test.name, err)
		}
	}
}
