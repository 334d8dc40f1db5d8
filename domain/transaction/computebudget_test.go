package transaction_test

import (
	"encoding/binary"
	"testing"

	"github.com/meraknet/merakd/domain/transaction"
	"github.com/pkg/errors"
)

func setUnitLimitData(limit uint32) []byte {
	data := make([]byte, 5)
	data[0] = 0x00
	binary.LittleEndian.PutUint32(data[1:], limit)
	return data
}

func setUnitPriceData(price uint64) []byte {
	data := make([]byte, 9)
	data[0] = 0x01
	binary.LittleEndian.PutUint64(data[1:], price)
	return data
}

// budgetTransaction builds a transaction with one transfer instruction plus
// the given compute budget instructions.
func budgetTransaction(budgetInstructionData ...[]byte) *transaction.Transaction {
	tx := &transaction.Transaction{
		Signatures: make([]transaction.Signature, 1),
		Message: transaction.Message{
			Header: transaction.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlyUnsignedAccounts: 2,
			},
			AccountKeys: []transaction.PublicKey{
				{0x01}, {0x02}, transaction.SystemProgramID, transaction.ComputeBudgetProgramID,
			},
			Instructions: []transaction.Instruction{{
				ProgramIndex:   2,
				AccountIndexes: []uint8{0, 1},
				Data:           []byte{0x02},
			}},
		},
	}
	for _, data := range budgetInstructionData {
		tx.Message.Instructions = append(tx.Message.Instructions,
			transaction.Instruction{ProgramIndex: 3, Data: data})
	}
	return tx
}

func TestComputeBudgetDetails(t *testing.T) {
	tests := []struct {
		name          string
		tx            *transaction.Transaction
		expectedLimit uint32
		expectedPrice uint64
		wantErr       bool
	}{
		{
			name:          "defaults with no budget instructions",
			tx:            budgetTransaction(),
			expectedLimit: transaction.DefaultInstructionComputeUnitLimit,
		},
		{
			name:          "requested limit and price",
			tx:            budgetTransaction(setUnitLimitData(300_000), setUnitPriceData(42)),
			expectedLimit: 300_000,
			expectedPrice: 42,
		},
		{
			name:          "requested limit above maximum is clamped",
			tx:            budgetTransaction(setUnitLimitData(100_000_000)),
			expectedLimit: transaction.MaxComputeUnitLimit,
		},
		{
			name:    "duplicate limit instructions",
			tx:      budgetTransaction(setUnitLimitData(1), setUnitLimitData(2)),
			wantErr: true,
		},
		{
			name:    "duplicate price instructions",
			tx:      budgetTransaction(setUnitPriceData(1), setUnitPriceData(2)),
			wantErr: true,
		},
		{
			name:    "unknown tag",
			tx:      budgetTransaction([]byte{0x07}),
			wantErr: true,
		},
		{
			name:    "empty data",
			tx:      budgetTransaction([]byte{}),
			wantErr: true,
		},
		{
			name:    "truncated limit data",
			tx:      budgetTransaction([]byte{0x00, 0x01}),
			wantErr: true,
		},
		{
			name:    "oversized price data",
			tx:      budgetTransaction(append(setUnitPriceData(1), 0x00)),
			wantErr: true,
		},
	}

	for _, test := range tests {
		details, err := test.tx.ComputeBudgetDetails()
		if test.wantErr {
			if err == nil {
				t.Fatalf("%s: expected a prioritization error", test.name)
			}
			var prioritizationErr transaction.PrioritizationError
			if !errors.As(err, &prioritizationErr) {
				t.Fatalf("%s: got %+v, expected a PrioritizationError", test.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %+v", test.name, err)
		}
		if details.ComputeUnitLimit != test.expectedLimit {
			t.Fatalf("%s: ComputeUnitLimit: got %d, expected %d",
				test.name, details.ComputeUnitLimit, test.expectedLimit)
		}
		if details.ComputeUnitPrice != test.expectedPrice {
			t.Fatalf("%s: ComputeUnitPrice: got %d, expected %d",
				test.name, details.ComputeUnitPrice, test.expectedPrice)
		}
	}
}

func TestDefaultComputeUnitLimitIsCapped(t *testing.T) {
	tx := budgetTransaction()
	// Enough instructions that the per-instruction default would exceed
	// the global maximum.
	for i := 0; i < 9; i++ {
		tx.Message.Instructions = append(tx.Message.Instructions, transaction.Instruction{
			ProgramIndex:   2,
			AccountIndexes: []uint8{0, 1},
			Data:           []byte{0x02},
		})
	}

	details, err := tx.ComputeBudgetDetails()
	if err != nil {
		t.Fatalf("ComputeBudgetDetails: unexpected error: %+v", err)
	}
	if details.ComputeUnitLimit != transaction.MaxComputeUnitLimit {
		t.Fatalf("ComputeUnitLimit: got %d, expected the cap %d",
			details.ComputeUnitLimit, transaction.MaxComputeUnitLimit)
	}
}
