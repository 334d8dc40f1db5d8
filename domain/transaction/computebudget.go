package transaction

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Compute budget instruction tags.
const (
	computeBudgetSetUnitLimit = 0x00
	computeBudgetSetUnitPrice = 0x01

	setUnitLimitDataSize = 1 + 4 // tag + u32
	setUnitPriceDataSize = 1 + 8 // tag + u64
)

// PrioritizationError indicates that a transaction's fee and compute budget
// could not be determined from its compute budget instructions.
type PrioritizationError struct {
	Description string
}

func (e PrioritizationError) Error() string {
	return e.Description
}

func prioritizationError(format string, args ...interface{}) error {
	return errors.WithStack(PrioritizationError{Description: fmt.Sprintf(format, args...)})
}

// ComputeBudgetDetails is a transaction's declared compute budget: the unit
// limit it may consume and the price per unit it offers, which together
// determine its priority.
type ComputeBudgetDetails struct {
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64
}

// ComputeBudgetDetails extracts the compute budget from the transaction's
// compute budget instructions. At most one instruction of each kind is
// allowed. When no limit is requested, the transaction is granted the default
// per-instruction allowance, capped at the global maximum. Must only be
// called on a sanitized transaction.
func (tx *Transaction) ComputeBudgetDetails() (*ComputeBudgetDetails, error) {
	var requestedLimit *uint32
	var requestedPrice *uint64
	numNonBudgetInstructions := 0

	for i := range tx.Message.Instructions {
		instruction := &tx.Message.Instructions[i]
		if tx.Message.ProgramID(instruction) != ComputeBudgetProgramID {
			numNonBudgetInstructions++
			continue
		}

		if len(instruction.Data) == 0 {
			return nil, prioritizationError("compute budget instruction %d has no data", i)
		}
		switch instruction.Data[0] {
		case computeBudgetSetUnitLimit:
			if len(instruction.Data) != setUnitLimitDataSize {
				return nil, prioritizationError(
					"set compute unit limit instruction has %d data bytes, expected %d",
					len(instruction.Data), setUnitLimitDataSize)
			}
			if requestedLimit != nil {
				return nil, prioritizationError("duplicate set compute unit limit instruction")
			}
			limit := binary.LittleEndian.Uint32(instruction.Data[1:])
			requestedLimit = &limit

		case computeBudgetSetUnitPrice:
			if len(instruction.Data) != setUnitPriceDataSize {
				return nil, prioritizationError(
					"set compute unit price instruction has %d data bytes, expected %d",
					len(instruction.Data), setUnitPriceDataSize)
			}
			if requestedPrice != nil {
				return nil, prioritizationError("duplicate set compute unit price instruction")
			}
			price := binary.LittleEndian.Uint64(instruction.Data[1:])
			requestedPrice = &price

		default:
			return nil, prioritizationError("unknown compute budget instruction tag %#02x",
				instruction.Data[0])
		}
	}

	details := &ComputeBudgetDetails{}
	if requestedLimit != nil {
		details.ComputeUnitLimit = *requestedLimit
	} else {
		defaultLimit := uint64(numNonBudgetInstructions) * DefaultInstructionComputeUnitLimit
		if defaultLimit > MaxComputeUnitLimit {
			defaultLimit = MaxComputeUnitLimit
		}
		details.ComputeUnitLimit = uint32(defaultLimit)
	}
	if details.ComputeUnitLimit > MaxComputeUnitLimit {
		details.ComputeUnitLimit = MaxComputeUnitLimit
	}
	if requestedPrice != nil {
		details.ComputeUnitPrice = *requestedPrice
	}
	return details, nil
}
