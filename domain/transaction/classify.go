package transaction

// IsSimpleVote reports whether the transaction is a plain consensus vote:
// a single instruction invoking the vote program. Must only be called on a
// sanitized transaction.
func (tx *Transaction) IsSimpleVote() bool {
	if len(tx.Message.Instructions) != 1 {
		return false
	}
	return tx.Message.ProgramID(&tx.Message.Instructions[0]) == VoteProgramID
}

// PrecompileSignatureCount returns the total number of signatures the
// transaction's precompile instructions declare. Each precompile instruction
// states its signature count in its first data byte. Must only be called on
// a sanitized transaction.
func (tx *Transaction) PrecompileSignatureCount() uint64 {
	count := uint64(0)
	for i := range tx.Message.Instructions {
		instruction := &tx.Message.Instructions[i]
		if _, ok := precompileProgramIDs[tx.Message.ProgramID(instruction)]; !ok {
			continue
		}
		if len(instruction.Data) == 0 {
			continue
		}
		count += uint64(instruction.Data[0])
	}
	return count
}
