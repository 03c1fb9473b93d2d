package ledgertest

import (
	"github.com/iov-one/lockfund"
)

// Tx represents a single instruction that is to be processed.
type Tx struct {
	// Instruction is returned by GetInstruction.
	Instruction *lockfund.Instruction
	// Err if set is returned by any method call.
	Err error
}

var _ lockfund.Tx = (*Tx)(nil)

func (tx *Tx) GetInstruction() (*lockfund.Instruction, error) {
	return tx.Instruction, tx.Err
}

// InstructionTx returns a transaction wrapping given instruction.
func InstructionTx(ix *lockfund.Instruction) *Tx {
	return &Tx{Instruction: ix}
}
