package cash

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// ProgramID is the address of the native currency program.
var ProgramID = solana.SystemProgramID

// SendDiscriminator selects the lamports transfer instruction.
var SendDiscriminator = lockfund.InstructionDiscriminator("transfer")

// SendMsg moves lamports from a signing account to any address.
//
// Accounts: from (signer, writable), to (writable).
type SendMsg struct {
	From     solana.PublicKey
	To       solana.PublicKey
	Lamports uint64
}

var _ lockfund.InstructionMsg = (*SendMsg)(nil)

func (m *SendMsg) Validate() error {
	var errs error
	if m.From.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "from"))
	}
	if m.To.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "to"))
	}
	if m.Lamports == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "lamports"))
	}
	return errs
}

// Instruction returns the instruction executing this message.
func (m *SendMsg) Instruction() *lockfund.Instruction {
	var buf bytes.Buffer
	buf.Write(SendDiscriminator[:])
	// Writing into a buffer cannot fail.
	_ = bin.NewBorshEncoder(&buf).WriteUint64(m.Lamports, bin.LE)

	return lockfund.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.From, true, true),
		solana.NewAccountMeta(m.To, true, false),
	}, buf.Bytes())
}

func (m *SendMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(ProgramID, SendDiscriminator); err != nil {
		return err
	}
	from, err := ix.Account(0)
	if err != nil {
		return err
	}
	to, err := ix.Account(1)
	if err != nil {
		return err
	}
	dec := bin.NewBorshDecoder(ix.Args())
	lamports, err := dec.ReadUint64(bin.LE)
	if err != nil || dec.Remaining() != 0 {
		return errors.Wrap(errors.ErrMsg, "lamports")
	}
	m.From = from.PublicKey
	m.To = to.PublicKey
	m.Lamports = lamports
	return nil
}
