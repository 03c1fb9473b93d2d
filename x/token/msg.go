package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

var (
	CreateMintDiscriminator    = lockfund.InstructionDiscriminator("initialize_mint")
	CreateAccountDiscriminator = lockfund.InstructionDiscriminator("create")
	MintToDiscriminator        = lockfund.InstructionDiscriminator("mint_to")
	TransferDiscriminator      = lockfund.InstructionDiscriminator("transfer_checked")
)

// CreateMintMsg registers a new mint.
//
// Accounts: mint (signer, writable).
type CreateMintMsg struct {
	Program   solana.PublicKey
	Mint      solana.PublicKey
	Decimals  uint8
	Authority solana.PublicKey
}

var _ lockfund.InstructionMsg = (*CreateMintMsg)(nil)

func (m *CreateMintMsg) Validate() error {
	var errs error
	if _, err := InterfaceOf(m.Program); err != nil {
		errs = errors.Append(errs, err)
	}
	if m.Mint.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "mint"))
	}
	if m.Authority.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "authority"))
	}
	if m.Decimals > MaxDecimals {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrInput, "decimals %d", m.Decimals))
	}
	return errs
}

// Instruction returns the instruction executing this message.
func (m *CreateMintMsg) Instruction() *lockfund.Instruction {
	var buf bytes.Buffer
	buf.Write(CreateMintDiscriminator[:])
	enc := bin.NewBorshEncoder(&buf)
	_ = enc.WriteUint8(m.Decimals)
	_ = enc.WriteBytes(m.Authority[:], false)
	return lockfund.NewInstruction(m.Program, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.Mint, true, true),
	}, buf.Bytes())
}

func (m *CreateMintMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(ix.ProgramID(), CreateMintDiscriminator); err != nil {
		return err
	}
	mint, err := ix.Account(0)
	if err != nil {
		return err
	}
	dec := bin.NewBorshDecoder(ix.Args())
	decimals, err := dec.ReadUint8()
	if err != nil {
		return errors.Wrap(errors.ErrMsg, "decimals")
	}
	authority, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil || dec.Remaining() != 0 {
		return errors.Wrap(errors.ErrMsg, "authority")
	}
	m.Program = ix.ProgramID()
	m.Mint = mint.PublicKey
	m.Decimals = decimals
	m.Authority = solana.PublicKeyFromBytes(authority)
	return nil
}

// CreateAccountMsg opens the associated token account of an owner. It is
// executed by the associated token account program.
//
// Accounts: payer (signer, writable), associated account (writable), owner,
// mint, token program.
type CreateAccountMsg struct {
	Payer   solana.PublicKey
	Account solana.PublicKey
	Owner   solana.PublicKey
	Mint    solana.PublicKey
	Program solana.PublicKey
}

var _ lockfund.InstructionMsg = (*CreateAccountMsg)(nil)

// NewCreateAccountMsg returns a message opening the associated token
// account of owner.
func NewCreateAccountMsg(payer, owner, mint, program solana.PublicKey) (*CreateAccountMsg, error) {
	addr, err := AssociatedAddress(owner, program, mint)
	if err != nil {
		return nil, err
	}
	return &CreateAccountMsg{
		Payer:   payer,
		Account: addr,
		Owner:   owner,
		Mint:    mint,
		Program: program,
	}, nil
}

func (m *CreateAccountMsg) Validate() error {
	var errs error
	if m.Payer.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "payer"))
	}
	if m.Owner.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "owner"))
	}
	if m.Mint.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "mint"))
	}
	if _, err := InterfaceOf(m.Program); err != nil {
		return errors.Append(errs, err)
	}
	if addr, err := AssociatedAddress(m.Owner, m.Program, m.Mint); err != nil {
		errs = errors.Append(errs, err)
	} else if !addr.Equals(m.Account) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrInput, "associated account must be %s", addr))
	}
	return errs
}

func (m *CreateAccountMsg) Instruction() *lockfund.Instruction {
	return lockfund.NewInstruction(AssociatedProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.Payer, true, true),
		solana.NewAccountMeta(m.Account, true, false),
		solana.NewAccountMeta(m.Owner, false, false),
		solana.NewAccountMeta(m.Mint, false, false),
		solana.NewAccountMeta(m.Program, false, false),
	}, CreateAccountDiscriminator[:])
}

func (m *CreateAccountMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(AssociatedProgramID, CreateAccountDiscriminator); err != nil {
		return err
	}
	if len(ix.Args()) != 0 {
		return errors.Wrap(errors.ErrMsg, "unexpected arguments")
	}
	keys, err := accountKeys(ix, 5)
	if err != nil {
		return err
	}
	m.Payer, m.Account, m.Owner, m.Mint, m.Program = keys[0], keys[1], keys[2], keys[3], keys[4]
	return nil
}

// MintToMsg issues tokens.
//
// Accounts: mint (writable), destination (writable), authority (signer).
type MintToMsg struct {
	Program     solana.PublicKey
	Mint        solana.PublicKey
	Destination solana.PublicKey
	Authority   solana.PublicKey
	Amount      uint64
}

var _ lockfund.InstructionMsg = (*MintToMsg)(nil)

func (m *MintToMsg) Validate() error {
	var errs error
	if _, err := InterfaceOf(m.Program); err != nil {
		errs = errors.Append(errs, err)
	}
	if m.Mint.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "mint"))
	}
	if m.Destination.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "destination"))
	}
	if m.Authority.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "authority"))
	}
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount"))
	}
	return errs
}

func (m *MintToMsg) Instruction() *lockfund.Instruction {
	return lockfund.NewInstruction(m.Program, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.Mint, true, false),
		solana.NewAccountMeta(m.Destination, true, false),
		solana.NewAccountMeta(m.Authority, false, true),
	}, amountData(MintToDiscriminator, m.Amount))
}

func (m *MintToMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(ix.ProgramID(), MintToDiscriminator); err != nil {
		return err
	}
	keys, err := accountKeys(ix, 3)
	if err != nil {
		return err
	}
	dec := bin.NewBorshDecoder(ix.Args())
	amount, err := dec.ReadUint64(bin.LE)
	if err != nil || dec.Remaining() != 0 {
		return errors.Wrap(errors.ErrMsg, "amount")
	}
	m.Program = ix.ProgramID()
	m.Mint, m.Destination, m.Authority = keys[0], keys[1], keys[2]
	m.Amount = amount
	return nil
}

// TransferMsg moves tokens between two accounts of the same mint.
//
// Accounts: source (writable), mint, destination (writable), owner
// (signer).
type TransferMsg struct {
	Program     solana.PublicKey
	Source      solana.PublicKey
	Mint        solana.PublicKey
	Destination solana.PublicKey
	Owner       solana.PublicKey
	Amount      uint64
	Decimals    uint8
}

var _ lockfund.InstructionMsg = (*TransferMsg)(nil)

func (m *TransferMsg) Validate() error {
	var errs error
	if _, err := InterfaceOf(m.Program); err != nil {
		errs = errors.Append(errs, err)
	}
	if m.Source.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "source"))
	}
	if m.Mint.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "mint"))
	}
	if m.Destination.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "destination"))
	}
	if m.Owner.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "owner"))
	}
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount"))
	}
	return errs
}

func (m *TransferMsg) Instruction() *lockfund.Instruction {
	data := amountData(TransferDiscriminator, m.Amount)
	data = append(data, m.Decimals)
	return lockfund.NewInstruction(m.Program, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.Source, true, false),
		solana.NewAccountMeta(m.Mint, false, false),
		solana.NewAccountMeta(m.Destination, true, false),
		solana.NewAccountMeta(m.Owner, false, true),
	}, data)
}

func (m *TransferMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(ix.ProgramID(), TransferDiscriminator); err != nil {
		return err
	}
	keys, err := accountKeys(ix, 4)
	if err != nil {
		return err
	}
	dec := bin.NewBorshDecoder(ix.Args())
	amount, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrMsg, "amount")
	}
	decimals, err := dec.ReadUint8()
	if err != nil || dec.Remaining() != 0 {
		return errors.Wrap(errors.ErrMsg, "decimals")
	}
	m.Program = ix.ProgramID()
	m.Source, m.Mint, m.Destination, m.Owner = keys[0], keys[1], keys[2], keys[3]
	m.Amount = amount
	m.Decimals = decimals
	return nil
}

func amountData(d lockfund.Discriminator, amount uint64) []byte {
	var buf bytes.Buffer
	buf.Write(d[:])
	_ = bin.NewBorshEncoder(&buf).WriteUint64(amount, bin.LE)
	return buf.Bytes()
}

// accountKeys returns the keys of the first n accounts of the instruction.
func accountKeys(ix *lockfund.Instruction, n int) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		meta, err := ix.Account(i)
		if err != nil {
			return nil, err
		}
		keys[i] = meta.PublicKey
	}
	return keys, nil
}
