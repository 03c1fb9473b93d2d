package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x/token"
)

var (
	CreateConfigDiscriminator   = lockfund.InstructionDiscriminator("create_config")
	TransferNativeDiscriminator = lockfund.InstructionDiscriminator("transfer_sol")
	TransferTokenDiscriminator  = lockfund.InstructionDiscriminator("transfer_token")
)

// CreateConfigParams are the arguments of the create config instruction.
type CreateConfigParams struct {
	CliffTimeDuration  uint64
	AmountPerDay       uint64
	UpdateActorMode    UpdateActorMode
	EnableTransferFull uint8
}

// DefaultCreateConfigParams returns one day of cliff and a ceiling of one
// million base units per day.
func DefaultCreateConfigParams() CreateConfigParams {
	return CreateConfigParams{
		CliffTimeDuration: 86400,
		AmountPerDay:      1_000_000,
	}
}

// CreateConfigMsg creates a lock fund.
//
// Accounts: authority (signer, writable), config account (writable), vault
// (writable), recipient, approver, system program.
type CreateConfigMsg struct {
	Program       solana.PublicKey
	Authority     solana.PublicKey
	ConfigAccount solana.PublicKey
	Vault         solana.PublicKey
	Recipient     solana.PublicKey
	Approver      solana.PublicKey
	CreateConfigParams
}

var _ lockfund.InstructionMsg = (*CreateConfigMsg)(nil)

// NewCreateConfigMsg returns a message creating the lock fund of authority
// at its derived addresses.
func NewCreateConfigMsg(programID, authority, approver, recipient solana.PublicKey, params CreateConfigParams) (*CreateConfigMsg, error) {
	addrs, err := DeriveAddresses(programID, authority)
	if err != nil {
		return nil, err
	}
	return &CreateConfigMsg{
		Program:            programID,
		Authority:          authority,
		ConfigAccount:      addrs.Config,
		Vault:              addrs.Vault,
		Recipient:          recipient,
		Approver:           approver,
		CreateConfigParams: params,
	}, nil
}

func (m *CreateConfigMsg) Validate() error {
	// Update actor mode and transfer full are stored as given.
	return requireKeys(map[string]solana.PublicKey{
		"program":        m.Program,
		"authority":      m.Authority,
		"config account": m.ConfigAccount,
		"vault":          m.Vault,
		"recipient":      m.Recipient,
		"approver":       m.Approver,
	})
}

// Instruction returns the instruction executing this message.
func (m *CreateConfigMsg) Instruction() *lockfund.Instruction {
	var buf bytes.Buffer
	buf.Write(CreateConfigDiscriminator[:])
	enc := bin.NewBorshEncoder(&buf)
	_ = enc.WriteUint64(m.CliffTimeDuration, bin.LE)
	_ = enc.WriteUint64(m.AmountPerDay, bin.LE)
	_ = enc.WriteUint8(uint8(m.UpdateActorMode))
	_ = enc.WriteUint8(m.EnableTransferFull)

	return lockfund.NewInstruction(m.Program, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.Authority, true, true),
		solana.NewAccountMeta(m.ConfigAccount, true, false),
		solana.NewAccountMeta(m.Vault, true, false),
		solana.NewAccountMeta(m.Recipient, false, false),
		solana.NewAccountMeta(m.Approver, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, buf.Bytes())
}

func (m *CreateConfigMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(ix.ProgramID(), CreateConfigDiscriminator); err != nil {
		return err
	}
	keys, err := accountKeys(ix, 6)
	if err != nil {
		return err
	}
	if !keys[5].Equals(solana.SystemProgramID) {
		return errors.Wrapf(errors.ErrMsg, "system program %s", keys[5])
	}
	dec := bin.NewBorshDecoder(ix.Args())
	var p CreateConfigParams
	if p.CliffTimeDuration, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrMsg, "cliff time duration")
	}
	if p.AmountPerDay, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrMsg, "amount per day")
	}
	mode, err := dec.ReadUint8()
	if err != nil {
		return errors.Wrap(errors.ErrMsg, "update actor mode")
	}
	p.UpdateActorMode = UpdateActorMode(mode)
	if p.EnableTransferFull, err = dec.ReadUint8(); err != nil || dec.Remaining() != 0 {
		return errors.Wrap(errors.ErrMsg, "enable transfer full")
	}

	m.Program = ix.ProgramID()
	m.Authority, m.ConfigAccount, m.Vault, m.Recipient, m.Approver = keys[0], keys[1], keys[2], keys[3], keys[4]
	m.CreateConfigParams = p
	return nil
}

// TransferNativeMsg releases lamports from the vault to the recipient.
//
// Accounts: config account (writable), vault (writable), recipient
// (writable), authority (signer, writable), approver (signer), system
// program.
type TransferNativeMsg struct {
	Program       solana.PublicKey
	ConfigAccount solana.PublicKey
	Vault         solana.PublicKey
	Recipient     solana.PublicKey
	Authority     solana.PublicKey
	Approver      solana.PublicKey
	Amount        uint64
}

var _ lockfund.InstructionMsg = (*TransferNativeMsg)(nil)

// NewTransferNativeMsg returns a message releasing lamports from the lock
// fund described by conf.
func NewTransferNativeMsg(programID, configAccount solana.PublicKey, conf *ConfigAccount, amount uint64) *TransferNativeMsg {
	return &TransferNativeMsg{
		Program:       programID,
		ConfigAccount: configAccount,
		Vault:         conf.Vault,
		Recipient:     conf.Recipient,
		Authority:     conf.Authority,
		Approver:      conf.Approver,
		Amount:        amount,
	}
}

func (m *TransferNativeMsg) Validate() error {
	errs := requireKeys(map[string]solana.PublicKey{
		"program":        m.Program,
		"config account": m.ConfigAccount,
		"vault":          m.Vault,
		"recipient":      m.Recipient,
		"authority":      m.Authority,
		"approver":       m.Approver,
	})
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount"))
	}
	return errs
}

func (m *TransferNativeMsg) Instruction() *lockfund.Instruction {
	return lockfund.NewInstruction(m.Program, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.ConfigAccount, true, false),
		solana.NewAccountMeta(m.Vault, true, false),
		solana.NewAccountMeta(m.Recipient, true, false),
		solana.NewAccountMeta(m.Authority, true, true),
		solana.NewAccountMeta(m.Approver, false, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, amountData(TransferNativeDiscriminator, m.Amount))
}

func (m *TransferNativeMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(ix.ProgramID(), TransferNativeDiscriminator); err != nil {
		return err
	}
	keys, err := accountKeys(ix, 6)
	if err != nil {
		return err
	}
	if !keys[5].Equals(solana.SystemProgramID) {
		return errors.Wrapf(errors.ErrMsg, "system program %s", keys[5])
	}
	amount, err := amountArg(ix)
	if err != nil {
		return err
	}
	m.Program = ix.ProgramID()
	m.ConfigAccount, m.Vault, m.Recipient, m.Authority, m.Approver = keys[0], keys[1], keys[2], keys[3], keys[4]
	m.Amount = amount
	return nil
}

// TransferTokenMsg releases tokens from the vault token account to the
// recipient token account.
//
// Accounts: config account (writable), vault, vault token account
// (writable), recipient token account (writable), recipient, mint
// (writable), authority (signer, writable), approver (signer), token
// program.
type TransferTokenMsg struct {
	Program        solana.PublicKey
	ConfigAccount  solana.PublicKey
	Vault          solana.PublicKey
	VaultToken     solana.PublicKey
	RecipientToken solana.PublicKey
	Recipient      solana.PublicKey
	Mint           solana.PublicKey
	Authority      solana.PublicKey
	Approver       solana.PublicKey
	TokenProgram   solana.PublicKey
	Amount         uint64
}

var _ lockfund.InstructionMsg = (*TransferTokenMsg)(nil)

// NewTransferTokenMsg returns a message releasing tokens of given mint from
// the lock fund described by conf. Token accounts are the associated
// accounts of the vault and the recipient.
func NewTransferTokenMsg(programID, configAccount solana.PublicKey, conf *ConfigAccount, mint, tokenProgram solana.PublicKey, amount uint64) (*TransferTokenMsg, error) {
	vaultToken, err := token.AssociatedAddress(conf.Vault, tokenProgram, mint)
	if err != nil {
		return nil, errors.Wrap(err, "vault token account")
	}
	recipientToken, err := token.AssociatedAddress(conf.Recipient, tokenProgram, mint)
	if err != nil {
		return nil, errors.Wrap(err, "recipient token account")
	}
	return &TransferTokenMsg{
		Program:        programID,
		ConfigAccount:  configAccount,
		Vault:          conf.Vault,
		VaultToken:     vaultToken,
		RecipientToken: recipientToken,
		Recipient:      conf.Recipient,
		Mint:           mint,
		Authority:      conf.Authority,
		Approver:       conf.Approver,
		TokenProgram:   tokenProgram,
		Amount:         amount,
	}, nil
}

func (m *TransferTokenMsg) Validate() error {
	errs := requireKeys(map[string]solana.PublicKey{
		"program":                 m.Program,
		"config account":          m.ConfigAccount,
		"vault":                   m.Vault,
		"vault token account":     m.VaultToken,
		"recipient token account": m.RecipientToken,
		"recipient":               m.Recipient,
		"mint":                    m.Mint,
		"authority":               m.Authority,
		"approver":                m.Approver,
	})
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount"))
	}
	return errs
}

func (m *TransferTokenMsg) Instruction() *lockfund.Instruction {
	return lockfund.NewInstruction(m.Program, solana.AccountMetaSlice{
		solana.NewAccountMeta(m.ConfigAccount, true, false),
		solana.NewAccountMeta(m.Vault, false, false),
		solana.NewAccountMeta(m.VaultToken, true, false),
		solana.NewAccountMeta(m.RecipientToken, true, false),
		solana.NewAccountMeta(m.Recipient, false, false),
		solana.NewAccountMeta(m.Mint, true, false),
		solana.NewAccountMeta(m.Authority, true, true),
		solana.NewAccountMeta(m.Approver, false, true),
		solana.NewAccountMeta(m.TokenProgram, false, false),
	}, amountData(TransferTokenDiscriminator, m.Amount))
}

func (m *TransferTokenMsg) UnmarshalInstruction(ix *lockfund.Instruction) error {
	if err := ix.Expect(ix.ProgramID(), TransferTokenDiscriminator); err != nil {
		return err
	}
	keys, err := accountKeys(ix, 9)
	if err != nil {
		return err
	}
	amount, err := amountArg(ix)
	if err != nil {
		return err
	}
	m.Program = ix.ProgramID()
	m.ConfigAccount, m.Vault, m.VaultToken, m.RecipientToken = keys[0], keys[1], keys[2], keys[3]
	m.Recipient, m.Mint, m.Authority, m.Approver, m.TokenProgram = keys[4], keys[5], keys[6], keys[7], keys[8]
	m.Amount = amount
	return nil
}

func requireKeys(keys map[string]solana.PublicKey) error {
	var errs error
	for name, k := range keys {
		if k.IsZero() {
			errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, name))
		}
	}
	return errs
}

func amountData(d lockfund.Discriminator, amount uint64) []byte {
	var buf bytes.Buffer
	buf.Write(d[:])
	_ = bin.NewBorshEncoder(&buf).WriteUint64(amount, bin.LE)
	return buf.Bytes()
}

func amountArg(ix *lockfund.Instruction) (uint64, error) {
	dec := bin.NewBorshDecoder(ix.Args())
	amount, err := dec.ReadUint64(bin.LE)
	if err != nil || dec.Remaining() != 0 {
		return 0, errors.Wrap(errors.ErrMsg, "amount")
	}
	return amount, nil
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
