package lockfund

import (
	"bytes"
	"encoding/hex"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/errors"
)

// DiscriminatorLength is the size of the prefix that identifies instruction,
// account and event payloads.
const DiscriminatorLength = 8

// Discriminator is the first 8 bytes of sha256("<namespace>:<name>"). It
// prefixes every instruction, account and event payload.
type Discriminator [DiscriminatorLength]byte

// NewDiscriminator computes the discriminator of the given name within a
// namespace.
func NewDiscriminator(namespace, name string) Discriminator {
	var d Discriminator
	copy(d[:], bin.Sighash(namespace, name))
	return d
}

// InstructionDiscriminator returns the discriminator of an instruction
// handler name, for example "transfer_sol".
func InstructionDiscriminator(name string) Discriminator {
	return NewDiscriminator(bin.SIGHASH_GLOBAL_NAMESPACE, name)
}

// AccountDiscriminator returns the discriminator of an account type name.
func AccountDiscriminator(name string) Discriminator {
	return NewDiscriminator("account", name)
}

// EventDiscriminator returns the discriminator of an event type name.
func EventDiscriminator(name string) Discriminator {
	return NewDiscriminator("event", name)
}

// Equal returns true if the given payload starts with this discriminator.
func (d Discriminator) Equal(payload []byte) bool {
	return len(payload) >= DiscriminatorLength && bytes.Equal(d[:], payload[:DiscriminatorLength])
}

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}

// RoutePath returns the path under which a handler for the given program
// instruction is registered.
func RoutePath(programID solana.PublicKey, d Discriminator) string {
	return programID.String() + "/" + d.String()
}

// Marshaller is anything that can be represented in binary
//
// Marshal may validate the data before serializing it and
// unless you previously validated the struct,
// errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is the decoded form of an instruction. It is just the request,
// and must be validated by the Handlers. All authentication
// information is in the wrapping Tx.
type Msg interface {
	// Validate performs stateless checks of the message content.
	Validate() error
}

// InstructionMsg is a Msg that can be decoded from an instruction.
type InstructionMsg interface {
	Msg
	UnmarshalInstruction(*Instruction) error
}

// Tx represent the data sent from the user to the ledger.
// It includes the actual instruction, along with information needed
// to authenticate the sender (cryptographic signatures),
// and anything else needed to pass through middleware.
type Tx interface {
	// GetInstruction returns the instruction we wish to execute.
	GetInstruction() (*Instruction, error)
}

// LoadMsg decodes the instruction of the transaction into the given message
// and validates it.
func LoadMsg(tx Tx, msg InstructionMsg) error {
	ix, err := tx.GetInstruction()
	if err != nil {
		return errors.Wrap(err, "cannot get instruction")
	}
	if err := msg.UnmarshalInstruction(ix); err != nil {
		return errors.Wrap(err, "cannot decode instruction")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid instruction")
	}
	return nil
}

// Instruction is a program call: the program to run, the accounts it
// touches and an opaque payload. It implements solana.Instruction so it can
// be submitted to a cluster as is.
type Instruction struct {
	programID solana.PublicKey
	accounts  solana.AccountMetaSlice
	data      []byte
}

var _ solana.Instruction = (*Instruction)(nil)

// NewInstruction returns an instruction calling given program.
func NewInstruction(programID solana.PublicKey, accounts solana.AccountMetaSlice, data []byte) *Instruction {
	return &Instruction{
		programID: programID,
		accounts:  accounts,
		data:      data,
	}
}

// ProgramID returns the program that is called.
func (ix *Instruction) ProgramID() solana.PublicKey {
	return ix.programID
}

// Accounts returns all account metas in the order the program expects them.
func (ix *Instruction) Accounts() []*solana.AccountMeta {
	return ix.accounts
}

// Data returns the raw payload.
func (ix *Instruction) Data() ([]byte, error) {
	return ix.data, nil
}

// Account returns the account meta at given position.
func (ix *Instruction) Account(i int) (*solana.AccountMeta, error) {
	if i < 0 || i >= len(ix.accounts) || ix.accounts[i] == nil {
		return nil, errors.Wrapf(errors.ErrMsg, "missing account %d", i)
	}
	return ix.accounts[i], nil
}

// Signers returns the keys of all accounts flagged as signers, without
// duplicates.
func (ix *Instruction) Signers() []solana.PublicKey {
	var res []solana.PublicKey
	seen := make(map[solana.PublicKey]struct{})
	for _, m := range ix.accounts {
		if m == nil || !m.IsSigner {
			continue
		}
		if _, ok := seen[m.PublicKey]; ok {
			continue
		}
		seen[m.PublicKey] = struct{}{}
		res = append(res, m.PublicKey)
	}
	return res
}

// Discriminator returns the 8 byte prefix of the payload.
func (ix *Instruction) Discriminator() (Discriminator, error) {
	var d Discriminator
	if len(ix.data) < DiscriminatorLength {
		return d, errors.Wrap(errors.ErrMsg, "instruction data too short")
	}
	copy(d[:], ix.data)
	return d, nil
}

// Expect returns ErrMsg unless the instruction calls given program with given
// discriminator.
func (ix *Instruction) Expect(programID solana.PublicKey, d Discriminator) error {
	if !ix.programID.Equals(programID) {
		return errors.Wrapf(errors.ErrMsg, "program %s, expected %s", ix.programID, programID)
	}
	if !d.Equal(ix.data) {
		return errors.Wrapf(errors.ErrMsg, "discriminator mismatch, expected %s", d)
	}
	return nil
}

// Args returns the payload without the discriminator.
func (ix *Instruction) Args() []byte {
	if len(ix.data) < DiscriminatorLength {
		return nil
	}
	return ix.data[DiscriminatorLength:]
}

// Path returns the routing path of this instruction.
func (ix *Instruction) Path() (string, error) {
	d, err := ix.Discriminator()
	if err != nil {
		return "", err
	}
	return RoutePath(ix.programID, d), nil
}

// Marshal serializes the instruction using borsh. The output is also what
// gets signed, so it must be deterministic.
func (ix *Instruction) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(ix.programID[:], false); err != nil {
		return nil, errors.Wrap(err, "program")
	}
	if err := enc.WriteUint32(uint32(len(ix.accounts)), bin.LE); err != nil {
		return nil, errors.Wrap(err, "accounts length")
	}
	for i, m := range ix.accounts {
		if m == nil {
			return nil, errors.Wrapf(errors.ErrMsg, "nil account %d", i)
		}
		if err := enc.WriteBytes(m.PublicKey[:], false); err != nil {
			return nil, errors.Wrap(err, "account key")
		}
		if err := enc.WriteBool(m.IsWritable); err != nil {
			return nil, errors.Wrap(err, "account writable")
		}
		if err := enc.WriteBool(m.IsSigner); err != nil {
			return nil, errors.Wrap(err, "account signer")
		}
	}
	if err := enc.WriteUint32(uint32(len(ix.data)), bin.LE); err != nil {
		return nil, errors.Wrap(err, "data length")
	}
	if err := enc.WriteBytes(ix.data, false); err != nil {
		return nil, errors.Wrap(err, "data")
	}
	return buf.Bytes(), nil
}

// Unmarshal is the reverse of Marshal.
func (ix *Instruction) Unmarshal(raw []byte) error {
	dec := bin.NewBorshDecoder(raw)
	program, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "program")
	}
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "accounts length")
	}
	if int(n) > dec.Remaining()/(solana.PublicKeyLength+2) {
		return errors.Wrapf(errors.ErrInput, "too many accounts: %d", n)
	}
	accounts := make(solana.AccountMetaSlice, 0, n)
	for i := uint32(0); i < n; i++ {
		key, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return errors.Wrap(errors.ErrInput, "account key")
		}
		writable, err := dec.ReadBool()
		if err != nil {
			return errors.Wrap(errors.ErrInput, "account writable")
		}
		signer, err := dec.ReadBool()
		if err != nil {
			return errors.Wrap(errors.ErrInput, "account signer")
		}
		accounts = append(accounts, solana.NewAccountMeta(solana.PublicKeyFromBytes(key), writable, signer))
	}
	size, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "data length")
	}
	if int(size) != dec.Remaining() {
		return errors.Wrapf(errors.ErrInput, "data length %d, %d bytes left", size, dec.Remaining())
	}
	data, err := dec.ReadNBytes(int(size))
	if err != nil {
		return errors.Wrap(errors.ErrInput, "data")
	}
	*ix = Instruction{
		programID: solana.PublicKeyFromBytes(program),
		accounts:  accounts,
		data:      data,
	}
	return nil
}
