package sigs

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// maxSignatures bounds the decoding of untrusted input.
const maxSignatures = 16

// Tx is the wire format of a ledger transaction: a single instruction
// together with the signatures authorizing it.
type Tx struct {
	Instruction *lockfund.Instruction
	Signatures  []*StdSignature
}

// make sure tx fulfills all interfaces
var _ lockfund.Tx = (*Tx)(nil)
var _ SignedTx = (*Tx)(nil)

// NewTx returns an unsigned transaction executing ix.
func NewTx(ix *lockfund.Instruction) *Tx {
	return &Tx{Instruction: ix}
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (lockfund.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetInstruction returns the instruction to execute.
func (tx *Tx) GetInstruction() (*lockfund.Instruction, error) {
	if tx.Instruction == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "instruction")
	}
	return tx.Instruction, nil
}

// GetSignBytes returns the bytes to sign. Signatures are not part of it.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	ix, err := tx.GetInstruction()
	if err != nil {
		return nil, err
	}
	return ix.Marshal()
}

// GetSignatures returns all signatures collected so far.
func (tx *Tx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

// Sign appends the signature of key, consuming nonce seq.
func (tx *Tx) Sign(key solana.PrivateKey, chainID string, seq int64) error {
	sig, err := SignTx(key, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// Marshal serializes the transaction using borsh: the length prefixed
// instruction followed by the signatures.
func (tx *Tx) Marshal() ([]byte, error) {
	raw, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteUint32(uint32(len(raw)), bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(raw, false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(len(tx.Signatures))); err != nil {
		return nil, err
	}
	for i, s := range tx.Signatures {
		if s == nil {
			return nil, errors.Wrapf(errors.ErrEmpty, "signature %d", i)
		}
		if err := enc.WriteBytes(s.Pubkey[:], false); err != nil {
			return nil, err
		}
		if err := enc.WriteBytes(s.Signature[:], false); err != nil {
			return nil, err
		}
		if err := enc.WriteInt64(s.Sequence, bin.LE); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal is the reverse of Marshal.
func (tx *Tx) Unmarshal(raw []byte) error {
	dec := bin.NewBorshDecoder(raw)
	size, err := dec.ReadUint32(bin.LE)
	if err != nil || int(size) > dec.Remaining() {
		return errors.Wrap(errors.ErrInput, "instruction length")
	}
	ixBytes, err := dec.ReadNBytes(int(size))
	if err != nil {
		return errors.Wrap(errors.ErrInput, "instruction")
	}
	var ix lockfund.Instruction
	if err := ix.Unmarshal(ixBytes); err != nil {
		return err
	}

	n, err := dec.ReadUint8()
	if err != nil {
		return errors.Wrap(errors.ErrInput, "signature count")
	}
	if n > maxSignatures {
		return errors.Wrapf(errors.ErrInput, "too many signatures: %d", n)
	}
	signatures := make([]*StdSignature, 0, n)
	for i := uint8(0); i < n; i++ {
		key, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return errors.Wrap(errors.ErrInput, "signature public key")
		}
		sig, err := dec.ReadNBytes(len(solana.Signature{}))
		if err != nil {
			return errors.Wrap(errors.ErrInput, "signature")
		}
		seq, err := dec.ReadInt64(bin.LE)
		if err != nil {
			return errors.Wrap(errors.ErrInput, "signature sequence")
		}
		s := &StdSignature{
			Pubkey:   solana.PublicKeyFromBytes(key),
			Sequence: seq,
		}
		copy(s.Signature[:], sig)
		signatures = append(signatures, s)
	}
	if dec.Remaining() != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing bytes", dec.Remaining())
	}
	*tx = Tx{Instruction: &ix, Signatures: signatures}
	return nil
}
