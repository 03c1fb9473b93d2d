package sigs

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the sigs.Decorator
type SignedTx interface {
	lockfund.Tx

	// GetSignBytes returns the canonical byte representation of the
	// instruction.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the
	// instruction.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature of a single key together with the nonce it
// consumes.
type StdSignature struct {
	Pubkey    solana.PublicKey
	Signature solana.Signature
	Sequence  int64
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey.IsZero() {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if s.Signature == (solana.Signature{}) {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}
