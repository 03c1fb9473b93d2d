package sigs

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

//----------------- Decorator ----------------
//
// This is just a binding from the functionality into the
// Application stack, not much business logic here.

// Decorator verifies the signatures and adds them to the context
type Decorator struct{}

var _ lockfund.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator,
// which appends the chainID before checking the signature,
// and requires every account flagged as signer to be signed for
func NewDecorator() Decorator {
	return Decorator{}
}

// Check verifies signatures before calling down the stack.
func (d Decorator) Check(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Checker) (*lockfund.CheckResult, error) {
	ctx, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver verifies signatures before calling down the stack.
func (d Decorator) Deliver(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Deliverer) (*lockfund.DeliverResult, error) {
	ctx, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) authenticate(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx) (lockfund.Context, error) {
	ix, err := tx.GetInstruction()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get instruction")
	}

	var signers []solana.PublicKey
	if stx, ok := tx.(SignedTx); ok {
		signers, err = VerifyTxSignatures(store, stx, lockfund.GetChainID(ctx))
		if err != nil {
			return nil, errors.Wrap(err, "cannot verify signatures")
		}
	}

	for _, required := range ix.Signers() {
		if !containsKey(signers, required) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "missing signature of %s", required)
		}
	}
	return withSigners(ctx, signers), nil
}

func containsKey(keys []solana.PublicKey, k solana.PublicKey) bool {
	for _, c := range keys {
		if c.Equals(k) {
			return true
		}
	}
	return false
}
