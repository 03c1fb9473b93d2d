package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/app"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x/cash"
	"github.com/iov-one/lockfund/x/escrow"
	"github.com/iov-one/lockfund/x/sigs"
)

// Local is a Client executing instructions against an in-process ledger.
type Local struct {
	ledger *app.Ledger
}

var _ Client = (*Local)(nil)

// NewLocal returns a client of given ledger. The ledger genesis must be
// loaded.
func NewLocal(ledger *app.Ledger) *Local {
	return &Local{ledger: ledger}
}

// Submit executes the instruction in a new block. Signature nonces are
// consumed even if the instruction fails. Concurrent submissions are
// serialized by the ledger, each one signs with the nonces committed by the
// previous ones.
func (c *Local) Submit(ctx context.Context, ix *lockfund.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	if len(signers) == 0 {
		return solana.Signature{}, errors.Wrap(errors.ErrEmpty, "signers")
	}
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, errors.Wrap(errors.ErrNetwork, err.Error())
	}

	chainID := c.ledger.ChainID()
	var tx *sigs.Tx
	_, err := c.ledger.Execute(func(db lockfund.ReadOnlyKVStore) ([]byte, error) {
		tx = sigs.NewTx(ix)
		for _, key := range signers {
			seq, err := sigs.NextSequence(db, key.PublicKey())
			if err != nil {
				return nil, err
			}
			if err := tx.Sign(key, chainID, seq); err != nil {
				return nil, errors.Wrapf(err, "sign with %s", key.PublicKey())
			}
		}
		return tx.Marshal()
	})
	if err != nil {
		return solana.Signature{}, err
	}
	return tx.Signatures[0].Signature, nil
}

func (c *Local) ConfigAccount(ctx context.Context, addr solana.PublicKey) (*escrow.ConfigAccount, error) {
	var conf *escrow.ConfigAccount
	err := c.ledger.View(func(db lockfund.ReadOnlyKVStore) error {
		var err error
		conf, err = escrow.NewBucket().Get(db, addr)
		return err
	})
	return conf, err
}

func (c *Local) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := c.ledger.View(func(db lockfund.ReadOnlyKVStore) error {
		acc, err := cash.NewBucket().GetOrCreate(db, addr)
		if err != nil {
			return err
		}
		lamports = acc.Lamports
		return nil
	})
	return lamports, err
}
