package client

import (
	"context"
	stderrors "errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x/escrow"
)

// RPC is a Client of a Solana cluster.
type RPC struct {
	conn       *rpc.Client
	commitment rpc.CommitmentType
}

var _ Client = (*RPC)(nil)

// NewRPC returns a client of the JSON-RPC endpoint, reading confirmed
// state.
func NewRPC(endpoint string) *RPC {
	return &RPC{
		conn:       rpc.New(endpoint),
		commitment: rpc.CommitmentConfirmed,
	}
}

// Submit sends a transaction carrying the instruction. It returns once the
// cluster accepted it, not when it is confirmed.
func (c *RPC) Submit(ctx context.Context, ix *lockfund.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	if len(signers) == 0 {
		return solana.Signature{}, errors.Wrap(errors.ErrEmpty, "signers")
	}
	recent, err := c.conn.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Signature{}, errors.Wrapf(errors.ErrNetwork, "latest blockhash: %s", err)
	}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, errors.Wrapf(errors.ErrMsg, "build transaction: %s", err)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, errors.Wrapf(errors.ErrUnauthorized, "sign transaction: %s", err)
	}
	sig, err := c.conn.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, errors.Wrapf(errors.ErrNetwork, "send transaction: %s", err)
	}
	return sig, nil
}

func (c *RPC) ConfigAccount(ctx context.Context, addr solana.PublicKey) (*escrow.ConfigAccount, error) {
	info, err := c.conn.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{Commitment: c.commitment})
	switch {
	case stderrors.Is(err, rpc.ErrNotFound):
		return nil, errors.Wrapf(errors.ErrNotFound, "config account %s", addr)
	case err != nil:
		return nil, errors.Wrapf(errors.ErrNetwork, "account %s: %s", addr, err)
	}
	var conf escrow.ConfigAccount
	if err := conf.Unmarshal(info.Value.Data.GetBinary()); err != nil {
		return nil, errors.Wrapf(err, "config account %s", addr)
	}
	return &conf, nil
}

func (c *RPC) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	res, err := c.conn.GetBalance(ctx, addr, c.commitment)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrNetwork, "balance of %s: %s", addr, err)
	}
	return res.Value, nil
}
