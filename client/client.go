package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/x/escrow"
)

// Client is a connection to a ledger running the lock fund program.
type Client interface {
	// Submit signs the instruction with all given keys and waits until it
	// is processed. The first key pays for the transaction. The returned
	// signature is the one of the first key.
	Submit(ctx context.Context, ix *lockfund.Instruction, signers ...solana.PrivateKey) (solana.Signature, error)

	// ConfigAccount returns the config account stored at given address.
	ConfigAccount(ctx context.Context, addr solana.PublicKey) (*escrow.ConfigAccount, error)

	// Balance returns the native balance of an account.
	Balance(ctx context.Context, addr solana.PublicKey) (uint64, error)
}
