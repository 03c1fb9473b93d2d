package cash

import (
	"context"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/iov-one/lockfund/store"
	"github.com/iov-one/lockfund/x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveCoins(t *testing.T) {
	alice, bob := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()

	cases := map[string]struct {
		signers   []solana.PublicKey
		fund      uint64
		amount    uint64
		wantErr   *errors.Error
		wantAlice uint64
		wantBob   uint64
	}{
		"success": {
			signers:   []solana.PublicKey{alice},
			fund:      500,
			amount:    200,
			wantAlice: 300,
			wantBob:   200,
		},
		"move everything": {
			signers: []solana.PublicKey{alice},
			fund:    500,
			amount:  500,
			wantBob: 500,
		},
		"source did not sign": {
			signers:   []solana.PublicKey{bob},
			fund:      500,
			amount:    200,
			wantErr:   errors.ErrUnauthorized,
			wantAlice: 500,
		},
		"insufficient funds": {
			signers:   []solana.PublicKey{alice},
			fund:      100,
			amount:    101,
			wantErr:   ErrInsufficientFunds,
			wantAlice: 100,
		},
		"zero amount": {
			signers:   []solana.PublicKey{alice},
			fund:      100,
			amount:    0,
			wantErr:   errors.ErrAmount,
			wantAlice: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			auth := &ledgertest.Auth{Signers: tc.signers}
			ctrl := NewController(auth)
			require.NoError(t, ctrl.Credit(db, alice, tc.fund))

			err := ctrl.MoveCoins(context.Background(), db, alice, bob, tc.amount)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
			} else {
				require.NoError(t, err)
			}

			got, err := ctrl.Balance(db, alice)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAlice, got)
			got, err = ctrl.Balance(db, bob)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestMoveCoinsWithCapability(t *testing.T) {
	program := ledgertest.NewPublicKey()
	owner := ledgertest.NewPublicKey()
	recipient := ledgertest.NewPublicKey()

	vault, bump, err := lockfund.Derive(program, "escrow", owner[:])
	require.NoError(t, err)
	capability, err := lockfund.NewCapability(program, "escrow", [][]byte{owner[:]}, bump)
	require.NoError(t, err)

	db := store.MemStore()
	ctrl := NewController(&ledgertest.Auth{})
	require.NoError(t, ctrl.Credit(db, vault, 1000))

	ctx := context.Background()
	err = ctrl.MoveCoins(ctx, db, vault, recipient, 10)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	ctx, err = x.WithCapability(lockfund.WithProgram(ctx, program), capability)
	require.NoError(t, err)
	require.NoError(t, ctrl.MoveCoins(ctx, db, vault, recipient, 10))

	got, err := ctrl.Balance(db, vault)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), got)
}

func TestCreditOverflow(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(&ledgertest.Auth{})
	addr := ledgertest.NewPublicKey()
	require.NoError(t, ctrl.Credit(db, addr, math.MaxUint64))
	err := ctrl.Credit(db, addr, 1)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestAllocate(t *testing.T) {
	payer, program := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	account := ledgertest.NewPublicKey()
	db := store.MemStore()
	ctx := context.Background()

	ctrl := NewController(&ledgertest.Auth{Signers: []solana.PublicKey{payer}})
	require.NoError(t, ctrl.Credit(db, payer, 10000))

	// The new address must authorize too.
	err := ctrl.Allocate(ctx, db, payer, account, 1000, 42, program)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	ctrl = NewController(&ledgertest.Auth{Signers: []solana.PublicKey{payer, account}})
	require.NoError(t, ctrl.Allocate(ctx, db, payer, account, 1000, 42, program))

	var acc Account
	require.NoError(t, NewBucket().One(db, account[:], &acc))
	assert.Equal(t, Account{Lamports: 1000, Space: 42, Owner: program}, acc)

	payerBalance, err := ctrl.Balance(db, payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(9000), payerBalance)

	err = ctrl.Allocate(ctx, db, payer, account, 0, 0, program)
	assert.True(t, ErrAccountInUse.Is(err))

	// A zero balance account owned by a program still exists.
	empty := ledgertest.NewPublicKey()
	ctrl = NewController(&ledgertest.Auth{Signers: []solana.PublicKey{payer, empty}})
	require.NoError(t, ctrl.Allocate(ctx, db, payer, empty, 0, 0, program))
	assert.NoError(t, NewBucket().Has(db, empty[:]))

	err = ctrl.Allocate(ctx, db, payer, ledgertest.NewPublicKey(), 100000, 0, program)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestAllocatePrefundedAddress(t *testing.T) {
	payer, program := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	account := ledgertest.NewPublicKey()
	db := store.MemStore()
	ctx := context.Background()
	ctrl := NewController(&ledgertest.Auth{Signers: []solana.PublicKey{payer, account}})
	require.NoError(t, ctrl.Credit(db, payer, 10000))

	// Anyone can send lamports to an address before it is allocated.
	require.NoError(t, ctrl.Credit(db, account, 300))

	require.NoError(t, ctrl.Allocate(ctx, db, payer, account, 1000, 42, program))
	var acc Account
	require.NoError(t, NewBucket().One(db, account[:], &acc))
	assert.Equal(t, Account{Lamports: 1000, Space: 42, Owner: program}, acc)
	payerBalance, err := ctrl.Balance(db, payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(9300), payerBalance, "only the missing lamports are paid")

	// A balance above the requested minimum is kept as is.
	rich := ledgertest.NewPublicKey()
	ctrl = NewController(&ledgertest.Auth{Signers: []solana.PublicKey{payer, rich}})
	require.NoError(t, ctrl.Credit(db, rich, 5000))
	require.NoError(t, ctrl.Allocate(ctx, db, payer, rich, 1000, 0, program))
	balance, err := ctrl.Balance(db, rich)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), balance)
	payerBalance, err = ctrl.Balance(db, payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(9300), payerBalance)
}

func TestAllocateSystemAccount(t *testing.T) {
	payer, account := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	db := store.MemStore()
	ctx := context.Background()
	ctrl := NewController(&ledgertest.Auth{Signers: []solana.PublicKey{payer, account}})
	require.NoError(t, ctrl.Credit(db, account, 7))

	require.NoError(t, ctrl.Allocate(ctx, db, payer, account, 0, 0, ProgramID))
	var acc Account
	require.NoError(t, NewBucket().One(db, account[:], &acc))
	assert.Equal(t, Account{Lamports: 7}, acc)
	assert.False(t, acc.Allocated())
}

func TestAllocateInsufficientFunds(t *testing.T) {
	payer, account := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	db := store.MemStore()
	ctrl := NewController(&ledgertest.Auth{Signers: []solana.PublicKey{payer, account}})
	require.NoError(t, ctrl.Credit(db, payer, 10))

	err := ctrl.Allocate(context.Background(), db, payer, account, 11, 0, ledgertest.NewPublicKey())
	assert.True(t, ErrInsufficientFunds.Is(err))
}
