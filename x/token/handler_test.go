package token

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/iov-one/lockfund/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routes collects registered handlers.
type routes map[string]lockfund.Handler

func (r routes) Handle(path string, h lockfund.Handler) {
	r[path] = h
}

func (r routes) deliver(t testing.TB, ctx lockfund.Context, db lockfund.KVStore, ix *lockfund.Instruction) (*lockfund.DeliverResult, error) {
	t.Helper()
	path, err := ix.Path()
	require.NoError(t, err)
	h, ok := r[path]
	require.True(t, ok, "no handler for %s", path)
	tx := ledgertest.InstructionTx(ix)
	if _, err := h.Check(ctx, db, tx); err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, tx)
}

func TestHandlers(t *testing.T) {
	mint, authority := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	alice, bob := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	program := solana.Token2022ProgramID

	auth := &ledgertest.CtxAuth{Key: "auth"}
	r := make(routes)
	RegisterRoutes(r, auth, NewController(auth))
	assert.Len(t, r, 7)

	db := store.MemStore()
	ctx := context.Background()

	createMint := &CreateMintMsg{Program: program, Mint: mint, Decimals: 2, Authority: authority}
	_, err := r.deliver(t, ctx, db, createMint.Instruction())
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = r.deliver(t, auth.SetSigners(ctx, mint), db, createMint.Instruction())
	require.NoError(t, err)

	var atas []solana.PublicKey
	for _, owner := range []solana.PublicKey{alice, bob} {
		msg, err := NewCreateAccountMsg(alice, owner, mint, program)
		require.NoError(t, err)
		res, err := r.deliver(t, auth.SetSigners(ctx, alice), db, msg.Instruction())
		require.NoError(t, err)
		assert.Equal(t, msg.Account[:], res.Data)
		atas = append(atas, msg.Account)
	}

	mintTo := &MintToMsg{Program: program, Mint: mint, Destination: atas[0], Authority: authority, Amount: 500}
	_, err = r.deliver(t, auth.SetSigners(ctx, alice), db, mintTo.Instruction())
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = r.deliver(t, auth.SetSigners(ctx, authority), db, mintTo.Instruction())
	require.NoError(t, err)

	transfer := &TransferMsg{Program: program, Source: atas[0], Mint: mint, Destination: atas[1], Owner: alice, Amount: 120, Decimals: 2}
	_, err = r.deliver(t, auth.SetSigners(ctx, alice), db, transfer.Instruction())
	require.NoError(t, err)

	ctrl := NewController(auth)
	got, err := ctrl.Balance(db, atas[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(380), got)
	got, err = ctrl.Balance(db, atas[1])
	require.NoError(t, err)
	assert.Equal(t, uint64(120), got)
}

func TestGenesis(t *testing.T) {
	mint, authority, owner := ledgertest.NewPublicKey(), ledgertest.NewPublicKey(), ledgertest.NewPublicKey()
	genesis := `{"token": {
		"mints": [{"address": "` + mint.String() + `", "decimals": 6, "authority": "` + authority.String() + `", "program": "` + solana.TokenProgramID.String() + `"}],
		"accounts": [{"owner": "` + owner.String() + `", "mint": "` + mint.String() + `", "amount": 700}]
	}}`
	var opts lockfund.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	ata, err := AssociatedAddress(owner, solana.TokenProgramID, mint)
	require.NoError(t, err)
	acc, err := NewAccountBucket().Get(db, ata)
	require.NoError(t, err)
	assert.Equal(t, Account{Mint: mint, Owner: owner, Amount: 700, Program: solana.TokenProgramID}, *acc)

	m, err := NewMintBucket().Get(db, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), m.Supply)
}
