package cash

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

func TestSendHandler(t *testing.T) {
	alice, bob := ledgertest.NewPublicKey(), ledgertest.NewPublicKey()

	cases := map[string]struct {
		signers  []solana.PublicKey
		msg      SendMsg
		wantErr  *errors.Error
		wantBob  uint64
		checkErr *errors.Error
	}{
		"success": {
			signers: []solana.PublicKey{alice},
			msg:     SendMsg{From: alice, To: bob, Lamports: 300},
			wantBob: 300,
		},
		"missing signature": {
			signers:  []solana.PublicKey{bob},
			msg:      SendMsg{From: alice, To: bob, Lamports: 300},
			wantErr:  errors.ErrUnauthorized,
			checkErr: errors.ErrUnauthorized,
		},
		"not enough lamports": {
			signers: []solana.PublicKey{alice},
			msg:     SendMsg{From: alice, To: bob, Lamports: 1001},
			wantErr: ErrInsufficientFunds,
		},
		"zero amount": {
			signers:  []solana.PublicKey{alice},
			msg:      SendMsg{From: alice, To: bob},
			wantErr:  errors.ErrAmount,
			checkErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			auth := &ledgertest.Auth{Signers: tc.signers}
			ctrl := NewController(auth)
			require.NoError(t, ctrl.Credit(db, alice, 1000))

			h := NewSendHandler(auth, ctrl)
			tx := ledgertest.InstructionTx(tc.msg.Instruction())
			ctx := context.Background()

			_, err := h.Check(ctx, db, tx)
			if tc.checkErr != nil {
				assert.True(t, tc.checkErr.Is(err), "%+v", err)
			} else {
				require.NoError(t, err)
			}

			_, err = h.Deliver(ctx, db, tx)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
			} else {
				require.NoError(t, err)
			}

			got, err := ctrl.Balance(db, bob)
			require.NoError(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestSendMsgInstruction(t *testing.T) {
	msg := SendMsg{From: ledgertest.NewPublicKey(), To: ledgertest.NewPublicKey(), Lamports: 77}
	ix := msg.Instruction()

	assert.True(t, ix.ProgramID().Equals(solana.SystemProgramID))
	assert.Equal(t, []solana.PublicKey{msg.From}, ix.Signers())

	var got SendMsg
	require.NoError(t, got.UnmarshalInstruction(ix))
	assert.Equal(t, msg, got)

	other := lockfund.NewInstruction(ledgertest.NewPublicKey(), ix.Accounts(), mustData(t, ix))
	assert.True(t, errors.ErrMsg.Is(got.UnmarshalInstruction(other)))

	short := lockfund.NewInstruction(ProgramID, ix.Accounts()[:1], mustData(t, ix))
	assert.True(t, errors.ErrMsg.Is(got.UnmarshalInstruction(short)))
}

func mustData(t testing.TB, ix *lockfund.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

func TestGenesis(t *testing.T) {
	alice := ledgertest.NewPublicKey()
	genesis := `{
		"conf": {"cash": {"lamports_per_byte_year": 10, "exemption_years": 1}},
		"cash": [{"address": "` + alice.String() + `", "lamports": 5000}]
	}`
	var opts lockfund.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	balance, err := NewController(&ledgertest.Auth{}).Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), balance)

	conf, err := LoadConfiguration(db)
	require.NoError(t, err)
	assert.Equal(t, Configuration{LamportsPerByteYear: 10, ExemptionYears: 1}, conf)

	// Loading the same accounts twice is a mistake.
	err = Initializer{}.FromGenesis(opts, db)
	assert.True(t, errors.ErrDuplicate.Is(err))
}
