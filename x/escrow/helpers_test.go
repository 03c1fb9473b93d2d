package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/ledgertest"
	"github.com/iov-one/lockfund/store"
	"github.com/iov-one/lockfund/x/cash"
	"github.com/iov-one/lockfund/x/token"
	"github.com/iov-one/lockfund/x/utils"
	"github.com/stretchr/testify/require"
)

// testEnv runs the lock fund program together with the native and token
// ledgers it calls into.
type testEnv struct {
	db      lockfund.CacheableKVStore
	auth    *ledgertest.CtxAuth
	bank    cash.BaseController
	tokens  token.BaseController
	routes  map[string]lockfund.Handler
	program solana.PublicKey
	now     time.Time
}

func (e *testEnv) Handle(path string, h lockfund.Handler) {
	e.routes[path] = ledgertest.Decorate(h, utils.NewSavepoint().OnDeliver())
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	auth := &ledgertest.CtxAuth{Key: "signers"}
	e := &testEnv{
		db:      store.MemStore(),
		auth:    auth,
		bank:    cash.NewController(auth),
		tokens:  token.NewController(auth),
		routes:  make(map[string]lockfund.Handler),
		program: DefaultProgramID,
		now:     time.Unix(1700000000, 0),
	}
	RegisterRoutes(e, auth, e.program, e.bank, e.tokens)
	cash.RegisterRoutes(e, auth, e.bank)
	token.RegisterRoutes(e, auth, e.tokens)
	return e
}

func (e *testEnv) ctx(signers ...solana.PublicKey) lockfund.Context {
	ctx := lockfund.WithBlockTime(context.Background(), e.now)
	return e.auth.SetSigners(ctx, signers...)
}

// deliver routes the instruction the way the ledger does: it selects the
// handler by path and executes it as the called program.
func (e *testEnv) deliver(t testing.TB, ix *lockfund.Instruction, signers ...solana.PublicKey) (*lockfund.DeliverResult, error) {
	t.Helper()
	path, err := ix.Path()
	require.NoError(t, err)
	h, ok := e.routes[path]
	require.True(t, ok, "no route %s", path)

	ctx := lockfund.WithProgram(e.ctx(signers...), ix.ProgramID())
	tx := ledgertest.InstructionTx(ix)
	if _, err := h.Check(ctx, e.db, tx); err != nil {
		return nil, err
	}
	return h.Deliver(ctx, e.db, tx)
}

func (e *testEnv) fund(t testing.TB, addr solana.PublicKey, lamports uint64) {
	t.Helper()
	require.NoError(t, e.bank.Credit(e.db, addr, lamports))
}

func (e *testEnv) balance(t testing.TB, addr solana.PublicKey) uint64 {
	t.Helper()
	b, err := e.bank.Balance(e.db, addr)
	require.NoError(t, err)
	return b
}

func (e *testEnv) tokenBalance(t testing.TB, addr solana.PublicKey) uint64 {
	t.Helper()
	b, err := e.tokens.Balance(e.db, addr)
	require.NoError(t, err)
	return b
}

// createConfig creates a lock fund with the default parameters.
func (e *testEnv) createConfig(t testing.TB, authority, approver, recipient solana.PublicKey) (solana.PublicKey, *ConfigAccount) {
	t.Helper()
	e.fund(t, authority, 10_000_000)
	msg, err := NewCreateConfigMsg(e.program, authority, approver, recipient, DefaultCreateConfigParams())
	require.NoError(t, err)
	_, err = e.deliver(t, msg.Instruction(), authority)
	require.NoError(t, err)

	conf, err := NewBucket().Get(e.db, msg.ConfigAccount)
	require.NoError(t, err)
	return msg.ConfigAccount, conf
}
