/*
Package app links together all the various components
to construct the lock fund ledger.
*/
package app

import (
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/app"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/store"
	"github.com/iov-one/lockfund/x"
	"github.com/iov-one/lockfund/x/cash"
	"github.com/iov-one/lockfund/x/escrow"
	"github.com/iov-one/lockfund/x/sigs"
	"github.com/iov-one/lockfund/x/token"
	"github.com/iov-one/lockfund/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by the ledger Info call.
const Name = "lockfund"

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, event persistence and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce even if the
		// instruction fails
		utils.NewSavepoint().OnDeliver(),
		utils.NewEventLog(),
	)
}

// Router returns a router dispatching to the native, token and lock fund
// programs.
func Router(authFn x.Authenticator, programID solana.PublicKey) *app.Router {
	r := app.NewRouter()
	bank := cash.NewController(authFn)
	tokens := token.NewController(authFn)
	cash.RegisterRoutes(r, authFn, bank)
	token.RegisterRoutes(r, authFn, tokens)
	escrow.RegisterRoutes(r, authFn, programID, bank, tokens)
	return r
}

// Initializers returns all genesis initializers, in the order they must be
// applied.
func Initializers() lockfund.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		token.Initializer{},
		escrow.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into the Ledger.
func Stack(programID solana.PublicKey) lockfund.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn, programID))
}

// Application opens the ledger persisted at dbPath, or an in-memory one if
// dbPath is empty. The lock fund program address is taken from the
// committed state, or from gen if the chain was not initialized yet.
func Application(dbPath string, gen *app.Genesis, logger log.Logger) (*app.Ledger, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return nil, err
	}
	programID, err := ProgramID(kv, gen)
	if err != nil {
		kv.Close()
		return nil, err
	}
	ledger, err := app.NewLedger(Name, kv, sigs.TxDecoder, Stack(programID), Initializers())
	if err != nil {
		kv.Close()
		return nil, err
	}
	ledger.WithLogger(logger.With("module", Name))
	if gen != nil && ledger.ChainID() == "" {
		if err := ledger.InitChain(*gen); err != nil {
			ledger.Close()
			return nil, err
		}
		if _, err := ledger.Commit(); err != nil {
			ledger.Close()
			return nil, err
		}
	}
	logger.Info("ledger ready", "program", programID, "chain_id", ledger.ChainID())
	return ledger, nil
}

// ProgramID returns the address the lock fund program runs under.
func ProgramID(kv lockfund.CommitKVStore, gen *app.Genesis) (solana.PublicKey, error) {
	db := kv.CacheWrap()
	defer db.Discard()

	chainID, err := app.LoadChainID(db)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if gen != nil && chainID == "" {
		// Apply the configuration to the scratch pad only.
		if err := (escrow.Initializer{}).FromGenesis(gen.AppState, db); err != nil {
			return solana.PublicKey{}, err
		}
	}
	conf, err := escrow.LoadConfiguration(db)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return conf.ProgramID, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (lockfund.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return store.MemLevelDB()
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database path: %s", dbPath)
	}
	return store.OpenLevelDB(path)
}
