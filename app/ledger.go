package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// TxDecoder can parse bytes into a Tx
type TxDecoder func(txBytes []byte) (lockfund.Tx, error)

// Ledger contains a data store and all info needed to process transactions
// against it.
//
// Transactions are executed in blocks. BeginBlock sets the height and the
// block time every handler reads, CheckTx and DeliverTx run the handler
// stack and Commit persists everything delivered since the last commit.
// All methods are safe for concurrent use.
type Ledger struct {
	mu sync.Mutex

	logger log.Logger

	// name is what is returned from Info
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	decoder TxDecoder
	handler lockfund.Handler

	// Code to initialize from a genesis file
	initializer lockfund.Initializer

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	clock func() time.Time

	// baseContext contains context info that is valid for
	// lifetime of this ledger (eg. chainID)
	baseContext lockfund.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height, time), reset on BeginBlock
	blockContext lockfund.Context
}

// NewLedger initializes a ledger on top of given store. The chain id is
// loaded from the store if the genesis was already applied.
func NewLedger(name string, store lockfund.CommitKVStore, decoder TxDecoder, handler lockfund.Handler, init lockfund.Initializer) (*Ledger, error) {
	l := &Ledger{
		name:        name,
		store:       NewCommitStore(store),
		decoder:     decoder,
		handler:     handler,
		initializer: init,
		clock:       time.Now,
		baseContext: context.Background(),
	}
	l.WithLogger(log.NewNopLogger())

	chainID, err := LoadChainID(l.store.DeliverStore())
	if err != nil {
		return nil, err
	}
	if chainID != "" {
		l.chainID = chainID
		l.baseContext = lockfund.WithChainID(l.baseContext, chainID)
	}
	return l, nil
}

// WithLogger sets the logger on the Ledger and returns it, to make it easy
// to chain in initialization.
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.baseContext = lockfund.WithLogger(l.baseContext, logger)
	l.logger = logger
	return l
}

// WithClock replaces the source of block times.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.clock = now
	return l
}

// Logger returns the ledger base logger
func (l *Ledger) Logger() log.Logger {
	return l.logger
}

// ChainID returns the current chainID, empty before InitChain.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Info returns the name of the ledger and its last committed version.
func (l *Ledger) Info() (string, lockfund.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, err := l.store.CommitInfo()
	return l.name, id, err
}

// InitChain applies the genesis state. It can be called only once in the
// lifetime of a store. The state is persisted with the next Commit.
func (l *Ledger) InitChain(gen Genesis) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis previously loaded for chain: %s", l.chainID)
	}
	if err := saveChainID(l.store.DeliverStore(), gen.ChainID); err != nil {
		return err
	}
	if l.initializer != nil {
		if err := l.initializer.FromGenesis(gen.AppState, l.store.DeliverStore()); err != nil {
			return errors.Wrap(err, "genesis")
		}
	}
	l.chainID = gen.ChainID
	l.baseContext = lockfund.WithChainID(l.baseContext, gen.ChainID)
	l.logger.Info("Genesis loaded", "chain_id", gen.ChainID)
	return nil
}

// BeginBlock opens the next block, stamped with the current clock time.
func (l *Ledger) BeginBlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.beginBlock()
}

func (l *Ledger) beginBlock() error {
	if l.chainID == "" {
		return errors.Wrap(errors.ErrState, "genesis not loaded")
	}
	id, err := l.store.CommitInfo()
	if err != nil {
		return err
	}
	ctx := lockfund.WithHeight(l.baseContext, id.Version+1)
	l.blockContext = lockfund.WithBlockTime(ctx, l.clock().UTC())
	return nil
}

// CheckTx runs the transaction against the check state. Changes made by a
// successful check are visible to following checks until the next commit.
func (l *Ledger) CheckTx(txBytes []byte) (*lockfund.CheckResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkTx(txBytes)
}

func (l *Ledger) checkTx(txBytes []byte) (*lockfund.CheckResult, error) {
	tx, err := l.loadTx(txBytes)
	if err != nil {
		return nil, err
	}
	ctx, err := l.txContext("check_tx", tx)
	if err != nil {
		return nil, err
	}
	return l.handler.Check(ctx, l.store.CheckStore(), tx)
}

// DeliverTx executes the transaction against the deliver state.
func (l *Ledger) DeliverTx(txBytes []byte) (*lockfund.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deliverTx(txBytes)
}

func (l *Ledger) deliverTx(txBytes []byte) (*lockfund.DeliverResult, error) {
	tx, err := l.loadTx(txBytes)
	if err != nil {
		return nil, err
	}
	ctx, err := l.txContext("deliver_tx", tx)
	if err != nil {
		return nil, err
	}
	return l.handler.Deliver(ctx, l.store.DeliverStore(), tx)
}

// Commit persists all delivered state and closes the current block.
func (l *Ledger) Commit() (lockfund.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit()
}

func (l *Ledger) commit() (lockfund.CommitID, error) {
	id, err := l.store.Commit()
	if err != nil {
		return id, err
	}
	l.blockContext = nil
	l.logger.Debug("Commit synced",
		"height", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash),
	)
	return id, nil
}

// Execute runs a single transaction in a block of its own. build is called
// with the last committed state and returns the encoded transaction. The
// ledger lock is held from build until the block is committed, so
// concurrent callers never observe or reuse the same state. A block is
// committed even if the check or delivery fails.
func (l *Ledger) Execute(build func(db lockfund.ReadOnlyKVStore) ([]byte, error)) (*lockfund.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.store.CommittedStore()
	txBytes, err := build(db)
	db.Discard()
	if err != nil {
		return nil, err
	}

	if err := l.beginBlock(); err != nil {
		return nil, err
	}
	var res *lockfund.DeliverResult
	if _, err = l.checkTx(txBytes); err == nil {
		res, err = l.deliverTx(txBytes)
	}
	if _, cerr := l.commit(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// View calls fn with a read only view of the last committed state.
func (l *Ledger) View(fn func(db lockfund.ReadOnlyKVStore) error) error {
	l.mu.Lock()
	db := l.store.CommittedStore()
	l.mu.Unlock()

	defer db.Discard()
	return fn(db)
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}

func (l *Ledger) txContext(call string, tx lockfund.Tx) (lockfund.Context, error) {
	if l.blockContext == nil {
		return nil, errors.Wrap(errors.ErrState, "no block in progress")
	}
	path := "unknown"
	if ix, err := tx.GetInstruction(); err == nil {
		if p, err := ix.Path(); err == nil {
			path = p
		}
	}
	return lockfund.WithLogInfo(l.blockContext, "call", call, "path", path), nil
}

// loadTx calls the decoder, and capture any panics
func (l *Ledger) loadTx(txBytes []byte) (tx lockfund.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = l.decoder(txBytes)
	if err != nil {
		return nil, errors.Wrap(err, "decode tx")
	}
	return tx, nil
}
