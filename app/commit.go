package app

import (
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed lockfund.CommitKVStore
	deliver   lockfund.KVCacheWrap
	check     lockfund.KVCacheWrap
}

// NewCommitStore sets up the deliver and check caches on top of the latest
// committed state.
func NewCommitStore(store lockfund.CommitKVStore) *CommitStore {
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (lockfund.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it
// to disk. It then regenerates new deliver/check caches
func (cs *CommitStore) Commit() (lockfund.CommitID, error) {
	// flush deliver to store and discard check
	if err := cs.deliver.Write(); err != nil {
		return lockfund.CommitID{}, err
	}
	cs.check.Discard()

	// write the store to disk
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	// set up new caches
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() lockfund.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() lockfund.CacheableKVStore {
	return cs.deliver
}

// CommittedStore returns a fresh read view of the last committed state.
// Writes to it are never persisted.
func (cs *CommitStore) CommittedStore() lockfund.KVCacheWrap {
	return cs.committed.CacheWrap()
}

// Close releases the underlying store.
func (cs *CommitStore) Close() error {
	cs.deliver.Discard()
	cs.check.Discard()
	return cs.committed.Close()
}

//------- storing chainID ---------

// _lf: is a prefix for ledger internal data
const chainIDKey = "_lf:chainID"

// LoadChainID returns the chain id stored if any, empty before genesis.
func LoadChainID(kv lockfund.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv lockfund.KVStore, chainID string) error {
	if !lockfund.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	err = kv.Set(k, []byte(chainID))
	if err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}
