package store

import "github.com/iov-one/lockfund"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = lockfund.ReadOnlyKVStore
	SetDeleter       = lockfund.SetDeleter
	KVStore          = lockfund.KVStore
	Batch            = lockfund.Batch
	Iterator         = lockfund.Iterator
	CacheableKVStore = lockfund.CacheableKVStore
	KVCacheWrap      = lockfund.KVCacheWrap
	CommitKVStore    = lockfund.CommitKVStore
	CommitID         = lockfund.CommitID
)

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
