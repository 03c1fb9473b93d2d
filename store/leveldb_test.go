package store

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLevelDBBase() (CacheableKVStore, func()) {
	db, err := MemLevelDB()
	if err != nil {
		panic(err)
	}
	return db, func() { db.Close() }
}

func TestLevelDBGetSet(t *testing.T) {
	NewTestSuite(makeLevelDBBase).GetSet(t)
}

func TestLevelDBCacheConflicts(t *testing.T) {
	NewTestSuite(makeLevelDBBase).CacheConflicts(t)
}

func TestLevelDBFuzzIterator(t *testing.T) {
	NewTestSuite(makeLevelDBBase).FuzzIterator(t)
}

func TestLevelDBIteratorWithConflicts(t *testing.T) {
	NewTestSuite(makeLevelDBBase).IteratorWithConflicts(t)
}

func TestLevelDBDirectIteration(t *testing.T) {
	db, err := MemLevelDB()
	require.NoError(t, err)
	defer db.Close()

	for _, k := range []string{"b", "a", "d", "c"} {
		require.NoError(t, db.Set([]byte(k), []byte("v"+k)))
	}
	require.NoError(t, db.Delete([]byte("d")))

	collect := func(iter Iterator, err error) []string {
		require.NoError(t, err)
		defer iter.Close()
		var keys []string
		for ; iter.Valid(); require.NoError(t, iter.Next()) {
			keys = append(keys, string(iter.Key()))
		}
		return keys
	}
	assert.Equal(t, []string{"a", "b", "c"}, collect(db.Iterator(nil, nil)))
	assert.Equal(t, []string{"b"}, collect(db.Iterator([]byte("b"), []byte("c"))))
	assert.Equal(t, []string{"c", "b", "a"}, collect(db.ReverseIterator(nil, nil)))
	assert.Equal(t, []string{"b", "a"}, collect(db.ReverseIterator(nil, []byte("c"))))
}

func TestLevelDBCommitPersists(t *testing.T) {
	dir, err := ioutil.TempDir("", "lockfund-store")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := OpenLevelDB(dir)
	require.NoError(t, err)

	latest, err := db.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest.Version)

	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("vault"), []byte("5000000")))
	require.NoError(t, cache.Write())

	first, err := db.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)
	assert.Len(t, first.Hash, 32)

	// An empty commit still changes the hash chain.
	second, err := db.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.NotEqual(t, first.Hash, second.Hash)
	require.NoError(t, db.Close())

	db, err = OpenLevelDB(dir)
	require.NoError(t, err)
	defer db.Close()

	latest, err = db.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	val, err := db.Get([]byte("vault"))
	require.NoError(t, err)
	assert.Equal(t, []byte("5000000"), val)
}
