package store

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"sync"

	"github.com/iov-one/lockfund/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	dataPrefix    = []byte("d:")
	versionKey    = []byte("m:version")
	commitHashKey = []byte("m:hash")
)

// LevelDB is a CommitKVStore persisting state in a goleveldb database.
// Application data and commit metadata live under separate prefixes.
//
// Writes go through cache wraps, whose atomic batches are flushed when the
// wrap is written. Commit seals all writes since the previous commit into a
// new version.
type LevelDB struct {
	db *leveldb.DB

	mu      sync.Mutex
	latest  CommitID
	pending hash.Hash
}

var _ CommitKVStore = (*LevelDB)(nil)
var _ KVStore = (*LevelDB)(nil)

// OpenLevelDB opens or creates a database in given directory.
func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s: %s", dir, err)
	}
	return newLevelDB(db)
}

// MemLevelDB returns a database that is never written to disk.
func MemLevelDB() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open memory storage: %s", err)
	}
	return newLevelDB(db)
}

func newLevelDB(db *leveldb.DB) (*LevelDB, error) {
	s := &LevelDB{db: db, pending: sha256.New()}
	if err := s.loadLatest(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LevelDB) loadLatest() error {
	raw, err := s.db.Get(versionKey, nil)
	switch {
	case err == leveldb.ErrNotFound:
		s.latest = CommitID{}
		return nil
	case err != nil:
		return errors.Wrapf(errors.ErrDatabase, "read version: %s", err)
	case len(raw) != 8:
		return errors.Wrap(errors.ErrDatabase, "malformed version")
	}
	h, err := s.db.Get(commitHashKey, nil)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "read hash: %s", err)
	}
	s.latest = CommitID{
		Version: int64(binary.BigEndian.Uint64(raw)),
		Hash:    h,
	}
	return nil
}

func dataKey(key []byte) []byte {
	res := make([]byte, 0, len(dataPrefix)+len(key))
	return append(append(res, dataPrefix...), key...)
}

// Get returns nil if the key does not exist.
func (s *LevelDB) Get(key []byte) ([]byte, error) {
	val, err := s.db.Get(dataKey(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %s", err)
	}
	return val, nil
}

// Has returns true if the key exists.
func (s *LevelDB) Has(key []byte) (bool, error) {
	ok, err := s.db.Has(dataKey(key), nil)
	if err != nil {
		return false, errors.Wrapf(errors.ErrDatabase, "has: %s", err)
	}
	return ok, nil
}

// Set writes a single value. Prefer writing through a cache wrap.
func (s *LevelDB) Set(key, value []byte) error {
	b := s.NewBatch()
	if err := b.Set(key, value); err != nil {
		return err
	}
	return b.Write()
}

// Delete removes a single value. Prefer writing through a cache wrap.
func (s *LevelDB) Delete(key []byte) error {
	b := s.NewBatch()
	if err := b.Delete(key); err != nil {
		return err
	}
	return b.Write()
}

// Iterator over a domain of keys in ascending order.
func (s *LevelDB) Iterator(start, end []byte) (Iterator, error) {
	return s.iterate(start, end, false)
}

// ReverseIterator over a domain of keys in descending order.
func (s *LevelDB) ReverseIterator(start, end []byte) (Iterator, error) {
	return s.iterate(start, end, true)
}

func (s *LevelDB) iterate(start, end []byte, reverse bool) (Iterator, error) {
	rng := util.BytesPrefix(dataPrefix)
	if start != nil {
		rng.Start = dataKey(start)
	}
	if end != nil {
		rng.Limit = dataKey(end)
	}
	it := s.db.NewIterator(rng, nil)
	var ok bool
	if reverse {
		ok = it.Last()
	} else {
		ok = it.First()
	}
	if err := it.Error(); err != nil {
		it.Release()
		return nil, errors.Wrapf(errors.ErrDatabase, "iterator: %s", err)
	}
	return &levelIterator{it: it, valid: ok, reverse: reverse}, nil
}

// NewBatch returns an atomic batch. Writing it also feeds the digest of
// the next commit.
func (s *LevelDB) NewBatch() Batch {
	return &levelBatch{store: s, batch: new(leveldb.Batch)}
}

// CacheWrap returns a scratch pad that is flushed atomically on Write.
func (s *LevelDB) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

// Commit seals all writes since the last commit into a new version.
func (s *LevelDB) Commit() (CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := sha256.New()
	h.Write(s.latest.Hash)
	h.Write(s.pending.Sum(nil))
	next := CommitID{
		Version: s.latest.Version + 1,
		Hash:    h.Sum(nil),
	}

	var ver [8]byte
	binary.BigEndian.PutUint64(ver[:], uint64(next.Version))
	b := new(leveldb.Batch)
	b.Put(versionKey, ver[:])
	b.Put(commitHashKey, next.Hash)
	if err := s.db.Write(b, &opt.WriteOptions{Sync: true}); err != nil {
		return CommitID{}, errors.Wrapf(errors.ErrDatabase, "commit: %s", err)
	}
	s.latest = next
	s.pending.Reset()
	return next, nil
}

// LatestVersion returns info on the latest committed version.
func (s *LevelDB) LatestVersion() (CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, nil
}

// Close releases the database.
func (s *LevelDB) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "close: %s", err)
	}
	return nil
}

type levelBatch struct {
	store *LevelDB
	batch *leveldb.Batch
	ops   []Op
}

func (b *levelBatch) Set(key, value []byte) error {
	b.batch.Put(dataKey(key), value)
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.batch.Delete(dataKey(key))
	b.ops = append(b.ops, DelOp(key))
	return nil
}

func (b *levelBatch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if err := b.store.db.Write(b.batch, nil); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "write batch: %s", err)
	}
	var size [4]byte
	for _, op := range b.ops {
		b.store.pending.Write([]byte{byte(op.kind)})
		binary.BigEndian.PutUint32(size[:], uint32(len(op.key)))
		b.store.pending.Write(size[:])
		b.store.pending.Write(op.key)
		binary.BigEndian.PutUint32(size[:], uint32(len(op.value)))
		b.store.pending.Write(size[:])
		b.store.pending.Write(op.value)
	}
	b.batch.Reset()
	b.ops = nil
	return nil
}

type levelIterator struct {
	it      iterator.Iterator
	valid   bool
	reverse bool
}

func (i *levelIterator) Valid() bool {
	return i.valid
}

func (i *levelIterator) Next() error {
	if !i.valid {
		return errors.Wrap(errors.ErrHuman, "advanced past the end")
	}
	if i.reverse {
		i.valid = i.it.Prev()
	} else {
		i.valid = i.it.Next()
	}
	if err := i.it.Error(); err != nil {
		i.valid = false
		return errors.Wrapf(errors.ErrDatabase, "iterator: %s", err)
	}
	return nil
}

// Key returns a copy of the key without the data prefix. Keys returned by
// leveldb are only valid until the next move.
func (i *levelIterator) Key() []byte {
	if !i.valid {
		panic("Advanced past the end!")
	}
	k := i.it.Key()[len(dataPrefix):]
	return append([]byte(nil), k...)
}

func (i *levelIterator) Value() []byte {
	if !i.valid {
		panic("Advanced past the end!")
	}
	return append([]byte(nil), i.it.Value()...)
}

func (i *levelIterator) Close() {
	i.it.Release()
}
