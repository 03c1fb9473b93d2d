/*
Package orm provides an easy to use db wrapper.

Models are stored as borsh encoded blobs under a bucket specific key prefix,
so that different buckets never collide in the same KVStore.
*/
package orm

import (
	"bytes"
	"regexp"

	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	lockfund.Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models rather than
// raw bytes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db lockfund.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given key exists and
	// ErrNotFound otherwise.
	Has(db lockfund.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. When a sequence was
	// configured and key is nil, the next sequence value is used as the
	// key. The key under which the model is stored is returned.
	Put(db lockfund.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db lockfund.KVStore, key []byte) error

	// Iterate loads all entities with keys in [start, end) into dest, one
	// at a time, and calls fn after each load. A nil bound is open.
	Iterate(db lockfund.ReadOnlyKVStore, start, end []byte, reverse bool, dest Model, fn func(key []byte) error) error
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIDSequence configures the bucket to use the given sequence instance for
// generating ID.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = &s
	}
}

// NewModelBucket returns a ModelBucket instance storing models under the
// given name. Panics if the name is not valid.
func NewModelBucket(name string, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	mb := &modelBucket{
		prefix: []byte(name + ":"),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	prefix []byte
	idSeq  *Sequence
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(mb.prefix)+len(key)), mb.prefix...), key...)
}

func (mb *modelBucket) One(db lockfund.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal into %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db lockfund.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "key not in the store")
	}
	return nil
}

func (mb *modelBucket) Put(db lockfund.KVStore, key []byte, m Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	if len(key) == 0 {
		if mb.idSeq == nil {
			return nil, errors.Wrap(errors.ErrEmpty, "key")
		}
		next, err := mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
		key = next
	}
	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot marshal %T", m)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db lockfund.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

func (mb *modelBucket) Iterate(
	db lockfund.ReadOnlyKVStore,
	start, end []byte,
	reverse bool,
	dest Model,
	fn func(key []byte) error,
) error {
	from := mb.dbKey(start)
	to := mb.dbKey(end)
	if end == nil {
		to = prefixEnd(mb.prefix)
	}

	var (
		iter lockfund.Iterator
		err  error
	)
	if reverse {
		iter, err = db.ReverseIterator(from, to)
	} else {
		iter, err = db.Iterator(from, to)
	}
	if err != nil {
		return errors.Wrap(err, "cannot create iterator")
	}
	defer iter.Close()

	for ; iter.Valid(); err = iter.Next() {
		if err != nil {
			return errors.Wrap(err, "iterator")
		}
		if err := dest.Unmarshal(iter.Value()); err != nil {
			return errors.Wrapf(err, "cannot unmarshal into %T", dest)
		}
		key := bytes.TrimPrefix(iter.Key(), mb.prefix)
		if err := fn(key); err != nil {
			return err
		}
	}
	return err
}

// prefixEnd returns the smallest key that is greater than all keys with the
// given prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
