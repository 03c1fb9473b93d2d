package orm

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Count uint64
}

func (c *counter) Validate() error {
	if c.Count == 0 {
		return errors.Wrap(errors.ErrEmpty, "count")
	}
	return nil
}

func (c *counter) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	err := bin.NewBorshEncoder(&buf).WriteUint64(c.Count, bin.LE)
	return buf.Bytes(), err
}

func (c *counter) Unmarshal(raw []byte) (err error) {
	c.Count, err = bin.NewBorshDecoder(raw).ReadUint64(bin.LE)
	return err
}

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts")

	key, err := b.Put(db, []byte("c1"), &counter{Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("c1"), key)

	var c1 counter
	require.NoError(t, b.One(db, []byte("c1"), &c1))
	assert.Equal(t, uint64(1), c1.Count)
	require.NoError(t, b.Has(db, []byte("c1")))

	_, err = b.Put(db, []byte("c2"), &counter{})
	assert.True(t, errors.ErrEmpty.Is(err))

	_, err = b.Put(db, nil, &counter{Count: 2})
	assert.True(t, errors.ErrEmpty.Is(err), "no sequence configured")

	require.NoError(t, b.Delete(db, []byte("c1")))
	assert.True(t, errors.ErrNotFound.Is(b.Delete(db, []byte("unknown"))))
	assert.True(t, errors.ErrNotFound.Is(b.One(db, []byte("c1"), &c1)))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("c1"))))
}

func TestModelBucketSequenceAndIterate(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", WithIDSequence(NewSequence("cnts", "id")))
	other := NewModelBucket("cnts_other")

	for i := uint64(1); i <= 5; i++ {
		key, err := b.Put(db, nil, &counter{Count: i * 10})
		require.NoError(t, err)
		assert.Equal(t, EncodeSequence(int64(i)), key)
	}
	_, err := other.Put(db, []byte("x"), &counter{Count: 999})
	require.NoError(t, err)

	collect := func(start, end []byte, reverse bool) []uint64 {
		var res []uint64
		var c counter
		err := b.Iterate(db, start, end, reverse, &c, func(key []byte) error {
			res = append(res, c.Count)
			return nil
		})
		require.NoError(t, err)
		return res
	}

	assert.Equal(t, []uint64{10, 20, 30, 40, 50}, collect(nil, nil, false))
	assert.Equal(t, []uint64{50, 40, 30, 20, 10}, collect(nil, nil, true))
	assert.Equal(t, []uint64{20, 30}, collect(EncodeSequence(2), EncodeSequence(4), false))

	stop := errors.Wrap(errors.ErrState, "stop")
	var c counter
	err = b.Iterate(db, nil, nil, false, &c, func([]byte) error { return stop })
	assert.Equal(t, stop, err)
}

func TestNewModelBucketRejectsInvalidName(t *testing.T) {
	assert.Panics(t, func() { NewModelBucket("Bad Name") })
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("cnts;"), prefixEnd([]byte("cnts:")))
	assert.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff}))
}
