package sigs

import (
	"bytes"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/orm"
)

// BucketName is where we store the nonces
const BucketName = "sigs"

// UserData keeps the replay protection state of a single key.
type UserData struct {
	Pubkey   solana.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// Validate returns an error if the state is not consistent.
func (u *UserData) Validate() error {
	var errs error
	if u.Pubkey.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "pubkey"))
	}
	if u.Sequence < 0 {
		errs = errors.Append(errs, errors.Wrap(ErrInvalidSequence, "negative"))
	}
	return errs
}

// Marshal encodes the user data with borsh.
func (u *UserData) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(u.Pubkey[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(u.Sequence, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is the reverse of Marshal.
func (u *UserData) Unmarshal(raw []byte) error {
	dec := bin.NewBorshDecoder(raw)
	key, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return errors.Wrap(errors.ErrModel, "pubkey")
	}
	seq, err := dec.ReadInt64(bin.LE)
	if err != nil {
		return errors.Wrap(errors.ErrModel, "sequence")
	}
	u.Pubkey = solana.PublicKeyFromBytes(key)
	u.Sequence = seq
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	if u.Sequence == math.MaxInt64 {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence++
	return nil
}

// Bucket stores UserData by public key.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName),
	}
}

// GetOrCreate loads the state of given key, or initializes a fresh one if
// none exists.
func (b Bucket) GetOrCreate(db lockfund.ReadOnlyKVStore, pubkey solana.PublicKey) (*UserData, error) {
	var user UserData
	switch err := b.One(db, pubkey[:], &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}

// NextSequence returns the sequence value the next signature of given key
// must carry.
func NextSequence(db lockfund.ReadOnlyKVStore, pubkey solana.PublicKey) (int64, error) {
	user, err := NewBucket().GetOrCreate(db, pubkey)
	if err != nil {
		return 0, err
	}
	return user.Sequence, nil
}
