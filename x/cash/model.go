package cash

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/orm"
)

// BucketName is where the accounts are stored.
const BucketName = "cash"

// Account is the native state of an address.
type Account struct {
	Lamports uint64
	// Space is the size of the data allocated by the owner program.
	Space uint64
	// Owner is the program allowed to write the account data. Zero means
	// the system program.
	Owner solana.PublicKey
}

var _ orm.Model = (*Account)(nil)

func (a *Account) Validate() error {
	if a.Space > MaxDataLength {
		return errors.Wrapf(errors.ErrModel, "data length %d exceeds %d", a.Space, MaxDataLength)
	}
	return nil
}

// InUse returns true if the account holds lamports or was allocated by a
// program.
func (a *Account) InUse() bool {
	return a.Lamports != 0 || a.Space != 0 || !a.Owner.IsZero()
}

// Allocated returns true if a program reserved data space for the account
// or took ownership of it. Lamports alone do not allocate an account.
func (a *Account) Allocated() bool {
	return a.Space != 0 || !a.Owner.IsZero()
}

func (a *Account) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteUint64(a.Lamports, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(a.Space, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *Account) Unmarshal(raw []byte) (err error) {
	dec := bin.NewBorshDecoder(raw)
	var acc Account
	if acc.Lamports, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "lamports")
	}
	if acc.Space, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "space")
	}
	owner, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return errors.Wrap(errors.ErrModel, "owner")
	}
	acc.Owner = solana.PublicKeyFromBytes(owner)
	*a = acc
	return nil
}

// Bucket stores accounts by address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing accounts.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName),
	}
}

// GetOrCreate returns the account of given address, or an empty one if it
// does not exist.
func (b Bucket) GetOrCreate(db lockfund.ReadOnlyKVStore, addr solana.PublicKey) (*Account, error) {
	var acc Account
	switch err := b.One(db, addr[:], &acc); {
	case err == nil:
		return &acc, nil
	case errors.ErrNotFound.Is(err):
		return &Account{}, nil
	default:
		return nil, err
	}
}

// Save stores the account. Accounts that are no longer in use are removed.
func (b Bucket) Save(db lockfund.KVStore, addr solana.PublicKey, acc *Account) error {
	if !acc.InUse() {
		switch err := b.Delete(db, addr[:]); {
		case err == nil, errors.ErrNotFound.Is(err):
			return nil
		default:
			return err
		}
	}
	_, err := b.Put(db, addr[:], acc)
	return err
}
