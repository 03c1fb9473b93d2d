package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/orm"
)

// MaxDecimals is the highest precision a mint may declare.
const MaxDecimals = 18

// Mint describes a token.
type Mint struct {
	Decimals      uint8
	Supply        uint64
	MintAuthority solana.PublicKey
	// Program is the token program the mint was created under.
	Program solana.PublicKey
}

var _ orm.Model = (*Mint)(nil)

func (m *Mint) Validate() error {
	var errs error
	if m.Decimals > MaxDecimals {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrModel, "decimals %d", m.Decimals))
	}
	if m.MintAuthority.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "mint authority"))
	}
	if _, err := InterfaceOf(m.Program); err != nil {
		errs = errors.Append(errs, err)
	}
	return errs
}

func (m *Mint) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteUint8(m.Decimals); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(m.Supply, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(m.MintAuthority[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(m.Program[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Mint) Unmarshal(raw []byte) (err error) {
	dec := bin.NewBorshDecoder(raw)
	var mint Mint
	if mint.Decimals, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(errors.ErrModel, "decimals")
	}
	if mint.Supply, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "supply")
	}
	if mint.MintAuthority, err = readKey(dec); err != nil {
		return errors.Wrap(err, "mint authority")
	}
	if mint.Program, err = readKey(dec); err != nil {
		return errors.Wrap(err, "program")
	}
	*m = mint
	return nil
}

// Account holds the balance of one owner for one mint.
type Account struct {
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
	Program solana.PublicKey
}

var _ orm.Model = (*Account)(nil)

func (a *Account) Validate() error {
	var errs error
	if a.Mint.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "mint"))
	}
	if a.Owner.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "owner"))
	}
	if _, err := InterfaceOf(a.Program); err != nil {
		errs = errors.Append(errs, err)
	}
	return errs
}

func (a *Account) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteBytes(a.Mint[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(a.Amount, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(a.Program[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *Account) Unmarshal(raw []byte) (err error) {
	dec := bin.NewBorshDecoder(raw)
	var acc Account
	if acc.Mint, err = readKey(dec); err != nil {
		return errors.Wrap(err, "mint")
	}
	if acc.Owner, err = readKey(dec); err != nil {
		return errors.Wrap(err, "owner")
	}
	if acc.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "amount")
	}
	if acc.Program, err = readKey(dec); err != nil {
		return errors.Wrap(err, "program")
	}
	*a = acc
	return nil
}

func readKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, errors.Wrap(errors.ErrModel, "public key")
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// MintBucket stores mints by address.
type MintBucket struct {
	orm.ModelBucket
}

func NewMintBucket() MintBucket {
	return MintBucket{ModelBucket: orm.NewModelBucket("token_mint")}
}

// Get returns the mint at given address. ErrNotFound is returned if no mint
// exists.
func (b MintBucket) Get(db lockfund.ReadOnlyKVStore, addr solana.PublicKey) (*Mint, error) {
	var m Mint
	if err := b.One(db, addr[:], &m); err != nil {
		return nil, errors.Wrapf(err, "mint %s", addr)
	}
	return &m, nil
}

// AccountBucket stores token accounts by address.
type AccountBucket struct {
	orm.ModelBucket
}

func NewAccountBucket() AccountBucket {
	return AccountBucket{ModelBucket: orm.NewModelBucket("token_account")}
}

// Get returns the token account at given address. ErrNotFound is returned
// if no account exists.
func (b AccountBucket) Get(db lockfund.ReadOnlyKVStore, addr solana.PublicKey) (*Account, error) {
	var a Account
	if err := b.One(db, addr[:], &a); err != nil {
		return nil, errors.Wrapf(err, "token account %s", addr)
	}
	return &a, nil
}
