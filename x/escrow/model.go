package escrow

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/orm"
)

const (
	// ConfigAccountSize is the size of the config account data after the
	// discriminator.
	ConfigAccountSize = 160

	// ConfigAccountSpace is the number of bytes allocated for a config
	// account.
	ConfigAccountSpace = lockfund.DiscriminatorLength + ConfigAccountSize

	paddingSize = 12

	configLayoutSize = 4*solana.PublicKeyLength + 8 + 8 + 1 + 1 + 1 + 1 + paddingSize
)

// The field layout must add up to the declared account size.
var (
	_ [configLayoutSize - ConfigAccountSize]struct{}
	_ [ConfigAccountSize - configLayoutSize]struct{}
)

// ConfigAccountDiscriminator prefixes the data of every config account.
var ConfigAccountDiscriminator = lockfund.AccountDiscriminator("ConfigAccount")

func init() {
	raw, err := (&ConfigAccount{}).Marshal()
	if err != nil {
		panic(err)
	}
	if len(raw) != ConfigAccountSpace {
		panic(fmt.Sprintf("config account encodes to %d bytes, want %d", len(raw), ConfigAccountSpace))
	}
}

// UpdateActorMode is a bit set of the actors that may request future
// updates of a config account.
type UpdateActorMode uint8

const (
	UpdateActorNone      UpdateActorMode = 0
	UpdateActorAuthority UpdateActorMode = 1 << 0
	UpdateActorApprover  UpdateActorMode = 1 << 1
	UpdateActorRecipient UpdateActorMode = 1 << 2
)

// Has returns true if all bits of o are set.
func (m UpdateActorMode) Has(o UpdateActorMode) bool {
	return m&o == o
}

// ConfigAccount describes one lock fund.
type ConfigAccount struct {
	Authority solana.PublicKey
	Approver  solana.PublicKey
	Recipient solana.PublicKey
	// Vault is the derived address holding the funds.
	Vault solana.PublicKey
	// CliffTime is the unix time after which withdrawals are intended.
	// It is not enforced.
	CliffTime uint64
	// AmountPerDay is the intended withdrawal ceiling. It is not enforced.
	AmountPerDay       uint64
	UpdateActorMode    UpdateActorMode
	EnableTransferFull uint8
	ConfigBump         uint8
	EscrowBump         uint8
	Padding            [paddingSize]byte
}

var _ orm.Model = (*ConfigAccount)(nil)

func (c *ConfigAccount) Validate() error {
	var errs error
	if c.Authority.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "authority"))
	}
	if c.Approver.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "approver"))
	}
	if c.Recipient.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "recipient"))
	}
	if c.Vault.IsZero() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "vault"))
	}
	if c.Authority.Equals(c.Approver) {
		errs = errors.Append(errs, errors.Wrap(ErrDuplicatePubkey, "authority and approver"))
	}
	return errs
}

// Marshal returns the account data: the discriminator followed by the fixed
// layout.
func (c *ConfigAccount) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(ConfigAccountSpace)
	buf.Write(ConfigAccountDiscriminator[:])
	if err := c.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes account data as returned by Marshal.
func (c *ConfigAccount) Unmarshal(raw []byte) error {
	if len(raw) != ConfigAccountSpace {
		return errors.Wrapf(errors.ErrModel, "config account has %d bytes, want %d", len(raw), ConfigAccountSpace)
	}
	if !ConfigAccountDiscriminator.Equal(raw) {
		return errors.Wrap(errors.ErrType, "not a config account")
	}
	return c.UnmarshalWithDecoder(bin.NewBorshDecoder(raw[lockfund.DiscriminatorLength:]))
}

func (c *ConfigAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	for _, k := range []solana.PublicKey{c.Authority, c.Approver, c.Recipient, c.Vault} {
		if err := enc.WriteBytes(k[:], false); err != nil {
			return err
		}
	}
	if err := enc.WriteUint64(c.CliffTime, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(c.AmountPerDay, bin.LE); err != nil {
		return err
	}
	for _, b := range []uint8{uint8(c.UpdateActorMode), c.EnableTransferFull, c.ConfigBump, c.EscrowBump} {
		if err := enc.WriteUint8(b); err != nil {
			return err
		}
	}
	return enc.WriteBytes(c.Padding[:], false)
}

func (c *ConfigAccount) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	var acc ConfigAccount
	for _, k := range []*solana.PublicKey{&acc.Authority, &acc.Approver, &acc.Recipient, &acc.Vault} {
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return errors.Wrap(errors.ErrModel, "public key")
		}
		*k = solana.PublicKeyFromBytes(raw)
	}
	if acc.CliffTime, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "cliff time")
	}
	if acc.AmountPerDay, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "amount per day")
	}
	var flags [4]uint8
	for i := range flags {
		if flags[i], err = dec.ReadUint8(); err != nil {
			return errors.Wrap(errors.ErrModel, "flags")
		}
	}
	acc.UpdateActorMode = UpdateActorMode(flags[0])
	acc.EnableTransferFull, acc.ConfigBump, acc.EscrowBump = flags[1], flags[2], flags[3]
	padding, err := dec.ReadNBytes(paddingSize)
	if err != nil {
		return errors.Wrap(errors.ErrModel, "padding")
	}
	copy(acc.Padding[:], padding)
	*c = acc
	return nil
}

// Bucket stores config accounts by their address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing config accounts.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("escrow_config"),
	}
}

// Get returns the config account stored at given address.
func (b Bucket) Get(db lockfund.ReadOnlyKVStore, addr solana.PublicKey) (*ConfigAccount, error) {
	var c ConfigAccount
	if err := b.One(db, addr[:], &c); err != nil {
		return nil, errors.Wrapf(err, "config account %s", addr)
	}
	return &c, nil
}

// ByAuthority returns the config account of the lock fund created by
// authority, together with its address.
func (b Bucket) ByAuthority(db lockfund.ReadOnlyKVStore, programID, authority solana.PublicKey) (solana.PublicKey, *ConfigAccount, error) {
	addrs, err := DeriveAddresses(programID, authority)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	c, err := b.Get(db, addrs.Config)
	return addrs.Config, c, err
}
