package cash

import (
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x"
)

// Controller is the functionality needed by cash.Handler and other
// programs that move native currency.
type Controller interface {
	// Balance returns the lamports held by given address. Missing accounts
	// hold nothing.
	Balance(db lockfund.ReadOnlyKVStore, addr solana.PublicKey) (uint64, error)

	// Allocate creates an account owned by given program with the space
	// reserved for its data. The payer tops the account up to lamports, so
	// an address that already received a transfer can still be allocated.
	// A zero owner leaves the account to the system program. Both the payer
	// and the new address must authorize the instruction.
	Allocate(ctx lockfund.Context, db lockfund.KVStore, payer, addr solana.PublicKey, lamports, space uint64, owner solana.PublicKey) error

	// MoveCoins transfers lamports between two accounts. The source must
	// authorize the instruction.
	MoveCoins(ctx lockfund.Context, db lockfund.KVStore, from, to solana.PublicKey, amount uint64) error

	// Credit mints lamports into given account.
	Credit(db lockfund.KVStore, addr solana.PublicKey, amount uint64) error
}

// BaseController is a simple implementation of Controller.
type BaseController struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller that accepts signatures provided by
// auth and capabilities granted in the context.
func NewController(auth x.Authenticator) BaseController {
	return BaseController{
		auth:   x.ChainAuth(auth, x.CapabilityAuth{}),
		bucket: NewBucket(),
	}
}

func (c BaseController) Balance(db lockfund.ReadOnlyKVStore, addr solana.PublicKey) (uint64, error) {
	acc, err := c.bucket.GetOrCreate(db, addr)
	if err != nil {
		return 0, err
	}
	return acc.Lamports, nil
}

func (c BaseController) Allocate(ctx lockfund.Context, db lockfund.KVStore, payer, addr solana.PublicKey, lamports, space uint64, owner solana.PublicKey) error {
	if !c.auth.HasSigner(ctx, payer) {
		return errors.Wrapf(errors.ErrUnauthorized, "payer %s", payer)
	}
	if !c.auth.HasSigner(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "new account %s", addr)
	}
	if space > MaxDataLength {
		return errors.Wrapf(errors.ErrInput, "data length %d exceeds %d", space, MaxDataLength)
	}

	acc, err := c.bucket.GetOrCreate(db, addr)
	if err != nil {
		return err
	}
	if acc.Allocated() {
		return errors.Wrapf(ErrAccountInUse, "address %s", addr)
	}
	if acc.Lamports < lamports {
		if err := c.MoveCoins(ctx, db, payer, addr, lamports-acc.Lamports); err != nil {
			return errors.Wrap(err, "fund account")
		}
		// Reload, MoveCoins saved the balance.
		if acc, err = c.bucket.GetOrCreate(db, addr); err != nil {
			return err
		}
	}
	acc.Space = space
	acc.Owner = owner
	return c.bucket.Save(db, addr, acc)
}

func (c BaseController) MoveCoins(ctx lockfund.Context, db lockfund.KVStore, from, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	if !c.auth.HasSigner(ctx, from) {
		return errors.Wrapf(errors.ErrUnauthorized, "source %s", from)
	}

	sender, err := c.bucket.GetOrCreate(db, from)
	if err != nil {
		return err
	}
	if sender.Lamports < amount {
		return errors.Wrapf(ErrInsufficientFunds, "%s holds %d, needs %d", from, sender.Lamports, amount)
	}
	if from.Equals(to) {
		return nil
	}
	recipient, err := c.bucket.GetOrCreate(db, to)
	if err != nil {
		return err
	}
	if math.MaxUint64-recipient.Lamports < amount {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}

	sender.Lamports -= amount
	recipient.Lamports += amount
	if err := c.bucket.Save(db, from, sender); err != nil {
		return errors.Wrap(err, "save sender")
	}
	if err := c.bucket.Save(db, to, recipient); err != nil {
		return errors.Wrap(err, "save recipient")
	}
	return nil
}

func (c BaseController) Credit(db lockfund.KVStore, addr solana.PublicKey, amount uint64) error {
	acc, err := c.bucket.GetOrCreate(db, addr)
	if err != nil {
		return err
	}
	if math.MaxUint64-acc.Lamports < amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	acc.Lamports += amount
	return c.bucket.Save(db, addr, acc)
}
