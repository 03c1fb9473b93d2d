package token

import (
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x"
)

// Controller is the functionality needed by token handlers and other
// programs that move tokens.
type Controller interface {
	// CreateMint registers a new mint. The mint address must authorize
	// the instruction.
	CreateMint(ctx lockfund.Context, db lockfund.KVStore, program, mint solana.PublicKey, decimals uint8, authority solana.PublicKey) error

	// CreateAssociatedAccount opens the associated token account of owner
	// for given mint and returns its address.
	CreateAssociatedAccount(db lockfund.KVStore, program, owner, mint solana.PublicKey) (solana.PublicKey, error)

	// MintTo issues new tokens into a token account. The mint authority
	// must authorize the instruction.
	MintTo(ctx lockfund.Context, db lockfund.KVStore, program, mint, dest solana.PublicKey, amount uint64) error

	// TransferChecked moves tokens between two accounts of the same mint
	// after verifying the declared decimals. The owner of the source
	// account must authorize the instruction.
	TransferChecked(ctx lockfund.Context, db lockfund.KVStore, program, source, mint, dest, owner solana.PublicKey, amount uint64, decimals uint8) error

	// Balance returns the amount held by a token account.
	Balance(db lockfund.ReadOnlyKVStore, account solana.PublicKey) (uint64, error)

	// Mint returns the mint at given address.
	Mint(db lockfund.ReadOnlyKVStore, mint solana.PublicKey) (*Mint, error)
}

// BaseController is a simple implementation of Controller.
type BaseController struct {
	auth     x.Authenticator
	mints    MintBucket
	accounts AccountBucket
}

var _ Controller = BaseController{}

// NewController returns a controller that accepts signatures provided by
// auth and capabilities granted in the context.
func NewController(auth x.Authenticator) BaseController {
	return BaseController{
		auth:     x.ChainAuth(auth, x.CapabilityAuth{}),
		mints:    NewMintBucket(),
		accounts: NewAccountBucket(),
	}
}

func (c BaseController) CreateMint(ctx lockfund.Context, db lockfund.KVStore, program, mint solana.PublicKey, decimals uint8, authority solana.PublicKey) error {
	if !c.auth.HasSigner(ctx, mint) {
		return errors.Wrapf(errors.ErrUnauthorized, "mint %s", mint)
	}
	switch err := c.mints.Has(db, mint[:]); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "mint %s", mint)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	m := Mint{
		Decimals:      decimals,
		MintAuthority: authority,
		Program:       program,
	}
	_, err := c.mints.Put(db, mint[:], &m)
	return err
}

func (c BaseController) CreateAssociatedAccount(db lockfund.KVStore, program, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	m, err := c.mints.Get(db, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !m.Program.Equals(program) {
		return solana.PublicKey{}, errors.Wrapf(ErrInvalidProgram, "mint %s belongs to %s", mint, m.Program)
	}
	addr, err := AssociatedAddress(owner, program, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	switch err := c.accounts.Has(db, addr[:]); {
	case err == nil:
		return solana.PublicKey{}, errors.Wrapf(ErrAccountExists, "%s", addr)
	case !errors.ErrNotFound.Is(err):
		return solana.PublicKey{}, err
	}
	acc := Account{Mint: mint, Owner: owner, Program: program}
	if _, err := c.accounts.Put(db, addr[:], &acc); err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

func (c BaseController) MintTo(ctx lockfund.Context, db lockfund.KVStore, program, mint, dest solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero mint")
	}
	m, err := c.loadMint(db, program, mint)
	if err != nil {
		return err
	}
	if !c.auth.HasSigner(ctx, m.MintAuthority) {
		return errors.Wrap(errors.ErrUnauthorized, "mint authority")
	}
	acc, err := c.loadAccount(db, program, mint, dest)
	if err != nil {
		return err
	}
	if math.MaxUint64-m.Supply < amount {
		return errors.Wrap(errors.ErrOverflow, "supply")
	}
	m.Supply += amount
	acc.Amount += amount
	if _, err := c.mints.Put(db, mint[:], m); err != nil {
		return err
	}
	_, err = c.accounts.Put(db, dest[:], acc)
	return err
}

func (c BaseController) TransferChecked(ctx lockfund.Context, db lockfund.KVStore, program, source, mint, dest, owner solana.PublicKey, amount uint64, decimals uint8) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	m, err := c.loadMint(db, program, mint)
	if err != nil {
		return err
	}
	if m.Decimals != decimals {
		return errors.Wrapf(ErrDecimalsMismatch, "mint has %d, got %d", m.Decimals, decimals)
	}
	from, err := c.loadAccount(db, program, mint, source)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	to, err := c.loadAccount(db, program, mint, dest)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if !from.Owner.Equals(owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s does not own %s", owner, source)
	}
	if !c.auth.HasSigner(ctx, owner) {
		return errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	if from.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s holds %d, needs %d", source, from.Amount, amount)
	}
	if source.Equals(dest) {
		return nil
	}
	if math.MaxUint64-to.Amount < amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	from.Amount -= amount
	to.Amount += amount
	if _, err := c.accounts.Put(db, source[:], from); err != nil {
		return err
	}
	_, err = c.accounts.Put(db, dest[:], to)
	return err
}

func (c BaseController) Balance(db lockfund.ReadOnlyKVStore, account solana.PublicKey) (uint64, error) {
	acc, err := c.accounts.Get(db, account)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

func (c BaseController) Mint(db lockfund.ReadOnlyKVStore, mint solana.PublicKey) (*Mint, error) {
	return c.mints.Get(db, mint)
}

// loadMint returns the mint after ensuring it belongs to the executing
// token program.
func (c BaseController) loadMint(db lockfund.ReadOnlyKVStore, program, mint solana.PublicKey) (*Mint, error) {
	if _, err := InterfaceOf(program); err != nil {
		return nil, err
	}
	m, err := c.mints.Get(db, mint)
	if err != nil {
		return nil, err
	}
	if !m.Program.Equals(program) {
		return nil, errors.Wrapf(ErrInvalidProgram, "mint %s belongs to %s", mint, m.Program)
	}
	return m, nil
}

// loadAccount returns the token account after ensuring it holds given mint
// and belongs to the executing token program.
func (c BaseController) loadAccount(db lockfund.ReadOnlyKVStore, program, mint, addr solana.PublicKey) (*Account, error) {
	acc, err := c.accounts.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if !acc.Program.Equals(program) {
		return nil, errors.Wrapf(ErrInvalidProgram, "account %s belongs to %s", addr, acc.Program)
	}
	if !acc.Mint.Equals(mint) {
		return nil, errors.Wrapf(ErrMintMismatch, "account %s holds %s", addr, acc.Mint)
	}
	return acc, nil
}
