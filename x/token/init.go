package token

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/x"
)

const optKey = "token"

// GenesisMint declares a mint in the genesis file.
type GenesisMint struct {
	Address   solana.PublicKey `json:"address"`
	Decimals  uint8            `json:"decimals"`
	Authority solana.PublicKey `json:"authority"`
	Program   solana.PublicKey `json:"program"`
}

// GenesisAccount declares an associated token account with its initial
// balance. The mint must be declared in the same genesis.
type GenesisAccount struct {
	Owner  solana.PublicKey `json:"owner"`
	Mint   solana.PublicKey `json:"mint"`
	Amount uint64           `json:"amount"`
}

// Genesis is the genesis section of this package.
type Genesis struct {
	Mints    []GenesisMint    `json:"mints"`
	Accounts []GenesisAccount `json:"accounts"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ lockfund.Initializer = Initializer{}

// FromGenesis creates the declared mints and accounts. Balances are issued
// as if minted by the mint authority.
func (Initializer) FromGenesis(opts lockfund.Options, db lockfund.KVStore) error {
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	mints := NewMintBucket()
	for _, m := range gen.Mints {
		mint := Mint{
			Decimals:      m.Decimals,
			MintAuthority: m.Authority,
			Program:       m.Program,
		}
		if _, err := mints.Put(db, m.Address[:], &mint); err != nil {
			return errors.Wrapf(err, "mint %s", m.Address)
		}
	}

	for _, a := range gen.Accounts {
		m, err := mints.Get(db, a.Mint)
		if err != nil {
			return err
		}
		ctrl := NewController(authorityAuth{key: m.MintAuthority})
		addr, err := ctrl.CreateAssociatedAccount(db, m.Program, a.Owner, a.Mint)
		if err != nil {
			return err
		}
		if a.Amount == 0 {
			continue
		}
		if err := ctrl.MintTo(context.Background(), db, m.Program, a.Mint, addr, a.Amount); err != nil {
			return errors.Wrapf(err, "account %s", addr)
		}
	}
	return nil
}

// authorityAuth authorizes a single key during genesis.
type authorityAuth struct {
	key solana.PublicKey
}

var _ x.Authenticator = authorityAuth{}

func (a authorityAuth) GetSigners(lockfund.Context) []solana.PublicKey {
	return []solana.PublicKey{a.key}
}

func (a authorityAuth) HasSigner(_ lockfund.Context, key solana.PublicKey) bool {
	return a.key.Equals(key)
}
