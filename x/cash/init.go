package cash

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/gconf"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
// Addresses are base58 encoded.
type GenesisAccount struct {
	Address  solana.PublicKey `json:"address"`
	Lamports uint64           `json:"lamports"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ lockfund.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts lockfund.Options, kv lockfund.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(kv, opts, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "cash configuration")
	}

	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	bucket := NewBucket()
	for i, acct := range accts {
		if acct.Address.IsZero() {
			return errors.Wrapf(errors.ErrEmpty, "account %d address", i)
		}
		acc, err := bucket.GetOrCreate(kv, acct.Address)
		if err != nil {
			return err
		}
		if acc.InUse() {
			return errors.Wrapf(errors.ErrDuplicate, "account %s", acct.Address)
		}
		acc.Lamports = acct.Lamports
		if err := bucket.Save(kv, acct.Address, acc); err != nil {
			return errors.Wrapf(err, "account %s", acct.Address)
		}
	}
	return nil
}
