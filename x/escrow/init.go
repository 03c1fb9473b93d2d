package escrow

import (
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/gconf"
)

// Initializer stores the program configuration from the genesis file.
type Initializer struct{}

var _ lockfund.Initializer = Initializer{}

func (Initializer) FromGenesis(opts lockfund.Options, db lockfund.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(db, opts, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		return nil
	default:
		return errors.Wrap(err, "escrow configuration")
	}
}
