package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// Genesis file format.
type Genesis struct {
	ChainID  string           `json:"chain_id"`
	AppState lockfund.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}

	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...lockfund.Initializer) lockfund.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []lockfund.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts lockfund.Options, kv lockfund.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
