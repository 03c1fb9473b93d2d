package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/gconf"
)

const confPkg = "escrow"

// DefaultProgramID is the address the lock fund program is deployed at.
var DefaultProgramID = solana.MustPublicKeyFromBase58("5aBQfQ6A6qWVSiQTEweyg9RYLkWgg7BDYh9yScBSP547")

// Configuration selects the address the program runs under.
type Configuration struct {
	ProgramID solana.PublicKey `json:"program_id"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if c.ProgramID.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "program id")
	}
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).WriteBytes(c.ProgramID[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	key, err := readKey(bin.NewBorshDecoder(raw))
	if err != nil {
		return errors.Wrap(errors.ErrModel, "program id")
	}
	c.ProgramID = key
	return nil
}

// LoadConfiguration returns the configuration stored in the database, or one
// using DefaultProgramID if none was stored.
func LoadConfiguration(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return Configuration{ProgramID: DefaultProgramID}, nil
	default:
		return conf, errors.Wrap(err, "load escrow configuration")
	}
}
