package cash

import (
	"bytes"
	"math/bits"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/lockfund/errors"
	"github.com/iov-one/lockfund/gconf"
)

const (
	confPkg = "cash"

	// accountStorageOverhead is the number of bytes charged for every
	// account in addition to its data.
	accountStorageOverhead = 128

	// MaxDataLength is the biggest data size an account may allocate.
	MaxDataLength = 10 * 1024 * 1024
)

// Configuration holds the rent parameters of the ledger.
type Configuration struct {
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	ExemptionYears      uint64 `json:"exemption_years"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration returns the rent parameters of a default cluster.
func DefaultConfiguration() Configuration {
	return Configuration{
		LamportsPerByteYear: 3480,
		ExemptionYears:      2,
	}
}

func (c *Configuration) Validate() error {
	if c.LamportsPerByteYear == 0 {
		return errors.Wrap(errors.ErrEmpty, "lamports per byte year")
	}
	if c.ExemptionYears == 0 {
		return errors.Wrap(errors.ErrEmpty, "exemption years")
	}
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteUint64(c.LamportsPerByteYear, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.ExemptionYears, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Configuration) Unmarshal(raw []byte) (err error) {
	dec := bin.NewBorshDecoder(raw)
	if c.LamportsPerByteYear, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "lamports per byte year")
	}
	if c.ExemptionYears, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(errors.ErrModel, "exemption years")
	}
	return nil
}

// MinimumBalance returns the lamports an account with given data size must
// hold to be exempt from rent.
func (c Configuration) MinimumBalance(space uint64) (uint64, error) {
	if space > MaxDataLength {
		return 0, errors.Wrapf(errors.ErrInput, "data length %d exceeds %d", space, MaxDataLength)
	}
	hi, perYear := bits.Mul64(space+accountStorageOverhead, c.LamportsPerByteYear)
	if hi != 0 {
		return 0, errors.Wrap(errors.ErrOverflow, "rent per year")
	}
	hi, total := bits.Mul64(perYear, c.ExemptionYears)
	if hi != 0 {
		return 0, errors.Wrap(errors.ErrOverflow, "rent exemption")
	}
	return total, nil
}

// LoadConfiguration returns the rent parameters stored in the database, or
// the default ones if the ledger was never configured.
func LoadConfiguration(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, errors.Wrap(err, "load cash configuration")
	}
}
