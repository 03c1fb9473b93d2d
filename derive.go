package lockfund

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund/errors"
)

const (
	maxSeedLength = 32
	// maxSeeds includes the bump seed.
	maxSeeds = 16
)

// Derive computes a program derived address for the given tag and seed
// components. Bumps are tried from 255 down to 0 and the first candidate
// that does not lie on the ed25519 curve wins, so no private key can exist
// for the returned address. An empty tag is not used as a seed.
func Derive(programID solana.PublicKey, tag string, components ...[]byte) (solana.PublicKey, uint8, error) {
	seeds, err := seedsOf(tag, components)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	bumpSeed := []byte{0}
	seeds = append(seeds, bumpSeed)
	for bump := 255; bump >= 0; bump-- {
		bumpSeed[0] = uint8(bump)
		addr, err := solana.CreateProgramAddress(seeds, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, errors.Wrapf(errors.ErrState, "no viable bump for %q", tag)
}

// CreateAddress recomputes a derived address using a known bump.
func CreateAddress(programID solana.PublicKey, bump uint8, tag string, components ...[]byte) (solana.PublicKey, error) {
	seeds, err := seedsOf(tag, components)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addr, err := solana.CreateProgramAddress(append(seeds, []byte{bump}), programID)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(errors.ErrInput, "bump %d: %s", bump, err)
	}
	return addr, nil
}

func seedsOf(tag string, components [][]byte) ([][]byte, error) {
	seeds := make([][]byte, 0, len(components)+2)
	if tag != "" {
		seeds = append(seeds, []byte(tag))
	}
	seeds = append(seeds, components...)
	if len(seeds) >= maxSeeds {
		return nil, errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	for i, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, errors.Wrapf(errors.ErrInput, "seed %d too long: %d bytes", i, len(s))
		}
	}
	return seeds, nil
}

// Capability is the proof that a program may act on behalf of one of its
// derived addresses. It carries no secret: it is rebuilt from the seeds and
// the stored bump each time it is needed and must never be persisted.
type Capability struct {
	programID solana.PublicKey
	address   solana.PublicKey
	bump      uint8
}

// NewCapability rebuilds the signing capability of a derived address.
func NewCapability(programID solana.PublicKey, tag string, components [][]byte, bump uint8) (Capability, error) {
	addr, err := CreateAddress(programID, bump, tag, components...)
	if err != nil {
		return Capability{}, errors.Wrap(err, "capability")
	}
	return Capability{programID: programID, address: addr, bump: bump}, nil
}

// Address returns the derived address this capability acts for.
func (c Capability) Address() solana.PublicKey {
	return c.address
}

// ProgramID returns the program that derived the address.
func (c Capability) ProgramID() solana.PublicKey {
	return c.programID
}

// Bump returns the bump used to derive the address.
func (c Capability) Bump() uint8 {
	return c.bump
}

// IsZero returns true for a capability that was not built by NewCapability.
func (c Capability) IsZero() bool {
	return c.address.IsZero()
}
