package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// Interface is a variant of the token program.
type Interface uint8

const (
	// Legacy is the original token program.
	Legacy Interface = iota + 1
	// Extended is the token program with extensions support.
	Extended
)

// InterfaceOf returns the interface implemented by the given program.
func InterfaceOf(programID solana.PublicKey) (Interface, error) {
	switch {
	case programID.Equals(solana.TokenProgramID):
		return Legacy, nil
	case programID.Equals(solana.Token2022ProgramID):
		return Extended, nil
	default:
		return 0, errors.Wrapf(ErrInvalidProgram, "%s", programID)
	}
}

// ProgramID returns the address of the program implementing the interface.
func (i Interface) ProgramID() solana.PublicKey {
	switch i {
	case Legacy:
		return solana.TokenProgramID
	case Extended:
		return solana.Token2022ProgramID
	default:
		return solana.PublicKey{}
	}
}

func (i Interface) String() string {
	switch i {
	case Legacy:
		return "legacy"
	case Extended:
		return "extended"
	default:
		return "unknown"
	}
}

// AssociatedProgramID is the program deriving associated token accounts.
var AssociatedProgramID = solana.SPLAssociatedTokenAccountProgramID

// AssociatedAddress returns the address of the associated token account of
// owner for given mint under the token program.
func AssociatedAddress(owner, tokenProgram, mint solana.PublicKey) (solana.PublicKey, error) {
	if _, err := InterfaceOf(tokenProgram); err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := lockfund.Derive(AssociatedProgramID, "", owner[:], tokenProgram[:], mint[:])
	return addr, err
}
