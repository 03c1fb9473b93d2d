package escrow

import "github.com/iov-one/lockfund/errors"

var (
	// ErrUnauthorized is returned when a required signer is missing or is
	// not the one recorded in the config account.
	ErrUnauthorized = errors.ErrUnauthorized

	ErrDuplicatePubkey      = errors.Register(50, "two pubkey can not duplicate")
	ErrInvalidEscrow        = errors.Register(51, "invalid escrow")
	ErrInvalidRecipient     = errors.Register(52, "invalid recipient")
	ErrAccountAlreadyExists = errors.Register(53, "account already exists")

	// ErrInsufficientFunds is returned when the vault cannot cover a
	// transfer.
	ErrInsufficientFunds = errors.ErrInsufficientFunds
)
