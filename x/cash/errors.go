package cash

import "github.com/iov-one/lockfund/errors"

var (
	// ErrInsufficientFunds is returned when an account cannot cover the
	// requested amount.
	ErrInsufficientFunds = errors.ErrInsufficientFunds

	// ErrAccountInUse is returned when allocating an account that already
	// holds lamports or data.
	ErrAccountInUse = errors.Register(31, "account already in use")
)
