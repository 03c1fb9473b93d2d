package token

import "github.com/iov-one/lockfund/errors"

var (
	ErrMintMismatch     = errors.Register(40, "mint mismatch")
	ErrDecimalsMismatch = errors.Register(41, "decimals mismatch")
	ErrInvalidProgram   = errors.Register(42, "invalid token program")
	ErrAccountExists    = errors.Register(43, "token account already exists")
)
