package sigs

import (
	"github.com/iov-one/lockfund/errors"
)

// ErrInvalidSequence is returned when a signature nonce does not match the
// expected value.
var ErrInvalidSequence = errors.Register(20, "invalid sequence number")
