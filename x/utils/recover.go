package utils

import (
	"github.com/iov-one/lockfund"
	"github.com/iov-one/lockfund/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can log them as errors
type Recovery struct{}

var _ lockfund.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Checker) (_ *lockfund.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Deliverer) (_ *lockfund.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
