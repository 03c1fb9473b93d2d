package utils

import (
	"time"

	"github.com/iov-one/lockfund"
)

// Logging is a decorator to log instructions as they pass through
type Logging struct{}

var _ lockfund.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (r Logging) Check(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Checker) (*lockfund.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx lockfund.Context, store lockfund.KVStore, tx lockfund.Tx, next lockfund.Deliverer) (*lockfund.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx lockfund.Context, tx lockfund.Tx, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := lockfund.GetLogger(ctx).With("duration", delta/time.Microsecond)
	if tx != nil {
		if ix, ierr := tx.GetInstruction(); ierr == nil && ix != nil {
			if path, perr := ix.Path(); perr == nil {
				logger = logger.With("path", path)
			}
		}
	}

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
