package app

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can log them as errors
type Recovery struct{}

var _ Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (Recovery) Check(ctx daowallet.Context, store daowallet.KVStore, tx daowallet.Tx, next daowallet.Checker) (_ *daowallet.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (Recovery) Deliver(ctx daowallet.Context, store daowallet.KVStore, tx daowallet.Tx, next daowallet.Deliverer) (_ *daowallet.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
