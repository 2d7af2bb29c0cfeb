package app

import (
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

// Logging is a decorator to log messages as they pass through. Delivered
// transactions are also counted when metrics are provided.
type Logging struct {
	metrics *Metrics
}

var _ Decorator = Logging{}

// NewLogging creates a Logging decorator. Metrics can be nil.
func NewLogging(m *Metrics) Logging {
	return Logging{metrics: m}
}

// Check logs error -> info, success -> debug
func (l Logging) Check(ctx daowallet.Context, store daowallet.KVStore, tx daowallet.Tx, next daowallet.Checker) (*daowallet.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (l Logging) Deliver(ctx daowallet.Context, store daowallet.KVStore, tx daowallet.Tx, next daowallet.Deliverer) (*daowallet.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
		l.metrics.observeTransition(string(res.Tag("transition")))
	}
	code, _ := errors.Info(err, false)
	l.metrics.observeTx(daowallet.GetPath(tx), code, time.Since(start))
	logDuration(ctx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx daowallet.Context, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := daowallet.GetLogger(ctx).With("duration", delta/time.Microsecond)

	if err != nil {
		logger = logger.With("err", err)
	}

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.

	if err != nil {
		logger.Error(msg)
	} else {
		if lowPrio {
			logger.Debug(msg)
		} else {
			logger.Info(msg)
		}
	}
}
