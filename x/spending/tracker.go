/*
Package spending implements the rolling spending allowance of a wallet.

Regular proposals whose aggregate amount fits into what is left of the
allowance for the current window may be executed without reaching quorum.
The window is rolled lazily, whenever the tracker is consulted.
*/
package spending

import (
	"math"
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x/quorum"
)

// Tracker keeps the allowance state. Period is stored in seconds.
type Tracker struct {
	Limit     uint64
	Period    int64
	Used      uint64
	LastReset daowallet.UnixTime
}

// NewTracker returns a tracker with a window starting at now.
func NewTracker(limit uint64, period time.Duration, now daowallet.UnixTime) (Tracker, error) {
	t := Tracker{LastReset: now}
	if err := t.SetLimits(limit, period); err != nil {
		return Tracker{}, err
	}
	return t, nil
}

// PeriodDuration returns the window length.
func (t Tracker) PeriodDuration() time.Duration {
	return time.Duration(t.Period) * time.Second
}

// Validate returns an error if the tracker state is not consistent.
func (t Tracker) Validate() error {
	if t.Limit == 0 {
		return errors.Wrap(errors.ErrInvalidSpendingLimit, "limit must be greater than zero")
	}
	if t.Period <= 0 || t.Period > math.MaxInt64/int64(time.Second) {
		return errors.Wrapf(errors.ErrInvalidSpendingLimit, "period %d out of range", t.Period)
	}
	if err := t.LastReset.Validate(); err != nil {
		return errors.Wrap(err, "last reset")
	}
	return nil
}

// RollWindow starts a new window if the current one is over.
func (t *Tracker) RollWindow(now daowallet.UnixTime) {
	if now.Sub(t.LastReset) >= t.PeriodDuration() {
		t.Used = 0
		t.LastReset = now
	}
}

// Remaining returns how much can still be spent in the window that is
// current at given time. The tracker is not modified.
func (t Tracker) Remaining(now daowallet.UnixTime) uint64 {
	t.RollWindow(now)
	if t.Used >= t.Limit {
		return 0
	}
	return t.Limit - t.Used
}

// TryBypass returns true when a proposal of given category and amount may be
// executed without quorum. On success the amount is accounted in the current
// window. Only regular proposals with a non zero amount qualify.
func (t *Tracker) TryBypass(c quorum.Category, amount uint64, now daowallet.UnixTime) bool {
	t.RollWindow(now)
	if c != quorum.CategoryRegular {
		return false
	}
	if amount == 0 || t.Used > t.Limit || amount > t.Limit-t.Used {
		return false
	}
	t.Used += amount
	return true
}

// SetLimits replaces the limit and the period. The usage of the current
// window is left untouched.
func (t *Tracker) SetLimits(limit uint64, period time.Duration) error {
	if limit == 0 {
		return errors.Wrap(errors.ErrInvalidSpendingLimit, "limit must be greater than zero")
	}
	if period < time.Second {
		return errors.Wrap(errors.ErrInvalidSpendingLimit, "period must be at least one second")
	}
	t.Limit = limit
	t.Period = int64(period / time.Second)
	return nil
}
