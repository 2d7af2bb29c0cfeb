/*
Package quorum computes how many approvals a proposal needs and decides
whether a tally reached, or can no longer reach, that number.

All functions are pure. The signer count must be the one at evaluation time,
proposals never pin a threshold snapshot.
*/
package quorum

import (
	"strings"

	"github.com/iov-one/daowallet/errors"
)

// Category classifies a proposal. It selects the approval count required
// for the proposal to pass.
type Category int32

const (
	CategoryRegular     Category = 1
	CategoryAdminChange Category = 2
	CategoryEmergency   Category = 3
)

// Validate returns an error if this is not one of the known categories.
func (c Category) Validate() error {
	switch c {
	case CategoryRegular, CategoryAdminChange, CategoryEmergency:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "unknown category %d", c)
	}
}

func (c Category) String() string {
	switch c {
	case CategoryRegular:
		return "regular"
	case CategoryAdminChange:
		return "admin_change"
	case CategoryEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(s) {
	case "regular":
		return CategoryRegular, nil
	case "admin_change", "adminchange", "admin":
		return CategoryAdminChange, nil
	case "emergency":
		return CategoryEmergency, nil
	default:
		return 0, errors.Wrapf(errors.ErrInput, "unknown category %q", s)
	}
}

// Required returns the number of distinct approvals a proposal of given
// category needs, given the wallet base threshold and the number of active
// signers.
//
// An admin change requires one approval more than the base threshold. When
// that is more than the signer count ErrThresholdUnreachable is returned.
func Required(c Category, threshold, signerCount uint32) (uint32, error) {
	if threshold == 0 || threshold > signerCount {
		return 0, errors.Wrapf(errors.ErrInvalidThreshold, "threshold %d for %d signers", threshold, signerCount)
	}
	switch c {
	case CategoryRegular:
		return threshold, nil
	case CategoryAdminChange:
		if threshold+1 > signerCount {
			return 0, errors.Wrapf(errors.ErrThresholdUnreachable,
				"admin change requires %d approvals, only %d signers", threshold+1, signerCount)
		}
		return threshold + 1, nil
	case CategoryEmergency:
		if threshold <= 1 {
			return 1, nil
		}
		return threshold - 1, nil
	default:
		return 0, errors.Wrapf(errors.ErrInput, "unknown category %d", c)
	}
}

// Reached returns true if the number of approvals satisfies the requirement.
func Reached(approvals, required uint32) bool {
	return approvals >= required
}

// Unreachable returns true if so many signers rejected that the required
// approval count cannot be collected anymore.
func Unreachable(rejections, signerCount, required uint32) bool {
	if required > signerCount {
		return true
	}
	return rejections > signerCount-required
}
