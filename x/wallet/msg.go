package wallet

import (
	"math"
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x/members"
)

const (
	pathInitializeWalletMsg  = "wallet/initialize"
	pathUpdateSignersMsg     = "wallet/update_signers"
	pathSetSpendingLimitsMsg = "wallet/set_spending_limits"
	pathDelegateVoteMsg      = "wallet/delegate_vote"
	pathAssignRoleMsg        = "wallet/assign_role"
	pathDeactivateWalletMsg  = "wallet/deactivate"
)

// MaxSeconds is the longest timeout or spending period accepted, in seconds.
// Longer values do not fit into a time.Duration.
const MaxSeconds = uint64(math.MaxInt64 / int64(time.Second))

// InitializeWalletMsg creates the wallet of the caller. The caller becomes
// the wallet authority.
type InitializeWalletMsg struct {
	Signers []daowallet.Address
	// Threshold is the base number of approvals.
	Threshold uint32
	// ProposalTimeout in seconds.
	ProposalTimeout uint64
	SpendingLimit   uint64
	// SpendingPeriod in seconds.
	SpendingPeriod uint64
}

var _ daowallet.Msg = (*InitializeWalletMsg)(nil)

func (InitializeWalletMsg) Path() string {
	return pathInitializeWalletMsg
}

func (m *InitializeWalletMsg) Validate() error {
	if err := validateThreshold(m.Threshold, len(m.Signers)); err != nil {
		return err
	}
	if m.ProposalTimeout == 0 {
		return errors.Wrap(errors.ErrInvalidTimeout, "proposal timeout must be greater than zero")
	}
	if m.ProposalTimeout > MaxSeconds {
		return errors.Wrapf(errors.ErrInvalidTimeout, "proposal timeout must not exceed %d seconds", MaxSeconds)
	}
	if m.SpendingLimit == 0 {
		return errors.Wrap(errors.ErrInvalidSpendingLimit, "limit must be greater than zero")
	}
	if err := validatePeriod(m.SpendingPeriod); err != nil {
		return err
	}
	return validateSigners(m.Signers)
}

// UpdateSignersMsg replaces the signer set and the base threshold.
type UpdateSignersMsg struct {
	Wallet    daowallet.Address
	Signers   []daowallet.Address
	Threshold uint32
}

var _ daowallet.Msg = (*UpdateSignersMsg)(nil)

func (UpdateSignersMsg) Path() string {
	return pathUpdateSignersMsg
}

func (m *UpdateSignersMsg) Validate() error {
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if err := validateThreshold(m.Threshold, len(m.Signers)); err != nil {
		return err
	}
	return validateSigners(m.Signers)
}

// SetSpendingLimitsMsg changes the spending allowance.
type SetSpendingLimitsMsg struct {
	Wallet daowallet.Address
	Limit  uint64
	// Period in seconds.
	Period uint64
}

var _ daowallet.Msg = (*SetSpendingLimitsMsg)(nil)

func (SetSpendingLimitsMsg) Path() string {
	return pathSetSpendingLimitsMsg
}

func (m *SetSpendingLimitsMsg) Validate() error {
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if m.Limit == 0 {
		return errors.Wrap(errors.ErrInvalidSpendingLimit, "limit must be greater than zero")
	}
	return validatePeriod(m.Period)
}

func validatePeriod(seconds uint64) error {
	if seconds == 0 {
		return errors.Wrap(errors.ErrInvalidSpendingLimit, "period must be greater than zero")
	}
	if seconds > MaxSeconds {
		return errors.Wrapf(errors.ErrInvalidSpendingLimit, "period must not exceed %d seconds", MaxSeconds)
	}
	return nil
}

// DelegateVoteMsg sets the delegate of the calling signer. An empty
// delegate revokes the delegation.
type DelegateVoteMsg struct {
	Wallet   daowallet.Address
	Delegate daowallet.Address
}

var _ daowallet.Msg = (*DelegateVoteMsg)(nil)

func (DelegateVoteMsg) Path() string {
	return pathDelegateVoteMsg
}

func (m *DelegateVoteMsg) Validate() error {
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if len(m.Delegate) != 0 {
		if err := m.Delegate.Validate(); err != nil {
			return errors.Wrap(err, "delegate")
		}
	}
	return nil
}

// AssignRoleMsg changes the role of a signer.
type AssignRoleMsg struct {
	Wallet daowallet.Address
	Member daowallet.Address
	Role   members.Role
}

var _ daowallet.Msg = (*AssignRoleMsg)(nil)

func (AssignRoleMsg) Path() string {
	return pathAssignRoleMsg
}

func (m *AssignRoleMsg) Validate() error {
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if err := m.Member.Validate(); err != nil {
		return errors.Wrap(err, "member")
	}
	return m.Role.Validate()
}

// DeactivateWalletMsg permanently deactivates a wallet.
type DeactivateWalletMsg struct {
	Wallet daowallet.Address
}

var _ daowallet.Msg = (*DeactivateWalletMsg)(nil)

func (DeactivateWalletMsg) Path() string {
	return pathDeactivateWalletMsg
}

func (m *DeactivateWalletMsg) Validate() error {
	return errors.Wrap(m.Wallet.Validate(), "wallet")
}

func validateThreshold(threshold uint32, signers int) error {
	if threshold < 1 || int(threshold) > signers {
		return errors.Wrapf(errors.ErrInvalidThreshold, "threshold %d for %d signers", threshold, signers)
	}
	return nil
}

func validateSigners(signers []daowallet.Address) error {
	if len(signers) > members.MaxSigners {
		return errors.Wrapf(errors.ErrInput, "at most %d signers allowed", members.MaxSigners)
	}
	for i, s := range signers {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
	}
	return nil
}
