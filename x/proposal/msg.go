package proposal

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/quorum"
)

const (
	pathAddProposalMsg         = "proposal/add"
	pathApproveProposalMsg     = "proposal/approve"
	pathRejectProposalMsg      = "proposal/reject"
	pathExecuteProposalMsg     = "proposal/execute"
	pathUpdateConfigurationMsg = "proposal/update_configuration"
)

// AddProposalMsg creates a new proposal. A zero expiration means the wallet
// default timeout.
type AddProposalMsg struct {
	Wallet       daowallet.Address
	Description  string
	Category     quorum.Category
	Instructions []exec.Instruction
	Expiration   daowallet.UnixTime
}

var _ daowallet.Msg = (*AddProposalMsg)(nil)

func (AddProposalMsg) Path() string {
	return pathAddProposalMsg
}

func (m *AddProposalMsg) Validate() error {
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if err := m.Category.Validate(); err != nil {
		return err
	}
	if err := m.Expiration.Validate(); err != nil {
		return errors.Wrap(errors.ErrInvalidExpiration, err.Error())
	}
	for i, in := range m.Instructions {
		if err := in.Validate(); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return nil
}

// ApproveProposalMsg approves a proposal. OnBehalfOf selects the signer a
// delegate votes for. It can be left empty if the caller represents a
// single signer.
type ApproveProposalMsg struct {
	Wallet     daowallet.Address
	ProposalID uint64
	OnBehalfOf daowallet.Address
}

var _ daowallet.Msg = (*ApproveProposalMsg)(nil)

func (ApproveProposalMsg) Path() string {
	return pathApproveProposalMsg
}

func (m *ApproveProposalMsg) Validate() error {
	return validateVote(m.Wallet, m.ProposalID, m.OnBehalfOf)
}

// RejectProposalMsg rejects a proposal. See ApproveProposalMsg.
type RejectProposalMsg struct {
	Wallet     daowallet.Address
	ProposalID uint64
	OnBehalfOf daowallet.Address
}

var _ daowallet.Msg = (*RejectProposalMsg)(nil)

func (RejectProposalMsg) Path() string {
	return pathRejectProposalMsg
}

func (m *RejectProposalMsg) Validate() error {
	return validateVote(m.Wallet, m.ProposalID, m.OnBehalfOf)
}

func validateVote(wallet daowallet.Address, id uint64, onBehalfOf daowallet.Address) error {
	if err := wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if id == 0 {
		return errors.Wrap(errors.ErrEmpty, "proposal id")
	}
	if len(onBehalfOf) != 0 {
		if err := onBehalfOf.Validate(); err != nil {
			return errors.Wrap(err, "on behalf of")
		}
	}
	return nil
}

// ExecuteProposalMsg executes an approved proposal, or a regular one that
// fits into the spending allowance.
type ExecuteProposalMsg struct {
	Wallet     daowallet.Address
	ProposalID uint64
}

var _ daowallet.Msg = (*ExecuteProposalMsg)(nil)

func (ExecuteProposalMsg) Path() string {
	return pathExecuteProposalMsg
}

func (m *ExecuteProposalMsg) Validate() error {
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if m.ProposalID == 0 {
		return errors.Wrap(errors.ErrEmpty, "proposal id")
	}
	return nil
}

// UpdateConfigurationMsg patches the proposal configuration. Zero fields of
// the patch are left unchanged.
type UpdateConfigurationMsg struct {
	Patch *Configuration
}

var _ daowallet.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if len(m.Patch.Owner) != 0 {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	return nil
}
