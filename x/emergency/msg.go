package emergency

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x/exec"
)

const pathOverrideMsg = "emergency/override"

// OverrideMsg executes instructions on behalf of the wallet without a
// proposal. Only the wallet authority can send it.
type OverrideMsg struct {
	Wallet       daowallet.Address
	Instructions []exec.Instruction
}

var _ daowallet.Msg = (*OverrideMsg)(nil)

func (OverrideMsg) Path() string {
	return pathOverrideMsg
}

func (m *OverrideMsg) Validate() error {
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if len(m.Instructions) == 0 {
		return errors.Wrap(errors.ErrEmpty, "instructions")
	}
	for i, in := range m.Instructions {
		if err := in.Validate(); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return nil
}
