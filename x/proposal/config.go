package proposal

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/gconf"
	"github.com/iov-one/daowallet/x/exec"
)

const packageName = "proposal"

// Configuration bounds the size of proposals. It is stored with gconf and
// can be changed by its owner.
type Configuration struct {
	Owner                daowallet.Address `json:"owner"`
	MaxDescriptionLength uint32            `json:"max_description_length"`
	MaxInstructions      uint32            `json:"max_instructions"`
	MaxDataSize          uint32            `json:"max_data_size"`
	MaxAccounts          uint32            `json:"max_accounts"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// DefaultConfiguration is used until a configuration is saved.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxDescriptionLength: 200,
		MaxInstructions:      exec.DefaultLimits.MaxInstructions,
		MaxDataSize:          exec.DefaultLimits.MaxDataSize,
		MaxAccounts:          exec.DefaultLimits.MaxAccounts,
	}
}

func (c *Configuration) GetOwner() daowallet.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if c.MaxDescriptionLength == 0 {
		return errors.Wrap(errors.ErrInput, "max description length must be greater than zero")
	}
	if c.MaxInstructions == 0 || c.MaxDataSize == 0 || c.MaxAccounts == 0 {
		return errors.Wrap(errors.ErrInput, "instruction limits must be greater than zero")
	}
	return nil
}

// Limits returns the instruction limits.
func (c *Configuration) Limits() exec.Limits {
	return exec.Limits{
		MaxInstructions: c.MaxInstructions,
		MaxDataSize:     c.MaxDataSize,
		MaxAccounts:     c.MaxAccounts,
	}
}

// LoadConfiguration returns the stored configuration or the default one.
func LoadConfiguration(db daowallet.ReadOnlyKVStore) (*Configuration, error) {
	var c Configuration
	err := gconf.Load(db, packageName, &c)
	switch {
	case errors.ErrNotFound.Is(err):
		c = DefaultConfiguration()
		return &c, nil
	case err != nil:
		return nil, err
	}
	return &c, nil
}
