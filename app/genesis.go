package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

// Genesis file format. App state is passed to the initializers of all
// extensions.
type Genesis struct {
	ChainID  string            `json:"chain_id"`
	AppState daowallet.Options `json:"app_state"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "load genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshal genesis file: %s", err)
	}
	if !daowallet.IsValidChainID(gen.ChainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", gen.ChainID)
	}
	return &gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...daowallet.Initializer) daowallet.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []daowallet.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts daowallet.Options, kv daowallet.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
