package proposal

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ daowallet.Initializer = (*Initializer)(nil)

// FromGenesis stores the proposal configuration, if one is present in the
// genesis file. Otherwise the default configuration is used.
func (*Initializer) FromGenesis(opts daowallet.Options, kv daowallet.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(kv, opts, packageName, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
