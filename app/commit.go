package app

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

// _wv: is a prefix for engine internal data
const chainIDKey = "_wv:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv interface {
	Get(key []byte) ([]byte, error)
}) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv daowallet.KVStore, chainID string) error {
	if !daowallet.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}

// commit writes the cache into the committed store and persists a new
// version.
func commit(store daowallet.CommitKVStore, cache daowallet.KVCacheWrap) (daowallet.CommitID, error) {
	if err := cache.Write(); err != nil {
		return daowallet.CommitID{}, errors.Wrap(err, "write cache")
	}
	id, err := store.Commit()
	if err != nil {
		return id, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return id, nil
}
