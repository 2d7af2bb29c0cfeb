//nolint
package store

import "github.com/iov-one/daowallet"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = daowallet.ReadOnlyKVStore
type SetDeleter = daowallet.SetDeleter
type KVStore = daowallet.KVStore
type Batch = daowallet.Batch
type Iterator = daowallet.Iterator
type CacheableKVStore = daowallet.CacheableKVStore
type KVCacheWrap = daowallet.KVCacheWrap
type CommitKVStore = daowallet.CommitKVStore
type CommitID = daowallet.CommitID
type Model = daowallet.Model

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model { return daowallet.Pair(key, value) }
