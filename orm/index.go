package orm

import (
	"bytes"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

const compactIdxPrefix = "_i."

// Indexer calculates the secondary index key for a given model. A nil key
// means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// Index is a secondary index over bucket entities.
type Index struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ daowallet.QueryHandler = Index{}

// NewIndex constructs an index.
// Indexer calculates the index for a model
// unique enforces a unique constraint on the index
// refKey calculates the absolute dbkey for a ref
//
// A unique index stores the primary key under the index key. A non unique
// index stores a sorted MultiRef.
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		id:     append([]byte(compactIdxPrefix), []byte(name+":")...),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// Name returns the name of this index.
func (i Index) Name() string {
	return i.name
}

func (i Index) indexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update handles updating the reference to the entity stored under pk.
//
// prev == nil means insert
// save == nil means delete
func (i Index) Update(db daowallet.KVStore, pk []byte, prev, save Model) error {
	var prevKey, saveKey []byte
	var err error
	if prev != nil {
		if prevKey, err = i.index(prev); err != nil {
			return err
		}
	}
	if save != nil {
		if saveKey, err = i.index(save); err != nil {
			return err
		}
	}
	if prev != nil && save != nil && bytes.Equal(prevKey, saveKey) {
		return nil
	}
	if prevKey != nil {
		if err := i.remove(db, prevKey, pk); err != nil {
			return err
		}
	}
	if saveKey != nil {
		if err := i.insert(db, saveKey, pk); err != nil {
			return err
		}
	}
	return nil
}

func (i Index) insert(db daowallet.KVStore, key, pk []byte) error {
	dbkey := i.indexKey(key)
	cur, err := db.Get(dbkey)
	if err != nil {
		return err
	}
	if i.unique {
		if cur != nil {
			return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
		}
		return db.Set(dbkey, pk)
	}

	var refs MultiRef
	if cur != nil {
		if err := Unmarshal(cur, &refs); err != nil {
			return err
		}
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	raw, err := Marshal(&refs)
	if err != nil {
		return err
	}
	return db.Set(dbkey, raw)
}

func (i Index) remove(db daowallet.KVStore, key, pk []byte) error {
	dbkey := i.indexKey(key)
	cur, err := db.Get(dbkey)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s", i.name)
	}
	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrapf(errors.ErrState, "index %s points to a different entity", i.name)
		}
		return db.Delete(dbkey)
	}

	var refs MultiRef
	if err := Unmarshal(cur, &refs); err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(dbkey)
	}
	raw, err := Marshal(&refs)
	if err != nil {
		return err
	}
	return db.Set(dbkey, raw)
}

// Keys returns a list of all entity primary keys indexed under given value.
func (i Index) Keys(db daowallet.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.indexKey(value))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{raw}, nil
	}
	var refs MultiRef
	if err := Unmarshal(raw, &refs); err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// getPrefix returns all references that have an index that
// begins with a given prefix
func (i Index) getPrefix(db daowallet.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	models, err := queryPrefix(db, i.indexKey(prefix))
	if err != nil {
		return nil, err
	}
	var data [][]byte
	for _, m := range models {
		if i.unique {
			data = append(data, m.Value)
			continue
		}
		var refs MultiRef
		if err := Unmarshal(m.Value, &refs); err != nil {
			return nil, err
		}
		data = append(data, refs.Refs...)
	}
	return data, nil
}

// Query handles queries from the QueryRouter
func (i Index) Query(db daowallet.ReadOnlyKVStore, mod string, data []byte) ([]daowallet.Model, error) {
	var refs [][]byte
	var err error
	switch mod {
	case daowallet.KeyQueryMod:
		refs, err = i.Keys(db, data)
	case daowallet.PrefixQueryMod:
		refs, err = i.getPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %q", mod)
	}
	if err != nil {
		return nil, err
	}
	return i.loadRefs(db, refs)
}

func (i Index) loadRefs(db daowallet.ReadOnlyKVStore, refs [][]byte) ([]daowallet.Model, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	res := make([]daowallet.Model, len(refs))
	for j, ref := range refs {
		key := i.refKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[j] = daowallet.Model{Key: key, Value: value}
	}
	return res, nil
}
