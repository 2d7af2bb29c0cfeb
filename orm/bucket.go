package orm

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a prefixed subspace of the DB holding models of one type.
// It keeps references to secondary indexes and sequences.
//
// Embed it in a type-safe wrapper so that all data is the same type.
type Bucket struct {
	name    string
	prefix  []byte
	proto   reflect.Type
	indexes map[string]Index
}

var _ daowallet.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data. proto must be a pointer to the
// model type stored.
func NewBucket(name string, proto Model) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	t := reflect.TypeOf(proto)
	if t.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("bucket %s: model must be a pointer, got %T", name, proto))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  t.Elem(),
	}
}

// Name returns the bucket name.
func (b Bucket) Name() string {
	return b.name
}

// Register registers this Bucket and all indexes.
// You can define a name here for queries, which is
// different than the bucket name used to prefix the data
func (b Bucket) Register(name string, r daowallet.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for iname, idx := range b.indexes {
		r.Register(root+"/"+iname, idx)
	}
}

// Query handles queries from the QueryRouter
func (b Bucket) Query(db daowallet.ReadOnlyKVStore, mod string, data []byte) ([]daowallet.Model, error) {
	switch mod {
	case daowallet.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []daowallet.Model{{Key: key, Value: value}}, nil
	case daowallet.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %q", mod)
	}
}

// DBKey is the full key we store in the db, including prefix.
// A new array is allocated so that consecutive calls never share a
// backing array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// One loads the model stored under the primary key into dest.
// ErrNotFound is returned if the entity does not exist.
func (b Bucket) One(db daowallet.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != reflect.PtrTo(b.proto) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, b.proto)
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	return Unmarshal(raw, dest)
}

// Has returns true if an entity is stored under the primary key.
func (b Bucket) Has(db daowallet.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put validates and saves the model under the given primary key. All
// indexes are updated.
func (b Bucket) Put(db daowallet.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(m) != reflect.PtrTo(b.proto) {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored in %s", m, b.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := b.updateIndexes(db, key, m); err != nil {
		return err
	}
	return db.Set(b.DBKey(key), raw)
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (b Bucket) Delete(db daowallet.KVStore, key []byte) error {
	dbkey := b.DBKey(key)
	has, err := db.Has(dbkey)
	if err != nil {
		return err
	}
	if !has {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := b.updateIndexes(db, key, nil); err != nil {
		return err
	}
	return db.Delete(dbkey)
}

func (b Bucket) updateIndexes(db daowallet.KVStore, key []byte, save Model) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil && save == nil {
		return nil
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, key, prev, save); err != nil {
			return err
		}
	}
	return nil
}

// load returns the stored model or nil if none is stored.
func (b Bucket) load(db daowallet.ReadOnlyKVStore, key []byte) (Model, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	m := reflect.New(b.proto).Interface().(Model)
	if err := Unmarshal(raw, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Keys returns all primary keys that start with the given prefix, in
// ascending order.
func (b Bucket) Keys(db daowallet.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	models, err := queryPrefix(db, b.DBKey(prefix))
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(models))
	for i, m := range models {
		keys[i] = m.Key[len(b.prefix):]
	}
	return keys, nil
}

// Sequence returns a Sequence by name
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// WithIndex returns a copy of this bucket with given index,
// panics if it an index with that name is already registered.
//
// Designed to be chained.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	idx := NewIndex(b.name+"_"+name, indexer, unique, b.DBKey)
	indexes := make(map[string]Index, len(b.indexes)+1)
	for n, i := range b.indexes {
		indexes[n] = i
	}
	indexes[name] = idx
	b.indexes = indexes
	return b
}

// IndexNames returns the names of all registered indexes, sorted.
func (b Bucket) IndexNames() []string {
	names := make([]string, 0, len(b.indexes))
	for n := range b.indexes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByIndex returns the primary keys of all entities indexed under the value.
func (b Bucket) ByIndex(db daowallet.ReadOnlyKVStore, name string, value []byte) ([][]byte, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrap(ErrInvalidIndex, name)
	}
	return idx.Keys(db, value)
}
