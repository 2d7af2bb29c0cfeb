package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/store"
	"github.com/iov-one/daowallet/weavetest/assert"
)

type counter struct {
	Owner []byte
	Count int64
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func ownerIndex(m Model) ([]byte, error) {
	c, ok := m.(*counter)
	if !ok {
		return nil, errors.WithType(errors.ErrType, m)
	}
	return c.Owner, nil
}

func newCounterBucket() Bucket {
	return NewBucket("cnts", &counter{}).WithIndex("owner", ownerIndex, false)
}

func TestBucketPutOne(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	assert.Nil(t, b.Put(db, []byte("a"), &counter{Owner: []byte("alice"), Count: 3}))

	var got counter
	assert.Nil(t, b.One(db, []byte("a"), &got))
	assert.Equal(t, int64(3), got.Count)
	assert.Bytes(t, []byte("alice"), got.Owner)

	err := b.One(db, []byte("missing"), &got)
	assert.IsErr(t, errors.ErrNotFound, err)

	err = b.Put(db, []byte("b"), &counter{Count: -1})
	assert.IsErr(t, errors.ErrModel, err)

	err = b.Put(db, nil, &counter{})
	assert.IsErr(t, errors.ErrEmpty, err)
}

func TestBucketIndexFollowsUpdates(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	assert.Nil(t, b.Put(db, []byte("a"), &counter{Owner: []byte("alice")}))
	assert.Nil(t, b.Put(db, []byte("b"), &counter{Owner: []byte("alice")}))
	assert.Nil(t, b.Put(db, []byte("c"), &counter{Owner: []byte("bob")}))

	keys, err := b.ByIndex(db, "owner", []byte("alice"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, keys)

	// moving an entity to another owner updates both index entries
	assert.Nil(t, b.Put(db, []byte("a"), &counter{Owner: []byte("bob"), Count: 1}))
	keys, err = b.ByIndex(db, "owner", []byte("bob"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("c")}, keys)

	assert.Nil(t, b.Delete(db, []byte("b")))
	keys, err = b.ByIndex(db, "owner", []byte("alice"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))

	err = b.Delete(db, []byte("b"))
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = b.ByIndex(db, "unknown", nil)
	assert.IsErr(t, ErrInvalidIndex, err)
}

func TestUniqueIndex(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", &counter{}).WithIndex("owner", ownerIndex, true)

	assert.Nil(t, b.Put(db, []byte("a"), &counter{Owner: []byte("alice")}))
	err := b.Put(db, []byte("b"), &counter{Owner: []byte("alice")})
	assert.IsErr(t, errors.ErrDuplicate, err)
	// saving the same entity again does not conflict with itself
	assert.Nil(t, b.Put(db, []byte("a"), &counter{Owner: []byte("alice"), Count: 2}))
}

func TestBucketKeysAndQuery(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	for _, k := range []string{"x1", "x2", "y1"} {
		assert.Nil(t, b.Put(db, []byte(k), &counter{Owner: []byte("o")}))
	}

	keys, err := b.Keys(db, []byte("x"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("x1"), []byte("x2")}, keys)

	qr := daowallet.NewQueryRouter()
	b.Register("counters", qr)

	res, err := qr.Handler("/counters").Query(db, daowallet.PrefixQueryMod, []byte("x"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))
	if !bytes.Equal(res[0].Key, b.DBKey([]byte("x1"))) {
		t.Fatalf("unexpected key %q", res[0].Key)
	}

	res, err = qr.Handler("/counters/owner").Query(db, daowallet.KeyQueryMod, []byte("o"))
	assert.Nil(t, err)
	assert.Equal(t, 3, len(res))

	var c counter
	assert.Nil(t, Unmarshal(res[2].Value, &c))
	assert.Bytes(t, []byte("o"), c.Owner)
}

func TestBucketRejectsForeignModel(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	err := b.Put(db, []byte("a"), &MultiRef{Refs: [][]byte{[]byte("x")}})
	assert.IsErr(t, errors.ErrType, err)
}
