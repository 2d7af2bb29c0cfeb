package store

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/iov-one/daowallet/weavetest/assert"
)

// TestSuite runs the same storage checks against any CacheableKVStore
// implementation. Both the in-memory btree store and the iavl backed store
// use it.
type TestSuite struct {
	makeBase TestStoreConstructor
}

type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet checks that writes to a cache are isolated until written and
// that a discarded cache leaves no trace.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	wallet, proposal, audit := []byte("wallet:1"), []byte("proposal:1"), []byte("audit:1")

	s.AssertGetHas(t, base, wallet, nil, false)
	assert.Nil(t, base.Set(wallet, []byte("active")))
	s.AssertGetHas(t, base, wallet, []byte("active"), true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, wallet, []byte("active"), true)
	assert.Nil(t, cache.Set(proposal, []byte("pending")))
	s.AssertGetHas(t, cache, proposal, []byte("pending"), true)
	s.AssertGetHas(t, base, proposal, nil, false)
	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, proposal, []byte("pending"), true)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(audit, []byte("override")))
	discarded.Discard()
	s.AssertGetHas(t, base, audit, nil, false)

	deleting := base.CacheWrap()
	assert.Nil(t, deleting.Delete(wallet))
	s.AssertGetHas(t, deleting, wallet, nil, false)
	s.AssertGetHas(t, base, wallet, []byte("active"), true)
	assert.Nil(t, deleting.Write())
	s.AssertGetHas(t, base, wallet, nil, false)
	s.AssertGetHas(t, base, proposal, []byte("pending"), true)
}

// CacheConflicts checks that a cache can overwrite and delete values of
// its parent.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	k := func(n int) []byte { return []byte(fmt.Sprintf("key-%02d", n)) }
	v := func(n int) []byte { return []byte(fmt.Sprintf("value-%02d", n)) }

	cases := map[string]struct {
		parentOps []Op
		childOps  []Op
		// Key is queried, Value is expected. A nil value means missing.
		parentQueries []Model
		childQueries  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(k(1), v(1)), SetOp(k(2), v(2))},
			childOps:      []Op{SetOp(k(1), v(11)), SetOp(k(3), v(7)), DelOp(k(2))},
			parentQueries: []Model{Pair(k(1), v(1)), Pair(k(2), v(2)), Pair(k(3), nil)},
			childQueries:  []Model{Pair(k(1), v(11)), Pair(k(2), nil), Pair(k(3), v(7))},
		},
		"delete then set again": {
			parentOps:     []Op{SetOp(k(4), v(4))},
			childOps:      []Op{DelOp(k(4)), SetOp(k(4), v(5))},
			parentQueries: []Model{Pair(k(4), v(4))},
			childQueries:  []Model{Pair(k(4), v(5))},
		},
		"delete missing key": {
			childOps:      []Op{DelOp(k(9))},
			parentQueries: []Model{Pair(k(9), nil)},
			childQueries:  []Model{Pair(k(9), nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}

			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// FuzzIterator compares range iteration in both directions with a sorted
// copy of the stored data.
func (s *TestSuite) FuzzIterator(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	var stored []Model
	for i := 0; i < 50; i++ {
		m := Pair([]byte(fmt.Sprintf("wallet/%03d", i*7%50)), []byte(fmt.Sprintf("%d", i)))
		assert.Nil(t, base.Set(m.Key, m.Value))
		stored = append(stored, m)
	}
	sortModels(stored)

	ranges := map[string]struct {
		start, end []byte
	}{
		"everything":   {},
		"open end":     {start: []byte("wallet/020")},
		"open start":   {end: []byte("wallet/010")},
		"bounded":      {start: []byte("wallet/005"), end: []byte("wallet/015")},
		"empty range":  {start: []byte("wallet/030"), end: []byte("wallet/030")},
		"out of range": {start: []byte("zzz")},
	}
	for name, r := range ranges {
		t.Run(name, func(t *testing.T) {
			want := filterRange(stored, r.start, r.end)
			assertIteration(t, base, r.start, r.end, want)
			assertIteration(t, base.CacheWrap(), r.start, r.end, want)
		})
	}
}

// IteratorWithConflicts checks that iterating a cache merges its pending
// writes and deletes with the parent data.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	for _, k := range []string{"a", "c", "e", "g"} {
		assert.Nil(t, base.Set([]byte(k), []byte("parent-"+k)))
	}
	cache := base.CacheWrap()
	assert.Nil(t, cache.Set([]byte("b"), []byte("child-b")))
	assert.Nil(t, cache.Set([]byte("e"), []byte("child-e")))
	assert.Nil(t, cache.Delete([]byte("c")))
	assert.Nil(t, cache.Delete([]byte("x")))

	want := []Model{
		Pair([]byte("a"), []byte("parent-a")),
		Pair([]byte("b"), []byte("child-b")),
		Pair([]byte("e"), []byte("child-e")),
		Pair([]byte("g"), []byte("parent-g")),
	}
	assertIteration(t, cache, nil, nil, want)
	assertIteration(t, cache, []byte("b"), []byte("g"), want[1:3])

	assert.Nil(t, cache.Write())
	assertIteration(t, base, nil, nil, want)
}

func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func assertIteration(t testing.TB, kv ReadOnlyKVStore, start, end []byte, want []Model) {
	t.Helper()

	it, err := kv.Iterator(start, end)
	assert.Nil(t, err)
	got, err := ReadAll(it)
	assert.Nil(t, err)
	assertModels(t, want, got)

	rit, err := kv.ReverseIterator(start, end)
	assert.Nil(t, err)
	got, err = ReadAll(rit)
	assert.Nil(t, err)
	assertModels(t, reverse(want), got)
}

func assertModels(t testing.TB, want, got []Model) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("want %d models, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(want[i].Key, got[i].Key) || !bytes.Equal(want[i].Value, got[i].Value) {
			t.Fatalf("model %d: want %q=%q, got %q=%q", i, want[i].Key, want[i].Value, got[i].Key, got[i].Value)
		}
	}
}

func filterRange(models []Model, start, end []byte) []Model {
	var out []Model
	for _, m := range models {
		if inRange(m.Key, start, end) {
			out = append(out, m)
		}
	}
	return out
}

func reverse(models []Model) []Model {
	out := make([]Model, len(models))
	for i, m := range models {
		out[len(models)-1-i] = m
	}
	return out
}

func sortModels(models []Model) {
	sort.Slice(models, func(i, j int) bool {
		return bytes.Compare(models[i].Key, models[j].Key) < 0
	})
}
