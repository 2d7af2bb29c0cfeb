package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendCache collects a snapshot of the cached items within [start, end)
// in ascending order. The snapshot is taken once, so later writes to the
// cache do not affect an open iterator.
func ascendCache(bt *btree.BTree, start, end []byte) []cacheItem {
	var res []cacheItem
	collect := func(i btree.Item) bool {
		res = append(res, i.(cacheItem))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(cacheItem{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(cacheItem{key: start}, collect)
	default:
		bt.AscendRange(cacheItem{key: start}, cacheItem{key: end}, collect)
	}
	return res
}

// descendCache is ascendCache in reverse order.
func descendCache(bt *btree.BTree, start, end []byte) []cacheItem {
	asc := ascendCache(bt, start, end)
	for i, j := 0, len(asc)-1; i < j; i, j = i+1, j-1 {
		asc[i], asc[j] = asc[j], asc[i]
	}
	return asc
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
	none
)

// mergeIterator combines the cached items with the parent iterator, taking
// overwrites and deletes into consideration.
type mergeIterator struct {
	items     []cacheItem
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []cacheItem, parent Iterator, ascending bool) (*mergeIterator, error) {
	it := &mergeIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
	if err := it.skipAllDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// Valid implements Iterator and returns true iff it can be read
func (i *mergeIterator) Valid() bool {
	return len(i.items) > 0 || i.parentValid()
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
//
// If Valid returns false, this method will panic.
func (i *mergeIterator) Next() error {
	switch i.firstKey() {
	case us:
		i.items = i.items[1:]
	case both:
		i.items = i.items[1:]
		fallthrough
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		panic("Advanced past the end!")
	}
	return i.skipAllDeleted()
}

// Key returns the key of the cursor.
func (i *mergeIterator) Key() []byte {
	switch i.firstKey() {
	case us, both:
		return i.items[0].key
	case parent:
		return i.parent.Key()
	default:
		panic("Advanced past the end!")
	}
}

// Value returns the value of the cursor.
func (i *mergeIterator) Value() []byte {
	switch i.firstKey() {
	case us, both:
		return i.items[0].value
	case parent:
		return i.parent.Value()
	default:
		panic("Advanced past the end!")
	}
}

// Close releases the Iterator.
func (i *mergeIterator) Close() {
	i.items = nil
	if i.parent != nil {
		i.parent.Close()
	}
}

// skipAllDeleted jumps over deleted cache entries and the parent entries
// they shadow.
func (i *mergeIterator) skipAllDeleted() error {
	for {
		src := i.firstKey()
		if src != us && src != both {
			return nil
		}
		if !i.items[0].deleted {
			return nil
		}
		i.items = i.items[1:]
		if src == both {
			if err := i.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// firstKey selects the iterator that holds the next key in iteration
// order, if any.
func (i *mergeIterator) firstKey() source {
	if !i.parentValid() {
		if len(i.items) == 0 {
			return none
		}
		return us
	} else if len(i.items) == 0 {
		return parent
	}

	cmp := bytes.Compare(i.parent.Key(), i.items[0].key)
	if !i.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}

// makes sure the parent is non-nil before checking if it is valid
func (i *mergeIterator) parentValid() bool {
	return i.parent != nil && i.parent.Valid()
}
