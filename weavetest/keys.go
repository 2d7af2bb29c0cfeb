package weavetest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/daowallet"
)

var condSeq uint64

// NewCondition returns a new, unique condition. Every call returns a
// condition different from all previous ones.
func NewCondition() daowallet.Condition {
	n := atomic.AddUint64(&condSeq, 1)
	return daowallet.NewCondition("test", "seq", SequenceID(n))
}

// SequenceID returns the 8 byte big endian representation of n, as
// produced by orm sequences.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
