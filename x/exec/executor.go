package exec

import (
	"encoding/binary"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/orm"
)

// Executor carries out instructions on behalf of a wallet. Source
// identifies what authorized the execution, for example a proposal.
//
// Execute is called within the transaction of the governance operation. If
// it fails, the whole operation fails and nothing is persisted.
type Executor interface {
	Execute(ctx daowallet.Context, db daowallet.KVStore, wallet daowallet.Address, source string, ins []Instruction) error
}

// ExecutionRecord is a journal entry written for every executed
// instruction.
type ExecutionRecord struct {
	Wallet  daowallet.Address
	Source  string
	Index   uint32
	Program daowallet.Address
	Amount  uint64
	Digest  []byte
	Time    daowallet.UnixTime
}

// Validate returns an error if the record is malformed.
func (r *ExecutionRecord) Validate() error {
	if err := r.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if r.Source == "" {
		return errors.Wrap(errors.ErrEmpty, "source")
	}
	if err := r.Program.Validate(); err != nil {
		return errors.Wrap(err, "program")
	}
	if len(r.Digest) != 32 {
		return errors.Wrap(errors.ErrInput, "digest")
	}
	return r.Time.Validate()
}

// ExecutionBucket stores the journal. Keys are the wallet address followed by
// a big endian sequence number, so that records of a wallet can be listed
// with a prefix query.
type ExecutionBucket struct {
	orm.Bucket
	seq orm.Sequence
}

// NewExecutionBucket returns a bucket for the execution journal.
func NewExecutionBucket() *ExecutionBucket {
	b := orm.NewBucket("execution", &ExecutionRecord{})
	return &ExecutionBucket{
		Bucket: b,
		seq:    b.Sequence("id"),
	}
}

// Create stores a new record and returns its key.
func (b *ExecutionBucket) Create(db daowallet.KVStore, r *ExecutionRecord) ([]byte, error) {
	n, err := b.seq.NextInt(db)
	if err != nil {
		return nil, err
	}
	key := make([]byte, len(r.Wallet)+8)
	copy(key, r.Wallet)
	binary.BigEndian.PutUint64(key[len(r.Wallet):], uint64(n))
	if err := b.Put(db, key, r); err != nil {
		return nil, err
	}
	return key, nil
}

// ByWallet returns all records of given wallet, oldest first.
func (b *ExecutionBucket) ByWallet(db daowallet.ReadOnlyKVStore, wallet daowallet.Address) ([]*ExecutionRecord, error) {
	keys, err := b.Keys(db, wallet)
	if err != nil {
		return nil, err
	}
	out := make([]*ExecutionRecord, 0, len(keys))
	for _, k := range keys {
		var r ExecutionRecord
		if err := b.One(db, k, &r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, nil
}

// RegisterQuery exposes the journal under /executions.
func RegisterQuery(qr daowallet.QueryRouter) {
	NewExecutionBucket().Register("executions", qr)
}

// Journal is an Executor that records each instruction.
type Journal struct {
	bucket *ExecutionBucket
}

var _ Executor = (*Journal)(nil)

// NewJournal returns a journaling executor.
func NewJournal() *Journal {
	return &Journal{bucket: NewExecutionBucket()}
}

func (j *Journal) Execute(ctx daowallet.Context, db daowallet.KVStore, wallet daowallet.Address, source string, ins []Instruction) error {
	now, ok := daowallet.BlockTime(ctx)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "block time not set")
	}
	digest := Digest(ins)
	for i, in := range ins {
		rec := &ExecutionRecord{
			Wallet:  wallet,
			Source:  source,
			Index:   uint32(i),
			Program: in.Program,
			Amount:  in.Amount,
			Digest:  digest,
			Time:    daowallet.AsUnixTime(now),
		}
		if _, err := j.bucket.Create(db, rec); err != nil {
			return errors.Wrapf(err, "journal instruction %d", i)
		}
	}
	daowallet.GetLogger(ctx).Debug("instructions executed",
		"wallet", wallet, "source", source, "count", len(ins))
	return nil
}
