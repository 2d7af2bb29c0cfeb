package emergency

import (
	"encoding/binary"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/orm"
)

// AuditRecord describes a single emergency override.
type AuditRecord struct {
	Wallet       daowallet.Address
	Caller       daowallet.Address
	Time         daowallet.UnixTime
	Instructions uint32
	Amount       uint64
	Digest       []byte
	Summary      string
}

var _ orm.Model = (*AuditRecord)(nil)

func (r *AuditRecord) Validate() error {
	if err := r.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if err := r.Caller.Validate(); err != nil {
		return errors.Wrap(err, "caller")
	}
	if r.Time.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "time")
	}
	if r.Instructions == 0 {
		return errors.Wrap(errors.ErrEmpty, "instructions")
	}
	if len(r.Digest) != 32 {
		return errors.Wrap(errors.ErrInput, "digest")
	}
	return nil
}

// AuditBucket stores audit records under the wallet address followed by a
// big endian sequence number.
type AuditBucket struct {
	orm.Bucket
	seq orm.Sequence
}

func NewAuditBucket() *AuditBucket {
	b := orm.NewBucket("audit", &AuditRecord{})
	return &AuditBucket{
		Bucket: b,
		seq:    b.Sequence("id"),
	}
}

// Create stores a new record and returns its key.
func (b *AuditBucket) Create(db daowallet.KVStore, r *AuditRecord) ([]byte, error) {
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

// ByWallet returns all overrides of given wallet, oldest first.
func (b *AuditBucket) ByWallet(db daowallet.ReadOnlyKVStore, wallet daowallet.Address) ([]*AuditRecord, error) {
	keys, err := b.Keys(db, wallet)
	if err != nil {
		return nil, err
	}
	out := make([]*AuditRecord, 0, len(keys))
	for _, k := range keys {
		var r AuditRecord
		if err := b.One(db, k, &r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, nil
}
