package wallet

import (
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/orm"
	"github.com/iov-one/daowallet/x/members"
	"github.com/iov-one/daowallet/x/spending"
)

// WalletConfig is the singleton state of a governed account.
type WalletConfig struct {
	Authority daowallet.Address
	Registry  members.Registry
	Threshold uint32
	// ProposalTimeout in seconds, used when a proposal does not declare
	// its expiration.
	ProposalTimeout uint64
	Spending        spending.Tracker
	Active          bool
	ProposalCount   uint64
	CreatedAt       daowallet.UnixTime
}

var _ orm.Model = (*WalletConfig)(nil)

// Address returns the key this wallet is stored under.
func (w *WalletConfig) Address() daowallet.Address {
	return Address(w.Authority)
}

// Address returns the stable address of the wallet owned by authority.
func Address(authority daowallet.Address) daowallet.Address {
	return daowallet.NewCondition("wallet", "config", authority).Address()
}

// Validate enforces the threshold invariant and checks all embedded state.
func (w *WalletConfig) Validate() error {
	if err := w.Authority.Validate(); err != nil {
		return errors.Wrap(err, "authority")
	}
	if err := w.Registry.Validate(); err != nil {
		return errors.Wrap(err, "registry")
	}
	if w.Threshold < 1 || w.Threshold > w.Registry.SignerCount() {
		return errors.Wrapf(errors.ErrInvalidThreshold, "threshold %d for %d signers", w.Threshold, w.Registry.SignerCount())
	}
	if w.ProposalTimeout == 0 || w.ProposalTimeout > MaxSeconds {
		return errors.Wrapf(errors.ErrInvalidTimeout, "proposal timeout %d out of range", w.ProposalTimeout)
	}
	if err := w.Spending.Validate(); err != nil {
		return errors.Wrap(err, "spending")
	}
	if err := w.CreatedAt.Validate(); err != nil {
		return errors.Wrap(err, "created at")
	}
	return nil
}

// Timeout returns the default proposal lifetime.
func (w *WalletConfig) Timeout() time.Duration {
	return time.Duration(w.ProposalTimeout) * time.Second
}

// RequireActive returns ErrWalletInactive for a deactivated wallet.
func (w *WalletConfig) RequireActive() error {
	if !w.Active {
		return errors.Wrapf(errors.ErrWalletInactive, "wallet %s", w.Address())
	}
	return nil
}

// NextProposalID allocates a proposal id. Ids start at 1.
func (w *WalletConfig) NextProposalID() uint64 {
	w.ProposalCount++
	return w.ProposalCount
}

// Bucket stores wallet configurations keyed by their address.
type Bucket struct {
	orm.Bucket
}

const indexAuthority = "authority"

// NewBucket returns a bucket for wallet configurations.
func NewBucket() *Bucket {
	b := orm.NewBucket("wallet", &WalletConfig{}).
		WithIndex(indexAuthority, authorityIndexer, true)
	return &Bucket{Bucket: b}
}

func authorityIndexer(m orm.Model) ([]byte, error) {
	w, ok := m.(*WalletConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "invalid type: %T", m)
	}
	return w.Authority, nil
}

// Get loads the wallet stored under given address.
func (b *Bucket) Get(db daowallet.ReadOnlyKVStore, addr daowallet.Address) (*WalletConfig, error) {
	var w WalletConfig
	if err := b.One(db, addr, &w); err != nil {
		return nil, errors.Wrap(err, "load wallet")
	}
	return &w, nil
}

// GetActive loads a wallet and ensures it was not deactivated.
func (b *Bucket) GetActive(db daowallet.ReadOnlyKVStore, addr daowallet.Address) (*WalletConfig, error) {
	w, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if err := w.RequireActive(); err != nil {
		return nil, err
	}
	return w, nil
}

// Save validates and stores the wallet under its address.
func (b *Bucket) Save(db daowallet.KVStore, w *WalletConfig) error {
	return b.Put(db, w.Address(), w)
}
