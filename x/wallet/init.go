package wallet

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ daowallet.Initializer = (*Initializer)(nil)

// FromGenesis creates the wallets listed in the genesis file.
func (*Initializer) FromGenesis(opts daowallet.Options, kv daowallet.KVStore) error {
	var wallets []struct {
		Authority       daowallet.Address   `json:"authority"`
		Signers         []daowallet.Address `json:"signers"`
		Threshold       uint32              `json:"threshold"`
		ProposalTimeout uint64              `json:"proposal_timeout"`
		SpendingLimit   uint64              `json:"spending_limit"`
		SpendingPeriod  uint64              `json:"spending_period"`
		CreatedAt       daowallet.UnixTime  `json:"created_at"`
	}
	if err := opts.ReadOptions("wallets", &wallets); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	bucket := NewBucket()
	for i, g := range wallets {
		msg := InitializeWalletMsg{
			Signers:         g.Signers,
			Threshold:       g.Threshold,
			ProposalTimeout: g.ProposalTimeout,
			SpendingLimit:   g.SpendingLimit,
			SpendingPeriod:  g.SpendingPeriod,
		}
		if err := msg.Validate(); err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
		if err := g.Authority.Validate(); err != nil {
			return errors.Wrapf(err, "wallet #%d authority", i)
		}
		w, err := newWallet(kv, bucket, g.Authority, &msg, g.CreatedAt)
		if err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
		if err := bucket.Save(kv, w); err != nil {
			return errors.Wrapf(err, "cannot save wallet #%d", i)
		}
	}
	return nil
}
