package wallet

import (
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x"
	"github.com/iov-one/daowallet/x/gate"
	"github.com/iov-one/daowallet/x/members"
	"github.com/iov-one/daowallet/x/spending"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	tagAction = "action"
	tagWallet = "wallet"
)

// RegisterRoutes registers handlers for wallet message processing.
func RegisterRoutes(r daowallet.Registry, auth x.Authenticator) {
	g := gate.New(auth)
	b := NewBucket()
	r.Handle(pathInitializeWalletMsg, &InitializeWalletHandler{gate: g, bucket: b})
	r.Handle(pathUpdateSignersMsg, &UpdateSignersHandler{gate: g, bucket: b})
	r.Handle(pathSetSpendingLimitsMsg, &SetSpendingLimitsHandler{gate: g, bucket: b})
	r.Handle(pathDelegateVoteMsg, &DelegateVoteHandler{gate: g, bucket: b})
	r.Handle(pathAssignRoleMsg, &AssignRoleHandler{gate: g, bucket: b})
	r.Handle(pathDeactivateWalletMsg, &DeactivateWalletHandler{gate: g, bucket: b})
}

// RegisterQuery registers wallet bucket for querying.
func RegisterQuery(qr daowallet.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

func tags(action string, w *WalletConfig) []common.KVPair {
	return []common.KVPair{
		{Key: []byte(tagAction), Value: []byte(action)},
		{Key: []byte(tagWallet), Value: w.Address()},
	}
}

type InitializeWalletHandler struct {
	gate   gate.Gate
	bucket *Bucket
}

var _ daowallet.Handler = (*InitializeWalletHandler)(nil)

func (h InitializeWalletHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h InitializeWalletHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Save(db, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	return &daowallet.DeliverResult{
		Data: w.Address(),
		Tags: tags("initialize", w),
	}, nil
}

// validate returns the new wallet, ready to be saved.
func (h InitializeWalletHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*WalletConfig, error) {
	var msg InitializeWalletMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	authority, err := h.gate.Caller(ctx)
	if err != nil {
		return nil, err
	}
	now, err := daowallet.BlockNow(ctx)
	if err != nil {
		return nil, err
	}
	return newWallet(db, h.bucket, authority, &msg, now)
}

// newWallet builds a wallet for the authority. It fails if the authority
// already owns one.
func newWallet(db daowallet.ReadOnlyKVStore, b *Bucket, authority daowallet.Address, msg *InitializeWalletMsg, now daowallet.UnixTime) (*WalletConfig, error) {
	if has, err := b.Has(db, Address(authority)); err != nil {
		return nil, err
	} else if has {
		return nil, errors.Wrapf(errors.ErrDuplicate, "wallet of %s", authority)
	}

	w := &WalletConfig{
		Authority:       authority,
		Threshold:       msg.Threshold,
		ProposalTimeout: msg.ProposalTimeout,
		Active:          true,
		CreatedAt:       now,
	}
	if err := w.Registry.ReplaceSigners(msg.Signers, msg.Threshold); err != nil {
		return nil, err
	}
	// The authority administrates the wallet, if it votes at all.
	if w.Registry.IsActiveSigner(authority) {
		if err := w.Registry.AssignRole(authority, members.RoleAdmin); err != nil {
			return nil, err
		}
	}
	tracker, err := spending.NewTracker(msg.SpendingLimit, time.Duration(msg.SpendingPeriod)*time.Second, now)
	if err != nil {
		return nil, err
	}
	w.Spending = tracker
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

type UpdateSignersHandler struct {
	gate   gate.Gate
	bucket *Bucket
}

var _ daowallet.Handler = (*UpdateSignersHandler)(nil)

func (h UpdateSignersHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h UpdateSignersHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Save(db, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	return &daowallet.DeliverResult{Tags: tags("update_signers", w)}, nil
}

func (h UpdateSignersHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*WalletConfig, error) {
	var msg UpdateSignersMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	w, err := h.bucket.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, err
	}
	if err := h.gate.RequireAuthority(ctx, w.Authority); err != nil {
		return nil, err
	}
	if err := w.Registry.ReplaceSigners(msg.Signers, msg.Threshold); err != nil {
		return nil, err
	}
	w.Threshold = msg.Threshold
	return w, nil
}

type SetSpendingLimitsHandler struct {
	gate   gate.Gate
	bucket *Bucket
}

var _ daowallet.Handler = (*SetSpendingLimitsHandler)(nil)

func (h SetSpendingLimitsHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h SetSpendingLimitsHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Save(db, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	return &daowallet.DeliverResult{Tags: tags("set_spending_limits", w)}, nil
}

func (h SetSpendingLimitsHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*WalletConfig, error) {
	var msg SetSpendingLimitsMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	w, err := h.bucket.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, err
	}
	if err := h.gate.RequireAuthority(ctx, w.Authority); err != nil {
		return nil, err
	}
	if err := w.Spending.SetLimits(msg.Limit, time.Duration(msg.Period)*time.Second); err != nil {
		return nil, err
	}
	return w, nil
}

type DelegateVoteHandler struct {
	gate   gate.Gate
	bucket *Bucket
}

var _ daowallet.Handler = (*DelegateVoteHandler)(nil)

func (h DelegateVoteHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h DelegateVoteHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Save(db, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	return &daowallet.DeliverResult{Tags: tags("delegate_vote", w)}, nil
}

func (h DelegateVoteHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*WalletConfig, error) {
	var msg DelegateVoteMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	w, err := h.bucket.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, err
	}
	caller, _, err := h.gate.RequireSigner(ctx, &w.Registry)
	if err != nil {
		return nil, err
	}
	delegate := msg.Delegate
	if len(delegate) == 0 {
		delegate = nil
	}
	if err := w.Registry.SetDelegate(caller, delegate); err != nil {
		return nil, err
	}
	return w, nil
}

type AssignRoleHandler struct {
	gate   gate.Gate
	bucket *Bucket
}

var _ daowallet.Handler = (*AssignRoleHandler)(nil)

func (h AssignRoleHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h AssignRoleHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Save(db, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	return &daowallet.DeliverResult{Tags: tags("assign_role", w)}, nil
}

func (h AssignRoleHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*WalletConfig, error) {
	var msg AssignRoleMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	w, err := h.bucket.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, err
	}
	if err := h.gate.RequireAuthority(ctx, w.Authority); err != nil {
		return nil, err
	}
	if err := w.Registry.AssignRole(msg.Member, msg.Role); err != nil {
		return nil, err
	}
	return w, nil
}

type DeactivateWalletHandler struct {
	gate   gate.Gate
	bucket *Bucket
}

var _ daowallet.Handler = (*DeactivateWalletHandler)(nil)

func (h DeactivateWalletHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h DeactivateWalletHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	w.Active = false
	if err := h.bucket.Save(db, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	return &daowallet.DeliverResult{Tags: tags("deactivate", w)}, nil
}

func (h DeactivateWalletHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*WalletConfig, error) {
	var msg DeactivateWalletMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	w, err := h.bucket.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, err
	}
	if err := h.gate.RequireAuthority(ctx, w.Authority); err != nil {
		return nil, err
	}
	return w, nil
}
