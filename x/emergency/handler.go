package emergency

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/gate"
	"github.com/iov-one/daowallet/x/proposal"
	"github.com/iov-one/daowallet/x/wallet"
	"github.com/tendermint/tendermint/libs/common"
)

// RegisterRoutes registers the override handler.
func RegisterRoutes(r daowallet.Registry, auth x.Authenticator, executor exec.Executor) {
	r.Handle(pathOverrideMsg, &OverrideHandler{
		gate:     gate.New(auth),
		wallets:  wallet.NewBucket(),
		audits:   NewAuditBucket(),
		executor: executor,
	})
}

// RegisterQuery exposes audit records under /audits.
func RegisterQuery(qr daowallet.QueryRouter) {
	NewAuditBucket().Register("audits", qr)
}

type OverrideHandler struct {
	gate     gate.Gate
	wallets  *wallet.Bucket
	audits   *AuditBucket
	executor exec.Executor
}

var _ daowallet.Handler = (*OverrideHandler)(nil)

func (h OverrideHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h OverrideHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	msg, rec, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.executor.Execute(ctx, db, msg.Wallet, "emergency", msg.Instructions); err != nil {
		return nil, errors.Wrap(err, "execute instructions")
	}
	key, err := h.audits.Create(db, rec)
	if err != nil {
		return nil, errors.Wrap(err, "cannot save audit record")
	}

	daowallet.GetLogger(ctx).Info("emergency override",
		"wallet", rec.Wallet,
		"caller", rec.Caller,
		"time", rec.Time,
		"summary", rec.Summary)
	return &daowallet.DeliverResult{
		Data: key,
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("emergency_override")},
			{Key: []byte("wallet"), Value: rec.Wallet},
			{Key: []byte("caller"), Value: rec.Caller},
		},
	}, nil
}

func (h OverrideHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*OverrideMsg, *AuditRecord, error) {
	var msg OverrideMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	w, err := h.wallets.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, nil, err
	}
	if err := h.gate.RequireAuthority(ctx, w.Authority); err != nil {
		return nil, nil, err
	}
	conf, err := proposal.LoadConfiguration(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load configuration")
	}
	if err := exec.Validate(msg.Instructions, conf.Limits()); err != nil {
		return nil, nil, err
	}
	amount, err := exec.TotalAmount(msg.Instructions)
	if err != nil {
		return nil, nil, err
	}
	now, err := daowallet.BlockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	rec := &AuditRecord{
		Wallet:       w.Address(),
		Caller:       w.Authority,
		Time:         now,
		Instructions: uint32(len(msg.Instructions)),
		Amount:       amount,
		Digest:       exec.Digest(msg.Instructions),
		Summary:      exec.Summary(msg.Instructions),
	}
	return &msg, rec, nil
}
