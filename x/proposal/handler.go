package proposal

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/gconf"
	"github.com/iov-one/daowallet/x"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/gate"
	"github.com/iov-one/daowallet/x/quorum"
	"github.com/iov-one/daowallet/x/wallet"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	tagAction     = "action"
	tagWallet     = "wallet"
	tagProposalID = "proposal-id"
	tagStatus     = "status"
	tagVoter      = "voter"
	tagTransition = "transition"
	tagPath       = "path"
)

// RegisterRoutes registers handlers for proposal message processing.
// Executed proposals are handed to the executor.
func RegisterRoutes(r daowallet.Registry, auth x.Authenticator, executor exec.Executor) {
	g := gate.New(auth)
	wallets := wallet.NewBucket()
	proposals := NewBucket()
	r.Handle(pathAddProposalMsg, &AddProposalHandler{
		gate:      g,
		wallets:   wallets,
		proposals: proposals,
	})
	r.Handle(pathApproveProposalMsg, &VoteHandler{
		gate:      g,
		wallets:   wallets,
		proposals: proposals,
		approve:   true,
	})
	r.Handle(pathRejectProposalMsg, &VoteHandler{
		gate:      g,
		wallets:   wallets,
		proposals: proposals,
		approve:   false,
	})
	r.Handle(pathExecuteProposalMsg, &ExecuteProposalHandler{
		gate:      g,
		wallets:   wallets,
		proposals: proposals,
		executor:  executor,
	})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth))
}

// RegisterQuery registers proposal bucket for querying.
func RegisterQuery(qr daowallet.QueryRouter) {
	NewBucket().Register("proposals", qr)
}

func tags(action string, p *Proposal) []common.KVPair {
	return []common.KVPair{
		{Key: []byte(tagAction), Value: []byte(action)},
		{Key: []byte(tagWallet), Value: p.Wallet},
		{Key: []byte(tagProposalID), Value: []byte(strconv.FormatUint(p.ID, 10))},
		{Key: []byte(tagStatus), Value: []byte(p.Status.String())},
	}
}

// EncodeID returns the binary form of a proposal id, as returned by the add
// handler.
func EncodeID(id uint64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, id)
	return raw
}

// DecodeID reverses EncodeID. Zero, which is never a valid id, is returned
// for malformed input.
func DecodeID(raw []byte) uint64 {
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

type AddProposalHandler struct {
	gate      gate.Gate
	wallets   *wallet.Bucket
	proposals *Bucket
}

var _ daowallet.Handler = (*AddProposalHandler)(nil)

func (h AddProposalHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h AddProposalHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	p, w, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	p.ID = w.NextProposalID()
	if err := h.proposals.Save(db, p); err != nil {
		return nil, errors.Wrap(err, "cannot save proposal")
	}
	if err := h.wallets.Save(db, w); err != nil {
		return nil, errors.Wrap(err, "cannot save wallet")
	}
	return &daowallet.DeliverResult{
		Data: EncodeID(p.ID),
		Tags: tags("add", p),
	}, nil
}

// validate returns the new proposal, without an id yet, and the wallet it
// belongs to.
func (h AddProposalHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*Proposal, *wallet.WalletConfig, error) {
	var msg AddProposalMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	w, err := h.wallets.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, nil, err
	}
	proposer, member, err := h.gate.RequireSigner(ctx, &w.Registry)
	if err != nil {
		return nil, nil, err
	}
	if err := gate.CanPropose(member.Role, msg.Category); err != nil {
		return nil, nil, err
	}
	// Admin changes that can never pass are refused right away.
	if _, err := quorum.Required(msg.Category, w.Threshold, w.Registry.SignerCount()); err != nil {
		return nil, nil, err
	}

	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load configuration")
	}
	if uint32(len(msg.Description)) > conf.MaxDescriptionLength {
		return nil, nil, errors.Wrapf(errors.ErrInput, "description longer than %d characters", conf.MaxDescriptionLength)
	}
	if err := exec.Validate(msg.Instructions, conf.Limits()); err != nil {
		return nil, nil, err
	}

	now, err := daowallet.BlockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	expiration := msg.Expiration
	if expiration.IsZero() {
		expiration = now.Add(w.Timeout())
	}
	if expiration <= now {
		return nil, nil, errors.Wrapf(errors.ErrInvalidExpiration, "expiration %s is not in the future", expiration)
	}

	p := &Proposal{
		Wallet:       w.Address(),
		Proposer:     proposer,
		Description:  msg.Description,
		Category:     msg.Category,
		Instructions: msg.Instructions,
		Expiration:   expiration,
		Status:       StatusPending,
		CreatedAt:    now,
	}
	return p, w, nil
}

// VoteHandler processes both approvals and rejections.
type VoteHandler struct {
	gate      gate.Gate
	wallets   *wallet.Bucket
	proposals *Bucket
	approve   bool
}

var _ daowallet.Handler = (*VoteHandler)(nil)

func (h VoteHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h VoteHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	v, err := h.validate(ctx, db, tx)
	if err != nil {
		if v != nil && errors.ErrProposalExpired.Is(err) {
			if serr := h.proposals.Save(db, v.proposal); serr != nil {
				return nil, errors.Wrap(serr, "cannot save expired proposal")
			}
		}
		return nil, err
	}
	if err := h.proposals.Save(db, v.proposal); err != nil {
		return nil, errors.Wrap(err, "cannot save proposal")
	}

	action := "reject"
	if h.approve {
		action = "approve"
	}
	res := &daowallet.DeliverResult{Tags: tags(action, v.proposal)}
	res.Tags = append(res.Tags, common.KVPair{Key: []byte(tagVoter), Value: v.voter})
	if v.transition != 0 {
		res.Tags = append(res.Tags, common.KVPair{Key: []byte(tagTransition), Value: []byte(v.transition.String())})
		daowallet.GetLogger(ctx).Info("proposal transition",
			"wallet", v.proposal.Wallet, "proposal", v.proposal.ID, "status", v.transition)
	}
	return res, nil
}

type voteResult struct {
	proposal   *Proposal
	voter      daowallet.Address
	transition Status
}

// validate casts the vote on an in memory copy of the proposal. If the
// proposal turns out to be expired, the expired proposal is returned together
// with ErrProposalExpired.
func (h VoteHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*voteResult, error) {
	var (
		walletAddr daowallet.Address
		id         uint64
		onBehalfOf daowallet.Address
	)
	if h.approve {
		var msg ApproveProposalMsg
		if err := daowallet.LoadMsg(tx, &msg); err != nil {
			return nil, errors.Wrap(err, "load msg")
		}
		walletAddr, id, onBehalfOf = msg.Wallet, msg.ProposalID, msg.OnBehalfOf
	} else {
		var msg RejectProposalMsg
		if err := daowallet.LoadMsg(tx, &msg); err != nil {
			return nil, errors.Wrap(err, "load msg")
		}
		walletAddr, id, onBehalfOf = msg.Wallet, msg.ProposalID, msg.OnBehalfOf
	}
	if len(onBehalfOf) == 0 {
		onBehalfOf = nil
	}

	w, err := h.wallets.GetActive(db, walletAddr)
	if err != nil {
		return nil, err
	}
	p, err := h.proposals.Get(db, walletAddr, id)
	if err != nil {
		return nil, err
	}
	now, err := daowallet.BlockNow(ctx)
	if err != nil {
		return nil, err
	}

	switch p.Status {
	case StatusPending:
		if p.Expire(now) {
			return &voteResult{proposal: p}, errors.Wrapf(errors.ErrProposalExpired, "proposal %d expired at %s", p.ID, p.Expiration)
		}
	case StatusExpired:
		return nil, errors.Wrapf(errors.ErrProposalExpired, "proposal %d", p.ID)
	default:
		return nil, errors.Wrapf(errors.ErrNotPending, "proposal %d is %s", p.ID, p.Status)
	}

	voter, err := h.gate.Voter(ctx, &w.Registry, onBehalfOf)
	if err != nil {
		return nil, err
	}
	if err := p.Vote(voter, h.approve); err != nil {
		return nil, err
	}
	transition, err := p.Evaluate(w.Threshold, &w.Registry)
	if err != nil {
		return nil, err
	}
	return &voteResult{proposal: p, voter: voter, transition: transition}, nil
}

type ExecuteProposalHandler struct {
	gate      gate.Gate
	wallets   *wallet.Bucket
	proposals *Bucket
	executor  exec.Executor
}

var _ daowallet.Handler = (*ExecuteProposalHandler)(nil)

func (h ExecuteProposalHandler) Check(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &daowallet.CheckResult{}, nil
}

func (h ExecuteProposalHandler) Deliver(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	p, w, path, err := h.validate(ctx, db, tx)
	if err != nil {
		if p != nil && errors.ErrProposalExpired.Is(err) {
			if serr := h.proposals.Save(db, p); serr != nil {
				return nil, errors.Wrap(serr, "cannot save expired proposal")
			}
		}
		return nil, err
	}

	source := fmt.Sprintf("proposal/%d", p.ID)
	if err := h.executor.Execute(ctx, db, w.Address(), source, p.Instructions); err != nil {
		return nil, errors.Wrap(err, "execute instructions")
	}
	if err := h.proposals.Save(db, p); err != nil {
		return nil, errors.Wrap(err, "cannot save proposal")
	}
	if path == ExecutedByBypass {
		if err := h.wallets.Save(db, w); err != nil {
			return nil, errors.Wrap(err, "cannot save wallet")
		}
	}

	daowallet.GetLogger(ctx).Info("proposal executed",
		"wallet", p.Wallet, "proposal", p.ID, "path", path)
	res := &daowallet.DeliverResult{Tags: tags("execute", p)}
	res.Tags = append(res.Tags,
		common.KVPair{Key: []byte(tagPath), Value: []byte(path.String())},
		common.KVPair{Key: []byte(tagTransition), Value: []byte(StatusExecuted.String())},
	)
	return res, nil
}

// validate returns the proposal marked as executed and the wallet with the
// spending accounted, when the bypass was used. If the proposal turns out to
// be expired, the expired proposal is returned together with
// ErrProposalExpired.
func (h ExecuteProposalHandler) validate(ctx daowallet.Context, db daowallet.KVStore, tx daowallet.Tx) (*Proposal, *wallet.WalletConfig, ExecutionPath, error) {
	var msg ExecuteProposalMsg
	if err := daowallet.LoadMsg(tx, &msg); err != nil {
		return nil, nil, ExecutedByNone, errors.Wrap(err, "load msg")
	}
	w, err := h.wallets.GetActive(db, msg.Wallet)
	if err != nil {
		return nil, nil, ExecutedByNone, err
	}
	if _, _, err := h.gate.RequireSigner(ctx, &w.Registry); err != nil {
		return nil, nil, ExecutedByNone, err
	}
	p, err := h.proposals.Get(db, msg.Wallet, msg.ProposalID)
	if err != nil {
		return nil, nil, ExecutedByNone, err
	}
	now, err := daowallet.BlockNow(ctx)
	if err != nil {
		return nil, nil, ExecutedByNone, err
	}

	switch p.Status {
	case StatusPending, StatusApproved:
		if p.Expire(now) {
			return p, w, ExecutedByNone, errors.Wrapf(errors.ErrProposalExpired, "proposal %d expired at %s", p.ID, p.Expiration)
		}
	case StatusExpired:
		return nil, nil, ExecutedByNone, errors.Wrapf(errors.ErrProposalExpired, "proposal %d", p.ID)
	default:
		return nil, nil, ExecutedByNone, errors.Wrapf(errors.ErrNotApproved, "proposal %d is %s", p.ID, p.Status)
	}

	// The threshold or the signer set may have changed since the last vote.
	if _, err := p.Evaluate(w.Threshold, &w.Registry); err != nil {
		return nil, nil, ExecutedByNone, err
	}
	if p.Status == StatusRejected {
		return nil, nil, ExecutedByNone, errors.Wrapf(errors.ErrNotApproved, "proposal %d can no longer reach quorum", p.ID)
	}

	path := ExecutedByQuorum
	if p.Status == StatusPending {
		amount, err := exec.TotalAmount(p.Instructions)
		if err != nil {
			return nil, nil, ExecutedByNone, err
		}
		if !w.Spending.TryBypass(p.Category, amount, now) {
			return nil, nil, ExecutedByNone, errors.Wrapf(errors.ErrNotApproved,
				"proposal %d has no quorum and %d exceeds the remaining allowance", p.ID, amount)
		}
		path = ExecutedByBypass
	}
	if err := p.MarkExecuted(now, path); err != nil {
		return nil, nil, ExecutedByNone, err
	}
	return p, w, path, nil
}
