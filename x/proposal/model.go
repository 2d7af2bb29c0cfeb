package proposal

import (
	"encoding/binary"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/orm"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/members"
	"github.com/iov-one/daowallet/x/quorum"
)

// Status of a proposal.
type Status int32

const (
	StatusPending  Status = 1
	StatusApproved Status = 2
	StatusRejected Status = 3
	StatusExecuted Status = 4
	StatusExpired  Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusExecuted:
		return "Executed"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// ExecutionPath tells how an executed proposal was authorized.
type ExecutionPath int32

const (
	ExecutedByNone   ExecutionPath = 0
	ExecutedByQuorum ExecutionPath = 1
	ExecutedByBypass ExecutionPath = 2
)

func (e ExecutionPath) String() string {
	switch e {
	case ExecutedByNone:
		return "none"
	case ExecutedByQuorum:
		return "quorum"
	case ExecutedByBypass:
		return "bypass"
	default:
		return "unknown"
	}
}

// Proposal is an action awaiting the approval of the wallet signers.
type Proposal struct {
	ID           uint64
	Wallet       daowallet.Address
	Proposer     daowallet.Address
	Description  string
	Category     quorum.Category
	Instructions []exec.Instruction
	Expiration   daowallet.UnixTime
	Status       Status
	Approvers    []daowallet.Address
	Rejecters    []daowallet.Address
	CreatedAt    daowallet.UnixTime
	// ExecutedAt is zero until the proposal is executed.
	ExecutedAt daowallet.UnixTime
	ExecutedBy ExecutionPath

	// votes indexes Approvers and Rejecters, true for an approval.
	votes map[string]bool
}

var _ orm.Model = (*Proposal)(nil)

// Key returns the primary key: wallet address followed by the big endian id.
func (p *Proposal) Key() []byte {
	return proposalKey(p.Wallet, p.ID)
}

func proposalKey(wallet daowallet.Address, id uint64) []byte {
	key := make([]byte, len(wallet)+8)
	copy(key, wallet)
	binary.BigEndian.PutUint64(key[len(wallet):], id)
	return key
}

// Validate checks the proposal state.
func (p *Proposal) Validate() error {
	if p.ID == 0 {
		return errors.Wrap(errors.ErrEmpty, "id")
	}
	if err := p.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if err := p.Proposer.Validate(); err != nil {
		return errors.Wrap(err, "proposer")
	}
	if err := p.Category.Validate(); err != nil {
		return err
	}
	for i, in := range p.Instructions {
		if err := in.Validate(); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	if p.Expiration <= p.CreatedAt {
		return errors.Wrap(errors.ErrInvalidExpiration, "expiration must be after creation")
	}
	if p.Status < StatusPending || p.Status > StatusExpired {
		return errors.Wrapf(errors.ErrState, "status %d", p.Status)
	}
	seen := make(map[string]struct{}, len(p.Approvers)+len(p.Rejecters))
	for _, list := range [][]daowallet.Address{p.Approvers, p.Rejecters} {
		for _, a := range list {
			if err := a.Validate(); err != nil {
				return errors.Wrap(err, "voter")
			}
			if _, ok := seen[string(a)]; ok {
				return errors.Wrapf(errors.ErrDuplicate, "voter %s", a)
			}
			seen[string(a)] = struct{}{}
		}
	}
	switch executed := p.Status == StatusExecuted; {
	case executed && (p.ExecutedAt.IsZero() || p.ExecutedBy == ExecutedByNone):
		return errors.Wrap(errors.ErrState, "executed proposal without execution details")
	case !executed && (!p.ExecutedAt.IsZero() || p.ExecutedBy != ExecutedByNone):
		return errors.Wrap(errors.ErrState, "execution details on a proposal that was not executed")
	}
	return nil
}

func (p *Proposal) index() map[string]bool {
	if p.votes != nil {
		return p.votes
	}
	p.votes = make(map[string]bool, len(p.Approvers)+len(p.Rejecters))
	for _, a := range p.Approvers {
		p.votes[string(a)] = true
	}
	for _, a := range p.Rejecters {
		p.votes[string(a)] = false
	}
	return p.votes
}

// HasApproved returns true if the voter is among the approvers.
func (p *Proposal) HasApproved(voter daowallet.Address) bool {
	approved, ok := p.index()[string(voter)]
	return ok && approved
}

// HasRejected returns true if the voter is among the rejecters.
func (p *Proposal) HasRejected(voter daowallet.Address) bool {
	approved, ok := p.index()[string(voter)]
	return ok && !approved
}

// Vote records the vote of a resolved signer identity. Each identity votes
// at most once.
func (p *Proposal) Vote(voter daowallet.Address, approve bool) error {
	if p.Status != StatusPending {
		return errors.Wrapf(errors.ErrNotPending, "proposal is %s", p.Status)
	}
	if p.HasApproved(voter) {
		return errors.Wrapf(errors.ErrAlreadyApproved, "voter %s", voter)
	}
	if p.HasRejected(voter) {
		return errors.Wrapf(errors.ErrAlreadyRejected, "voter %s", voter)
	}
	voter = voter.Clone()
	if approve {
		p.Approvers = append(p.Approvers, voter)
	} else {
		p.Rejecters = append(p.Rejecters, voter)
	}
	p.index()[string(voter)] = approve
	return nil
}

// Evaluate recounts the votes of currently active signers against the
// current threshold and moves a pending proposal to Approved or Rejected.
// The new status is returned, or zero if nothing changed.
func (p *Proposal) Evaluate(threshold uint32, reg *members.Registry) (Status, error) {
	if p.Status != StatusPending {
		return 0, nil
	}
	signers := reg.SignerCount()
	required, err := quorum.Required(p.Category, threshold, signers)
	switch {
	case errors.ErrThresholdUnreachable.Is(err):
		// The signer set shrank since the proposal was created.
		p.Status = StatusRejected
		return StatusRejected, nil
	case err != nil:
		return 0, err
	}

	var approvals, rejections uint32
	for _, a := range p.Approvers {
		if reg.IsActiveSigner(a) {
			approvals++
		}
	}
	for _, a := range p.Rejecters {
		if reg.IsActiveSigner(a) {
			rejections++
		}
	}

	switch {
	case quorum.Reached(approvals, required):
		p.Status = StatusApproved
		return StatusApproved, nil
	case quorum.Unreachable(rejections, signers, required):
		p.Status = StatusRejected
		return StatusRejected, nil
	}
	return 0, nil
}

// Expire moves a pending or approved proposal to Expired if its expiration
// time was reached. It returns true if the proposal is expired.
func (p *Proposal) Expire(now daowallet.UnixTime) bool {
	switch p.Status {
	case StatusExpired:
		return true
	case StatusPending, StatusApproved:
		if now >= p.Expiration {
			p.Status = StatusExpired
			return true
		}
	}
	return false
}

// MarkExecuted moves the proposal to Executed.
func (p *Proposal) MarkExecuted(now daowallet.UnixTime, path ExecutionPath) error {
	switch {
	case path == ExecutedByQuorum && p.Status == StatusApproved:
	case path == ExecutedByBypass && p.Status == StatusPending && p.Category == quorum.CategoryRegular:
	default:
		return errors.Wrapf(errors.ErrNotApproved, "%s proposal cannot be executed by %s", p.Status, path)
	}
	p.Status = StatusExecuted
	p.ExecutedAt = now
	p.ExecutedBy = path
	return nil
}

// Bucket stores proposals.
type Bucket struct {
	orm.Bucket
}

const (
	indexWallet   = "wallet"
	indexProposer = "proposer"
)

// NewBucket returns a bucket for proposals.
func NewBucket() *Bucket {
	b := orm.NewBucket("proposal", &Proposal{}).
		WithIndex(indexWallet, walletIndexer, false).
		WithIndex(indexProposer, proposerIndexer, false)
	return &Bucket{Bucket: b}
}

func asProposal(m orm.Model) (*Proposal, error) {
	p, ok := m.(*Proposal)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "invalid type: %T", m)
	}
	return p, nil
}

func walletIndexer(m orm.Model) ([]byte, error) {
	p, err := asProposal(m)
	if err != nil {
		return nil, err
	}
	return p.Wallet, nil
}

func proposerIndexer(m orm.Model) ([]byte, error) {
	p, err := asProposal(m)
	if err != nil {
		return nil, err
	}
	return p.Proposer, nil
}

// Get loads a proposal of given wallet.
func (b *Bucket) Get(db daowallet.ReadOnlyKVStore, wallet daowallet.Address, id uint64) (*Proposal, error) {
	var p Proposal
	if err := b.One(db, proposalKey(wallet, id), &p); err != nil {
		return nil, errors.Wrapf(err, "proposal %d", id)
	}
	return &p, nil
}

// Save validates and stores the proposal.
func (b *Bucket) Save(db daowallet.KVStore, p *Proposal) error {
	return b.Put(db, p.Key(), p)
}

// ByProposer returns the keys of all proposals created by given address.
func (b *Bucket) ByProposer(db daowallet.ReadOnlyKVStore, proposer daowallet.Address) ([][]byte, error) {
	return b.ByIndex(db, indexProposer, proposer)
}
