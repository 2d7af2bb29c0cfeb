package members

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
)

// MaxSigners is the maximum number of active signers a registry can hold.
const MaxSigners = 10

// Member is the record kept for every identity that is or was a signer.
type Member struct {
	Address daowallet.Address
	Role    Role
	// Delegate is optional. When set, it may cast votes on behalf of
	// this member.
	Delegate daowallet.Address
	Active   bool
}

// Validate returns an error if the member record is malformed.
func (m Member) Validate() error {
	if err := m.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if err := m.Role.Validate(); err != nil {
		return errors.Wrap(err, "role")
	}
	if m.Delegate != nil {
		if err := m.Delegate.Validate(); err != nil {
			return errors.Wrap(err, "delegate")
		}
		if m.Delegate.Equals(m.Address) {
			return errors.Wrap(errors.ErrInput, "member cannot delegate to itself")
		}
	}
	return nil
}

// Registry holds the ordered signer set and the member records.
//
// Lookups go through an index that is built on first use and dropped on
// every mutation. The index is not serialized.
type Registry struct {
	Signers []daowallet.Address
	Members []Member

	index *registryIndex
}

type registryIndex struct {
	// position of the member record, by address
	members map[string]int
	// active signers delegating to an address, in signer order
	delegators map[string][]daowallet.Address
}

func (r *Registry) idx() *registryIndex {
	if r.index != nil {
		return r.index
	}
	ix := &registryIndex{
		members:    make(map[string]int, len(r.Members)),
		delegators: make(map[string][]daowallet.Address),
	}
	for i, m := range r.Members {
		ix.members[string(m.Address)] = i
	}
	for _, s := range r.Signers {
		pos, ok := ix.members[string(s)]
		if !ok {
			continue
		}
		if d := r.Members[pos].Delegate; d != nil {
			ix.delegators[string(d)] = append(ix.delegators[string(d)], s)
		}
	}
	r.index = ix
	return ix
}

func (r *Registry) invalidate() {
	r.index = nil
}

// Member returns the record of given address, active or not.
func (r *Registry) Member(addr daowallet.Address) (*Member, bool) {
	pos, ok := r.idx().members[string(addr)]
	if !ok {
		return nil, false
	}
	return &r.Members[pos], true
}

// IsActiveSigner returns true if given address is currently a signer.
func (r *Registry) IsActiveSigner(addr daowallet.Address) bool {
	m, ok := r.Member(addr)
	return ok && m.Active
}

// SignerCount returns the number of active signers.
func (r *Registry) SignerCount() uint32 {
	return uint32(len(r.Signers))
}

// ReplaceSigners replaces the signer set. The threshold must stay within
// the new signer count. New signers get the member role, signers that are
// added again are reactivated with their previous role and removed signers
// are deactivated. Delegations pointing at a deactivated signer are
// cleared.
//
// Nothing is modified when an error is returned.
func (r *Registry) ReplaceSigners(signers []daowallet.Address, threshold uint32) error {
	if threshold < 1 || int(threshold) > len(signers) {
		return errors.Wrapf(errors.ErrInvalidThreshold, "threshold %d for %d signers", threshold, len(signers))
	}
	if err := validateSigners(signers); err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(signers))
	for _, s := range signers {
		keep[string(s)] = struct{}{}
	}

	for i := range r.Members {
		if _, ok := keep[string(r.Members[i].Address)]; !ok {
			r.Members[i].Active = false
		}
	}
	for _, s := range signers {
		if m, ok := r.Member(s); ok {
			m.Active = true
			continue
		}
		r.Members = append(r.Members, Member{
			Address: s.Clone(),
			Role:    RoleMember,
			Active:  true,
		})
		r.invalidate()
	}

	r.Signers = make([]daowallet.Address, len(signers))
	for i, s := range signers {
		r.Signers[i] = s.Clone()
	}

	// Cleanup must see the final active flags.
	r.invalidate()
	for i := range r.Members {
		d := r.Members[i].Delegate
		if d == nil {
			continue
		}
		if m, ok := r.Member(d); ok && !m.Active {
			r.Members[i].Delegate = nil
		}
	}
	r.invalidate()
	return nil
}

func validateSigners(signers []daowallet.Address) error {
	if len(signers) == 0 {
		return errors.Wrap(errors.ErrEmpty, "signers")
	}
	if len(signers) > MaxSigners {
		return errors.Wrapf(errors.ErrInput, "at most %d signers allowed", MaxSigners)
	}
	seen := make(map[string]struct{}, len(signers))
	for i, s := range signers {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
		if _, ok := seen[string(s)]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "signer %s", s)
		}
		seen[string(s)] = struct{}{}
	}
	return nil
}

// SetDelegate sets the delegate of an active signer. A nil delegate revokes
// the delegation. Setting the same delegate twice is a noop.
//
// A delegate may be any valid address except the delegator itself or a
// deactivated signer.
func (r *Registry) SetDelegate(delegator, delegate daowallet.Address) error {
	m, ok := r.Member(delegator)
	if !ok || !m.Active {
		return errors.Wrap(errors.ErrUnauthorized, "delegator is not an active signer")
	}
	if delegate != nil {
		if err := delegate.Validate(); err != nil {
			return errors.Wrap(err, "delegate")
		}
		if delegate.Equals(delegator) {
			return errors.Wrap(errors.ErrInput, "cannot delegate to self")
		}
		if d, ok := r.Member(delegate); ok && !d.Active {
			return errors.Wrap(errors.ErrInput, "delegate is a deactivated signer")
		}
		delegate = delegate.Clone()
	}
	m.Delegate = delegate
	r.invalidate()
	return nil
}

// AssignRole changes the role of an active signer.
func (r *Registry) AssignRole(addr daowallet.Address, role Role) error {
	if err := role.Validate(); err != nil {
		return err
	}
	m, ok := r.Member(addr)
	if !ok || !m.Active {
		return errors.Wrapf(errors.ErrMemberNotFound, "no active signer %s", addr)
	}
	m.Role = role
	return nil
}

// ResolveVoter returns the signer identity a vote cast by caller counts for.
//
// When onBehalfOf is given, the vote is resolved against that signer only:
// the caller must be the signer itself or its delegate. Otherwise an active
// signer votes for itself, and a caller that is the delegate of exactly one
// active signer votes for that signer. A delegate of several signers must
// pick one explicitly. A signer with a delegate set can only vote through
// that delegate until the delegation is cleared.
func (r *Registry) ResolveVoter(caller, onBehalfOf daowallet.Address) (daowallet.Address, error) {
	if caller == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	if onBehalfOf != nil {
		m, ok := r.Member(onBehalfOf)
		if !ok || !m.Active {
			return nil, errors.Wrap(errors.ErrUnauthorized, "not an active signer")
		}
		if caller.Equals(m.Delegate) {
			return m.Address, nil
		}
		if caller.Equals(onBehalfOf) {
			if m.Delegate != nil {
				return nil, errors.Wrap(errors.ErrUnauthorized, "vote is delegated")
			}
			return m.Address, nil
		}
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller is not the signer delegate")
	}

	if m, ok := r.Member(caller); ok && m.Active {
		if m.Delegate != nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "vote is delegated")
		}
		return caller, nil
	}
	switch delegators := r.idx().delegators[string(caller)]; len(delegators) {
	case 0:
		return nil, errors.Wrap(errors.ErrUnauthorized, "neither a signer nor a delegate")
	case 1:
		return delegators[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "ambiguous delegation, caller represents %d signers", len(delegators))
	}
}

// Validate checks that the signer set and the member records agree.
func (r *Registry) Validate() error {
	if err := validateSigners(r.Signers); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(r.Members))
	active := 0
	for i, m := range r.Members {
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
		if _, ok := seen[string(m.Address)]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "member %s", m.Address)
		}
		seen[string(m.Address)] = struct{}{}
		if m.Active {
			active++
		}
	}
	if active != len(r.Signers) {
		return errors.Wrapf(errors.ErrState, "%d active members for %d signers", active, len(r.Signers))
	}
	for _, s := range r.Signers {
		if !r.IsActiveSigner(s) {
			return errors.Wrapf(errors.ErrState, "signer %s without an active member record", s)
		}
	}
	return nil
}
