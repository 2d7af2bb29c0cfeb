/*
Package gate implements the authorization checks every mutating wallet
operation goes through.

The caller identity comes from an x.Authenticator and is trusted as is.
The gate only decides what that identity is allowed to do.
*/
package gate

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x"
	"github.com/iov-one/daowallet/x/members"
	"github.com/iov-one/daowallet/x/quorum"
)

// Gate resolves the caller of an operation and checks its permissions.
type Gate struct {
	auth x.Authenticator
}

// New returns a gate using given authenticator.
func New(auth x.Authenticator) Gate {
	return Gate{auth: auth}
}

// Caller returns the address of the main signer of the operation.
func (g Gate) Caller(ctx daowallet.Context) (daowallet.Address, error) {
	cond := x.MainSigner(ctx, g.auth)
	if cond == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	return cond.Address(), nil
}

// RequireAuthority ensures the operation was authorized by the wallet
// authority itself. Delegation is never considered.
func (g Gate) RequireAuthority(ctx daowallet.Context, authority daowallet.Address) error {
	if !g.auth.HasAddress(ctx, authority) {
		return errors.Wrap(errors.ErrUnauthorized, "authority signature required")
	}
	return nil
}

// RequireSigner returns the caller if it is an active signer.
func (g Gate) RequireSigner(ctx daowallet.Context, reg *members.Registry) (daowallet.Address, *members.Member, error) {
	caller, err := g.Caller(ctx)
	if err != nil {
		return nil, nil, err
	}
	m, ok := reg.Member(caller)
	if !ok || !m.Active {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "caller is not an active signer")
	}
	return caller, m, nil
}

// Voter returns the signer identity the caller votes for. See
// members.Registry.ResolveVoter.
func (g Gate) Voter(ctx daowallet.Context, reg *members.Registry, onBehalfOf daowallet.Address) (daowallet.Address, error) {
	caller, err := g.Caller(ctx)
	if err != nil {
		return nil, err
	}
	return reg.ResolveVoter(caller, onBehalfOf)
}

// CanPropose returns an error if a member with given role is not allowed to
// create a proposal of given category.
func CanPropose(role members.Role, c quorum.Category) error {
	if err := role.Validate(); err != nil {
		return err
	}
	switch c {
	case quorum.CategoryAdminChange:
		switch role {
		case members.RoleAdmin:
			return nil
		case members.RoleTreasurer, members.RoleMember:
			return errors.Wrapf(errors.ErrUnauthorized, "%s cannot propose an admin change", role)
		}
	case quorum.CategoryRegular, quorum.CategoryEmergency:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "unknown category %d", c)
}
