package app

import (
	"context"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/x"
)

type contextKey int

const contextKeyPrincipal contextKey = iota

// PrincipalAuth is the authenticator of the engine. The transport
// authenticates the caller and attaches its conditions to the context with
// WithPrincipal.
type PrincipalAuth struct{}

var _ x.Authenticator = PrincipalAuth{}

// WithPrincipal returns a context authenticated with given conditions.
func WithPrincipal(ctx daowallet.Context, conds ...daowallet.Condition) daowallet.Context {
	return context.WithValue(ctx, contextKeyPrincipal, conds)
}

// PrincipalCondition returns the condition of a named principal.
func PrincipalCondition(name string) daowallet.Condition {
	return daowallet.NewCondition("cli", "signer", []byte(name))
}

func (PrincipalAuth) GetConditions(ctx daowallet.Context) []daowallet.Condition {
	conds, _ := ctx.Value(contextKeyPrincipal).([]daowallet.Condition)
	return conds
}

func (a PrincipalAuth) HasAddress(ctx daowallet.Context, addr daowallet.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
