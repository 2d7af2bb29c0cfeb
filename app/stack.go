package app

import (
	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/x"
	"github.com/iov-one/daowallet/x/emergency"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/proposal"
	"github.com/iov-one/daowallet/x/wallet"
	"github.com/tendermint/tendermint/libs/log"
)

// Routes returns a router with the handlers of all wallet extensions.
func Routes(auth x.Authenticator, executor exec.Executor) *Router {
	r := NewRouter()
	wallet.RegisterRoutes(r, auth)
	proposal.RegisterRoutes(r, auth, executor)
	emergency.RegisterRoutes(r, auth, executor)
	return r
}

// Queries returns a query router exposing all stored entities.
func Queries() daowallet.QueryRouter {
	qr := daowallet.NewQueryRouter()
	qr.RegisterAll(
		wallet.RegisterQuery,
		proposal.RegisterQuery,
		emergency.RegisterQuery,
		exec.RegisterQuery,
	)
	return qr
}

// Initializers returns the genesis initializers of all extensions.
func Initializers() daowallet.Initializer {
	return ChainInitializers(
		&proposal.Initializer{},
		&wallet.Initializer{},
	)
}

// Stack wires the handlers with logging, metrics and panic recovery.
// Metrics can be nil.
func Stack(auth x.Authenticator, executor exec.Executor, metrics *Metrics) daowallet.Handler {
	return ChainDecorators(
		NewLogging(metrics),
		NewRecovery(),
	).WithHandler(Routes(auth, executor))
}

// NewApplication returns an engine serving all wallet extensions. Callers
// are authenticated with WithPrincipal or by any of the extra
// authenticators. Executed instructions are recorded in the journal.
func NewApplication(store daowallet.CommitKVStore, logger log.Logger, metrics *Metrics, debug bool, extra ...x.Authenticator) (*Engine, error) {
	auth := x.ChainAuth(append([]x.Authenticator{PrincipalAuth{}}, extra...)...)
	return NewEngine(store, Stack(auth, exec.NewJournal(), metrics), Queries(), logger, debug)
}
