package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Engine runs transactions against a committed store. Transactions are
// serialized: each one is executed on a cache wrap of the committed state
// and its changes are committed before the next one starts.
//
// A failed transaction leaves no trace, with the exception of
// ErrProposalExpired. Its only change is the proposal moving to Expired,
// which is committed before the error is returned.
type Engine struct {
	mu sync.Mutex

	store   daowallet.CommitKVStore
	handler daowallet.Handler
	queries daowallet.QueryRouter
	logger  log.Logger
	chainID string
	debug   bool
}

// NewEngine loads the latest version of the store and returns an engine
// ready to process transactions.
func NewEngine(store daowallet.CommitKVStore, handler daowallet.Handler, queries daowallet.QueryRouter, logger log.Logger, debug bool) (*Engine, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	chainID, err := loadChainID(store)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Engine{
		store:   store,
		handler: handler,
		queries: queries,
		logger:  logger,
		chainID: chainID,
		debug:   debug,
	}, nil
}

// ChainID returns the chain id set at genesis, or an empty string.
func (e *Engine) ChainID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chainID
}

// InitChain stores the chain id and runs all initializers with the genesis
// app state. It can be called only once.
func (e *Engine) InitChain(gen *Genesis, init daowallet.Initializer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %s", e.chainID)
	}
	cache := e.store.CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if err := init.FromGenesis(gen.AppState, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "initialize from genesis")
	}
	id, err := commit(e.store, cache)
	if err != nil {
		return err
	}
	e.chainID = gen.ChainID
	e.logger.Info("chain initialized", "chain_id", gen.ChainID, "height", id.Version)
	return nil
}

// blockContext returns the context a transaction is processed with.
func (e *Engine) blockContext(ctx daowallet.Context, call string, now time.Time, tx daowallet.Tx) (daowallet.Context, error) {
	if e.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	last, err := e.store.LatestVersion()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = daowallet.WithChainID(ctx, e.chainID)
	ctx = daowallet.WithHeight(ctx, last.Version+1)
	ctx = daowallet.WithBlockTime(ctx, now)
	ctx = daowallet.WithLogger(ctx, e.logger)
	ctx = daowallet.WithLogInfo(ctx,
		"call", call,
		"path", daowallet.GetPath(tx),
		"height", last.Version+1)
	return ctx, nil
}

// Check runs the transaction against a throw away copy of the state.
func (e *Engine) Check(ctx daowallet.Context, now time.Time, tx daowallet.Tx) (*daowallet.CheckResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, err := e.blockContext(ctx, "check_tx", now, tx)
	if err != nil {
		return nil, err
	}
	cache := e.store.CacheWrap()
	defer cache.Discard()
	res, err := e.handler.Check(ctx, cache, tx)
	return res, errors.Redact(err, e.debug)
}

// Deliver runs the transaction and commits its changes. Now is the time of
// the block the transaction belongs to.
func (e *Engine) Deliver(ctx daowallet.Context, now time.Time, tx daowallet.Tx) (*daowallet.DeliverResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, err := e.blockContext(ctx, "deliver_tx", now, tx)
	if err != nil {
		return nil, err
	}
	cache := e.store.CacheWrap()
	res, err := e.handler.Deliver(ctx, cache, tx)
	if err != nil && !errors.ErrProposalExpired.Is(err) {
		cache.Discard()
		return nil, errors.Redact(err, e.debug)
	}
	if _, cerr := commit(e.store, cache); cerr != nil {
		return nil, cerr
	}
	return res, errors.Redact(err, e.debug)
}

// Query reads from the committed state. Path is the registered route
// optionally followed by a query modifier, for example "/wallets?prefix".
func (e *Engine) Query(path string, data []byte) ([]daowallet.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mod := daowallet.KeyQueryMod
	if i := strings.Index(path, "?"); i >= 0 {
		path, mod = path[:i], path[i+1:]
	}
	h := e.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no query handler for path %q", path)
	}
	cache := e.store.CacheWrap()
	defer cache.Discard()
	return h.Query(cache, mod, data)
}
