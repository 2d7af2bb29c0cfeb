package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/orm"
	"github.com/iov-one/daowallet/store/iavl"
	"github.com/iov-one/daowallet/weavetest"
	"github.com/iov-one/daowallet/weavetest/assert"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/proposal"
	"github.com/iov-one/daowallet/x/quorum"
	"github.com/iov-one/daowallet/x/wallet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var genesisTime = time.Date(2019, 5, 10, 12, 0, 0, 0, time.UTC)

type testChain struct {
	store   iavl.CommitStore
	engine  *Engine
	metrics *Metrics
	wallet  daowallet.Address

	alice, bob, carol, mallory daowallet.Condition
}

// newTestChain starts a chain with a single wallet. Alice is the authority
// and, together with Bob and Carol, a signer. The threshold is two.
func newTestChain(t testing.TB, spendingLimit, spendingPeriod uint64) *testChain {
	t.Helper()
	return newTestChainOnStore(t, iavl.NewMemCommitStore(), spendingLimit, spendingPeriod)
}

func newTestChainOnStore(t testing.TB, store iavl.CommitStore, spendingLimit, spendingPeriod uint64) *testChain {
	t.Helper()
	c := &testChain{
		store:   store,
		alice:   PrincipalCondition("alice"),
		bob:     PrincipalCondition("bob"),
		carol:   PrincipalCondition("carol"),
		mallory: PrincipalCondition("mallory"),
	}
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	c.metrics = metrics
	c.engine, err = NewApplication(c.store, nil, metrics, false)
	require.NoError(t, err)

	genesis := fmt.Sprintf(`{
		"chain_id": "test-chain",
		"app_state": {
			"wallets": [{
				"authority": %q,
				"signers": [%q, %q, %q],
				"threshold": 2,
				"proposal_timeout": 3600,
				"spending_limit": %d,
				"spending_period": %d,
				"created_at": %q
			}]
		}
	}`, c.alice.Address(), c.alice.Address(), c.bob.Address(), c.carol.Address(),
		spendingLimit, spendingPeriod, genesisTime.Format(time.RFC3339))
	var gen Genesis
	require.NoError(t, json.Unmarshal([]byte(genesis), &gen))
	require.NoError(t, c.engine.InitChain(&gen, Initializers()))
	c.wallet = wallet.Address(c.alice.Address())
	return c
}

func (c *testChain) deliver(who daowallet.Condition, at time.Time, msg daowallet.Msg) (*daowallet.DeliverResult, error) {
	ctx := WithPrincipal(context.Background(), who)
	return c.engine.Deliver(ctx, at, &weavetest.Tx{Msg: msg})
}

func (c *testChain) propose(t testing.TB, amount uint64) uint64 {
	t.Helper()
	msg := &proposal.AddProposalMsg{
		Wallet:   c.wallet,
		Category: quorum.CategoryRegular,
	}
	if amount > 0 {
		msg.Instructions = transfer(amount)
	}
	res, err := c.deliver(c.alice, genesisTime, msg)
	require.NoError(t, err)
	return proposal.DecodeID(res.Data)
}

func (c *testChain) proposal(t testing.TB, id uint64) *proposal.Proposal {
	t.Helper()
	models, err := c.engine.Query("/proposals", proposalKey(c.wallet, id))
	require.NoError(t, err)
	require.Len(t, models, 1)
	var p proposal.Proposal
	require.NoError(t, orm.Unmarshal(models[0].Value, &p))
	return &p
}

func proposalKey(wallet daowallet.Address, id uint64) []byte {
	return append(append([]byte{}, wallet...), proposal.EncodeID(id)...)
}

var program = weavetest.NewCondition().Address()

func transfer(amount uint64) []exec.Instruction {
	return []exec.Instruction{{Program: program, Amount: amount}}
}

func TestEngineInitChain(t *testing.T) {
	c := newTestChain(t, 1000, 60)
	assert.Equal(t, "test-chain", c.engine.ChainID())

	err := c.engine.InitChain(&Genesis{ChainID: "other-chain"}, Initializers())
	if !errors.ErrState.Is(err) {
		t.Fatalf("want ErrState, got %+v", err)
	}

	// A new engine on the same store finds the chain.
	e, err := NewApplication(c.store, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "test-chain", e.ChainID())
}

func TestEngineOnDiskStore(t *testing.T) {
	db, cleanup := weavetest.CommitKVStore(t)
	defer cleanup()

	c := newTestChainOnStore(t, db, 1000, 60)
	id := c.propose(t, 1500)
	_, err := c.deliver(c.bob, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
	require.NoError(t, err)

	// A new engine over the same database sees the committed state.
	e, err := NewApplication(db, nil, nil, false)
	require.NoError(t, err)
	c.engine = e
	assert.Equal(t, "test-chain", e.ChainID())
	p := c.proposal(t, id)
	assert.Equal(t, 1, len(p.Approvers))
}

func TestEngineExtraAuthenticator(t *testing.T) {
	c := newTestChain(t, 1000, 60)
	id := c.propose(t, 1500)

	transport := &weavetest.CtxAuth{Key: "transport"}
	ctx := transport.SetConditions(context.Background(), c.bob)
	approve := &weavetest.Tx{Msg: &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id}}

	// Without the transport authenticator the caller is unknown.
	_, err := c.engine.Deliver(ctx, genesisTime, approve)
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want ErrUnauthorized, got %+v", err)
	}

	e, err := NewApplication(c.store, nil, nil, false, transport)
	require.NoError(t, err)
	_, err = e.Deliver(ctx, genesisTime, approve)
	require.NoError(t, err)

	// Principals attached with WithPrincipal are still recognized.
	c.engine = e
	_, err = c.deliver(c.carol, genesisTime, &proposal.RejectProposalMsg{Wallet: c.wallet, ProposalID: id})
	require.NoError(t, err)

	p := c.proposal(t, id)
	require.Len(t, p.Approvers, 1)
	assert.Bytes(t, c.bob.Address(), p.Approvers[0])
	require.Len(t, p.Rejecters, 1)
}

func TestEngineRequiresGenesis(t *testing.T) {
	e, err := NewApplication(iavl.NewMemCommitStore(), nil, nil, false)
	require.NoError(t, err)
	_, err = e.Deliver(context.Background(), genesisTime, &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "a/b"}})
	if !errors.ErrState.Is(err) {
		t.Fatalf("want ErrState, got %+v", err)
	}
}

func TestEngineAtomicity(t *testing.T) {
	key := []byte("written")

	cases := map[string]struct {
		err       *errors.Error
		wantWrite bool
	}{
		"success is committed": {
			wantWrite: true,
		},
		"failure is discarded": {
			err:       errors.ErrNotApproved,
			wantWrite: false,
		},
		"expiration is committed": {
			err:       errors.ErrProposalExpired,
			wantWrite: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			st := iavl.NewMemCommitStore()
			r := NewRouter()
			h := &weavetest.Handler{
				Write: &daowallet.Model{Key: key, Value: []byte("value")},
			}
			if tc.err != nil {
				h.DeliverErr = tc.err
			}
			r.Handle("test/write", h)
			e, err := NewEngine(st, r, daowallet.NewQueryRouter(), nil, false)
			require.NoError(t, err)
			require.NoError(t, e.InitChain(&Genesis{ChainID: "test-chain"}, ChainInitializers()))

			_, err = e.Deliver(context.Background(), genesisTime, &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/write"}})
			if !tc.err.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			value, err := st.Get(key)
			require.NoError(t, err)
			assert.Equal(t, tc.wantWrite, value != nil)
		})
	}
}

func TestEngineExpiredProposalIsCommitted(t *testing.T) {
	c := newTestChain(t, 1000, 60)
	id := c.propose(t, 0)

	_, err := c.deliver(c.bob, genesisTime.Add(2*time.Hour), &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
	if !errors.ErrProposalExpired.Is(err) {
		t.Fatalf("want ErrProposalExpired, got %+v", err)
	}
	p := c.proposal(t, id)
	assert.Equal(t, proposal.StatusExpired, p.Status)
	assert.Equal(t, 0, len(p.Approvers))
}

func TestEngineFailedTxLeavesNoTrace(t *testing.T) {
	c := newTestChain(t, 1000, 60)
	id := c.propose(t, 0)
	before, err := c.store.LatestVersion()
	require.NoError(t, err)

	_, err = c.deliver(c.mallory, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want ErrUnauthorized, got %+v", err)
	}
	after, err := c.store.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 0, len(c.proposal(t, id).Approvers))
}

func TestConcurrentApprovals(t *testing.T) {
	c := newTestChain(t, 1000, 60)
	id := c.propose(t, 0)
	_, err := c.deliver(c.alice, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
	require.NoError(t, err)

	voters := []daowallet.Condition{c.bob, c.carol}
	results := make([]*daowallet.DeliverResult, len(voters))
	errs := make([]error, len(voters))
	var wg sync.WaitGroup
	for i, v := range voters {
		wg.Add(1)
		go func(i int, v daowallet.Condition) {
			defer wg.Done()
			results[i], errs[i] = c.deliver(v, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
		}(i, v)
	}
	wg.Wait()

	var transitions, rejected int
	for i := range voters {
		switch {
		case errs[i] == nil:
			if string(results[i].Tag("transition")) == "Approved" {
				transitions++
			}
		case errors.ErrNotPending.Is(errs[i]):
			rejected++
		default:
			t.Fatalf("unexpected error: %+v", errs[i])
		}
	}
	assert.Equal(t, 1, transitions)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 2, len(c.proposal(t, id).Approvers))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.transitions.WithLabelValues("Approved")))
}

func TestEngineQuery(t *testing.T) {
	c := newTestChain(t, 1000, 60)
	c.propose(t, 0)
	c.propose(t, 0)

	wallets, err := c.engine.Query("/wallets", c.wallet)
	require.NoError(t, err)
	assert.Equal(t, 1, len(wallets))

	proposals, err := c.engine.Query("/proposals/wallet", c.wallet)
	require.NoError(t, err)
	assert.Equal(t, 2, len(proposals))

	all, err := c.engine.Query("/proposals?prefix", c.wallet)
	require.NoError(t, err)
	assert.Equal(t, 2, len(all))

	_, err = c.engine.Query("/unknown", nil)
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want ErrNotFound, got %+v", err)
	}
}

func TestEngineMetrics(t *testing.T) {
	c := newTestChain(t, 1000, 60)
	c.propose(t, 0)
	_, err := c.deliver(c.mallory, genesisTime, &proposal.AddProposalMsg{Wallet: c.wallet, Category: quorum.CategoryRegular})
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want ErrUnauthorized, got %+v", err)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.txTotal.WithLabelValues("proposal/add", "0")))
	code := fmt.Sprint(errors.ErrUnauthorized.Code())
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.txTotal.WithLabelValues("proposal/add", code)))
}
