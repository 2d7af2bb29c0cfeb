package app

import (
	"testing"
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x/proposal"
	"github.com/iov-one/daowallet/x/quorum"
	"github.com/iov-one/daowallet/x/wallet"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWalletScenarios(t *testing.T) {
	Convey("Given a wallet with three signers and a threshold of two", t, func() {
		c := newTestChain(t, 1000000000, 86400)

		Convey("a regular proposal is executed once two signers approved", func() {
			id := c.propose(t, 0)

			_, err := c.deliver(c.alice, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
			So(err, ShouldBeNil)
			p := c.proposal(t, id)
			So(p.Status, ShouldEqual, proposal.StatusPending)
			So(p.HasApproved(c.alice.Address()), ShouldBeTrue)
			So(len(p.Approvers), ShouldEqual, 1)

			res, err := c.deliver(c.bob, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
			So(err, ShouldBeNil)
			So(string(res.Tag("transition")), ShouldEqual, "Approved")
			p = c.proposal(t, id)
			So(p.Status, ShouldEqual, proposal.StatusApproved)
			So(len(p.Approvers), ShouldEqual, 2)

			execTime := genesisTime.Add(time.Minute)
			_, err = c.deliver(c.carol, execTime, &proposal.ExecuteProposalMsg{Wallet: c.wallet, ProposalID: id})
			So(err, ShouldBeNil)
			p = c.proposal(t, id)
			So(p.Status, ShouldEqual, proposal.StatusExecuted)
			So(p.ExecutedAt, ShouldEqual, daowallet.AsUnixTime(execTime))
			So(p.ExecutedBy, ShouldEqual, proposal.ExecutedByQuorum)
		})

		Convey("a wallet cannot be created with an invalid threshold", func() {
			signers := []daowallet.Address{c.bob.Address(), c.carol.Address()}
			for _, threshold := range []uint32{3, 0} {
				_, err := c.deliver(c.mallory, genesisTime, &wallet.InitializeWalletMsg{
					Signers:         signers,
					Threshold:       threshold,
					ProposalTimeout: 60,
					SpendingLimit:   1,
					SpendingPeriod:  60,
				})
				So(errors.ErrInvalidThreshold.Is(err), ShouldBeTrue)
			}
			models, err := c.engine.Query("/wallets", wallet.Address(c.mallory.Address()))
			So(err, ShouldBeNil)
			So(models, ShouldBeEmpty)
		})

		Convey("an outsider cannot approve and the proposal is left unchanged", func() {
			id := c.propose(t, 0)
			_, err := c.deliver(c.mallory, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)

			p := c.proposal(t, id)
			So(p.Status, ShouldEqual, proposal.StatusPending)
			So(p.Approvers, ShouldBeEmpty)
		})

		Convey("small transfers bypass the quorum until the allowance is used", func() {
			first := c.propose(t, 500000000)
			second := c.propose(t, 600000000)

			res, err := c.deliver(c.bob, genesisTime, &proposal.ExecuteProposalMsg{Wallet: c.wallet, ProposalID: first})
			So(err, ShouldBeNil)
			So(string(res.Tag("path")), ShouldEqual, "bypass")
			So(c.proposal(t, first).Status, ShouldEqual, proposal.StatusExecuted)

			_, err = c.deliver(c.bob, genesisTime, &proposal.ExecuteProposalMsg{Wallet: c.wallet, ProposalID: second})
			So(errors.ErrNotApproved.Is(err), ShouldBeTrue)
			So(c.proposal(t, second).Status, ShouldEqual, proposal.StatusPending)

			Convey("the second transfer still goes through the quorum", func() {
				for _, who := range []daowallet.Condition{c.alice, c.carol} {
					_, err := c.deliver(who, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: second})
					So(err, ShouldBeNil)
				}
				res, err := c.deliver(c.bob, genesisTime, &proposal.ExecuteProposalMsg{Wallet: c.wallet, ProposalID: second})
				So(err, ShouldBeNil)
				So(string(res.Tag("path")), ShouldEqual, "quorum")
			})
		})

		Convey("an admin change needs one approval more than the threshold", func() {
			res, err := c.deliver(c.alice, genesisTime, &proposal.AddProposalMsg{
				Wallet:   c.wallet,
				Category: quorum.CategoryAdminChange,
			})
			So(err, ShouldBeNil)
			id := proposal.DecodeID(res.Data)

			for _, who := range []daowallet.Condition{c.alice, c.bob} {
				_, err := c.deliver(who, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
				So(err, ShouldBeNil)
			}
			So(c.proposal(t, id).Status, ShouldEqual, proposal.StatusPending)

			_, err = c.deliver(c.carol, genesisTime, &proposal.ApproveProposalMsg{Wallet: c.wallet, ProposalID: id})
			So(err, ShouldBeNil)
			So(c.proposal(t, id).Status, ShouldEqual, proposal.StatusApproved)
		})
	})
}
