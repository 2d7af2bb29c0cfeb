package main

import (
	"strconv"
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/x/emergency"
	"github.com/iov-one/daowallet/x/proposal"
	"github.com/iov-one/daowallet/x/quorum"
	"github.com/spf13/cobra"
)

func (c *cli) proposeCmd() *cobra.Command {
	var (
		walletRef    string
		description  string
		category     string
		instructions []string
		expiresIn    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			cat, err := quorum.ParseCategory(category)
			if err != nil {
				return err
			}
			ins, err := parseInstructions(instructions)
			if err != nil {
				return err
			}
			msg := &proposal.AddProposalMsg{
				Wallet:       w,
				Description:  description,
				Category:     cat,
				Instructions: ins,
			}
			if expiresIn > 0 {
				msg.Expiration = daowallet.AsUnixTime(c.now().Add(expiresIn))
			}
			return c.deliver(msg)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	flags.StringVar(&description, "description", "", "human readable description")
	flags.StringVar(&category, "category", "regular", "regular, admin_change or emergency")
	flags.StringArrayVar(&instructions, "instruction", nil, "instruction as program:amount[:hexdata], can be repeated")
	flags.DurationVar(&expiresIn, "expires-in", 0, "proposal lifetime, the wallet default when zero")
	return cmd
}

// voteCmd returns the approve or the reject command.
func (c *cli) voteCmd(approve bool) *cobra.Command {
	var walletRef, onBehalfOf string
	use, short := "approve", "Approve a proposal"
	if !approve {
		use, short = "reject", "Reject a proposal"
	}
	cmd := &cobra.Command{
		Use:   use + " <proposal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			var delegator daowallet.Address
			if onBehalfOf != "" {
				if delegator, err = resolveAddress(onBehalfOf); err != nil {
					return err
				}
			}
			if approve {
				return c.deliver(&proposal.ApproveProposalMsg{Wallet: w, ProposalID: id, OnBehalfOf: delegator})
			}
			return c.deliver(&proposal.RejectProposalMsg{Wallet: w, ProposalID: id, OnBehalfOf: delegator})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	flags.StringVar(&onBehalfOf, "on-behalf-of", "", "signer the sender votes for as a delegate")
	return cmd
}

func (c *cli) executeCmd() *cobra.Command {
	var walletRef string
	cmd := &cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Execute an approved proposal, or one within the spending allowance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return c.deliver(&proposal.ExecuteProposalMsg{Wallet: w, ProposalID: id})
		},
	}
	cmd.Flags().StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	return cmd
}

func (c *cli) overrideCmd() *cobra.Command {
	var (
		walletRef    string
		instructions []string
	)
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Execute instructions as the wallet authority, without a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			ins, err := parseInstructions(instructions)
			if err != nil {
				return err
			}
			return c.deliver(&emergency.OverrideMsg{Wallet: w, Instructions: ins})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	flags.StringArrayVar(&instructions, "instruction", nil, "instruction as program:amount[:hexdata], can be repeated")
	return cmd
}

func parseProposalID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Wrapf(errors.ErrInput, "proposal id %q", s)
	}
	return id, nil
}
