package main

import (
	"time"

	"github.com/iov-one/daowallet/x/members"
	"github.com/iov-one/daowallet/x/wallet"
	"github.com/spf13/cobra"
)

func (c *cli) createCmd() *cobra.Command {
	var (
		signers   []string
		threshold uint32
		timeout   time.Duration
		limit     uint64
		period    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet with the sender as its authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := resolveAddresses(signers)
			if err != nil {
				return err
			}
			return c.deliver(&wallet.InitializeWalletMsg{
				Signers:         addrs,
				Threshold:       threshold,
				ProposalTimeout: seconds(timeout),
				SpendingLimit:   limit,
				SpendingPeriod:  seconds(period),
			})
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVar(&signers, "signers", nil, "signer addresses or principal names")
	flags.Uint32Var(&threshold, "threshold", 1, "number of approvals a regular proposal needs")
	flags.DurationVar(&timeout, "timeout", 24*time.Hour, "default proposal lifetime")
	flags.Uint64Var(&limit, "limit", 0, "amount that can be spent without approval per period")
	flags.DurationVar(&period, "period", 24*time.Hour, "spending period")
	return cmd
}

func (c *cli) updateSignersCmd() *cobra.Command {
	var (
		walletRef string
		signers   []string
		threshold uint32
	)
	cmd := &cobra.Command{
		Use:   "update-signers",
		Short: "Replace the signer set of a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			addrs, err := resolveAddresses(signers)
			if err != nil {
				return err
			}
			return c.deliver(&wallet.UpdateSignersMsg{Wallet: w, Signers: addrs, Threshold: threshold})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	flags.StringSliceVar(&signers, "signers", nil, "signer addresses or principal names")
	flags.Uint32Var(&threshold, "threshold", 1, "number of approvals a regular proposal needs")
	return cmd
}

func (c *cli) setLimitsCmd() *cobra.Command {
	var (
		walletRef string
		limit     uint64
		period    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "set-limits",
		Short: "Change the spending allowance of a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			return c.deliver(&wallet.SetSpendingLimitsMsg{Wallet: w, Limit: limit, Period: seconds(period)})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	flags.Uint64Var(&limit, "limit", 0, "amount that can be spent without approval per period")
	flags.DurationVar(&period, "period", 24*time.Hour, "spending period")
	return cmd
}

func (c *cli) delegateCmd() *cobra.Command {
	var walletRef, to string
	cmd := &cobra.Command{
		Use:   "delegate",
		Short: "Let another principal vote for the sender. Without --to the delegation is revoked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			msg := &wallet.DelegateVoteMsg{Wallet: w}
			if to != "" {
				if msg.Delegate, err = resolveAddress(to); err != nil {
					return err
				}
			}
			return c.deliver(msg)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	flags.StringVar(&to, "to", "", "delegate address or principal name")
	return cmd
}

func (c *cli) assignRoleCmd() *cobra.Command {
	var walletRef, member, role string
	cmd := &cobra.Command{
		Use:   "assign-role",
		Short: "Change the role of a signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			m, err := resolveAddress(member)
			if err != nil {
				return err
			}
			r, err := members.ParseRole(role)
			if err != nil {
				return err
			}
			return c.deliver(&wallet.AssignRoleMsg{Wallet: w, Member: m, Role: r})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	flags.StringVar(&member, "member", "", "signer address or principal name")
	flags.StringVar(&role, "role", "member", "admin, treasurer or member")
	return cmd
}

func (c *cli) deactivateCmd() *cobra.Command {
	var walletRef string
	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Permanently deactivate a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(walletRef)
			if err != nil {
				return err
			}
			return c.deliver(&wallet.DeactivateWalletMsg{Wallet: w})
		},
	}
	cmd.Flags().StringVar(&walletRef, "wallet", "", "wallet address or authority name")
	return cmd
}

func seconds(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Second)
}
