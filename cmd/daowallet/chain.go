package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/app"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/orm"
	"github.com/iov-one/daowallet/x/emergency"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/proposal"
	"github.com/iov-one/daowallet/x/wallet"
	"github.com/spf13/cobra"
)

func (c *cli) initCmd() *cobra.Command {
	var genesisPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the database from the genesis file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, closeStore, err := c.openEngine()
			if err != nil {
				return err
			}
			defer closeStore()

			if genesisPath == "" {
				genesisPath = cfg.GenesisPath()
			}
			gen, err := app.LoadGenesis(genesisPath)
			if err != nil {
				return err
			}
			if err := engine.InitChain(gen, app.Initializers()); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "chain %s initialized in %s\n", gen.ChainID, cfg.Home)
			return nil
		},
	}
	cmd.Flags().StringVar(&genesisPath, "genesis", "", "genesis file (default \"<home>/genesis.json\")")
	return cmd
}

// showCmd prints stored entities as JSON.
func (c *cli) showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the state of a wallet",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "wallet <wallet>",
			Short: "Print the wallet configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := resolveWallet(args[0])
				if err != nil {
					return err
				}
				return c.show("/wallets", daowallet.KeyQueryMod, w, func() interface{} { return &wallet.WalletConfig{} })
			},
		},
		&cobra.Command{
			Use:   "proposal <wallet> <proposal-id>",
			Short: "Print a single proposal",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := resolveWallet(args[0])
				if err != nil {
					return err
				}
				id, err := parseProposalID(args[1])
				if err != nil {
					return err
				}
				key := append(append([]byte{}, w...), proposal.EncodeID(id)...)
				return c.show("/proposals", daowallet.KeyQueryMod, key, func() interface{} { return &proposal.Proposal{} })
			},
		},
		c.listCmd("proposals", "Print all proposals of a wallet", func() interface{} { return &proposal.Proposal{} }),
		c.listCmd("audits", "Print the emergency override audit trail of a wallet", func() interface{} { return &emergency.AuditRecord{} }),
		c.listCmd("executions", "Print all instructions executed for a wallet", func() interface{} { return &exec.ExecutionRecord{} }),
	)
	return cmd
}

func (c *cli) listCmd(route, short string, newModel func() interface{}) *cobra.Command {
	return &cobra.Command{
		Use:   route + " <wallet>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWallet(args[0])
			if err != nil {
				return err
			}
			return c.show("/"+route, daowallet.PrefixQueryMod, w, newModel)
		},
	}
}

func (c *cli) show(route, mod string, data []byte, newModel func() interface{}) error {
	engine, _, closeStore, err := c.openEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	models, err := engine.Query(route+"?"+mod, data)
	if err != nil {
		return err
	}
	if len(models) == 0 && mod == daowallet.KeyQueryMod {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", route, data)
	}
	out := make([]interface{}, 0, len(models))
	for _, m := range models {
		dest := newModel()
		if err := orm.Unmarshal(m.Value, dest); err != nil {
			return err
		}
		out = append(out, dest)
	}
	if mod == daowallet.KeyQueryMod {
		return printJSON(c.out, out[0])
	}
	return printJSON(c.out, out)
}

func printJSON(w io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
