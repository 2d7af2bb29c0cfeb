package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/app"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/store/iavl"
	"github.com/iov-one/daowallet/x/exec"
	"github.com/iov-one/daowallet/x/wallet"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

// cli holds the values of the global flags.
type cli struct {
	home   string
	config string
	from   string
	out    io.Writer
	// now returns the block time of the next transaction.
	now func() time.Time
}

// NewRootCmd returns the daowallet command with all subcommands attached.
// Results are written to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	return newRootCmd(out, time.Now)
}

func newRootCmd(out io.Writer, now func() time.Time) *cobra.Command {
	c := &cli{out: out, now: now}
	root := &cobra.Command{
		Use:           "daowallet",
		Short:         "Multisig DAO wallet governance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOutput(out)
	flags := root.PersistentFlags()
	flags.StringVar(&c.home, "home", "", "directory to store files under (default \"$HOME/.daowallet\")")
	flags.StringVar(&c.config, "config", "", "configuration file (default \"<home>/config.yaml\")")
	flags.StringVar(&c.from, "from", "", "name of the principal sending the transaction")

	root.AddCommand(
		c.initCmd(),
		c.createCmd(),
		c.updateSignersCmd(),
		c.setLimitsCmd(),
		c.delegateCmd(),
		c.assignRoleCmd(),
		c.deactivateCmd(),
		c.proposeCmd(),
		c.voteCmd(true),
		c.voteCmd(false),
		c.executeCmd(),
		c.overrideCmd(),
		c.showCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) loadConfig() (app.Config, error) {
	path := c.config
	if path == "" {
		home := c.home
		if home == "" {
			home = app.DefaultConfig().Home
		}
		path = filepath.Join(home, app.ConfigFile)
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if c.home != "" {
		cfg.Home = c.home
	}
	return cfg, nil
}

// openEngine opens the database in the home directory. The returned
// function must be called to release it.
func (c *cli) openEngine() (*app.Engine, app.Config, func(), error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cfg, nil, err
	}
	if err := os.MkdirAll(cfg.Home, 0700); err != nil {
		return nil, cfg, nil, errors.Wrapf(errors.ErrDatabase, "create home: %s", err)
	}
	logger, err := newLogger(c.out, cfg.LogLevel)
	if err != nil {
		return nil, cfg, nil, err
	}
	store, err := iavl.NewCommitStore(cfg.Home, cfg.DBName)
	if err != nil {
		return nil, cfg, nil, err
	}
	engine, err := app.NewApplication(store, logger, nil, cfg.Debug)
	if err != nil {
		store.Close()
		return nil, cfg, nil, err
	}
	return engine, cfg, store.Close, nil
}

func newLogger(out io.Writer, level string) (log.Logger, error) {
	allowed, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(out)).With("module", "daowallet")
	return log.NewFilter(logger, allowed), nil
}

// cliTx carries a single message. The sender is authenticated by the
// --from flag.
type cliTx struct {
	msg daowallet.Msg
}

func (t cliTx) GetMsg() (daowallet.Msg, error) {
	return t.msg, nil
}

// deliver sends msg as the --from principal and prints the result.
func (c *cli) deliver(msg daowallet.Msg) error {
	if c.from == "" {
		return errors.Wrap(errors.ErrEmpty, "--from is required")
	}
	engine, cfg, closeStore, err := c.openEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := app.WithPrincipal(context.Background(), app.PrincipalCondition(c.from))
	res, err := engine.Deliver(ctx, c.now(), cliTx{msg: msg})
	if res != nil {
		printResult(c.out, res)
	}
	if err != nil {
		code, _ := errors.Info(err, cfg.Debug)
		return errors.Wrapf(err, "code %d", code)
	}
	return nil
}

func printResult(out io.Writer, res *daowallet.DeliverResult) {
	if res.Log != "" {
		fmt.Fprintln(out, res.Log)
	}
	if len(res.Data) != 0 {
		fmt.Fprintf(out, "data: %X\n", res.Data)
	}
	for _, t := range res.Tags {
		fmt.Fprintf(out, "%s: %s\n", t.Key, tagValue(string(t.Key), t.Value))
	}
}

func tagValue(key string, value []byte) string {
	switch key {
	case "wallet", "voter", "caller":
		return daowallet.Address(value).String()
	default:
		return string(value)
	}
}

// resolveAddress accepts an encoded address or a principal name.
func resolveAddress(s string) (daowallet.Address, error) {
	if s == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "address")
	}
	if addr, err := daowallet.ParseAddress(s); err == nil && addr.Validate() == nil {
		return addr, nil
	}
	if strings.ContainsAny(s, ": ") {
		return nil, errors.Wrapf(errors.ErrInput, "invalid address %q", s)
	}
	return app.PrincipalCondition(s).Address(), nil
}

// resolveWallet accepts a wallet address or the principal name of the
// wallet authority.
func resolveWallet(s string) (daowallet.Address, error) {
	if s == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "wallet")
	}
	if addr, err := daowallet.ParseAddress(s); err == nil && addr.Validate() == nil {
		return addr, nil
	}
	authority, err := resolveAddress(s)
	if err != nil {
		return nil, err
	}
	return wallet.Address(authority), nil
}

func resolveAddresses(names []string) ([]daowallet.Address, error) {
	addrs := make([]daowallet.Address, 0, len(names))
	for _, n := range names {
		a, err := resolveAddress(n)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

// parseInstructions reads instructions in the form
// program:amount[:hexdata].
func parseInstructions(raw []string) ([]exec.Instruction, error) {
	ins := make([]exec.Instruction, 0, len(raw))
	for _, r := range raw {
		chunks := strings.Split(r, ":")
		if len(chunks) < 2 || len(chunks) > 3 {
			return nil, errors.Wrapf(errors.ErrInput, "instruction %q, want program:amount[:data]", r)
		}
		program, err := resolveAddress(chunks[0])
		if err != nil {
			return nil, errors.Wrap(err, "program")
		}
		amount, err := strconv.ParseUint(chunks[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "amount %q", chunks[1])
		}
		in := exec.Instruction{Program: program, Amount: amount}
		if len(chunks) == 3 {
			if in.Data, err = hex.DecodeString(chunks[2]); err != nil {
				return nil, errors.Wrapf(errors.ErrInput, "data %q", chunks[2])
			}
		}
		ins = append(ins, in)
	}
	return ins, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), daowallet.Version())
		},
	}
}
