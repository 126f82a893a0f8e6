package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"deplebs-mint-tui/config"
	"deplebs-mint-tui/deplebs"
	"deplebs-mint-tui/helpers"
	"deplebs-mint-tui/metadata"
	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/rpc"
	"deplebs-mint-tui/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// -------------------- COMMANDS --------------------

var (
	configPath string
	verbose    bool
	account    string
)

var rootCmd = &cobra.Command{
	Use:   "deplebs-mint",
	Short: "Terminal front end for the DePlebs NFT sale",
	Long: `deplebs-mint connects a keystore account to the DePlebs sale contract.

Buyers mint one DePleb during the public sale. The contract owner can open
the sale and withdraw the proceeds.

Environment:
  ETH_RPC_URL        RPC endpoint to use (takes precedence over the config)
  DEPLEBS_CONTRACT   sale contract address`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := newModel(cfg, configPath)
		if err != nil {
			return err
		}
		p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
		_, err = p.Run()
		return err
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the sale state without opening the UI",
	Long: `Reads the sale contract once and prints the minted count, the sale flag
and the state the UI would show for --account. No key is unlocked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr := account
		if addr == "" {
			addr = cfg.ActiveAccount()
		}
		return runStatus(cmd.Context(), cmd.OutOrStdout(), cfg, addr, newCLILogger(cmd.ErrOrStderr()))
	},
}

var metadataCmd = &cobra.Command{
	Use:   "metadata <token-id>",
	Short: "Print the metadata document for a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := new(big.Int).SetString(args[0], 10)
		if !ok || id.Sign() <= 0 {
			return fmt.Errorf("invalid token id %q", args[0])
		}
		cfg := config.LoadOrCreate(configPath)
		js, err := metadata.ForToken(id, cfg.MetadataImageURL).JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), js)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	statusCmd.Flags().StringVar(&account, "account", "", "account to evaluate (defaults to the last connected one)")

	rootCmd.AddCommand(statusCmd, metadataCmd)
}

// loadConfig reads the config file and applies environment overrides
func loadConfig() (config.Config, error) {
	cfg := config.LoadOrCreate(configPath)
	config.ApplyEnvironment(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newCLILogger logs to w, at debug level with --verbose
func newCLILogger(w io.Writer) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           level,
		Prefix:          "deplebs",
	})
}

// contractCapacity reads maxTokenIds and warns when it disagrees with the
// capacity the client enforces.
func contractCapacity(ctx context.Context, c *deplebs.Caller, capacity uint64, logger *log.Logger) (*big.Int, error) {
	supply, err := c.MaxTokenIDs(ctx)
	if err != nil {
		return nil, err
	}
	if !supply.IsUint64() || supply.Uint64() != capacity {
		logger.Warn("contract capacity differs from client", "contract", supply, "client", capacity)
	}
	return supply, nil
}

// runStatus polls the contract once through a watch-only session for addr.
// An empty addr reads the sale without a caller.
func runStatus(ctx context.Context, out io.Writer, cfg config.Config, addr string, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if addr != "" && !helpers.IsValidEthAddress(addr) {
		return fmt.Errorf("invalid account %q", addr)
	}

	endpoint, _ := cfg.ActiveRPC()
	res := rpc.Connect(endpoint.URL)
	if res.Error != nil {
		return res.Error
	}
	defer res.Client.Close()
	logger.Debug("connected", "url", endpoint.URL, "chain", res.ChainID)

	binder, err := deplebs.NewBinder(common.HexToAddress(cfg.ContractAddress))
	if err != nil {
		return err
	}

	provider := wallet.NewWatchProvider(common.HexToAddress(addr), res.Client)
	conn := wallet.NewManager(provider, big.NewInt(cfg.ChainID), logger)
	session, err := conn.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	saleCfg := mint.DefaultConfig()
	snap, err := mint.NewStateReader(conn, binder, saleCfg.Capacity, logger).Poll(ctx)
	if err != nil {
		return err
	}

	state := mint.Derive(mint.Inputs{
		Connected:   addr != "",
		SoldOut:     snap.SoldOut(),
		IsOwner:     snap.IsOwner(session.Address),
		SaleStarted: snap.SaleStarted(),
	})

	rows := [][2]string{
		{"contract", binder.Address().Hex()},
		{"chain", res.ChainID.String() + " (required " + conn.Target().String() + ")"},
		{"owner", snap.Owner.Hex()},
		{"minted", strconv.FormatUint(snap.MintedCount, 10) + "/" + strconv.FormatUint(snap.Capacity, 10)},
	}
	if supply, err := contractCapacity(ctx, binder.Caller(res.Client), saleCfg.Capacity, logger); err != nil {
		logger.Warn("could not read maxTokenIds", "err", err)
	} else {
		rows = append(rows, [2]string{"max supply", supply.String()})
	}
	rows = append(rows,
		[2]string{"sale started", strconv.FormatBool(snap.SaleStarted())},
		[2]string{"price", helpers.FormatETH(saleCfg.Price)},
	)
	if addr != "" {
		rows = append(rows,
			[2]string{"account", session.Address.Hex()},
			[2]string{"minted by account", strconv.FormatBool(snap.MintedByCaller)},
		)
	}
	rows = append(rows, [2]string{"state", state.String()})

	for _, r := range rows {
		if _, err := fmt.Fprintf(out, "%-18s %s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return nil
}
