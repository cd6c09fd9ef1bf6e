package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/mdtlockup/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir      string
	cfg         *config.Config
	logger      *logrus.Logger
	verbose     bool
	networkFlag string
	walletFlag  string
	langFlag    string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "mdtlockup",
	Short: "Lock MDT tokens for a vesting bonus",
	Long: `mdtlockup — lock up MDT tokens from the terminal.

  Check your early/late-bird and private sale lockups, lock tokens for
  3 months (+10%), 6 months (+30%) or 1 year (+66%), withdraw once the
  period is over, and deploy the token and lockup contracts.

Global flags --network and --wallet override the configured defaults for a
single invocation. Secrets (MDT_INFURA_TOKEN, MDT_DEPLOYER_MNEMONIC,
MDT_PRIVATE_KEY) are read from the environment or from .env in the config
directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger = logging.New(cfg.LogLevel, verbose)
		logger.WithField("dir", cfg.Dir()).Debug("config loaded")
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, errorText(err))
		}
		os.Exit(1)
	}
}

func init() {
	// MDT_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("MDT_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.mdtlockup)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network to use (default: configured network)")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet to use (default: configured wallet)")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "en", "date format: en or cn")

	rootCmd.AddCommand(
		statusCmd,
		lockCmd,
		withdrawCmd,
		bonusCmd,
		deployCmd,
		walletCmd,
		networkCmd,
		contractCmd,
		configCmd,
		initCmd,
	)
}
