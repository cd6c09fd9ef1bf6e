package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/ens"
	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/Mohsinsiddi/mdtlockup/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag      string
	walletMnemonicFlag bool
	walletIndexFlag    uint32
	walletUnlockAll    bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a wallet by address (watch-only, enough for status), by private key,
or by deriving an account from the deployer mnemonic.

Keys are stored in the OS keychain, or an encrypted file under the config
directory when no keychain is available (password from MDT_KEYRING_PASSWORD).

Examples:
  mdtlockup wallet add alice 0xAbC...
  mdtlockup wallet add treasury treasury.eth
  mdtlockup wallet add alice --key 0x4c0883a6...
  mdtlockup wallet add ops --mnemonic --index 2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		switch {
		case walletKeyFlag != "":
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
		case walletMnemonicFlag:
			if cfg.DeployerMnemonic == "" {
				return fmt.Errorf("%s_DEPLOYER_MNEMONIC is not set", config.EnvPrefix)
			}
			if err := mgr.AddFromMnemonic(name, cfg.DeployerMnemonic, walletIndexFlag); err != nil {
				return err
			}
		default:
			if len(args) < 2 {
				return errors.New("address required for watch-only wallet\n  Usage: mdtlockup wallet add <name> <address>\n  Or for signing: mdtlockup wallet add <name> --key <private-key>")
			}
			address, err := resolveAddress(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if err := mgr.Add(name, &wallet.Wallet{Address: address, Type: wallet.TypeWatchOnly}); err != nil {
				return err
			}
		}

		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s wallet %q added: %s", walletTypeLabel(w.Type), name, ui.Addr(w.Address))))
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: mdtlockup wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets := mgr.List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: mdtlockup wallet add myWallet 0xYourAddress"))
			return nil
		}
		fmt.Println(walletTable(wallets))
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet key(s) for the session",
	Long: `Read signing keys from the keychain once and cache them in a session
file readable only by you, so lock and withdraw run without a prompt.

  mdtlockup wallet unlock          # pick a wallet
  mdtlockup wallet unlock alice
  mdtlockup wallet unlock --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		ks, err := openKeystore()
		if err != nil {
			return err
		}

		signing := signingWallets(mgr.List())
		if len(signing) == 0 {
			fmt.Println(ui.Info("No signing wallets found."))
			fmt.Println(ui.Hint("Add one with: mdtlockup wallet add <name> --key <private-key>"))
			return nil
		}

		var targets []*wallet.Wallet
		switch {
		case walletUnlockAll:
			targets = signing
		case len(args) > 0:
			w, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			if w.Type != wallet.TypeSigning {
				return fmt.Errorf("%w: %s", wallet.ErrWatchOnly, w.Name)
			}
			targets = []*wallet.Wallet{w}
		default:
			items := make([]ui.PickerItem, len(signing))
			for i, w := range signing {
				sub := ui.TruncateAddr(w.Address)
				if ks.Unlocked(w.KeyRef) {
					sub += "  " + ui.Meta("[cached]")
				}
				items[i] = ui.PickerItem{Label: w.Name, SubLabel: sub, Value: w.Name}
			}
			picked, err := ui.PickItem("Unlock wallet", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			w, err := mgr.Get(picked)
			if err != nil {
				return err
			}
			targets = []*wallet.Wallet{w}
		}

		var unlocked, skipped int
		for _, w := range targets {
			if ks.Unlocked(w.KeyRef) {
				fmt.Println(ui.Meta(fmt.Sprintf("  %-20s already cached", w.Name)))
				skipped++
				continue
			}
			if err := ks.Unlock(w.KeyRef); err != nil {
				fmt.Println(ui.Err(fmt.Sprintf("  %-20s %v", w.Name, err)))
				continue
			}
			fmt.Println(ui.Success(fmt.Sprintf("  %-20s unlocked", w.Name)))
			unlocked++
		}

		fmt.Println()
		if unlocked > 0 {
			fmt.Println(ui.Success(fmt.Sprintf("%d wallet(s) cached until 'mdtlockup wallet lock'.", unlocked)))
		}
		if skipped > 0 {
			fmt.Println(ui.Meta(fmt.Sprintf("  %d already cached, skipped.", skipped)))
		}
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Clear the session key cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := wallet.NewSession(wallet.DefaultSessionPath())
		if !session.Active() {
			fmt.Println(ui.Meta("No active session, nothing to clear."))
			return nil
		}
		if err := session.Clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println(ui.Success("Session cleared. The keychain will be used on next access."))
		return nil
	},
}

// resolveAddress accepts a hex address or a .eth name, resolved on mainnet.
func resolveAddress(ctx context.Context, s string) (string, error) {
	if common.IsHexAddress(s) {
		return common.HexToAddress(s).Hex(), nil
	}
	if !ens.IsName(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	mainnet, err := chain.NewRegistry().GetByName("mainnetInfura")
	if err != nil {
		return "", err
	}
	client, err := lockup.Dial(ctx, mainnet, cfg)
	if err != nil {
		return "", err
	}
	addr, err := ens.Resolve(ctx, client, s)
	if err != nil {
		return "", err
	}
	fmt.Println(ui.Meta(fmt.Sprintf("%s resolved to %s", s, addr.Hex())))
	return addr.Hex(), nil
}

func walletTable(wallets []*wallet.Wallet) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Name", Width: 16},
		{Title: "Address", Width: 42},
		{Title: "Type", Width: 12},
		{Title: "Default", Width: 7},
	})
	for _, w := range wallets {
		def := ""
		if w.IsDefault || w.Name == cfg.DefaultWallet {
			def = "✓"
		}
		t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), def})
	}
	return t.Render()
}

func signingWallets(all []*wallet.Wallet) []*wallet.Wallet {
	var out []*wallet.Wallet
	for _, w := range all {
		if w.Type == wallet.TypeSigning {
			out = append(out, w)
		}
	}
	return out
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "signing"
	case wallet.TypeWatchOnly:
		return "watch-only"
	default:
		return t
	}
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet")
	walletAddCmd.Flags().BoolVar(&walletMnemonicFlag, "mnemonic", false, "derive the key from "+config.EnvPrefix+"_DEPLOYER_MNEMONIC")
	walletAddCmd.Flags().Uint32Var(&walletIndexFlag, "index", 0, "account index for --mnemonic")
	walletAddCmd.MarkFlagsMutuallyExclusive("key", "mnemonic")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock all signing wallets")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd, walletUnlockCmd, walletLockCmd)
}
