package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/Mohsinsiddi/mdtlockup/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Pick the default network and RPC strategy, and optionally add a watch-only wallet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		result, err := ui.RunWizard(chain.NewRegistry().Names())
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		return applyWizard(result)
	},
}

func applyWizard(result *ui.WizardResult) error {
	if result.DefaultNetwork != "" {
		cfg.DefaultNetwork = result.DefaultNetwork
	}
	if result.RPCAlgorithm != "" {
		cfg.RPCAlgorithm = result.RPCAlgorithm
	}

	if addr := result.WalletAddress; addr != "" {
		if !common.IsHexAddress(addr) {
			fmt.Println(ui.Warn(fmt.Sprintf("Skipping wallet: %q is not an address.", addr)))
		} else if err := addDefaultWatchWallet(common.HexToAddress(addr).Hex()); err != nil {
			fmt.Println(ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println(ui.Success("mdtlockup configured! Run `mdtlockup status` to see your lockups."))
	return nil
}

func addDefaultWatchWallet(addr string) error {
	mgr, err := newWalletManager()
	if err != nil {
		return err
	}
	const name = "default"
	err = mgr.Add(name, &wallet.Wallet{Address: addr, Type: wallet.TypeWatchOnly})
	if err != nil && !errors.Is(err, wallet.ErrWalletExists) {
		return err
	}
	if err := mgr.SetDefault(name); err != nil {
		return err
	}
	cfg.DefaultWallet = name
	return nil
}
