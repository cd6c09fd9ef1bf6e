package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/deploy"
	"github.com/Mohsinsiddi/mdtlockup/internal/logging"
	csync "github.com/Mohsinsiddi/mdtlockup/internal/sync"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	contractRole    string
	contractBuiltin string
	contractABI     string
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage the token and lockup contract registry",
}

// ── contract add ──────────────────────────────────────────────────────────────

var contractAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Register a contract on the selected network",
	Long: `Register a contract so status, lock and withdraw can find it. A contract
holding the "token" or "lockup" role replaces the network's built-in address.

Interface source (pick one):
  --abi <file|url>    Raw ABI JSON array or Truffle/Hardhat artifact
  --builtin <id>      A bundled interface (see: mdtlockup contract builtins)

Examples:
  mdtlockup contract add MDTokenLockup 0x3c9d... --role lockup --builtin mdtlockup
  mdtlockup contract add MDToken 0x814e... --role token --abi build/contracts/MDToken.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		name, address := args[0], args[1]
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid address %q", address)
		}
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		switch contractRole {
		case "", contract.RoleToken, contract.RoleLockup:
		default:
			return fmt.Errorf("unknown role %q, use %q or %q", contractRole, contract.RoleToken, contract.RoleLockup)
		}

		entry := &contract.Entry{
			Name:    name,
			Network: net.Name,
			Address: common.HexToAddress(address).Hex(),
			Role:    contractRole,
		}
		switch {
		case contractBuiltin != "":
			if _, ok := contract.GetBuiltin(contractBuiltin); !ok {
				return fmt.Errorf("unknown built-in %q, run `mdtlockup contract builtins` to see all", contractBuiltin)
			}
			entry.BuiltinID = contractBuiltin
		case contract.IsURL(contractABI):
			// Validate now; the session fetches it again when needed.
			if _, err := contract.NewFetcher().FetchFromURL(ctx, contractABI); err != nil {
				return err
			}
			entry.ABIURL = contractABI
		case contractABI != "":
			abi, err := contract.LoadFromFile(contractABI)
			if err != nil {
				return err
			}
			entry.ABI = abi
		}

		reg, err := newContractRegistry()
		if err != nil {
			return err
		}
		reg.Add(entry)
		if err := reg.Save(); err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Contract %q registered on %s at %s", name, net.Name, ui.Addr(entry.Address))))
		if entry.Role != "" {
			fmt.Println(ui.Hint(fmt.Sprintf("Used as the %s contract on %s.", entry.Role, net.Name)))
		}
		return nil
	},
}

// ── contract remove ───────────────────────────────────────────────────────────

var contractRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a contract from the selected network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		reg, err := newContractRegistry()
		if err != nil {
			return err
		}
		if err := reg.Remove(args[0], net.Name); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Contract %q removed from %s.", args[0], net.Name)))
		return nil
	},
}

// ── contract builtins ─────────────────────────────────────────────────────────

var contractBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the bundled contract interfaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 16},
			{Title: "Reads", Width: 5, Right: true},
			{Title: "Writes", Width: 6, Right: true},
			{Title: "Description", Width: 48},
		})
		for _, b := range contract.AllBuiltins() {
			reads, writes := contract.Functions(b.ABI)
			t.AddRow(ui.Row{b.ID, b.Name, fmt.Sprintf("%d", len(reads)), fmt.Sprintf("%d", len(writes)), b.Description})
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Built-in contract interfaces"))
		fmt.Println(t.Render())
		return nil
	},
}

// ── contract list ─────────────────────────────────────────────────────────────

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newContractRegistry()
		if err != nil {
			return err
		}
		entries := reg.All()
		if len(entries) == 0 {
			fmt.Println(ui.Info("No contracts registered yet."))
			fmt.Println(ui.Hint("Deploy with `mdtlockup deploy <network>` or add one with `mdtlockup contract add`."))
			return nil
		}
		fmt.Println(contractTable(entries))
		fmt.Println(ui.Meta(fmt.Sprintf("%d contract(s) registered", len(entries))))
		return nil
	},
}

// ── contract sync ─────────────────────────────────────────────────────────────

var contractSyncCmd = &cobra.Command{
	Use:   "sync <manifest|build-dir>",
	Short: "Import deployed addresses for the selected network",
	Long: `Import deployments into the contract registry from either
  - a deployments manifest (file or URL):
      {"contracts": {"MDTokenLockup": {"mainnetInfura": {"address": "0x...", "role": "lockup", "abi_url": "..."}}}}
  - a Truffle build directory, using the "networks" map of each artifact.

Examples:
  mdtlockup contract sync https://example.com/deployments.json
  mdtlockup contract sync build/contracts --network ropstenInfura`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		reg, err := newContractRegistry()
		if err != nil {
			return err
		}
		s := csync.New(reg,
			csync.WithRoles(deploy.Roles()),
			csync.WithLogger(logging.Component(logger, "sync")),
		)

		var imported []*contract.Entry
		if info, statErr := os.Stat(args[0]); statErr == nil && info.IsDir() {
			imported, err = s.ImportArtifacts(args[0], net)
		} else {
			imported, err = s.Run(ctx, args[0], net)
		}
		if err != nil {
			return err
		}
		fmt.Println(contractTable(imported))
		fmt.Println(ui.Success(fmt.Sprintf("Imported %d contract(s) for %s.", len(imported), net.Name)))
		return nil
	},
}

func contractTable(entries []*contract.Entry) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Name", Width: 18},
		{Title: "Network", Width: 14},
		{Title: "Address", Width: 42},
		{Title: "Role", Width: 6},
		{Title: "Interface", Width: 10},
	})
	for _, e := range entries {
		t.AddRow(ui.Row{e.Name, e.Network, e.Address, e.Role, interfaceSource(e)})
	}
	return t.Render()
}

func interfaceSource(e *contract.Entry) string {
	switch {
	case len(e.ABI) > 0:
		return "inline"
	case e.BuiltinID != "":
		return "builtin:" + e.BuiltinID
	case e.ABIURL != "":
		return "url"
	default:
		return "-"
	}
}

func init() {
	contractAddCmd.Flags().StringVar(&contractRole, "role", "", `role on the network: "token" or "lockup"`)
	contractAddCmd.Flags().StringVar(&contractBuiltin, "builtin", "", "bundled interface id")
	contractAddCmd.Flags().StringVar(&contractABI, "abi", "", "ABI or artifact file, or an http(s) URL")
	contractAddCmd.MarkFlagsMutuallyExclusive("builtin", "abi")
	contractCmd.AddCommand(contractAddCmd, contractRemoveCmd, contractBuiltinsCmd, contractListCmd, contractSyncCmd)
}
