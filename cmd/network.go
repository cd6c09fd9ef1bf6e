package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/rpc"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the networks the contracts can be deployed to",
	RunE: func(cmd *cobra.Command, args []string) error {
		networks := chain.NewRegistry().All()
		fmt.Println(networkTable(networks, cfg.DefaultNetwork))
		fmt.Println(ui.Meta(fmt.Sprintf("%d networks total", len(networks))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q, run `mdtlockup network list` to see all networks", args[0])
		}
		cfg.DefaultNetwork = net.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.ChainName(net.Name))))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping [network]",
	Short: "Benchmark the RPC endpoints of a network",
	Long: `Ping every RPC endpoint of a network (built-in and custom) in parallel and
show latency and block height. The endpoint marked "best" is the one the
configured rpc_algorithm would use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		net, err := currentNetwork()
		if len(args) > 0 {
			net, err = chain.NewRegistry().GetByName(args[0])
		}
		if err != nil {
			return err
		}

		urls, err := networkURLs(net)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Pinging %d endpoint(s)...", len(urls)))
		spin.Start()
		results := rpc.BenchmarkEVM(ctx, urls)
		spin.Stop()

		best := ""
		if winner, err := rpc.NewPicker(rpc.ParseAlgorithm(cfg.RPCAlgorithm)).Pick(rpc.ResultsToEndpoints(results)); err == nil {
			best = winner.URL
		}
		fmt.Println(pingTable(results, best))
		if best == "" {
			fmt.Println(ui.Err("No healthy endpoint."))
			return errReported
		}
		return nil
	},
}

// networkURLs lists the custom RPCs of a network followed by its built-in ones.
func networkURLs(net *chain.Network) ([]string, error) {
	urls := append([]string{}, cfg.GetRPCs(net.Name)...)
	builtin, err := net.RPCs(cfg.InfuraToken)
	if err != nil && len(urls) == 0 {
		return nil, err
	}
	return append(urls, builtin...), nil
}

func networkTable(networks []chain.Network, def string) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Name", Width: 14},
		{Title: "Display", Width: 26},
		{Title: "Chain ID", Width: 8, Right: true},
		{Title: "Gas limit", Width: 10, Right: true},
		{Title: "Lockup", Width: 12},
		{Title: "Default", Width: 7},
	})
	for _, n := range networks {
		chainID := "any"
		if n.ChainID != 0 {
			chainID = fmt.Sprintf("%d", n.ChainID)
		}
		lockupAddr := "-"
		if n.LockupAddress != "" {
			lockupAddr = ui.TruncateAddr(n.LockupAddress)
		}
		mark := ""
		if n.Name == def {
			mark = "✓"
		}
		t.AddRow(ui.Row{n.Name, n.DisplayName, chainID, fmt.Sprintf("%d", n.GasLimit), lockupAddr, mark})
	}
	return t.Render()
}

func pingTable(results []rpc.BenchmarkResult, best string) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Endpoint", Width: 44},
		{Title: "Latency", Width: 9, Right: true},
		{Title: "Block", Width: 10, Right: true},
		{Title: "Status", Width: 8},
	})
	for _, r := range results {
		if r.Err != nil {
			t.AddRow(ui.Row{r.URL, "-", "-", "down"})
			continue
		}
		status := "ok"
		if r.URL == best {
			status = "best"
		}
		t.AddRow(ui.Row{
			r.URL,
			r.Latency.Round(time.Millisecond).String(),
			fmt.Sprintf("%d", r.BlockNumber),
			status,
		})
	}
	return t.Render()
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd, networkPingCmd)
}
