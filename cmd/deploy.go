package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/deploy"
	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/logging"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/spf13/cobra"
)

var (
	deployMigrations []string
	deployArtifacts  string
	deployYes        bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy <network>",
	Short: "Deploy the MDT token and lockup contracts",
	Long: `Deploy compiled contracts from a Truffle build directory. The network
name selects the constructor arguments:

  mainnetInfura  MDToken with the sale allocations, MDTokenLockup ending
                 7 days after 2018-02-06 07:00 UTC
  ropstenInfura  test MDToken + MDTokenBank, MDTokenLockupTest ending
                 7 days from now
  others         test MDToken + MDTokenBank

The deployer is derived from MDT_DEPLOYER_MNEMONIC (account index 4 on
mainnetInfura, 0 elsewhere). Pass --wallet to deploy from a stored signing
wallet instead. Deployed contracts are saved to the contract registry and
used by status, lock and withdraw.

Examples:
  mdtlockup deploy development --artifacts build/contracts
  mdtlockup deploy ropstenInfura --migrations lockup --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		net, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q, run `mdtlockup network list` to see all networks", args[0])
		}
		migrations, err := deploy.Select(deployMigrations)
		if err != nil {
			return err
		}
		signer, err := deploySigner(net)
		if err != nil {
			return err
		}
		reg, err := newContractRegistry()
		if err != nil {
			return err
		}

		d := deploy.NewDeployer(net, nil, signer, deployArtifacts)
		steps := d.Plan(migrations)
		if len(steps) == 0 {
			fmt.Println(ui.Info(fmt.Sprintf("Nothing to deploy on %s.", net.Name)))
			return nil
		}
		fmt.Println(ui.KeyValueBlock("Deployment", [][2]string{
			{"Network", ui.ChainName(net.Name)},
			{"Deployer", ui.Addr(signer.Address().Hex())},
			{"Artifacts", deployArtifacts},
		}))
		fmt.Println(planTable(steps, net))

		if !deployYes && !confirmTx(net.Name, fmt.Sprintf("Deploy %d contract(s)?", len(steps))) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		provider, err := lockup.Dial(ctx, net, cfg)
		if err != nil {
			return err
		}
		d = deploy.NewDeployer(net, provider, signer, deployArtifacts,
			deploy.WithRegistry(reg),
			deploy.WithLogger(logging.Component(logger, "deploy")),
		)

		spin := ui.NewSpinner("Deploying...")
		spin.Start()
		start := time.Now()
		deployed, err := d.Run(ctx, migrations)
		spin.Stop()

		if len(deployed) > 0 {
			fmt.Println(deployedTable(deployed))
		}
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Deployed %d contract(s) in %s.", len(deployed), time.Since(start).Round(time.Second))))
		fmt.Println(ui.Hint(fmt.Sprintf("Check status with: mdtlockup status --network %s", net.Name)))
		return nil
	},
}

// deploySigner picks the stored wallet named by --wallet, or the mnemonic account.
func deploySigner(net *chain.Network) (contract.TxSigner, error) {
	if walletFlag != "" {
		mgr, err := newWalletManager()
		if err != nil {
			return nil, err
		}
		s, err := mgr.Signer(walletFlag)
		if err != nil {
			return nil, err
		}
		if err := s.Unlock(); err != nil {
			return nil, err
		}
		return s, nil
	}
	return deploy.MnemonicSigner(cfg.DeployerMnemonic, net)
}

func planTable(steps []deploy.Step, net *chain.Network) string {
	t := ui.NewTable([]ui.Column{
		{Title: "#", Width: 3},
		{Title: "Contract", Width: 18},
		{Title: "Role", Width: 8},
		{Title: "Gas", Width: 10, Right: true},
	})
	for i, s := range steps {
		gas := s.Gas
		if gas == 0 {
			gas = net.GasLimit
		}
		t.AddRow(ui.Row{fmt.Sprintf("%d", i+1), s.Contract, s.Role, fmt.Sprintf("%d", gas)})
	}
	return t.Render()
}

func deployedTable(deployed []deploy.Deployed) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Migration", Width: 9},
		{Title: "Contract", Width: 18},
		{Title: "Address", Width: 42},
		{Title: "Gas used", Width: 10, Right: true},
	})
	for _, d := range deployed {
		t.AddRow(ui.Row{fmt.Sprintf("%d", d.Migration), d.Contract, d.Address.Hex(), fmt.Sprintf("%d", d.GasUsed)})
	}
	return t.Render()
}

func init() {
	deployCmd.Flags().StringSliceVarP(&deployMigrations, "migrations", "m", nil, "migrations to run by name or number (default: all)")
	deployCmd.Flags().StringVarP(&deployArtifacts, "artifacts", "a", "build/contracts", "Truffle build directory")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "skip the confirmation prompt")
}
