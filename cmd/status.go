package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/spf13/cobra"
)

var statusLive bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lockup eligibility and locked tokens for your wallet",
	Long: `Show the lockup status of the selected wallet: how much can be locked,
the early/late-bird and private sale lockup records, unlock dates, the final
amount with bonus, and whether each record can be withdrawn.

Examples:
  mdtlockup status
  mdtlockup status --wallet alice --network ropstenInfura
  mdtlockup status --live`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if statusLive {
			interval := time.Duration(cfg.WatchInterval) * time.Second
			if interval <= 0 {
				interval = 15 * time.Second
			}
			net, err := currentNetwork()
			if err != nil {
				return err
			}
			_, err = ui.NewDashboard(net.Name, currentLang(), interval, func() (lockup.View, error) {
				return loadView(ctx), nil
			}).Run()
			return err
		}

		spin := ui.NewSpinner("Loading lockup status...")
		spin.Start()
		v := loadView(ctx)
		spin.Stop()

		fmt.Println(ui.RenderView(v, currentLang()))
		if v.Panel != nil {
			return errReported
		}
		return nil
	},
}

// loadView connects, loads the state and decides what to show. Failures
// become the view's alert panel.
func loadView(ctx context.Context) lockup.View {
	sess, err := connect(ctx, false)
	if err != nil {
		return lockup.AssessError(err, cfg.LockupClosed)
	}
	state, err := sess.Client.LoadState(ctx)
	if err != nil {
		return lockup.AssessError(err, cfg.LockupClosed)
	}
	return lockup.Assess(state, cfg.LockupClosed)
}

func init() {
	statusCmd.Flags().BoolVar(&statusLive, "live", false, "refresh every watch_interval seconds")
}
