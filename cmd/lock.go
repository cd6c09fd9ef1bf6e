package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/spf13/cobra"
)

var (
	lockPeriod string
	lockYes    bool
)

var lockCmd = &cobra.Command{
	Use:   "lock <amount|all>",
	Short: "Lock early/late-bird tokens for a bonus",
	Long: `Lock MDT from the selected wallet into the lockup contract.

The amount must be at least 625 MDT and at most the smaller of your token
balance and your early/late-bird purchase. "all" locks the maximum.

Periods:
  3m   3 months, +10%
  6m   6 months, +30%
  1y   1 year,   +66%

Without --period an interactive picker is shown.

Examples:
  mdtlockup lock 1000 --period 6m
  mdtlockup lock all --period 1y --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		sess, err := connect(ctx, true)
		if err != nil {
			return err
		}
		state, err := sess.Client.LoadState(ctx)
		if err != nil {
			return systemError("loading lockup state", err)
		}
		view := lockup.Assess(state, cfg.LockupClosed)
		if err := lockAllowed(view); err != nil {
			return err
		}

		amount, err := parseLockAmount(args[0], view.Available)
		if err != nil {
			return err
		}

		var period lockup.Period
		if lockPeriod != "" {
			if period, err = lockup.ParsePeriod(lockPeriod); err != nil {
				return err
			}
		} else {
			p, ok, err := ui.PickPeriod(amount)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			period = p
		}

		if err := lockup.CheckLockAmount(amount, view.Available, period); err != nil {
			return err
		}

		unlock := ui.FormatDate(period.UnlockTime(timeNow()), currentLang())
		fmt.Println(ui.RenderLockPreview(amount, period, unlock))
		if !lockYes && !confirmTx(sess.Network.Name, "Lock these tokens?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		tctx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
		defer cancel()

		spin := ui.NewSpinner("Locking tokens, waiting for confirmation...")
		spin.Start()
		res, err := sess.Client.Lock(tctx, amount, period)
		spin.Stop()
		if err != nil {
			return systemError("sending transaction", err)
		}
		return reportTx(sess.Network, res, "Tokens locked.")
	},
}

// lockAllowed turns a view that does not allow locking into an error.
func lockAllowed(v lockup.View) error {
	if v.Closed {
		return errors.New("the lockup event has ended")
	}
	switch v.Notice {
	case lockup.NoticeNoRecord:
		return errors.New("no early/late-bird purchase record for this address")
	case lockup.NoticeAlreadyLocked:
		return errors.New("early/late-bird tokens are already locked")
	case lockup.NoticeBelowMinimum:
		return fmt.Errorf("%w: balance below %s MDT", lockup.ErrBelowMinimum, lockup.MinLockupAmount)
	}
	if !v.LockEnabled {
		return errors.New("locking is not available for this account")
	}
	return nil
}

// confirmTx asks before broadcasting; mainnet gets the danger prompt.
func confirmTx(network, prompt string) bool {
	if network == "mainnetInfura" {
		return ui.ConfirmDanger("MAINNET: " + prompt)
	}
	return ui.Confirm(prompt)
}

// reportTx prints the outcome of a mined transaction with an explorer link
// when the network has one.
func reportTx(net *chain.Network, res *lockup.TxResult, success string) error {
	link := res.Hash
	if url := net.TxURL(res.Hash); url != "" {
		link = url
	}
	if !res.Success {
		fmt.Println(ui.Err("Transaction reverted."))
		fmt.Println(ui.Meta("Tx: ") + ui.Addr(link))
		return errReported
	}
	fmt.Println(ui.Success(success))
	fmt.Println(ui.Meta("Tx: ") + ui.Addr(link))
	return nil
}

func init() {
	lockCmd.Flags().StringVarP(&lockPeriod, "period", "p", "", "lockup period: 3m, 6m or 1y")
	lockCmd.Flags().BoolVarP(&lockYes, "yes", "y", false, "skip the confirmation prompt")
}
