package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/spf13/cobra"
)

var withdrawYes bool

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <bird|private>",
	Short: "Withdraw locked tokens and bonus once the period is over",
	Long: `Withdraw an unlocked lockup record: "bird" for early/late-bird tokens,
"private" for the private sale allocation.

Examples:
  mdtlockup withdraw bird
  mdtlockup withdraw private --wallet treasury --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sale, err := lockup.ParseSaleType(args[0])
		if err != nil {
			return err
		}
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
		if err := withdrawAllowed(state, sale); err != nil {
			return err
		}

		r := state.Record(sale)
		fmt.Println(ui.KeyValueBlock("Confirm withdrawal", [][2]string{
			{"Record", sale.String()},
			{"Locked", ui.FormatTokens(r.Value) + " MDT"},
			{"With bonus", ui.FormatTokens(r.TokensWithBonus()) + " MDT"},
			{"Unlocked", ui.FormatDate(r.EndTime.Local(), currentLang())},
		}))
		if !withdrawYes && !confirmTx(sess.Network.Name, "Withdraw these tokens?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		tctx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
		defer cancel()

		spin := ui.NewSpinner("Withdrawing, waiting for confirmation...")
		spin.Start()
		res, err := sess.Client.Withdraw(tctx, sale)
		spin.Stop()
		if err != nil {
			return systemError("sending transaction", err)
		}
		return reportTx(sess.Network, res, "Tokens withdrawn.")
	},
}

// withdrawAllowed explains why a record cannot be withdrawn yet.
func withdrawAllowed(s *lockup.State, sale lockup.SaleType) error {
	r := s.Record(sale)
	switch {
	case !r.HasTokens():
		return fmt.Errorf("no %s tokens locked", sale)
	case r.Withdrawn:
		return fmt.Errorf("%s tokens were already withdrawn", sale)
	case !s.EventEnded:
		return errors.New("the lockup event has not ended yet")
	case !s.CanWithdraw(sale):
		return fmt.Errorf("%s tokens unlock on %s", sale, ui.FormatDate(r.EndTime.Local(), currentLang()))
	}
	return nil
}

func init() {
	withdrawCmd.Flags().BoolVarP(&withdrawYes, "yes", "y", false, "skip the confirmation prompt")
}
