package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/price"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	bonusPeriod   string
	bonusPrice    bool
	bonusCurrency string
)

var bonusCmd = &cobra.Command{
	Use:   "bonus <amount>",
	Short: "Calculate the tokens you get back after a lockup",
	Long: `Show the amount returned after each lockup period, or only one period
with --period. Nothing is sent to the network; --price adds the market value
from CoinGecko.

Examples:
  mdtlockup bonus 1000
  mdtlockup bonus 2500 --period 1y
  mdtlockup bonus 2500 --price --currency eur`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := lockup.ParseAmount(args[0])
		if err != nil {
			return err
		}

		periods := lockup.Periods()
		if bonusPeriod != "" {
			p, err := lockup.ParsePeriod(bonusPeriod)
			if err != nil {
				return err
			}
			periods = []lockup.Period{p}
		}

		var quote *marketQuote
		if bonusPrice {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			f := price.NewFetcher(bonusCurrency)
			p, err := f.MDT(ctx)
			if err != nil {
				// The table is still useful without prices.
				fmt.Println(ui.Warn(err.Error()))
			} else {
				quote = &marketQuote{Price: p, Currency: f.Currency()}
			}
		}

		fmt.Println(bonusTable(amount, periods, quote))
		if amount.LessThan(lockup.MinLockupAmount) {
			fmt.Println(ui.Warn(fmt.Sprintf("The minimum lockup is %s MDT.", lockup.MinLockupAmount)))
		}
		if quote != nil {
			fmt.Println(ui.Meta(fmt.Sprintf("1 MDT = %s %s (CoinGecko)", quote.Price, strings.ToUpper(quote.Currency))))
		}
		return nil
	},
}

// marketQuote is the price of one MDT.
type marketQuote struct {
	Price    decimal.Decimal
	Currency string
}

func bonusTable(amount decimal.Decimal, periods []lockup.Period, quote *marketQuote) string {
	cols := []ui.Column{
		{Title: "Period", Width: 10},
		{Title: "Bonus", Width: 6, Right: true},
		{Title: "Unlock after", Width: 12, Right: true},
		{Title: "You receive", Width: 22, Right: true},
	}
	if quote != nil {
		cols = append(cols, ui.Column{Title: "Value (" + strings.ToUpper(quote.Currency) + ")", Width: 14, Right: true})
	}
	t := ui.NewTable(cols)
	for _, p := range periods {
		total := lockup.TokensWithBonus(amount, p)
		row := ui.Row{
			p.String(),
			fmt.Sprintf("%d%%", p.BonusPercent()),
			fmt.Sprintf("%d days", p.Days()),
			ui.FormatTokens(total) + " MDT",
		}
		if quote != nil {
			row = append(row, ui.FormatTokens(total.Mul(quote.Price).Round(2)))
		}
		t.AddRow(row)
	}
	return t.Render()
}

func init() {
	bonusCmd.Flags().StringVarP(&bonusPeriod, "period", "p", "", "only this period: 3m, 6m or 1y")
	bonusCmd.Flags().BoolVar(&bonusPrice, "price", false, "add the market value from CoinGecko")
	bonusCmd.Flags().StringVar(&bonusCurrency, "currency", "usd", "quote currency for --price")
}
