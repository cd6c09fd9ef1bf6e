package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// StyleDanger frames error panels.
var StyleDanger = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorError).
	Padding(0, 1)

// RenderPanel renders an alert panel for a failed load.
func RenderPanel(p lockup.Panel) string {
	var sb strings.Builder
	sb.WriteString(StyleError.Render(p.Title) + "\n")
	sb.WriteString(p.Body)
	if p.Detail != "" {
		sb.WriteString("\n" + StyleMeta.Render(p.Detail))
	}
	return StyleDanger.Render(sb.String())
}

// RenderView renders the lockup status screen for one account.
func RenderView(v lockup.View, lang Lang) string {
	if v.Panel != nil {
		out := RenderPanel(*v.Panel)
		if v.TokensNotLocked {
			out += "\n" + Meta("Tokens not locked.")
		}
		return out
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("MDT Token Lockup") + "\n")
	sb.WriteString(Meta("Account: ") + Addr(v.Account) + "\n\n")

	if v.Closed {
		sb.WriteString(Warn("The lockup event has ended.") + "\n")
	}
	if msg := noticeText(v); msg != "" {
		sb.WriteString(msg + "\n")
	}

	for _, r := range v.Records {
		sb.WriteString("\n" + RenderRecord(r, lang) + "\n")
	}
	if v.TokensNotLocked {
		sb.WriteString("\n" + Meta("Tokens not locked.") + "\n")
	}
	return sb.String()
}

func noticeText(v lockup.View) string {
	eligible := fmt.Sprintf("You can lock up %s MDT (early/late-bird purchase: %s MDT).",
		FormatAmount(v.Available), FormatAmount(v.MaxLockup))

	switch v.Notice {
	case lockup.NoticeNoRecord:
		return Warn("No early/late-bird purchase record found for this address.")
	case lockup.NoticeAlreadyLocked:
		return Info("Your early/late-bird tokens are already locked up.")
	case lockup.NoticeBelowMinimum:
		return Info(eligible) + "\n" +
			Warn(fmt.Sprintf("Your balance is below the %s MDT minimum lockup.", lockup.MinLockupAmount.String()))
	case lockup.NoticeEligible:
		return Success(eligible) + "\n" + Hint("Lock with: mdtlockup lock <amount> --period 3m|6m|1y")
	}
	return ""
}

// RenderRecord renders one locked-tokens card.
func RenderRecord(r lockup.RecordView, lang Lang) string {
	title := "Early/late-bird lockup"
	if r.Sale.IsPrivateSale() {
		title = "Private sale lockup"
	}

	pairs := [][2]string{
		{"Locked", FormatTokens(r.Locked) + " MDT"},
		{"Period", fmt.Sprintf("%d months", r.Months)},
		{"Unlocks", FormatDate(r.UnlockAt.Local(), lang)},
		{"With bonus", FormatTokens(r.Final) + " MDT"},
	}

	switch {
	case r.AlreadyWithdrawn:
		pairs = append(pairs, [2]string{"Status", "withdrawn on " + FormatDate(r.WithdrawnAt.Local(), lang)})
	case r.WithdrawEnabled:
		pairs = append(pairs, [2]string{"Status", "ready to withdraw"})
	default:
		pairs = append(pairs, [2]string{"Status", "locked"})
	}

	out := KeyValueBlock(title, pairs)
	if r.WithdrawEnabled {
		arg := "bird"
		if r.Sale.IsPrivateSale() {
			arg = "private"
		}
		out += "\n" + Hint("Withdraw with: mdtlockup withdraw "+arg)
	}
	return out
}

// RenderLockPreview is the confirmation shown before a lock transaction.
func RenderLockPreview(amount decimal.Decimal, p lockup.Period, unlock string) string {
	return KeyValueBlock("Confirm lockup", [][2]string{
		{"Amount", FormatAmount(amount) + " MDT"},
		{"Period", fmt.Sprintf("%s (%d%% bonus)", p.String(), p.BonusPercent())},
		{"Unlocks", unlock},
		{"With bonus", FormatTokens(lockup.TokensWithBonus(amount, p)) + " MDT"},
	})
}
