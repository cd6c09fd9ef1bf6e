package lockup

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notice is the header message shown while the lockup is open.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeNoRecord
	NoticeAlreadyLocked
	NoticeBelowMinimum
	NoticeEligible
)

func (n Notice) String() string {
	switch n {
	case NoticeNoRecord:
		return "no-record"
	case NoticeAlreadyLocked:
		return "already-locked"
	case NoticeBelowMinimum:
		return "below-minimum"
	case NoticeEligible:
		return "eligible"
	default:
		return "none"
	}
}

// View is everything the status screen shows for one account.
type View struct {
	Account string
	Closed  bool
	Notice  Notice

	// Lock form.
	LockEnabled bool
	Available   decimal.Decimal
	MaxLockup   decimal.Decimal

	Records         []RecordView
	TokensNotLocked bool

	// Panel is set when loading failed.
	Panel *Panel
}

// RecordView is one locked-tokens card.
type RecordView struct {
	Sale             SaleType
	Locked           decimal.Decimal
	Period           Period
	Months           int
	UnlockAt         time.Time
	Final            decimal.Decimal
	WithdrawEnabled  bool
	AlreadyWithdrawn bool
	WithdrawnAt      time.Time
}

// Assess decides what to show for a loaded state. lockupClosed forces the
// post-sale layout even if the contract has not ended yet.
func Assess(s *State, lockupClosed bool) View {
	v := View{
		Account:   s.Account.Hex(),
		Closed:    lockupClosed || s.EventEnded,
		Available: s.AvailableLockupAmount(),
		MaxLockup: s.MaxLockupAmount,
	}

	for _, sale := range []SaleType{EarlyLateBird, PrivateSale} {
		if s.HasLockedTokens(sale) {
			v.Records = append(v.Records, recordView(s, sale))
		}
	}
	v.TokensNotLocked = len(v.Records) == 0

	hasRecord := s.MaxLockupAmount.IsPositive()
	if v.Closed {
		if !hasRecord && len(v.Records) == 0 {
			v.Notice = NoticeNoRecord
			v.TokensNotLocked = false
		}
		return v
	}

	switch {
	case !hasRecord:
		v.Notice = NoticeNoRecord
	case s.HasLockedTokens(EarlyLateBird):
		v.Notice = NoticeAlreadyLocked
	case s.TokenBalance.LessThan(MinLockupAmount):
		v.Notice = NoticeBelowMinimum
	default:
		v.Notice = NoticeEligible
		v.LockEnabled = true
	}
	return v
}

// AssessError is the view for a session that failed to load.
func AssessError(err error, lockupClosed bool) View {
	p := PanelFor(err)
	return View{
		Closed:          lockupClosed,
		Panel:           &p,
		TokensNotLocked: !lockupClosed,
	}
}

func recordView(s *State, sale SaleType) RecordView {
	r := s.Record(sale)
	rv := RecordView{
		Sale:             sale,
		Locked:           r.Value,
		Period:           r.Period,
		Months:           r.Period.Months(),
		UnlockAt:         r.EndTime,
		Final:            r.TokensWithBonus(),
		WithdrawEnabled:  s.CanWithdraw(sale) && !r.Withdrawn,
		AlreadyWithdrawn: r.Withdrawn,
	}
	if r.Withdrawn {
		rv.WithdrawnAt = r.WithdrawnOrEnd()
	}
	return rv
}
