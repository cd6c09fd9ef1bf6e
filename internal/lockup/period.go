package lockup

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a vesting period. Its value is the code the lockup contract
// expects as the transferAndCall data byte.
type Period uint8

const (
	ThreeMonths Period = iota
	SixMonths
	OneYear
)

var periodTable = [...]struct {
	name   string
	months int
	days   int
	bonus  int64
}{
	ThreeMonths: {"3 months", 3, 90, 10},
	SixMonths:   {"6 months", 6, 180, 30},
	OneYear:     {"1 year", 12, 365, 66},
}

// Periods lists every period in contract order.
func Periods() []Period {
	return []Period{ThreeMonths, SixMonths, OneYear}
}

// Valid reports whether p is a known period code.
func (p Period) Valid() bool { return int(p) < len(periodTable) }

func (p Period) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Period(%d)", uint8(p))
	}
	return periodTable[p].name
}

// Months is the period length shown to users.
func (p Period) Months() int {
	if !p.Valid() {
		return 0
	}
	return periodTable[p].months
}

// Days is the lock length the contract applies.
func (p Period) Days() int {
	if !p.Valid() {
		return 0
	}
	return periodTable[p].days
}

// BonusPercent is the bonus paid on withdrawal.
func (p Period) BonusPercent() int64 {
	if !p.Valid() {
		return 0
	}
	return periodTable[p].bonus
}

// BonusRate is BonusPercent as a fraction.
func (p Period) BonusRate() decimal.Decimal {
	return decimal.New(p.BonusPercent(), -2)
}

// Code is the single-byte transferAndCall payload.
func (p Period) Code() []byte { return []byte{byte(p)} }

// Hex is the code as the page wrote it, e.g. 0x01.
func (p Period) Hex() string { return fmt.Sprintf("0x%02x", uint8(p)) }

// UnlockTime is when tokens locked at from become withdrawable.
func (p Period) UnlockTime(from time.Time) time.Time {
	return from.Add(time.Duration(p.Days()) * 24 * time.Hour)
}

// ParsePeriod accepts month counts ("3", "6m", "12mo"), years ("1y"),
// names ("6 months") and contract codes ("0x02").
func ParsePeriod(s string) (Period, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch norm {
	case "3", "3m", "3mo", "3month", "3months", "0x00", "0x0":
		return ThreeMonths, nil
	case "6", "6m", "6mo", "6month", "6months", "0x01", "0x1":
		return SixMonths, nil
	case "12", "12m", "12mo", "12months", "1y", "1yr", "1year", "0x02", "0x2":
		return OneYear, nil
	}
	return 0, fmt.Errorf("%w: %q (want 3m, 6m or 1y)", ErrNoPeriod, s)
}

// SaleType selects one of the two lockup records an account can hold.
type SaleType int

const (
	EarlyLateBird SaleType = iota
	PrivateSale
)

// IsPrivateSale is the boolean the contract methods take.
func (s SaleType) IsPrivateSale() bool { return s == PrivateSale }

func (s SaleType) String() string {
	if s == PrivateSale {
		return "private sale"
	}
	return "early/late bird"
}

// ParseSaleType accepts "bird", "early", "late", "private".
func ParseSaleType(s string) (SaleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bird", "early", "late", "earlybird", "latebird", "early/late", "early-late":
		return EarlyLateBird, nil
	case "private", "privatesale", "private-sale":
		return PrivateSale, nil
	}
	return 0, fmt.Errorf("unknown sale type %q (want bird or private)", s)
}
