package lockup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MinLockupAmount is the smallest lock the sale accepts, in whole tokens.
var MinLockupAmount = decimal.NewFromInt(625)

// NoPeriod marks a lock request without a chosen period.
const NoPeriod = Period(0xff)

// Lock request errors.
var (
	ErrNoPeriod       = errors.New("no lockup period selected")
	ErrBelowMinimum   = errors.New("amount is below the minimum lockup")
	ErrAboveAvailable = errors.New("amount exceeds the available lockup amount")
	ErrInvalidAmount  = errors.New("invalid token amount")
)

var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// TokensWithBonus returns amount plus the period's bonus.
func TokensWithBonus(amount decimal.Decimal, p Period) decimal.Decimal {
	return amount.Add(amount.Mul(p.BonusRate()))
}

// CheckLockAmount validates a lock request: a period must be chosen and the
// amount must lie in [MinLockupAmount, available].
func CheckLockAmount(amount, available decimal.Decimal, p Period) error {
	if !p.Valid() {
		return ErrNoPeriod
	}
	if amount.LessThan(MinLockupAmount) {
		return fmt.Errorf("%w: %s < %s", ErrBelowMinimum, amount, MinLockupAmount)
	}
	if amount.GreaterThan(available) {
		return fmt.Errorf("%w: %s > %s", ErrAboveAvailable, amount, available)
	}
	return nil
}

// ParseAmount parses a plain decimal token amount such as "625" or "1000.5".
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" || s == "." || !amountPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
