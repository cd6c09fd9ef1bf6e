package lockup

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// State is the client-side mirror of what the contracts report for one
// account. The contracts remain the source of truth.
type State struct {
	Account         common.Address
	TokenBalance    decimal.Decimal
	MaxLockupAmount decimal.Decimal // early/late-bird purchase history
	EventEnded      bool

	EarlyLateBird *Record
	PrivateSale   *Record

	CanWithdrawEarlyLateBird bool
	CanWithdrawPrivateSale   bool
}

// Record returns the record for a sale type, or nil if not loaded.
func (s *State) Record(sale SaleType) *Record {
	if sale.IsPrivateSale() {
		return s.PrivateSale
	}
	return s.EarlyLateBird
}

func (s *State) setRecord(sale SaleType, r *Record) {
	if sale.IsPrivateSale() {
		s.PrivateSale = r
	} else {
		s.EarlyLateBird = r
	}
}

// AvailableLockupAmount is min(max lockup amount, token balance).
func (s *State) AvailableLockupAmount() decimal.Decimal {
	return decimal.Min(s.MaxLockupAmount, s.TokenBalance)
}

// CanLockTokens: the sale is running, the account bought early/late-bird
// tokens and has not locked any yet.
func (s *State) CanLockTokens() bool {
	return !s.EventEnded && s.MaxLockupAmount.IsPositive() && !s.EarlyLateBird.HasTokens()
}

// HasLockedTokens reports whether the record for sale holds tokens.
func (s *State) HasLockedTokens(sale SaleType) bool {
	return s.Record(sale).HasTokens()
}

// CanWithdraw is the contract's last canWithdrawTokens answer for sale.
func (s *State) CanWithdraw(sale SaleType) bool {
	if sale.IsPrivateSale() {
		return s.CanWithdrawPrivateSale
	}
	return s.CanWithdrawEarlyLateBird
}

func (s *State) setCanWithdraw(sale SaleType, v bool) {
	if sale.IsPrivateSale() {
		s.CanWithdrawPrivateSale = v
	} else {
		s.CanWithdrawEarlyLateBird = v
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.EarlyLateBird = s.EarlyLateBird.clone()
	c.PrivateSale = s.PrivateSale.clone()
	return &c
}
