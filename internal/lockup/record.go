package lockup

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/shopspring/decimal"
)

// Record mirrors one getLockupRecord result. Zero times mean "none".
type Record struct {
	Value         decimal.Decimal // whole tokens
	Wei           *big.Int
	Period        Period
	EndTime       time.Time
	Withdrawn     bool
	WithdrawnTime time.Time
}

// HasTokens reports whether anything was locked under this record.
func (r *Record) HasTokens() bool {
	return r != nil && r.Value.IsPositive()
}

// TokensWithBonus is what the holder receives on withdrawal.
func (r *Record) TokensWithBonus() decimal.Decimal {
	return TokensWithBonus(r.Value, r.Period)
}

// WithdrawnOrEnd is the date shown for a withdrawn record. Records written
// before the contract tracked withdrawal time fall back to the end time.
func (r *Record) WithdrawnOrEnd() time.Time {
	if !r.WithdrawnTime.IsZero() {
		return r.WithdrawnTime
	}
	return r.EndTime
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Wei != nil {
		c.Wei = new(big.Int).Set(r.Wei)
	}
	return &c
}

// RecordFromOutputs decodes the getLockupRecord outputs
// (uint256 value, uint8 period, uint256 endTime, bool withdrawn, uint256 withdrawnTime).
func RecordFromOutputs(out []interface{}) (*Record, error) {
	if len(out) != 5 {
		return nil, fmt.Errorf("lockup record: want 5 values, got %d", len(out))
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("lockup record: value is %T", out[0])
	}
	code, ok := out[1].(uint8)
	if !ok {
		return nil, fmt.Errorf("lockup record: period is %T", out[1])
	}
	end, ok := out[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("lockup record: end time is %T", out[2])
	}
	withdrawn, ok := out[3].(bool)
	if !ok {
		return nil, fmt.Errorf("lockup record: withdrawn is %T", out[3])
	}
	withdrawnAt, ok := out[4].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("lockup record: withdrawn time is %T", out[4])
	}

	period := Period(code)
	if !period.Valid() {
		return nil, fmt.Errorf("lockup record: unknown period code %d", code)
	}
	return &Record{
		Value:         chain.FromWei(value),
		Wei:           value,
		Period:        period,
		EndTime:       unixOrZero(end),
		Withdrawn:     withdrawn,
		WithdrawnTime: unixOrZero(withdrawnAt),
	}, nil
}

func unixOrZero(v *big.Int) time.Time {
	if v == nil || v.Sign() <= 0 || !v.IsInt64() {
		return time.Time{}
	}
	return time.Unix(v.Int64(), 0)
}
