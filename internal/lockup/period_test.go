package lockup_test

import (
	"testing"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodTable(t *testing.T) {
	cases := []struct {
		period lockup.Period
		name   string
		months int
		days   int
		bonus  int64
		hex    string
	}{
		{lockup.ThreeMonths, "3 months", 3, 90, 10, "0x00"},
		{lockup.SixMonths, "6 months", 6, 180, 30, "0x01"},
		{lockup.OneYear, "1 year", 12, 365, 66, "0x02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.period.Valid())
			assert.Equal(t, tc.name, tc.period.String())
			assert.Equal(t, tc.months, tc.period.Months())
			assert.Equal(t, tc.days, tc.period.Days())
			assert.Equal(t, tc.bonus, tc.period.BonusPercent())
			assert.Equal(t, tc.hex, tc.period.Hex())
			assert.Equal(t, []byte{byte(tc.period)}, tc.period.Code())
		})
	}
	assert.Equal(t, []lockup.Period{lockup.ThreeMonths, lockup.SixMonths, lockup.OneYear}, lockup.Periods())
}

func TestUnknownPeriod(t *testing.T) {
	p := lockup.Period(7)
	assert.False(t, p.Valid())
	assert.False(t, lockup.NoPeriod.Valid())
	assert.Equal(t, 0, p.Months())
	assert.Equal(t, int64(0), p.BonusPercent())
	assert.Equal(t, "Period(7)", p.String())
}

func TestUnlockTime(t *testing.T) {
	start := time.Date(2018, 2, 6, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2018, 5, 7, 7, 0, 0, 0, time.UTC), lockup.ThreeMonths.UnlockTime(start))
	assert.Equal(t, time.Date(2019, 2, 6, 7, 0, 0, 0, time.UTC), lockup.OneYear.UnlockTime(start))
}

func TestParsePeriod(t *testing.T) {
	cases := map[string]lockup.Period{
		"3":        lockup.ThreeMonths,
		"3m":       lockup.ThreeMonths,
		"0x00":     lockup.ThreeMonths,
		"6 months": lockup.SixMonths,
		"6MO":      lockup.SixMonths,
		"12":       lockup.OneYear,
		"1y":       lockup.OneYear,
		"0x02":     lockup.OneYear,
	}
	for in, want := range cases {
		got, err := lockup.ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "9", "2y", "0x03"} {
		_, err := lockup.ParsePeriod(bad)
		assert.ErrorIs(t, err, lockup.ErrNoPeriod, bad)
	}
}

func TestParseSaleType(t *testing.T) {
	s, err := lockup.ParseSaleType("bird")
	require.NoError(t, err)
	assert.Equal(t, lockup.EarlyLateBird, s)
	assert.False(t, s.IsPrivateSale())

	s, err = lockup.ParseSaleType("Private")
	require.NoError(t, err)
	assert.True(t, s.IsPrivateSale())
	assert.Equal(t, "private sale", s.String())

	_, err = lockup.ParseSaleType("public")
	assert.Error(t, err)
}
