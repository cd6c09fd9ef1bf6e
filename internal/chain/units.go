package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the precision of MDT and ether alike.
const TokenDecimals = 18

// FromWei converts a base-unit amount to whole tokens.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -TokenDecimals)
}

// ToWei converts whole tokens to base units, truncating below 18 decimals.
func ToWei(tokens decimal.Decimal) *big.Int {
	return tokens.Shift(TokenDecimals).Truncate(0).BigInt()
}

// WeiToETH renders a base-unit amount with full 18-decimal precision.
func WeiToETH(wei *big.Int) string {
	return FromWei(wei).StringFixed(TokenDecimals)
}
