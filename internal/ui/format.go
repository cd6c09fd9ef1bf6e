package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Lang selects the date format.
type Lang string

const (
	LangEN Lang = "en"
	LangCN Lang = "cn"
)

// ParseLang accepts en/cn (and zh as cn). Anything else is English.
func ParseLang(s string) Lang {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cn", "zh", "zh-cn":
		return LangCN
	default:
		return LangEN
	}
}

// FormatDate renders t as "February 13, 2018" or "2018年2月13日".
func FormatDate(t time.Time, lang Lang) string {
	if lang == LangCN {
		return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
	}
	return fmt.Sprintf("%s %d, %d", t.Month().String(), t.Day(), t.Year())
}

// FormatAmount inserts thousands separators into the integer part and keeps
// every fractional digit.
func FormatAmount(d decimal.Decimal) string {
	return withCommas(d.String())
}

// FormatTokens is FormatAmount rounded to two places, but only when d has a
// fractional part: 1100 stays "1,100", 1100.5 becomes "1,100.50".
func FormatTokens(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return withCommas(d.Truncate(0).String())
	}
	return withCommas(d.StringFixed(2))
}

func withCommas(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sign + sb.String()
}
