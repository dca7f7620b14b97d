// Package money rounds and formats currency amounts. Amounts are plain
// float64s backed by decimal(10,2) columns, so every arithmetic result is
// rounded to two places before it is stored or compared.
package money

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format renders v as a display string like "KSh 1,234.56".
func Format(v float64) string {
	neg := v < 0
	v = Round2(math.Abs(v))

	whole := int64(v)
	cents := int64(math.Round((v - float64(whole)) * 100))

	grouped := groupThousands(whole)
	s := fmt.Sprintf("KSh %s.%02d", grouped, cents)
	if neg {
		s = "-" + s
	}
	return s
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
