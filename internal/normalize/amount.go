package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	lakhRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*lakhs?\b`)
	kRegex    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*k\b`)
)

// Amount resolves a raw amount value (number or shorthand text such as "5k"
// or "1.5 lakh") to a non-negative float. The ok result is false when the
// input could not be parsed and the amount degraded to zero, so callers can
// surface a warning instead of silently persisting a zero.
func Amount(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return amountFromNumber(decimal.NewFromFloat(v))
	case int:
		return amountFromNumber(decimal.NewFromInt(int64(v)))
	case int64:
		return amountFromNumber(decimal.NewFromInt(v))
	case json.Number:
		return amountFromText(v.String())
	case string:
		return amountFromText(v)
	default:
		return amountFromText(fmt.Sprintf("%v", raw))
	}
}

// amountFromNumber rejects negative numeric input the same way the text path
// rejects "-100": the amount degrades to zero with ok=false.
func amountFromNumber(d decimal.Decimal) (float64, bool) {
	if d.IsNegative() {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

func amountFromText(text string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = strings.ReplaceAll(lower, ",", "")
	if lower == "" {
		return 0, false
	}

	if m := lakhRegex.FindStringSubmatch(lower); m != nil {
		base, err := decimal.NewFromString(m[1])
		if err != nil {
			return 0, false
		}
		return clamp(base.Mul(decimal.NewFromInt(100000))), true
	}

	if m := kRegex.FindStringSubmatch(lower); m != nil {
		base, err := decimal.NewFromString(m[1])
		if err != nil {
			return 0, false
		}
		return clamp(base.Mul(decimal.NewFromInt(1000))), true
	}

	d, err := decimal.NewFromString(lower)
	if err != nil {
		return 0, false
	}
	return amountFromNumber(d)
}

func clamp(d decimal.Decimal) float64 {
	if d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	return f
}
