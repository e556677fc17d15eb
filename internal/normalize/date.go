// Package normalize contains the lenient parsers that turn the oracle's
// loosely formatted date and amount strings into canonical values. Both
// normalizers substitute a safe default instead of failing: malformed
// auxiliary fields must never sink a whole action.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var daysAgoRegex = regexp.MustCompile(`(\d+)\s*days?\s*ago`)

// relativeDays maps date synonyms to an offset from the reference date.
// "aaj", "kal" and "parso" are the Hindi tokens users actually type.
var relativeDays = map[string]int{
	"today":                0,
	"aaj":                  0,
	"yesterday":            -1,
	"kal":                  -1,
	"tomorrow":             1,
	"day before yesterday": -2,
	"parso":                -2,
}

// absoluteLayouts are tried in order after the relative forms.
var absoluteLayouts = []string{dateLayout, "02/01/2006", "02-01-2006"}

// Date resolves a free-text date expression against a reference date and
// returns YYYY-MM-DD. Unrecognized input falls back to the reference date.
func Date(dateText string, reference time.Time) string {
	lower := strings.ToLower(strings.TrimSpace(dateText))

	if offset, ok := relativeDays[lower]; ok {
		return reference.AddDate(0, 0, offset).Format(dateLayout)
	}

	if m := daysAgoRegex.FindStringSubmatch(lower); m != nil {
		days, _ := strconv.Atoi(m[1])
		return reference.AddDate(0, 0, -days).Format(dateLayout)
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(dateText)); err == nil {
			return t.Format(dateLayout)
		}
	}

	return reference.Format(dateLayout)
}
