package classify

import (
	"regexp"
	"strings"
)

// Catch-all labels returned when no keyword scores.
const (
	OtherExpense = "Other"
	OtherIncome  = "Other Income"
)

// CategoryKeywords binds a category label to its trigger keywords. The
// classifier scans categories in slice order, so for a fixed table the
// tie-break (first highest seen wins) is deterministic.
type CategoryKeywords struct {
	Label    string
	Keywords []string
}

// DefaultCategories is the built-in keyword table.
var DefaultCategories = []CategoryKeywords{
	{"Food & Beverage", []string{"chai", "coffee", "tea", "food", "breakfast", "lunch", "dinner", "restaurant", "cafe", "pizza", "burger"}},
	{"Shopping", []string{"shopping", "clothes", "shirt", "pant", "shoes", "dress", "mall", "online", "amazon"}},
	{"Entertainment", []string{"party", "movie", "netflix", "subscription", "entertainment", "fun"}},
	{"Transport", []string{"uber", "ola", "taxi", "cab", "auto", "petrol", "fuel", "bus", "train", "flight"}},
	{"Bills & Utilities", []string{"electricity", "internet", "wifi", "phone", "recharge", "water", "gas", "rent"}},
	{"Health & Fitness", []string{"medicine", "doctor", "hospital", "pharmacy", "gym", "fitness", "yoga"}},
	{"Groceries", []string{"grocery", "vegetables", "fruits", "milk", "kirana"}},
	{"Salary", []string{"salary", "income", "earning"}},
	{"Investment", []string{"investment", "stock", "mutual", "sip", "fd", "gold", "crypto"}},
}

// incomeCategories are the labels that make sense for income transactions.
// Any other winner is coerced to the income catch-all when classifying income.
var incomeCategories = map[string]bool{
	"Salary":     true,
	"Freelance":  true,
	"Business":   true,
	"Investment": true,
}

// Classifier scores free text against a fixed keyword table. It is pure and
// never fails: unmatched text falls back to a catch-all label.
type Classifier struct {
	categories []CategoryKeywords
	wordRegexp map[string]*regexp.Regexp
}

func New(categories []CategoryKeywords) *Classifier {
	c := &Classifier{
		categories: categories,
		wordRegexp: make(map[string]*regexp.Regexp),
	}
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if _, ok := c.wordRegexp[kw]; !ok {
				c.wordRegexp[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
			}
		}
	}
	return c
}

func NewDefault() *Classifier {
	return New(DefaultCategories)
}

// Classify returns the best-scoring category for text. A whole-word keyword
// match scores 2, a substring match scores 1. For income transactions a
// winner outside the income categories collapses to "Other Income".
func (c *Classifier) Classify(text, transactionKind string) string {
	lower := strings.ToLower(text)

	best := ""
	bestScore := 0
	for _, cat := range c.categories {
		score := 0
		for _, kw := range cat.Keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if c.wordRegexp[kw].MatchString(lower) {
				score += 2
			} else {
				score++
			}
		}
		if score > bestScore {
			best = cat.Label
			bestScore = score
		}
	}

	if bestScore == 0 {
		if transactionKind == "income" {
			return OtherIncome
		}
		return OtherExpense
	}
	if transactionKind == "income" && !incomeCategories[best] {
		return OtherIncome
	}
	return best
}
