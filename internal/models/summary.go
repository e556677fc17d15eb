package models

// CategoryAmount is one row of an expense-by-category breakdown.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Summary aggregates a user's ledger over a date range.
type Summary struct {
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	TotalIncome  float64          `json:"total_income"`
	TotalExpense float64          `json:"total_expense"`
	Balance      float64          `json:"balance"`
	ByCategory   []CategoryAmount `json:"by_category"`
}

// RecurringExpense is a predicted monthly cost derived from expenses that
// repeat across distinct calendar months.
type RecurringExpense struct {
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	MonthsSeen    int     `json:"months_seen"`
	AverageAmount float64 `json:"average_amount"`
}
