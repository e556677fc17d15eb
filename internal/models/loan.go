package models

// Loan statuses. Loans are append-only: they are created active and the core
// defines no update or delete operation for them.
const (
	LoanActive = "active"
	LoanClosed = "closed"
)

type Loan struct {
	ID           int64   `json:"id"`
	Amount       float64 `json:"amount"`
	Source       string  `json:"source"`
	DateTaken    string  `json:"date_taken"` // YYYY-MM-DD
	InterestRate float64 `json:"interest_rate"`
	EMIAmount    float64 `json:"emi_amount"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}
