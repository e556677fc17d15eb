package models

// TransactionKind selects which ledger table a transaction lives in.
// Identifiers are only unique within a (user, kind) pair.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k names one of the two ledger tables.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is a single income or expense record in a user's ledger.
type Transaction struct {
	ID          int64           `json:"id"`
	Kind        TransactionKind `json:"kind"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

// TransactionListing groups transactions by kind for a view query.
type TransactionListing struct {
	Income  []Transaction `json:"income"`
	Expense []Transaction `json:"expense"`
}

// Empty reports whether the listing contains no transactions at all.
func (l *TransactionListing) Empty() bool {
	return len(l.Income) == 0 && len(l.Expense) == 0
}

// UpdatableFields is the subset of transaction fields an update action may touch.
var UpdatableFields = map[string]bool{
	"date":        true,
	"amount":      true,
	"category":    true,
	"description": true,
}
