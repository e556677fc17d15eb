// Package actions is the deterministic contract layer between the oracle's
// loosely typed output and the transaction store. Decode converts each
// function-name-plus-param-bag into one of a closed set of typed actions (or
// Rejected), and the Executor dispatches them in order, capturing failures
// per action.
package actions

import (
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

// Action is one decoded operation from the catalog. The set of
// implementations is closed; unknown or malformed input decodes to Rejected.
type Action interface {
	isAction()
}

// Rejected is the decode failure variant: the action never reaches storage
// and surfaces as a per-action error result.
type Rejected struct {
	Function string
	Reason   string
}

// AddTransaction covers add_income and add_expense.
type AddTransaction struct {
	Kind        models.TransactionKind
	Date        string
	Amount      float64
	Category    string
	Description string
	Warnings    []string
}

type UpdateTransaction struct {
	Kind     models.TransactionKind
	ID       int64
	Field    string
	NewValue string
	Warnings []string
}

type DeleteTransaction struct {
	Kind models.TransactionKind
	ID   int64
}

type ViewTransactions struct {
	Kind      models.TransactionKind // empty means both
	StartDate string
	EndDate   string
	Limit     int
}

type GetSummary struct {
	StartDate string
	EndDate   string
}

type AddLoan struct {
	Amount       float64
	Source       string
	DateTaken    string
	InterestRate float64
	EMIAmount    float64
	Warnings     []string
}

type CalculateLoanInterest struct {
	Amount       float64
	InterestRate float64
	TenureYears  float64
}

type PredictRecurringExpenses struct{}

type RequestDataDeletion struct{}

type UpdateUserName struct {
	NewName string
}

func (Rejected) isAction()                 {}
func (AddTransaction) isAction()           {}
func (UpdateTransaction) isAction()        {}
func (DeleteTransaction) isAction()        {}
func (ViewTransactions) isAction()         {}
func (GetSummary) isAction()               {}
func (AddLoan) isAction()                  {}
func (CalculateLoanInterest) isAction()    {}
func (PredictRecurringExpenses) isAction() {}
func (RequestDataDeletion) isAction()      {}
func (UpdateUserName) isAction()           {}

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one executed action. Optional payload fields
// drive which templates the response formatter applies.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	TransactionID  *int64                     `json:"transaction_id,omitempty"`
	LoanID         *int64                     `json:"loan_id,omitempty"`
	InterestAmount *float64                   `json:"interest_amount,omitempty"`
	TotalPayable   *float64                   `json:"total_payable,omitempty"`
	Listing        *models.TransactionListing `json:"transactions,omitempty"`
	Summary        *models.Summary            `json:"summary,omitempty"`
	Recurring      []models.RecurringExpense  `json:"recurring,omitempty"`
	Warnings       []string                   `json:"warnings,omitempty"`
}

func successResult(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

func errorResult(message string) Result {
	return Result{Status: StatusError, Message: message}
}
