package actions

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/ai"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/database"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/logger"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

// Executor dispatches decoded actions against a user's storage. Execution is
// total: it always returns one result per input request, in input order, and
// a failed action never aborts its siblings.
type Executor struct {
	registry *database.Registry
	users    *database.Users
}

func NewExecutor(registry *database.Registry, users *database.Users) *Executor {
	return &Executor{registry: registry, users: users}
}

// Execute runs reqs in order for the authenticated user. The sender identity
// always comes from phone; anything the oracle claimed is ignored. Executing
// the same batch twice inserts twice: there is no idempotency key.
func (e *Executor) Execute(phone string, reqs []ai.ActionRequest, now time.Time) []Result {
	results := make([]Result, 0, len(reqs))

	store, err := e.registry.Store(phone)
	if err != nil {
		logger.L.Error("Failed to open ledger store", "phone", phone, "error", err)
		for range reqs {
			results = append(results, errorResult("Storage is unavailable, please try again"))
		}
		return results
	}

	for _, req := range reqs {
		action := Decode(req, now)
		results = append(results, e.run(phone, store, action))
	}
	return results
}

func (e *Executor) run(phone string, store *database.Store, action Action) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("Action execution panicked", "phone", phone, "panic", r)
			result = errorResult(fmt.Sprintf("Internal error: %v", r))
		}
	}()

	switch a := action.(type) {
	case Rejected:
		return errorResult(a.Reason)

	case AddTransaction:
		id, err := store.AddTransaction(a.Kind, a.Date, a.Amount, a.Category, a.Description)
		if err != nil {
			return storeError(err)
		}
		msg := "Income added"
		if a.Kind == models.KindExpense {
			msg = "Expense recorded"
		}
		result = successResult(msg)
		result.TransactionID = &id
		result.Warnings = a.Warnings
		return result

	case UpdateTransaction:
		if err := store.UpdateTransaction(a.Kind, a.ID, a.Field, a.NewValue); err != nil {
			return storeError(err)
		}
		result = successResult(fmt.Sprintf("Transaction #%d updated", a.ID))
		result.Warnings = a.Warnings
		return result

	case DeleteTransaction:
		if err := store.DeleteTransaction(a.Kind, a.ID); err != nil {
			return storeError(err)
		}
		return successResult(fmt.Sprintf("Transaction #%d deleted", a.ID))

	case ViewTransactions:
		listing, err := store.ViewTransactions(a.Kind, a.StartDate, a.EndDate, a.Limit)
		if err != nil {
			return storeError(err)
		}
		result = successResult("")
		if listing.Empty() {
			result.Message = "No transactions found"
		}
		result.Listing = listing
		return result

	case GetSummary:
		summary, err := store.Summary(a.StartDate, a.EndDate)
		if err != nil {
			return storeError(err)
		}
		result = successResult("")
		result.Summary = summary
		return result

	case AddLoan:
		id, err := store.AddLoan(a.Amount, a.Source, a.DateTaken, a.InterestRate, a.EMIAmount)
		if err != nil {
			return storeError(err)
		}
		result = successResult("Loan recorded")
		result.LoanID = &id
		result.Warnings = a.Warnings
		return result

	case CalculateLoanInterest:
		interest, total := simpleInterest(a.Amount, a.InterestRate, a.TenureYears)
		result = successResult("")
		result.InterestAmount = &interest
		result.TotalPayable = &total
		return result

	case PredictRecurringExpenses:
		recurring, err := store.RecurringExpenses()
		if err != nil {
			return storeError(err)
		}
		result = successResult("")
		if len(recurring) == 0 {
			result.Message = "No recurring expenses detected yet"
		}
		result.Recurring = recurring
		return result

	case RequestDataDeletion:
		if err := e.registry.DeleteUserData(phone); err != nil {
			return storeError(err)
		}
		// The opt-in must restart too: deletion covers the consent, not
		// just the ledger file.
		if err := e.users.SetPrivacyAccepted(phone, false); err != nil {
			return storeError(err)
		}
		return successResult("All your financial data has been deleted")

	case UpdateUserName:
		if err := e.users.SetName(phone, a.NewName); err != nil {
			return storeError(err)
		}
		return successResult(fmt.Sprintf("Name updated to %s", a.NewName))

	default:
		return errorResult(fmt.Sprintf("Unhandled action %T", action))
	}
}

// simpleInterest computes amount * rate * tenure / 100 with decimal
// arithmetic to avoid float drift on money values.
func simpleInterest(amount, rate, tenureYears float64) (interest, total float64) {
	p := decimal.NewFromFloat(amount)
	i := p.
		Mul(decimal.NewFromFloat(rate)).
		Mul(decimal.NewFromFloat(tenureYears)).
		Div(decimal.NewFromInt(100))
	interest, _ = i.Round(2).Float64()
	total, _ = p.Add(i).Round(2).Float64()
	return interest, total
}

func storeError(err error) Result {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return errorResult("Transaction not found")
	case errors.Is(err, database.ErrInvalidKind):
		return errorResult("Invalid transaction type")
	case errors.Is(err, database.ErrInvalidField):
		return errorResult("Invalid field")
	case errors.Is(err, database.ErrUserNotFound):
		return errorResult("User not found")
	default:
		return errorResult(err.Error())
	}
}
