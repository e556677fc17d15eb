package actions

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/ai"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/classify"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/database"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

const testPhone = "911234567890"

func newTestExecutor(t *testing.T) (*Executor, *database.Registry, *database.Users) {
	t.Helper()
	dir := t.TempDir()
	registry, err := database.NewRegistry(dir, classify.NewDefault(), 50)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	users, err := database.NewUsers(filepath.Join(dir, "users.db"))
	if err != nil {
		t.Fatalf("NewUsers: %v", err)
	}
	if _, err := users.Create(testPhone); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	t.Cleanup(func() {
		registry.Close()
		users.Close()
	})
	return NewExecutor(registry, users), registry, users
}

func addExpenseReq(desc string) ai.ActionRequest {
	return ai.ActionRequest{
		Function: "add_expense",
		Params: map[string]any{
			"date": "today", "amount": float64(500), "category": "Other", "description": desc,
		},
	}
}

func TestExecuteTotality(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	reqs := []ai.ActionRequest{
		addExpenseReq("chai"),
		{Function: "bogus"},
		{Function: "add_income"}, // missing everything
		{Function: "get_summary"},
		{Function: "delete_transaction", Params: map[string]any{"transaction_type": "income", "transaction_id": float64(99)}},
	}

	results := e.Execute(testPhone, reqs, time.Now())
	if len(results) != len(reqs) {
		t.Fatalf("got %d results for %d requests", len(results), len(reqs))
	}
	wantStatus := []string{StatusSuccess, StatusError, StatusError, StatusSuccess, StatusError}
	for i, want := range wantStatus {
		if results[i].Status != want {
			t.Fatalf("result[%d].Status = %q, want %q (%+v)", i, results[i].Status, want, results[i])
		}
	}
}

func TestExecuteBadActionDoesNotAffectSiblings(t *testing.T) {
	e, reg, _ := newTestExecutor(t)

	reqs := []ai.ActionRequest{
		addExpenseReq("chai"),
		{Function: "delete_transaction", Params: map[string]any{"transaction_type": "expense", "transaction_id": float64(42)}},
		{Function: "add_income", Params: map[string]any{
			"date": "today", "amount": "50k", "category": "Salary", "description": "salary",
		}},
	}

	results := e.Execute(testPhone, reqs, time.Now())
	if results[0].Status != StatusSuccess || results[1].Status != StatusError || results[2].Status != StatusSuccess {
		t.Fatalf("statuses = %q/%q/%q, want success/error/success",
			results[0].Status, results[1].Status, results[2].Status)
	}
	if results[1].Message != "Transaction not found" {
		t.Fatalf("middle message = %q", results[1].Message)
	}

	// Both valid transactions persisted despite the failure between them.
	store, _ := reg.Store(testPhone)
	listing, err := store.ViewTransactions("", "", "", 0)
	if err != nil {
		t.Fatalf("ViewTransactions: %v", err)
	}
	if len(listing.Expense) != 1 || len(listing.Income) != 1 {
		t.Fatalf("persisted = %d income, %d expense, want 1 and 1", len(listing.Income), len(listing.Expense))
	}
	if listing.Income[0].Amount != 50000 {
		t.Fatalf("income amount = %v, want 50000 from '50k'", listing.Income[0].Amount)
	}
}

func TestExecuteIdentityInjection(t *testing.T) {
	e, reg, _ := newTestExecutor(t)

	// The oracle hallucinates someone else's phone; it must be ignored.
	req := addExpenseReq("chai")
	req.Params["phone"] = "919999999999"

	results := e.Execute(testPhone, []ai.ActionRequest{req}, time.Now())
	if results[0].Status != StatusSuccess {
		t.Fatalf("result = %+v", results[0])
	}

	mine, _ := reg.Store(testPhone)
	listing, _ := mine.ViewTransactions("", "", "", 0)
	if len(listing.Expense) != 1 {
		t.Fatal("transaction missing from the authenticated user's ledger")
	}

	other, _ := reg.Store("919999999999")
	otherListing, _ := other.ViewTransactions("", "", "", 0)
	if !otherListing.Empty() {
		t.Fatal("transaction leaked into the hallucinated phone's ledger")
	}
}

func TestExecuteRepeatBatchDuplicates(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	batch := []ai.ActionRequest{addExpenseReq("netflix")}
	first := e.Execute(testPhone, batch, time.Now())
	second := e.Execute(testPhone, batch, time.Now())

	if first[0].TransactionID == nil || second[0].TransactionID == nil {
		t.Fatal("both executions should return transaction ids")
	}
	// Not idempotent: re-running the batch creates a second transaction.
	if *first[0].TransactionID == *second[0].TransactionID {
		t.Fatalf("ids %d and %d should differ", *first[0].TransactionID, *second[0].TransactionID)
	}
}

func TestExecuteLoanLifecycle(t *testing.T) {
	e, reg, _ := newTestExecutor(t)

	results := e.Execute(testPhone, []ai.ActionRequest{
		{Function: "add_loan", Params: map[string]any{
			"amount": "1.5 lakh", "source": "HDFC", "date_taken": "2024-01-15",
			"interest_rate": float64(10.5), "emi_amount": float64(5000),
		}},
		{Function: "calculate_loan_interest", Params: map[string]any{
			"amount": float64(100000), "interest_rate": float64(10), "tenure_years": float64(2),
		}},
	}, time.Now())

	if results[0].LoanID == nil || *results[0].LoanID != 1 {
		t.Fatalf("loan result = %+v", results[0])
	}
	if results[1].InterestAmount == nil || *results[1].InterestAmount != 20000 {
		t.Fatalf("interest result = %+v", results[1])
	}
	if *results[1].TotalPayable != 120000 {
		t.Fatalf("total payable = %v, want 120000", *results[1].TotalPayable)
	}

	store, _ := reg.Store(testPhone)
	loans, err := store.ActiveLoans()
	if err != nil {
		t.Fatalf("ActiveLoans: %v", err)
	}
	if len(loans) != 1 || loans[0].Amount != 150000 || loans[0].Status != models.LoanActive {
		t.Fatalf("loans = %+v", loans)
	}
}

func TestExecuteProfileActions(t *testing.T) {
	e, reg, users := newTestExecutor(t)

	if err := users.SetPrivacyAccepted(testPhone, true); err != nil {
		t.Fatalf("SetPrivacyAccepted: %v", err)
	}
	e.Execute(testPhone, []ai.ActionRequest{addExpenseReq("chai")}, time.Now())

	results := e.Execute(testPhone, []ai.ActionRequest{
		{Function: "update_user_name", Params: map[string]any{"new_name": "Asha"}},
		{Function: "request_data_deletion"},
	}, time.Now())
	for i, r := range results {
		if r.Status != StatusSuccess {
			t.Fatalf("result[%d] = %+v", i, r)
		}
	}

	store, _ := reg.Store(testPhone)
	listing, _ := store.ViewTransactions("", "", "", 0)
	if !listing.Empty() {
		t.Fatal("ledger should be empty after data deletion")
	}

	user, err := users.Get(testPhone)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user.PrivacyAccepted {
		t.Fatal("privacy acceptance should be reset after data deletion")
	}
}
