package actions

import (
	"strings"
	"testing"
	"time"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/ai"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

var ref = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func TestDecodeAddExpense(t *testing.T) {
	req := ai.ActionRequest{
		Function: "add_expense",
		Params: map[string]any{
			"date":        "yesterday",
			"amount":      "5k",
			"category":    "Other",
			"description": "chai with friends",
		},
	}

	a, ok := Decode(req, ref).(AddTransaction)
	if !ok {
		t.Fatalf("decoded %T, want AddTransaction", Decode(req, ref))
	}
	if a.Kind != models.KindExpense {
		t.Fatalf("kind = %q", a.Kind)
	}
	if a.Date != "2024-06-14" {
		t.Fatalf("date = %q, want 2024-06-14", a.Date)
	}
	if a.Amount != 5000 {
		t.Fatalf("amount = %v, want 5000", a.Amount)
	}
	if len(a.Warnings) != 0 {
		t.Fatalf("warnings = %v", a.Warnings)
	}
}

func TestDecodeMalformedAmountWarns(t *testing.T) {
	req := ai.ActionRequest{
		Function: "add_income",
		Params: map[string]any{
			"date":        "today",
			"amount":      "a lot",
			"category":    "Salary",
			"description": "bonus",
		},
	}

	a, ok := Decode(req, ref).(AddTransaction)
	if !ok {
		t.Fatal("want AddTransaction")
	}
	if a.Amount != 0 {
		t.Fatalf("amount = %v, want lenient 0", a.Amount)
	}
	if len(a.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one warning", a.Warnings)
	}
}

func TestDecodeUnknownFunction(t *testing.T) {
	rej, ok := Decode(ai.ActionRequest{Function: "transfer_funds"}, ref).(Rejected)
	if !ok {
		t.Fatal("want Rejected")
	}
	if rej.Reason != "Unknown function transfer_funds" {
		t.Fatalf("reason = %q", rej.Reason)
	}
}

func TestDecodeLegacyAliases(t *testing.T) {
	req := ai.ActionRequest{
		Function: "add_expense_db",
		Params: map[string]any{
			"date": "today", "amount": float64(100), "category": "Other", "description": "misc",
		},
	}
	if _, ok := Decode(req, ref).(AddTransaction); !ok {
		t.Fatal("legacy _db alias should decode to AddTransaction")
	}

	if _, ok := Decode(ai.ActionRequest{Function: "predict_recurring_expenses_db"}, ref).(PredictRecurringExpenses); !ok {
		t.Fatal("legacy alias should decode to PredictRecurringExpenses")
	}
}

func TestDecodeMissingParams(t *testing.T) {
	rej, ok := Decode(ai.ActionRequest{
		Function: "add_income",
		Params:   map[string]any{"date": "today", "amount": float64(100)},
	}, ref).(Rejected)
	if !ok {
		t.Fatal("want Rejected")
	}
	if !strings.Contains(rej.Reason, "category") {
		t.Fatalf("reason = %q, want mention of category", rej.Reason)
	}

	if _, ok := Decode(ai.ActionRequest{
		Function: "add_loan",
		Params:   map[string]any{"amount": float64(100000), "source": "bank"},
	}, ref).(Rejected); !ok {
		t.Fatal("partially specified loan should be rejected")
	}
}

func TestDecodeUpdateTransaction(t *testing.T) {
	req := ai.ActionRequest{
		Function: "update_transaction",
		Params: map[string]any{
			"transaction_type": "Expense",
			"transaction_id":   float64(3), // JSON numbers arrive as float64
			"field":            "amount",
			"new_value":        "2k",
		},
	}

	u, ok := Decode(req, ref).(UpdateTransaction)
	if !ok {
		t.Fatal("want UpdateTransaction")
	}
	if u.Kind != models.KindExpense || u.ID != 3 {
		t.Fatalf("target = (%q, %d)", u.Kind, u.ID)
	}
	if u.NewValue != "2000" {
		t.Fatalf("new_value = %q, want normalized 2000", u.NewValue)
	}
	if len(u.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none", u.Warnings)
	}

	req.Params["new_value"] = "garbage"
	u, ok = Decode(req, ref).(UpdateTransaction)
	if !ok {
		t.Fatal("want UpdateTransaction")
	}
	if u.NewValue != "0" {
		t.Fatalf("new_value = %q, want 0", u.NewValue)
	}
	if len(u.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one for an unparsable amount", u.Warnings)
	}

	req.Params["new_value"] = "2k"
	req.Params["transaction_type"] = "loans"
	if _, ok := Decode(req, ref).(Rejected); !ok {
		t.Fatal("invalid transaction type should be rejected")
	}
}

func TestDecodeViewAndSummaryOptionalParams(t *testing.T) {
	v, ok := Decode(ai.ActionRequest{Function: "view_transactions"}, ref).(ViewTransactions)
	if !ok {
		t.Fatal("want ViewTransactions")
	}
	if v.Kind != "" || v.StartDate != "" || v.Limit != 0 {
		t.Fatalf("view = %+v, want zero values", v)
	}

	g, ok := Decode(ai.ActionRequest{
		Function: "get_summary",
		Params:   map[string]any{"start_date": "3 days ago", "end_date": "today"},
	}, ref).(GetSummary)
	if !ok {
		t.Fatal("want GetSummary")
	}
	if g.StartDate != "2024-06-12" || g.EndDate != "2024-06-15" {
		t.Fatalf("summary range = %+v", g)
	}
}

func TestDecodeLoanInterestDefaultTenure(t *testing.T) {
	c, ok := Decode(ai.ActionRequest{
		Function: "calculate_loan_interest",
		Params:   map[string]any{"amount": float64(100000), "interest_rate": float64(10)},
	}, ref).(CalculateLoanInterest)
	if !ok {
		t.Fatal("want CalculateLoanInterest")
	}
	if c.TenureYears != 1 {
		t.Fatalf("tenure = %v, want default 1", c.TenureYears)
	}
}
