package actions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/ai"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/normalize"
)

// aliases maps legacy function spellings the model still occasionally emits
// to their catalog names.
var aliases = map[string]string{
	"add_income_db":                 "add_income",
	"add_expense_db":                "add_expense",
	"update_transaction_db":         "update_transaction",
	"delete_transaction_db":         "delete_transaction",
	"view_transactions_db":          "view_transactions",
	"get_summary_db":                "get_summary",
	"add_loan_db":                   "add_loan",
	"predict_recurring_expenses_db": "predict_recurring_expenses",
}

// Decode converts one oracle action request into a typed Action. Unknown
// functions and missing required parameters yield Rejected; malformed date
// and amount values are normalized leniently instead. Any phone or user id
// the oracle put in the params is discarded: identity comes from the
// authenticated sender only.
func Decode(req ai.ActionRequest, ref time.Time) Action {
	fn := strings.TrimSpace(req.Function)
	if canonical, ok := aliases[fn]; ok {
		fn = canonical
	}

	p := params(req.Params)

	switch fn {
	case "add_income":
		return decodeAdd(models.KindIncome, p, ref)
	case "add_expense":
		return decodeAdd(models.KindExpense, p, ref)

	case "update_transaction":
		kind, id, rej := decodeTarget(fn, p)
		if rej != nil {
			return *rej
		}
		field, ok := p.str("field")
		if !ok {
			return missing(fn, "field")
		}
		value, ok := p.str("new_value")
		if !ok {
			return missing(fn, "new_value")
		}
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "date" {
			value = normalize.Date(value, ref)
		}
		var warnings []string
		if field == "amount" {
			amount, ok := normalize.Amount(p.raw("new_value"))
			if !ok {
				warnings = append(warnings, "amount could not be parsed, recorded as 0")
			}
			value = strconv.FormatFloat(amount, 'f', -1, 64)
		}
		return UpdateTransaction{Kind: kind, ID: id, Field: field, NewValue: value, Warnings: warnings}

	case "delete_transaction":
		kind, id, rej := decodeTarget(fn, p)
		if rej != nil {
			return *rej
		}
		return DeleteTransaction{Kind: kind, ID: id}

	case "view_transactions":
		v := ViewTransactions{}
		if kindStr, ok := p.str("transaction_type"); ok && kindStr != "" {
			v.Kind = models.TransactionKind(strings.ToLower(kindStr))
			if !v.Kind.Valid() {
				return Rejected{Function: fn, Reason: fmt.Sprintf("Invalid transaction type %q", kindStr)}
			}
		}
		if d, ok := p.str("start_date"); ok && d != "" {
			v.StartDate = normalize.Date(d, ref)
		}
		if d, ok := p.str("end_date"); ok && d != "" {
			v.EndDate = normalize.Date(d, ref)
		}
		if n, ok := p.integer("limit"); ok {
			v.Limit = int(n)
		}
		return v

	case "get_summary":
		g := GetSummary{}
		if d, ok := p.str("start_date"); ok && d != "" {
			g.StartDate = normalize.Date(d, ref)
		}
		if d, ok := p.str("end_date"); ok && d != "" {
			g.EndDate = normalize.Date(d, ref)
		}
		return g

	case "add_loan":
		for _, key := range []string{"amount", "source", "date_taken", "interest_rate", "emi_amount"} {
			if !p.has(key) {
				return missing(fn, key)
			}
		}
		loan := AddLoan{}
		var ok bool
		if loan.Amount, ok = normalize.Amount(p.raw("amount")); !ok {
			loan.Warnings = append(loan.Warnings, "loan amount could not be parsed, recorded as 0")
		}
		loan.Source, _ = p.str("source")
		dateTaken, _ := p.str("date_taken")
		loan.DateTaken = normalize.Date(dateTaken, ref)
		loan.InterestRate, _ = p.number("interest_rate")
		loan.EMIAmount, _ = p.number("emi_amount")
		return loan

	case "calculate_loan_interest":
		amount, ok := p.number("amount")
		if !ok {
			return missing(fn, "amount")
		}
		rate, ok := p.number("interest_rate")
		if !ok {
			return missing(fn, "interest_rate")
		}
		tenure, ok := p.number("tenure_years")
		if !ok {
			tenure = 1
		}
		return CalculateLoanInterest{Amount: amount, InterestRate: rate, TenureYears: tenure}

	case "predict_recurring_expenses":
		return PredictRecurringExpenses{}

	case "request_data_deletion":
		return RequestDataDeletion{}

	case "update_user_name":
		name, ok := p.str("new_name")
		if !ok || strings.TrimSpace(name) == "" {
			return missing(fn, "new_name")
		}
		return UpdateUserName{NewName: strings.TrimSpace(name)}

	default:
		return Rejected{Function: fn, Reason: fmt.Sprintf("Unknown function %s", fn)}
	}
}

func decodeAdd(kind models.TransactionKind, p params, ref time.Time) Action {
	fn := "add_income"
	if kind == models.KindExpense {
		fn = "add_expense"
	}
	for _, key := range []string{"date", "amount", "category", "description"} {
		if !p.has(key) {
			return missing(fn, key)
		}
	}

	a := AddTransaction{Kind: kind}
	dateStr, _ := p.str("date")
	a.Date = normalize.Date(dateStr, ref)

	amount, ok := normalize.Amount(p.raw("amount"))
	if !ok {
		a.Warnings = append(a.Warnings, "amount could not be parsed, recorded as 0")
	}
	a.Amount = amount

	a.Category, _ = p.str("category")
	a.Description, _ = p.str("description")
	return a
}

// decodeTarget pulls the (transaction_type, transaction_id) pair shared by
// update and delete.
func decodeTarget(fn string, p params) (models.TransactionKind, int64, *Rejected) {
	kindStr, ok := p.str("transaction_type")
	if !ok {
		r := missing(fn, "transaction_type")
		return "", 0, &r
	}
	kind := models.TransactionKind(strings.ToLower(strings.TrimSpace(kindStr)))
	if !kind.Valid() {
		return "", 0, &Rejected{Function: fn, Reason: fmt.Sprintf("Invalid transaction type %q", kindStr)}
	}
	id, ok := p.integer("transaction_id")
	if !ok {
		r := Rejected{Function: fn, Reason: "Invalid or missing parameter transaction_id"}
		return "", 0, &r
	}
	return kind, id, nil
}

func missing(fn, key string) Rejected {
	return Rejected{Function: fn, Reason: fmt.Sprintf("Missing required parameter %s", key)}
}

// params wraps the oracle's untyped parameter bag with coercing accessors.
// JSON numbers arrive as float64 and the model sometimes stringifies them,
// so every accessor tolerates both.
type params map[string]any

func (p params) has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p params) raw(key string) any {
	return p[key]
}

func (p params) str(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case json.Number:
		return s.String(), true
	case nil:
		return "", false
	default:
		return fmt.Sprintf("%v", s), true
	}
}

func (p params) number(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (p params) integer(key string) (int64, bool) {
	f, ok := p.number(key)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
