package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

// LedgerReader is the slice of the transaction store the prompt builder
// needs. Prompt building is not best-effort: a storage failure propagates,
// because an incomplete prompt silently degrades the model's output.
type LedgerReader interface {
	MonthSummary(ref time.Time) (*models.Summary, error)
	ActiveLoans() ([]models.Loan, error)
	RecentTransactions(limit int) ([]models.Transaction, error)
	ConversationHistory(limit int) ([]models.ConversationTurn, error)
}

const promptHeader = `You are a Finance Manager Bot for WhatsApp. You help the user track income, expenses and loans through short conversational messages.

CURRENT DATE: %s
YESTERDAY: %s
TOMORROW: %s
USER: %s
`

const promptCatalog = `AVAILABLE FUNCTIONS:
1. add_income(date, amount, category, description)
2. add_expense(date, amount, category, description)
3. update_transaction(transaction_type, transaction_id, field, new_value) - field is one of date, amount, category, description
4. delete_transaction(transaction_type, transaction_id)
5. view_transactions(transaction_type, start_date, end_date, limit) - all params optional
6. get_summary(start_date, end_date) - both params optional
7. add_loan(amount, source, date_taken, interest_rate, emi_amount) - all five required
8. calculate_loan_interest(amount, interest_rate, tenure_years)
9. predict_recurring_expenses()
10. request_data_deletion()
11. update_user_name(new_name)

Respond with ONLY a JSON object of this exact shape:
{"actions": [{"function": "name", "params": {...}}], "response_text": "reply to the user"}

Rules:
- "actions" may be empty if the message needs no data operation.
- Dates may be relative ("yesterday", "3 days ago"); they will be resolved.
- Amounts may use shorthand ("5k", "1.5 lakh"); they will be resolved.
- Do NOT wrap the response in code fences or Markdown. Output raw JSON only.
`

// PromptBuilder assembles the system prompt from the user's current
// financial state. Recomputed on every inbound message; nothing is cached.
type PromptBuilder struct {
	recentLimit int
}

func NewPromptBuilder(recentLimit int) *PromptBuilder {
	return &PromptBuilder{recentLimit: recentLimit}
}

func (b *PromptBuilder) Build(ref time.Time, userName string, ledger LedgerReader) (string, error) {
	summary, err := ledger.MonthSummary(ref)
	if err != nil {
		return "", fmt.Errorf("build prompt: month summary: %w", err)
	}
	loans, err := ledger.ActiveLoans()
	if err != nil {
		return "", fmt.Errorf("build prompt: active loans: %w", err)
	}
	recent, err := ledger.RecentTransactions(b.recentLimit)
	if err != nil {
		return "", fmt.Errorf("build prompt: recent transactions: %w", err)
	}
	history, err := ledger.ConversationHistory(b.recentLimit)
	if err != nil {
		return "", fmt.Errorf("build prompt: conversation history: %w", err)
	}

	var sb strings.Builder
	dateFmt := "2006-01-02"
	fmt.Fprintf(&sb, promptHeader,
		ref.Format(dateFmt),
		ref.AddDate(0, 0, -1).Format(dateFmt),
		ref.AddDate(0, 0, 1).Format(dateFmt),
		userName,
	)

	fmt.Fprintf(&sb, "\nTHIS MONTH: income %.2f, expense %.2f, balance %.2f\n",
		summary.TotalIncome, summary.TotalExpense, summary.Balance)
	if len(summary.ByCategory) > 0 {
		sb.WriteString("TOP EXPENSE CATEGORIES:\n")
		for i, ca := range summary.ByCategory {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sb, "  %s: %.2f\n", ca.Category, ca.Amount)
		}
	}

	sb.WriteString("\nACTIVE LOANS:\n")
	if len(loans) == 0 {
		sb.WriteString("  No active loans\n")
	}
	for _, l := range loans {
		fmt.Fprintf(&sb, "  #%d: %.2f from %s, %.2f%% p.a., EMI %.2f, taken %s\n",
			l.ID, l.Amount, l.Source, l.InterestRate, l.EMIAmount, l.DateTaken)
	}

	sb.WriteString("\nRECENT TRANSACTIONS:\n")
	if len(recent) == 0 {
		sb.WriteString("  No transactions yet\n")
	}
	for _, tx := range recent {
		fmt.Fprintf(&sb, "  [%s #%d] %s %.2f %s - %s\n",
			tx.Kind, tx.ID, tx.Date, tx.Amount, tx.Category, tx.Description)
	}

	sb.WriteString("\nRECENT CONVERSATION:\n")
	if len(history) == 0 {
		sb.WriteString("  No conversation yet\n")
	}
	for _, turn := range history {
		fmt.Fprintf(&sb, "  %s: %s\n", turn.Role, turn.Message)
	}

	sb.WriteString("\n")
	sb.WriteString(promptCatalog)
	return sb.String(), nil
}
