// Package format renders executed action results into the conversational
// reply sent back over WhatsApp.
package format

import (
	"fmt"
	"strings"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/actions"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

// Results renders each result's applicable templates in input order, then
// appends error messages as a trailing issues block so partial successes are
// never hidden by a failed sibling. An empty result list yields empty text.
func Results(results []actions.Result) string {
	var sb strings.Builder
	var issues []string

	for _, r := range results {
		if r.Status == actions.StatusError {
			issues = append(issues, r.Message)
			continue
		}

		if r.Message != "" {
			fmt.Fprintf(&sb, "%s\n", r.Message)
		}
		if r.TransactionID != nil {
			fmt.Fprintf(&sb, "ID: %d\n", *r.TransactionID)
		}
		if r.LoanID != nil {
			fmt.Fprintf(&sb, "Loan ID: %d\n", *r.LoanID)
		}
		if r.InterestAmount != nil {
			fmt.Fprintf(&sb, "Interest: %.2f\n", *r.InterestAmount)
		}
		if r.TotalPayable != nil {
			fmt.Fprintf(&sb, "Total payable: %.2f\n", *r.TotalPayable)
		}
		if r.Listing != nil && !r.Listing.Empty() {
			writeListing(&sb, r.Listing)
		}
		if r.Summary != nil {
			writeSummary(&sb, r.Summary)
		}
		if len(r.Recurring) > 0 {
			writeRecurring(&sb, r.Recurring)
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "Note: %s\n", w)
		}
	}

	if len(issues) > 0 {
		sb.WriteString("Issues:\n")
		for _, msg := range issues {
			fmt.Fprintf(&sb, "- %s\n", msg)
		}
	}

	return sb.String()
}

func writeListing(sb *strings.Builder, listing *models.TransactionListing) {
	if len(listing.Income) > 0 {
		sb.WriteString("Income:\n")
		for _, tx := range listing.Income {
			writeTransaction(sb, tx)
		}
	}
	if len(listing.Expense) > 0 {
		sb.WriteString("Expenses:\n")
		for _, tx := range listing.Expense {
			writeTransaction(sb, tx)
		}
	}
}

func writeTransaction(sb *strings.Builder, tx models.Transaction) {
	fmt.Fprintf(sb, "  #%d %s %.2f %s", tx.ID, tx.Date, tx.Amount, tx.Category)
	if tx.Description != "" {
		fmt.Fprintf(sb, " - %s", tx.Description)
	}
	sb.WriteString("\n")
}

func writeSummary(sb *strings.Builder, s *models.Summary) {
	switch {
	case s.StartDate != "" && s.EndDate != "":
		fmt.Fprintf(sb, "Summary (%s to %s):\n", s.StartDate, s.EndDate)
	case s.StartDate != "":
		fmt.Fprintf(sb, "Summary (since %s):\n", s.StartDate)
	case s.EndDate != "":
		fmt.Fprintf(sb, "Summary (until %s):\n", s.EndDate)
	default:
		sb.WriteString("Summary (all time):\n")
	}
	fmt.Fprintf(sb, "  Income: %.2f\n", s.TotalIncome)
	fmt.Fprintf(sb, "  Expense: %.2f\n", s.TotalExpense)
	fmt.Fprintf(sb, "  Balance: %.2f\n", s.Balance)
	if len(s.ByCategory) > 0 {
		sb.WriteString("  Top categories:\n")
		for i, ca := range s.ByCategory {
			if i == 3 {
				break
			}
			fmt.Fprintf(sb, "    %s: %.2f\n", ca.Category, ca.Amount)
		}
	}
}

func writeRecurring(sb *strings.Builder, recurring []models.RecurringExpense) {
	sb.WriteString("Predicted recurring expenses:\n")
	for _, re := range recurring {
		fmt.Fprintf(sb, "  %s (%s): ~%.2f/month, seen in %d months\n",
			re.Description, re.Category, re.AverageAmount, re.MonthsSeen)
	}
}
