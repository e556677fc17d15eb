package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/classify"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

var (
	ErrNotFound     = errors.New("transaction not found")
	ErrInvalidKind  = errors.New("invalid transaction type")
	ErrInvalidField = errors.New("invalid field")
)

// Store is one user's ledger: income, expenses, loans and bounded chat
// history, backed by a dedicated sqlite file.
type Store struct {
	db         *sql.DB
	classifier *classify.Classifier
	maxHistory int
}

// NewStore opens (and migrates) the ledger database at dbPath.
func NewStore(dbPath string, classifier *classify.Classifier, maxHistory int) (*Store, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := migrateLedger(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Store{db: db, classifier: classifier, maxHistory: maxHistory}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddTransaction inserts an income or expense record and returns its id.
// When category is missing or the generic placeholder, the classifier
// resolves it from the description so no transaction persists uncategorized.
func (s *Store) AddTransaction(kind models.TransactionKind, date string, amount float64, category, description string) (int64, error) {
	if !kind.Valid() {
		return 0, ErrInvalidKind
	}

	if isPlaceholderCategory(category) {
		category = s.classifier.Classify(description, string(kind))
	}

	result, err := s.db.Exec(
		fmt.Sprintf(`INSERT INTO %s (date, amount, category, description) VALUES (?, ?, ?, ?)`, kind),
		date, amount, category, description,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func isPlaceholderCategory(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	return c == "" || c == "other" || c == "other income"
}

// UpdateTransaction sets one field of an existing record. Only the fields in
// models.UpdatableFields may be touched.
func (s *Store) UpdateTransaction(kind models.TransactionKind, id int64, field, newValue string) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	if !models.UpdatableFields[field] {
		return ErrInvalidField
	}

	var exists int
	err := s.db.QueryRow(fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, kind), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf(`UPDATE %s SET %s = ? WHERE id = ?`, kind, field), newValue, id)
	return err
}

func (s *Store) DeleteTransaction(kind models.TransactionKind, id int64) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}

	result, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, kind), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ViewTransactions lists records filtered by kind and date range. An empty
// kind returns both ledgers; zero limit means no limit.
func (s *Store) ViewTransactions(kind models.TransactionKind, startDate, endDate string, limit int) (*models.TransactionListing, error) {
	kinds := []models.TransactionKind{models.KindIncome, models.KindExpense}
	if kind != "" {
		if !kind.Valid() {
			return nil, ErrInvalidKind
		}
		kinds = []models.TransactionKind{kind}
	}

	listing := &models.TransactionListing{}
	for _, k := range kinds {
		query := fmt.Sprintf(`SELECT id, date, amount, category, description, created_at FROM %s`, k)
		var conds []string
		var args []any
		if startDate != "" {
			conds = append(conds, "date >= ?")
			args = append(args, startDate)
		}
		if endDate != "" {
			conds = append(conds, "date <= ?")
			args = append(args, endDate)
		}
		if len(conds) > 0 {
			query += " WHERE " + strings.Join(conds, " AND ")
		}
		query += " ORDER BY date DESC, id DESC"
		if limit > 0 {
			query += " LIMIT ?"
			args = append(args, limit)
		}

		rows, err := s.db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		txs, err := scanTransactions(rows, k)
		if err != nil {
			return nil, err
		}
		if k == models.KindIncome {
			listing.Income = txs
		} else {
			listing.Expense = txs
		}
	}
	return listing, nil
}

func scanTransactions(rows *sql.Rows, kind models.TransactionKind) ([]models.Transaction, error) {
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx := models.Transaction{Kind: kind}
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Amount, &tx.Category, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// RecentTransactions returns the latest records across both ledgers,
// interleaved and most-recent-first.
func (s *Store) RecentTransactions(limit int) ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT kind, id, date, amount, category, description, created_at FROM (
			SELECT 'income' AS kind, id, date, amount, category, description, created_at FROM income
			UNION ALL
			SELECT 'expense' AS kind, id, date, amount, category, description, created_at FROM expense
		)
		ORDER BY date DESC, created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.Kind, &tx.ID, &tx.Date, &tx.Amount, &tx.Category, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Summary aggregates totals and the expense category breakdown over a date
// range. Empty bounds mean all time.
func (s *Store) Summary(startDate, endDate string) (*models.Summary, error) {
	summary := &models.Summary{StartDate: startDate, EndDate: endDate}

	dateCond, args := dateRangeCond(startDate, endDate)

	err := s.db.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM income`+dateCond, args...).Scan(&summary.TotalIncome)
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM expense`+dateCond, args...).Scan(&summary.TotalExpense)
	if err != nil {
		return nil, err
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense

	rows, err := s.db.Query(`
		SELECT category, SUM(amount) AS total FROM expense`+dateCond+`
		GROUP BY category
		ORDER BY total DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ca models.CategoryAmount
		if err := rows.Scan(&ca.Category, &ca.Amount); err != nil {
			return nil, err
		}
		summary.ByCategory = append(summary.ByCategory, ca)
	}
	return summary, rows.Err()
}

func dateRangeCond(startDate, endDate string) (string, []any) {
	var conds []string
	var args []any
	if startDate != "" {
		conds = append(conds, "date >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		conds = append(conds, "date <= ?")
		args = append(args, endDate)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// MonthSummary aggregates the calendar month containing ref.
func (s *Store) MonthSummary(ref time.Time) (*models.Summary, error) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)
	return s.Summary(first.Format("2006-01-02"), last.Format("2006-01-02"))
}

func (s *Store) AddLoan(amount float64, source, dateTaken string, interestRate, emiAmount float64) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO loans (amount, source, date_taken, interest_rate, emi_amount, status) VALUES (?, ?, ?, ?, ?, ?)`,
		amount, source, dateTaken, interestRate, emiAmount, models.LoanActive,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) ActiveLoans() ([]models.Loan, error) {
	rows, err := s.db.Query(`
		SELECT id, amount, source, date_taken, interest_rate, emi_amount, status, created_at
		FROM loans WHERE status = ? ORDER BY id ASC
	`, models.LoanActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.Amount, &l.Source, &l.DateTaken, &l.InterestRate, &l.EMIAmount, &l.Status, &l.CreatedAt); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// AppendConversation stores one turn and evicts the oldest turn beyond the
// history cap in the same transaction, so history never observably exceeds
// the cap.
func (s *Store) AppendConversation(role, message string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO chat_history (role, message) VALUES (?, ?)`, role, message); err != nil {
		return err
	}
	_, err = tx.Exec(`
		DELETE FROM chat_history
		WHERE id NOT IN (SELECT id FROM chat_history ORDER BY id DESC LIMIT ?)
	`, s.maxHistory)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ConversationHistory returns up to limit most recent turns in chronological
// order. Zero limit falls back to the history cap.
func (s *Store) ConversationHistory(limit int) ([]models.ConversationTurn, error) {
	if limit <= 0 {
		limit = s.maxHistory
	}
	rows, err := s.db.Query(`
		SELECT id, role, message FROM chat_history ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var turn models.ConversationTurn
		if err := rows.Scan(&turn.Sequence, &turn.Role, &turn.Message); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// RecurringExpenses predicts monthly recurring costs: expenses whose
// description repeats across at least two distinct calendar months.
func (s *Store) RecurringExpenses() ([]models.RecurringExpense, error) {
	rows, err := s.db.Query(`
		SELECT description, category,
		       COUNT(DISTINCT substr(date, 1, 7)) AS months_seen,
		       AVG(amount) AS avg_amount
		FROM expense
		WHERE description != ''
		GROUP BY lower(description)
		HAVING months_seen >= 2
		ORDER BY avg_amount DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recurring []models.RecurringExpense
	for rows.Next() {
		var re models.RecurringExpense
		if err := rows.Scan(&re.Description, &re.Category, &re.MonthsSeen, &re.AverageAmount); err != nil {
			return nil, err
		}
		recurring = append(recurring, re)
	}
	return recurring, rows.Err()
}
