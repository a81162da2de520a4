package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/internal/storage"
)

const expenseColumns = "e.id, e.group_id, e.description, e.kind, e.total, e.created_by, e.created_at, e.updated_at"

// CreateExpense persists a new expense with its payers and shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.Kind == "" {
		expense.Kind = models.ExpenseKindExpense
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, description, kind, total, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.Description, string(expense.Kind),
			expense.Total.String(), expense.CreatedBy, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		return insertParts(ctx, tx, expense)
	})
}

// insertParts writes the payer and share rows of an expense.
func insertParts(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for _, p := range expense.Payers {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_payers (expense_id, user_id, amount) VALUES (?, ?, ?)",
			expense.ID, p.UserID, p.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense payer: %w", err)
		}
	}

	for _, sh := range expense.Shares {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, amount) VALUES (?, ?, ?)",
			expense.ID, sh.UserID, sh.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID, including payers and shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := queryExpenses(ctx, s.db, "e.id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrExpenseNotFound, expenseID)
	}
	return expenses[0], nil
}

// UpdateExpense replaces an expense's description, total, payers and shares.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE expenses SET description = ?, total = ?, updated_at = ? WHERE id = ?",
			expense.Description, expense.Total.String(), expense.UpdatedAt, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if err := requireAffected(result, storage.ErrExpenseNotFound, expense.ID); err != nil {
			return err
		}

		// Replace payers and shares wholesale
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_payers WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear expense payers: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear expense shares: %w", err)
		}

		return insertParts(ctx, tx, expense)
	})
}

// DeleteExpense removes an expense. Payers and shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(result, storage.ErrExpenseNotFound, expenseID)
}

// ListExpensesByGroup retrieves all expenses of a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return queryExpenses(ctx, s.db, "e.group_id = ?", groupID)
}

// ListExpensesForUser retrieves the expenses of every group the user is a member of.
func (s *SQLiteStore) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return queryExpenses(ctx, s.db,
		"e.group_id IN (SELECT group_id FROM group_members WHERE user_id = ?)",
		userID,
	)
}

// GetGroupLedger reads a group, its members and its expenses in a single
// transaction so the three are consistent with each other.
func (s *SQLiteStore) GetGroupLedger(ctx context.Context, groupID string) (*storage.GroupLedger, error) {
	ledger := &storage.GroupLedger{}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if ledger.Group, err = getGroup(ctx, tx, groupID); err != nil {
			return err
		}
		if ledger.Members, err = listMembers(ctx, tx, groupID); err != nil {
			return err
		}
		if ledger.Expenses, err = queryExpenses(ctx, tx, "e.group_id = ?", groupID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// queryExpenses loads the expenses matching where, then their payers and
// shares with one query each.
func queryExpenses(ctx context.Context, q querier, where string, args ...any) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE `+where+` ORDER BY e.created_at DESC, e.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var kind string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &kind, &e.Total,
			&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Kind = models.ExpenseKind(kind)
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	if err := loadPayers(ctx, q, byID, where, args); err != nil {
		return nil, err
	}
	if err := loadShares(ctx, q, byID, where, args); err != nil {
		return nil, err
	}
	return expenses, nil
}

func loadPayers(ctx context.Context, q querier, byID map[string]*models.Expense, where string, args []any) error {
	rows, err := q.QueryContext(ctx,
		`SELECT p.expense_id, p.user_id, p.amount
		 FROM expense_payers p JOIN expenses e ON e.id = p.expense_id
		 WHERE `+where+` ORDER BY p.user_id`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense payers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var p models.ExpensePayer
		if err := rows.Scan(&expenseID, &p.UserID, &p.Amount); err != nil {
			return fmt.Errorf("failed to scan expense payer: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Payers = append(e.Payers, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense payers: %w", err)
	}
	return nil
}

func loadShares(ctx context.Context, q querier, byID map[string]*models.Expense, where string, args []any) error {
	rows, err := q.QueryContext(ctx,
		`SELECT sh.expense_id, sh.user_id, sh.amount
		 FROM expense_shares sh JOIN expenses e ON e.id = sh.expense_id
		 WHERE `+where+` ORDER BY sh.user_id`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var sh models.ExpenseShare
		if err := rows.Scan(&expenseID, &sh.UserID, &sh.Amount); err != nil {
			return fmt.Errorf("failed to scan expense share: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Shares = append(e.Shares, sh)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return nil
}
