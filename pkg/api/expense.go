package api

import "github.com/shopspring/decimal"

// CreateExpenseRequest records an expense. Either Shares lists what each
// member owes, or SplitEqually divides Total over SplitAmong (all current
// members when empty).
type CreateExpenseRequest struct {
	GroupID      string          `json:"group_id" validate:"required"`
	Description  string          `json:"description" validate:"max=200"`
	Total        decimal.Decimal `json:"total"`
	Payers       []Portion       `json:"payers" validate:"required,min=1,dive"`
	Shares       []Portion       `json:"shares,omitempty" validate:"dive"`
	SplitEqually bool            `json:"split_equally,omitempty"`
	SplitAmong   []string        `json:"split_among,omitempty" validate:"dive,required"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces an expense's description, total, payers and
// shares. Splitting rules match CreateExpenseRequest.
type UpdateExpenseRequest struct {
	ExpenseID    string          `json:"expense_id" validate:"required"`
	Description  string          `json:"description" validate:"max=200"`
	Total        decimal.Decimal `json:"total"`
	Payers       []Portion       `json:"payers" validate:"required,min=1,dive"`
	Shares       []Portion       `json:"shares,omitempty" validate:"dive"`
	SplitEqually bool            `json:"split_equally,omitempty"`
	SplitAmong   []string        `json:"split_among,omitempty" validate:"dive,required"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

type ListGroupExpensesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListGroupExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type ListMyExpensesRequest struct{}

type ListMyExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// RecordSettlementRequest records that FromUserID paid ToUserID outside the
// app. FromUserID defaults to the caller.
type RecordSettlementRequest struct {
	GroupID    string          `json:"group_id" validate:"required"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note" validate:"max=200"`
}

type RecordSettlementResponse struct {
	Expense *Expense `json:"expense"`
}
