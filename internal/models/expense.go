package models

import "github.com/shopspring/decimal"

// ExpenseKind distinguishes ordinary expenses from recorded settlements.
type ExpenseKind string

const (
	ExpenseKindExpense    ExpenseKind = "expense"
	ExpenseKindSettlement ExpenseKind = "settlement"
)

// Expense is money spent on behalf of a group.
//
// Payers record who put money in and Shares record who is responsible for
// it. A settlement between two members is stored as an expense with a single
// payer (the debtor) and a single share (the creditor).
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	GroupID     string
	Description string
	Kind        ExpenseKind

	// Total is the full amount of the expense.
	Total decimal.Decimal

	Payers []ExpensePayer
	Shares []ExpenseShare

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	CreatedAt int64
	UpdatedAt int64
}

// ExpensePayer is the amount one user paid towards an expense.
type ExpensePayer struct {
	UserID string
	Amount decimal.Decimal
}

// ExpenseShare is the amount one user owes for an expense.
type ExpenseShare struct {
	UserID string
	Amount decimal.Decimal
}
