// Package ledger computes group balances and settles them.
//
// The package is pure: callers load a consistent snapshot of a group's
// members and expenses, and the functions here turn it into per-member net
// balances and a short list of suggested payments. Nothing is persisted and
// nothing is validated on read; ValidateExpense exists for callers that
// accept expenses on write.
//
// All amounts are fixed-point decimals. A member's balance is positive when
// the group owes them money and negative when they owe the group.
package ledger

import "github.com/shopspring/decimal"

// MemberID identifies a member within a group.
type MemberID string

// Kind distinguishes ordinary expenses from recorded settlement payments.
type Kind string

const (
	KindExpense    Kind = "expense"
	KindSettlement Kind = "settlement"
)

// Payer is a member's contribution towards an expense.
type Payer struct {
	Member MemberID
	Amount decimal.Decimal
}

// Share is the amount a member owes for an expense.
type Share struct {
	Member MemberID
	Amount decimal.Decimal
}

// Expense is the minimal expense view needed for balance calculations.
type Expense struct {
	ID     string
	Kind   Kind
	Total  decimal.Decimal
	Payers []Payer
	Shares []Share
}

// Balances maps each member to their signed net balance.
type Balances map[MemberID]decimal.Decimal

// Transaction is a suggested payment from a debtor to a creditor.
type Transaction struct {
	From   MemberID
	To     MemberID
	Amount decimal.Decimal
}

// MemberInfo is the display form of a member.
type MemberInfo struct {
	ID   MemberID
	Name string
}

// ResolvedTransaction is a Transaction with both parties resolved for display.
type ResolvedTransaction struct {
	From   MemberInfo
	To     MemberInfo
	Amount decimal.Decimal
}
