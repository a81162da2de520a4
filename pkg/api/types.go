package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Group is a set of members sharing expenses.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt int64     `json:"created_at"`
	Members   []*Member `json:"members,omitempty"`
}

// Member is a user's membership in a group.
type Member struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	JoinedAt    int64  `json:"joined_at"`
}

// Portion is one user's part of an expense, either paid or owed.
// Amounts travel as decimal strings ("12.50").
type Portion struct {
	UserID string          `json:"user_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// Expense kinds.
const (
	KindExpense    = "expense"
	KindSettlement = "settlement"
)

// Expense is a recorded payment. Settlements are expenses of kind "settlement"
// with one payer and one sharer.
type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Total       decimal.Decimal `json:"total"`
	Payers      []Portion       `json:"payers"`
	Shares      []Portion       `json:"shares"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

// MemberBalance is a member's standing in a group.
// Net is positive when the group owes the member.
type MemberBalance struct {
	UserID      string          `json:"user_id"`
	DisplayName string          `json:"display_name"`
	Paid        decimal.Decimal `json:"paid"`
	Owed        decimal.Decimal `json:"owed"`
	Net         decimal.Decimal `json:"net"`
}

// Settlement is a suggested payment from one member to another.
type Settlement struct {
	FromUserID string          `json:"from_user_id"`
	FromName   string          `json:"from_name"`
	ToUserID   string          `json:"to_user_id"`
	ToName     string          `json:"to_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// Invitation is an offer to join a group, redeemable by token.
type Invitation struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	InviteeEmail string `json:"invitee_email"`
	Status       string `json:"status"`
	ExpiresAt    int64  `json:"expires_at"`
	AcceptURL    string `json:"accept_url,omitempty"`
}
