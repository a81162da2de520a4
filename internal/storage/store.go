// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitmoney/internal/models"
)

// GroupLedger is a consistent snapshot of a group's members and expenses,
// everything the balance engine needs for one computation.
type GroupLedger struct {
	Group    *models.Group
	Members  []*models.Member
	Expenses []*models.Expense
}

// Store defines the interface for SplitMoney storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	InvitationStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return ErrNotFound for unknown users.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup persists a new group and makes its creator the first member.
	// The group.ID and group.CreatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns the groups the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup renames a group. Returns ErrNotFound if it does not exist.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group with its memberships, expenses and invitations.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMember is a no-op when the user is already a member.
	AddGroupMember(ctx context.Context, groupID, userID string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	ListGroupMembers(ctx context.Context, groupID string) ([]*models.Member, error)
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)

	// SharesGroup reports whether the two users are members of a common group.
	SharesGroup(ctx context.Context, userID, otherID string) (bool, error)
}

// ExpenseStore persists expenses with their payers and shares.
type ExpenseStore interface {
	// CreateExpense persists a new expense. ID and timestamps are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces the description, total, payers and shares.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup returns a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListExpensesForUser returns the expenses of every group the user belongs to.
	ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// GetGroupLedger reads a group's members and expenses in one transaction.
	GetGroupLedger(ctx context.Context, groupID string) (*GroupLedger, error)
}

// InvitationStore persists group invitations.
type InvitationStore interface {
	CreateInvitation(ctx context.Context, inv *models.Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error)

	// AcceptInvitation adds userID to the invitation's group and marks the
	// invitation accepted, atomically.
	AcceptInvitation(ctx context.Context, invitationID, userID string) error

	// DeleteStaleInvitations removes accepted invitations and those expired at
	// now (Unix seconds), returning how many were removed.
	DeleteStaleInvitations(ctx context.Context, now int64) (int64, error)
}
