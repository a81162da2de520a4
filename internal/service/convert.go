package service

import (
	"github.com/mmynk/splitmoney/internal/ledger"
	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group, members []*models.Member) *api.Group {
	out := &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
	if len(members) > 0 {
		out.Members = toAPIMembers(members)
	}
	return out
}

func toAPIMembers(members []*models.Member) []*api.Member {
	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = &api.Member{
			UserID:      m.UserID,
			Email:       m.Email,
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt,
		}
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Kind:        string(e.Kind),
		Total:       e.Total,
		Payers:      make([]api.Portion, len(e.Payers)),
		Shares:      make([]api.Portion, len(e.Shares)),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for i, p := range e.Payers {
		out.Payers[i] = api.Portion{UserID: p.UserID, Amount: p.Amount}
	}
	for i, s := range e.Shares {
		out.Shares[i] = api.Portion{UserID: s.UserID, Amount: s.Amount}
	}
	return out
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPIInvitation(inv *models.Invitation, acceptURL string) *api.Invitation {
	return &api.Invitation{
		ID:           inv.ID,
		GroupID:      inv.GroupID,
		InviteeEmail: inv.InviteeEmail,
		Status:       string(inv.Status),
		ExpiresAt:    inv.ExpiresAt,
		AcceptURL:    acceptURL,
	}
}

// toLedgerExpense converts a stored expense into the engine's view.
func toLedgerExpense(e *models.Expense) ledger.Expense {
	out := ledger.Expense{
		ID:     e.ID,
		Kind:   ledger.Kind(e.Kind),
		Total:  e.Total,
		Payers: make([]ledger.Payer, len(e.Payers)),
		Shares: make([]ledger.Share, len(e.Shares)),
	}
	for i, p := range e.Payers {
		out.Payers[i] = ledger.Payer{Member: ledger.MemberID(p.UserID), Amount: p.Amount}
	}
	for i, s := range e.Shares {
		out.Shares[i] = ledger.Share{Member: ledger.MemberID(s.UserID), Amount: s.Amount}
	}
	return out
}

// applyLedgerExpense copies the engine's amounts onto a stored expense.
func applyLedgerExpense(dst *models.Expense, le ledger.Expense) {
	dst.Total = le.Total
	dst.Payers = make([]models.ExpensePayer, len(le.Payers))
	for i, p := range le.Payers {
		dst.Payers[i] = models.ExpensePayer{UserID: string(p.Member), Amount: p.Amount}
	}
	dst.Shares = make([]models.ExpenseShare, len(le.Shares))
	for i, s := range le.Shares {
		dst.Shares[i] = models.ExpenseShare{UserID: string(s.Member), Amount: s.Amount}
	}
}
