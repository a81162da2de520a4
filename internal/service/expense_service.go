package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitmoney/internal/ledger"
	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/internal/storage"
	"github.com/mmynk/splitmoney/pkg/api"
	"github.com/mmynk/splitmoney/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

const settlementDescription = "Settlement"

var (
	errSharesAndSplit     = errors.New("shares and split_equally are mutually exclusive")
	errSplitAmongNoSplit  = errors.New("split_among requires split_equally")
	errSelfSettlement     = errors.New("a settlement needs two different members")
	errSettlementReadOnly = errors.New("settlements cannot be edited; delete and record again")
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// expenseInput is the part shared by create and update requests.
type expenseInput struct {
	Total        decimal.Decimal
	Payers       []api.Portion
	Shares       []api.Portion
	SplitEqually bool
	SplitAmong   []string
}

// CreateExpense validates and records a new expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"total", req.Msg.Total.String(),
		"payers", len(req.Msg.Payers),
		"split_equally", req.Msg.SplitEqually,
	)

	if _, err := groupAccess(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     req.Msg.GroupID,
		Description: strings.TrimSpace(req.Msg.Description),
		Kind:        models.ExpenseKindExpense,
		CreatedBy:   userID,
	}
	err = s.fill(ctx, expense, expenseInput{
		Total:        req.Msg.Total,
		Payers:       req.Msg.Payers,
		Shares:       req.Msg.Shares,
		SplitEqually: req.Msg.SplitEqually,
		SplitAmong:   req.Msg.SplitAmong,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", expense.GroupID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense returns an expense of one of the caller's groups.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	expense, _, err := s.accessibleExpense(ctx, req.Msg.ExpenseID, req.Msg)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense's amounts and description.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	expense, userID, err := s.accessibleExpense(ctx, req.Msg.ExpenseID, req.Msg)
	if err != nil {
		return nil, err
	}
	if expense.Kind == models.ExpenseKindSettlement {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errSettlementReadOnly)
	}

	slog.Info("UpdateExpense request received", "expense_id", expense.ID, "user_id", userID)

	expense.Description = strings.TrimSpace(req.Msg.Description)
	err = s.fill(ctx, expense, expenseInput{
		Total:        req.Msg.Total,
		Payers:       req.Msg.Payers,
		Shares:       req.Msg.Shares,
		SplitEqually: req.Msg.SplitEqually,
		SplitAmong:   req.Msg.SplitAmong,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense or settlement.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	expense, userID, err := s.accessibleExpense(ctx, req.Msg.ExpenseID, req.Msg)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID, "group_id", expense.GroupID, "user_id", userID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListGroupExpenses returns a group's expenses and settlements, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := groupAccess(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListGroupExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("ListGroupExpenses successful", "group_id", req.Msg.GroupID, "count", len(expenses))
	return connect.NewResponse(&api.ListGroupExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// ListMyExpenses returns the expenses of every group the caller belongs to.
func (s *ExpenseService) ListMyExpenses(ctx context.Context, req *connect.Request[api.ListMyExpensesRequest]) (*connect.Response[api.ListMyExpensesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesForUser(ctx, userID)
	if err != nil {
		slog.Error("ListMyExpenses failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	return connect.NewResponse(&api.ListMyExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// RecordSettlement records a payment between two members. The payer's debt
// and the payee's credit both shrink by the amount.
func (s *ExpenseService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := groupAccess(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, err
	}

	from := req.Msg.FromUserID
	if from == "" {
		from = userID
	}
	to := req.Msg.ToUserID
	if from == to {
		return nil, invalidArgument(errSelfSettlement)
	}
	if err := s.requireMembers(ctx, req.Msg.GroupID, []string{from, to}); err != nil {
		return nil, err
	}

	le := ledger.SettlementExpense(ledger.MemberID(from), ledger.MemberID(to), req.Msg.Amount)
	if err := ledger.ValidateExpense(le); err != nil {
		return nil, invalidArgument(err)
	}

	description := strings.TrimSpace(req.Msg.Note)
	if description == "" {
		description = settlementDescription
	}
	expense := &models.Expense{
		GroupID:     req.Msg.GroupID,
		Description: description,
		Kind:        models.ExpenseKindSettlement,
		CreatedBy:   userID,
	}
	applyLedgerExpense(expense, le)

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("RecordSettlement failed", "group_id", expense.GroupID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Settlement recorded",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"from", from,
		"to", to,
		"amount", expense.Total.String(),
	)
	return connect.NewResponse(&api.RecordSettlementResponse{Expense: toAPIExpense(expense)}), nil
}

// accessibleExpense loads an expense from one of the caller's groups.
func (s *ExpenseService) accessibleExpense(ctx context.Context, expenseID string, msg any) (*models.Expense, string, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, "", err
	}
	if err := validateRequest(msg); err != nil {
		return nil, "", err
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, "", storeError(err)
	}
	if _, err := groupAccess(ctx, s.store, expense.GroupID, userID); err != nil {
		return nil, "", err
	}
	return expense, userID, nil
}

// fill computes the payers and shares of an expense from the request and
// validates them against the group.
func (s *ExpenseService) fill(ctx context.Context, expense *models.Expense, in expenseInput) error {
	le := ledger.Expense{
		Kind:   ledger.Kind(expense.Kind),
		Total:  in.Total,
		Payers: make([]ledger.Payer, len(in.Payers)),
	}
	for i, p := range in.Payers {
		le.Payers[i] = ledger.Payer{Member: ledger.MemberID(p.UserID), Amount: p.Amount}
	}

	switch {
	case in.SplitEqually && len(in.Shares) > 0:
		return invalidArgument(errSharesAndSplit)
	case !in.SplitEqually && len(in.SplitAmong) > 0:
		return invalidArgument(errSplitAmongNoSplit)
	case in.SplitEqually:
		among, err := s.splitTargets(ctx, expense.GroupID, in.SplitAmong)
		if err != nil {
			return err
		}
		shares, err := ledger.EqualShares(in.Total, among)
		if err != nil {
			return invalidArgument(err)
		}
		le.Shares = shares
	default:
		le.Shares = make([]ledger.Share, len(in.Shares))
		for i, sh := range in.Shares {
			le.Shares[i] = ledger.Share{Member: ledger.MemberID(sh.UserID), Amount: sh.Amount}
		}
	}

	if err := ledger.ValidateExpense(le); err != nil {
		return invalidArgument(err)
	}
	if err := checkDistinct(le); err != nil {
		return invalidArgument(err)
	}

	ids := make([]string, 0, len(le.Payers)+len(le.Shares))
	for _, p := range le.Payers {
		ids = append(ids, string(p.Member))
	}
	for _, sh := range le.Shares {
		ids = append(ids, string(sh.Member))
	}
	if err := s.requireMembers(ctx, expense.GroupID, ids); err != nil {
		return err
	}

	applyLedgerExpense(expense, le)
	return nil
}

// splitTargets returns the members an equal split covers: the requested ones,
// or everyone currently in the group.
func (s *ExpenseService) splitTargets(ctx context.Context, groupID string, among []string) ([]ledger.MemberID, error) {
	if len(among) > 0 {
		out := make([]ledger.MemberID, len(among))
		for i, id := range among {
			out[i] = ledger.MemberID(id)
		}
		return out, nil
	}

	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]ledger.MemberID, len(members))
	for i, m := range members {
		out[i] = ledger.MemberID(m.UserID)
	}
	return out, nil
}

// requireMembers fails with InvalidArgument if any id is not a current member.
func (s *ExpenseService) requireMembers(ctx context.Context, groupID string, ids []string) error {
	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return storeError(err)
	}
	current := make(map[string]bool, len(members))
	for _, m := range members {
		current[m.UserID] = true
	}

	for _, id := range ids {
		if !current[id] {
			return invalidArgument(fmt.Errorf("user %s is not a member of the group", id))
		}
	}
	return nil
}

// checkDistinct rejects an expense listing the same member twice as payer or
// twice as sharer.
func checkDistinct(e ledger.Expense) error {
	payers := make(map[ledger.MemberID]bool, len(e.Payers))
	for _, p := range e.Payers {
		if payers[p.Member] {
			return fmt.Errorf("payer %s listed more than once", p.Member)
		}
		payers[p.Member] = true
	}
	sharers := make(map[ledger.MemberID]bool, len(e.Shares))
	for _, sh := range e.Shares {
		if sharers[sh.Member] {
			return fmt.Errorf("share for %s listed more than once", sh.Member)
		}
		sharers[sh.Member] = true
	}
	return nil
}
