package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitmoney/internal/ledger"
	"github.com/mmynk/splitmoney/internal/metrics"
	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/internal/storage"
	"github.com/mmynk/splitmoney/pkg/api"
	"github.com/mmynk/splitmoney/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

var errOutstandingBalance = errors.New("member must settle their balance before leaving the group")

// GroupOptions configures a GroupService.
type GroupOptions struct {
	// Tolerance is the largest absolute balance treated as settled.
	Tolerance decimal.Decimal

	// InvitationTTL is how long an invitation can be accepted.
	InvitationTTL time.Duration

	// InviteBaseURL prefixes accept links returned by InviteMember.
	InviteBaseURL string

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// DefaultGroupOptions returns the options used when none are configured.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{
		Tolerance:     ledger.DefaultTolerance,
		InvitationTTL: 24 * time.Hour,
		InviteBaseURL: "http://localhost:8080",
	}
}

// GroupService implements the Connect GroupService.
type GroupService struct {
	store      storage.Store
	simplifier ledger.Simplifier
	opts       GroupOptions
	now        func() time.Time
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, opts GroupOptions) *GroupService {
	return &GroupService{
		store:      store,
		simplifier: ledger.Simplifier{Tolerance: opts.Tolerance},
		opts:       opts,
		now:        time.Now,
	}
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	group := &models.Group{Name: req.Msg.Name, CreatedBy: userID}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storeError(err)
	}

	members, err := s.store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to list members of new group", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, members)}), nil
}

// GetGroup returns a group with its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := groupAccess(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group, members)}), nil
}

// ListGroups returns the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g, nil)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup renames a group. Only its creator may do so.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := s.ownedGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	group.Name = req.Msg.Name
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group updated", "group_id", group.ID)
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(group, nil)}), nil
}

// DeleteGroup removes a group with all of its expenses. Only its creator may do so.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := s.ownedGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// ListMembers returns a group's members.
func (s *GroupService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
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

	members, err := s.store.ListGroupMembers(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storeError(err)
	}

	return connect.NewResponse(&api.ListMembersResponse{Members: toAPIMembers(members)}), nil
}

// RemoveMember removes a member whose balance is settled. Members may leave
// on their own; the creator may remove others but cannot leave.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := groupAccess(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	target := req.Msg.UserID
	switch {
	case target == group.CreatedBy:
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("the group creator cannot be removed"))
	case target != userID && userID != group.CreatedBy:
		return nil, connect.NewError(connect.CodePermissionDenied, errNotOwner)
	}

	snapshot, err := s.store.GetGroupLedger(ctx, group.ID)
	if err != nil {
		slog.Error("RemoveMember failed to load ledger", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}
	view := newLedgerView(snapshot)
	if net := view.balances()[ledger.MemberID(target)]; net.Abs().GreaterThan(s.opts.Tolerance) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("%w (balance %s)", errOutstandingBalance, net.StringFixed(2)))
	}

	if err := s.store.RemoveGroupMember(ctx, group.ID, target); err != nil {
		slog.Error("RemoveMember failed", "group_id", group.ID, "member_id", target, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Member removed", "group_id", group.ID, "member_id", target, "by", userID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// GetGroupBalances returns each member's paid, owed and net amounts.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	view, err := s.loadLedger(ctx, req.Msg.GroupID, req.Msg)
	if err != nil {
		return nil, err
	}

	balances := s.memberBalances(ctx, view)
	slog.Info("GetGroupBalances successful", "group_id", req.Msg.GroupID, "members", len(balances))
	return connect.NewResponse(&api.GetGroupBalancesResponse{Balances: balances}), nil
}

// GetGroupSummary returns the payments that would settle the group.
func (s *GroupService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	view, err := s.loadLedger(ctx, req.Msg.GroupID, req.Msg)
	if err != nil {
		return nil, err
	}

	txns := s.simplifier.Simplify(view.balances())
	resolved := ledger.Resolve(txns, s.directory(ctx, view))
	s.opts.Metrics.SettlementsSuggested(len(resolved))

	settlements := make([]*api.Settlement, len(resolved))
	for i, t := range resolved {
		settlements[i] = &api.Settlement{
			FromUserID: string(t.From.ID),
			FromName:   t.From.Name,
			ToUserID:   string(t.To.ID),
			ToName:     t.To.Name,
			Amount:     t.Amount,
		}
	}

	slog.Info("GetGroupSummary successful",
		"group_id", req.Msg.GroupID,
		"expenses", len(view.expenses),
		"settlements", len(settlements),
	)
	return connect.NewResponse(&api.GetGroupSummaryResponse{
		Settlements: settlements,
		Balances:    s.memberBalances(ctx, view),
		Settled:     len(txns) == 0,
	}), nil
}

// ownedGroup loads a group the caller created.
func (s *GroupService) ownedGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := groupAccess(ctx, s.store, groupID, userID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotOwner)
	}
	return group, nil
}

// loadLedger authorizes the caller and reads a consistent group snapshot.
func (s *GroupService) loadLedger(ctx context.Context, groupID string, msg any) (*ledgerView, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(msg); err != nil {
		return nil, err
	}
	if _, err := groupAccess(ctx, s.store, groupID, userID); err != nil {
		return nil, err
	}

	snapshot, err := s.store.GetGroupLedger(ctx, groupID)
	if err != nil {
		slog.Error("Failed to load group ledger", "group_id", groupID, "error", err)
		return nil, storeError(err)
	}
	return newLedgerView(snapshot), nil
}

// memberBalances tallies the view. Former members are listed only while
// they still have a balance.
func (s *GroupService) memberBalances(ctx context.Context, view *ledgerView) []*api.MemberBalance {
	dir := s.directory(ctx, view)
	tally := ledger.Tally(view.members, view.expenses)

	out := make([]*api.MemberBalance, 0, len(tally))
	for _, b := range tally {
		if !view.current[b.Member] && b.Net.Abs().LessThanOrEqual(s.opts.Tolerance) {
			continue
		}
		out = append(out, &api.MemberBalance{
			UserID:      string(b.Member),
			DisplayName: dir[b.Member].Name,
			Paid:        b.TotalPaid,
			Owed:        b.TotalOwed,
			Net:         b.Net,
		})
	}
	return out
}

// directory resolves display names for current and former members.
func (s *GroupService) directory(ctx context.Context, view *ledgerView) map[ledger.MemberID]ledger.MemberInfo {
	dir := make(map[ledger.MemberID]ledger.MemberInfo, len(view.members))
	for _, m := range view.snapshot.Members {
		id := ledger.MemberID(m.UserID)
		dir[id] = ledger.MemberInfo{ID: id, Name: m.DisplayName}
	}

	var former []string
	for _, id := range view.members {
		if !view.current[id] {
			former = append(former, string(id))
		}
	}
	if len(former) == 0 {
		return dir
	}

	users, err := s.store.GetUsersByIDs(ctx, former)
	if err != nil {
		// Names are cosmetic; fall back to IDs
		slog.Warn("Failed to resolve former members", "error", err)
	}
	for _, id := range former {
		name := id
		if u, ok := users[id]; ok {
			name = u.DisplayName
		}
		dir[ledger.MemberID(id)] = ledger.MemberInfo{ID: ledger.MemberID(id), Name: name}
	}
	return dir
}
