package api

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Name    string `json:"name" validate:"required,max=100"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type DeleteGroupResponse struct{}

type ListMembersRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

// RemoveMemberRequest removes UserID from the group. Members may remove
// themselves; the group creator may remove anyone but themselves.
type RemoveMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

type RemoveMemberResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// GetGroupSummaryResponse lists the payments that settle the group, with the
// balances they were computed from.
type GetGroupSummaryResponse struct {
	Settlements []*Settlement    `json:"settlements"`
	Balances    []*MemberBalance `json:"balances"`
	Settled     bool             `json:"settled"`
}

type InviteMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type InviteMemberResponse struct {
	Invitation *Invitation `json:"invitation"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

type AcceptInvitationResponse struct {
	Group *Group `json:"group"`
}
