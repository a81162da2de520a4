package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"connectrpc.com/connect"

	"github.com/mmynk/splitmoney/internal/auth"
	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/internal/storage"
	"github.com/mmynk/splitmoney/pkg/api"
)

const tokenBytes = 32

var (
	errAlreadyMember        = errors.New("user is already a member of this group")
	errInvitationNotPending = errors.New("invitation is no longer pending")
	errInvitationExpired    = errors.New("invitation has expired")
	errInvitationEmail      = errors.New("invitation was sent to a different email address")
)

// InviteMember creates an invitation for an email address. Delivery is up to
// the caller; the response carries the accept link.
func (s *GroupService) InviteMember(ctx context.Context, req *connect.Request[api.InviteMemberRequest]) (*connect.Response[api.InviteMemberResponse], error) {
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

	email := auth.NormalizeEmail(req.Msg.Email)
	if err := s.checkNotMember(ctx, group.ID, email); err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		slog.Error("Failed to generate invitation token", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	inv := &models.Invitation{
		GroupID:      group.ID,
		InviteeEmail: email,
		Token:        token,
		Status:       models.InvitationPending,
		InvitedBy:    userID,
		ExpiresAt:    s.now().Add(s.opts.InvitationTTL).Unix(),
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		slog.Error("InviteMember failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	link, err := acceptURL(s.opts.InviteBaseURL, token)
	if err != nil {
		slog.Error("Failed to build accept link", "base_url", s.opts.InviteBaseURL, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Invitation created", "group_id", group.ID, "invitation_id", inv.ID, "invited_by", userID)
	return connect.NewResponse(&api.InviteMemberResponse{Invitation: toAPIInvitation(inv, link)}), nil
}

// AcceptInvitation adds the caller to the invitation's group.
func (s *GroupService) AcceptInvitation(ctx context.Context, req *connect.Request[api.AcceptInvitationRequest]) (*connect.Response[api.AcceptInvitationResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	inv, err := s.store.GetInvitationByToken(ctx, req.Msg.Token)
	if err != nil {
		return nil, storeError(err)
	}
	if inv.Status != models.InvitationPending {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errInvitationNotPending)
	}
	if inv.Expired(s.now().Unix()) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errInvitationExpired)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if auth.NormalizeEmail(user.Email) != inv.InviteeEmail {
		slog.Warn("Invitation email mismatch", "invitation_id", inv.ID, "user_id", userID)
		return nil, connect.NewError(connect.CodePermissionDenied, errInvitationEmail)
	}

	if err := s.store.AcceptInvitation(ctx, inv.ID, userID); err != nil {
		// Accepted concurrently
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, errInvitationNotPending)
		}
		slog.Error("AcceptInvitation failed", "invitation_id", inv.ID, "error", err)
		return nil, storeError(err)
	}

	group, err := s.store.GetGroup(ctx, inv.GroupID)
	if err != nil {
		return nil, storeError(err)
	}
	members, err := s.store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("Invitation accepted", "group_id", group.ID, "user_id", userID)
	return connect.NewResponse(&api.AcceptInvitationResponse{Group: toAPIGroup(group, members)}), nil
}

// checkNotMember fails if the address belongs to a current member.
func (s *GroupService) checkNotMember(ctx context.Context, groupID, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeError(err)
	}

	ok, err := s.store.IsGroupMember(ctx, groupID, user.ID)
	if err != nil {
		return storeError(err)
	}
	if ok {
		return connect.NewError(connect.CodeAlreadyExists, errAlreadyMember)
	}
	return nil
}

// newToken returns a random URL-safe token.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// acceptURL builds <base>/invitations/accept?token=<token>.
func acceptURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("invitations", "accept")
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
