// Package service implements the SplitMoney Connect services on top of a
// storage.Store and the ledger engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitmoney/internal/auth"
	"github.com/mmynk/splitmoney/internal/middleware"
	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/internal/storage"
)

var (
	errNotMember = errors.New("not a member of this group")
	errNotOwner  = errors.New("only the group creator can do this")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks a request message's struct tags.
func validateRequest(msg any) error {
	if err := validate.Struct(msg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			err = fmt.Errorf("invalid %s: failed %q check", fe.Namespace(), fe.Tag())
		}
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// invalidArgument wraps err as a CodeInvalidArgument error.
func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// storeError maps storage sentinels to Connect codes.
func storeError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrDuplicate):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// currentUser returns the authenticated user ID set by the auth interceptor.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// groupAccess loads a group and checks that userID belongs to it.
func groupAccess(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}

	ok, err := store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		slog.Error("Membership check failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if !ok {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return group, nil
}
