package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/internal/storage"
)

// CreateInvitation persists a new invitation.
func (s *SQLiteStore) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	// Generate ID if not set
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}
	if inv.Status == "" {
		inv.Status = models.InvitationPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (id, group_id, invitee_email, token, status, invited_by, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.GroupID, inv.InviteeEmail, inv.Token, string(inv.Status),
		inv.InvitedBy, inv.ExpiresAt, inv.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invitation token %w", storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}

	return nil
}

// GetInvitationByToken retrieves an invitation by its accept token.
func (s *SQLiteStore) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, invitee_email, token, status, invited_by, expires_at, created_at
		 FROM invitations WHERE token = ?`,
		token,
	).Scan(&inv.ID, &inv.GroupID, &inv.InviteeEmail, &inv.Token, &status,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	inv.Status = models.InvitationStatus(status)
	return inv, nil
}

// AcceptInvitation adds the user to the invitation's group and marks the
// invitation accepted in one transaction.
func (s *SQLiteStore) AcceptInvitation(ctx context.Context, invitationID, userID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var groupID string
		err := tx.QueryRowContext(ctx,
			"SELECT group_id FROM invitations WHERE id = ? AND status = ?",
			invitationID, string(models.InvitationPending),
		).Scan(&groupID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", storage.ErrInvitationNotFound, invitationID)
		}
		if err != nil {
			return fmt.Errorf("failed to get invitation: %w", err)
		}

		if err := addMember(ctx, tx, groupID, userID, time.Now().Unix()); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE invitations SET status = ? WHERE id = ?",
			string(models.InvitationAccepted), invitationID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark invitation accepted: %w", err)
		}
		return nil
	})
}

// DeleteStaleInvitations removes invitations that were accepted or have expired.
func (s *SQLiteStore) DeleteStaleInvitations(ctx context.Context, now int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM invitations WHERE status = ? OR expires_at <= ?",
		string(models.InvitationAccepted), now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale invitations: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
