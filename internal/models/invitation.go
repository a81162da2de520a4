package models

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Invitation asks the owner of an email address to join a group.
type Invitation struct {
	ID           string
	GroupID      string
	InviteeEmail string

	// Token is the secret carried by the accept link.
	Token string

	Status    InvitationStatus
	InvitedBy string
	ExpiresAt int64
	CreatedAt int64
}

// Expired reports whether the invitation can no longer be accepted at now (Unix seconds).
func (i *Invitation) Expired(now int64) bool {
	return i.ExpiresAt <= now
}
