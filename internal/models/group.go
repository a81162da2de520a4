package models

// Group is a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// CreatedBy is the user ID of the creator. Only the creator may rename
	// or delete the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a user's membership in a group.
type Member struct {
	UserID      string
	GroupID     string
	Email       string
	DisplayName string
	JoinedAt    int64
}
