package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert would violate a uniqueness rule.
	ErrDuplicate = errors.New("already exists")

	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrGroupNotFound      = fmt.Errorf("group %w", ErrNotFound)
	ErrMemberNotFound     = fmt.Errorf("membership %w", ErrNotFound)
	ErrExpenseNotFound    = fmt.Errorf("expense %w", ErrNotFound)
	ErrInvitationNotFound = fmt.Errorf("invitation %w", ErrNotFound)

	ErrEmailExists = fmt.Errorf("email %w", ErrDuplicate)
)
