package user

import "errors"

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a user already exists.
	ErrUserExists = errors.New("user with this email already exists")
	// ErrSelfDeletionForbidden is returned when a principal tries to delete
	// their own account, regardless of role.
	ErrSelfDeletionForbidden = errors.New("users cannot delete their own account")
)
