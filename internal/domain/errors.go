package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrForbidden           = errors.New("operation not permitted for this role")
	ErrIssueNotFound       = errors.New("issue not found")
	ErrFileNotFound        = errors.New("file not found")
	ErrStatsNotFound       = errors.New("no stats for date")
	ErrTicketInvalid       = errors.New("stream ticket invalid or expired")
	ErrDuplicateConnection = errors.New("connection id already registered")
)
