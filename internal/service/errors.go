package service

import "errors"

// Domain errors. Handlers map these onto HTTP statuses with errors.Is; the
// core never signals expected business failures through panics or bare
// infrastructure errors.
var (
	ErrExamNotFound        = errors.New("exam not found or not active")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrInvalidAttemptState = errors.New("attempt is not in progress")
	ErrNotAttemptOwner     = errors.New("attempt does not belong to this user")
)
