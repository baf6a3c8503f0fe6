package repository

// RepoError is a sentinel error type for well-known store outcomes.
type RepoError string

func (e RepoError) Error() string { return string(e) }

const (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound RepoError = "not found"

	// ErrNotPending indicates a conditional transition lost because the
	// exchange is no longer pending.
	ErrNotPending RepoError = "exchange is not pending"

	// ErrDuplicateEmail indicates the email uniqueness constraint fired.
	ErrDuplicateEmail RepoError = "email already in use"
)
