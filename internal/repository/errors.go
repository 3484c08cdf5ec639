package repository

import "errors"

var (
	ErrNotFound               = errors.New("post not found")
	ErrValidationFailed       = errors.New("post title and content are required")
	ErrPersistenceUnavailable = errors.New("post storage unavailable")
	ErrCorruptData            = errors.New("persisted posts are corrupt")
)
