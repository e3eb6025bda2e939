package storage

import "errors"

var (
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrCategoryExists       = errors.New("category already exists")
	ErrCategoryNotFound     = errors.New("category not found")
)
