// Package common defines sentinel errors shared across client and
// server layers. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Storage lookups and writes. Repositories translate their driver's
	// errors into these; handlers translate them into status codes.
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")

	// Credential and token verification.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)
