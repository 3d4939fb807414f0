// Package models defines the server-side records.
package models

import "time"

// Account is an API login able to obtain session tokens.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Group is the authoritative copy of a roster group.
type Group struct {
	ID             string
	Name           string
	Description    string
	CreatedAt      time.Time
	LastModifiedAt time.Time
}

// User is the authoritative copy of a roster user. GroupID is empty for
// users without a group.
type User struct {
	ID             string
	Username       string
	Name           string
	GroupID        string
	CreatedAt      time.Time
	LastModifiedAt time.Time
}
