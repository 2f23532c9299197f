package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is the persisted half of a bearer token. Only the SHA-256 of the
// secret is stored; the plaintext is handed to the client once.
type AccessToken struct {
	ID         uuid.UUID  `json:"-"`
	UserID     int64      `json:"-"`
	Name       string     `json:"-"` // device_name supplied at login/register
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"-"`
	LastUsedAt *time.Time `json:"-"`
}
