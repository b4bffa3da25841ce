package entity

import (
	"time"
)

// User is the aggregate root for the credential store.
// PasswordHash holds a bcrypt hash; the raw password never reaches this type.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRef is the display projection joined into resources and ratings.
type UserRef struct {
	ID       string
	Username string
}
