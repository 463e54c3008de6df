package domain

import "time"

// User is an account that can own tasks. Password users carry a bcrypt hash,
// Google users carry the provider subject in GoogleID.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password" json:"-"`
	Email        string    `db:"email" json:"email,omitempty"`
	GoogleID     string    `db:"google_id" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
