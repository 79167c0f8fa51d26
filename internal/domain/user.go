package domain

import "time"

// User is an account able to log in, either a customer or an administrator.
type User struct {
	ID           int64
	UserID       string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
