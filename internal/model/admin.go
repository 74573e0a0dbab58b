package model

import "time"

// Admin represents an administrator account.
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// User returns the admin as a session identity.
func (a *Admin) User() User {
	return User{ID: a.ID, Email: a.Email, Name: a.Name, Role: RoleAdmin}
}
