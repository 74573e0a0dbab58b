// Package guard decides whether the current session may open a screen.
package guard

import (
	"fmt"

	"github.com/stemsi/srms/internal/model"
)

// LoginRoute is where denied callers are sent.
const LoginRoute = "/login"

// SessionReader is the part of the session store the guard reads.
type SessionReader interface {
	User() *model.User
	IsAuthenticated() bool
}

// Access is the outcome of one check.
type Access struct {
	User            *model.User
	IsAuthenticated bool
	HasAccess       bool
	IsAdmin         bool
	IsStudent       bool
}

// Check evaluates the session against requiredRole. An empty role only
// requires a login. Nothing is cached between calls.
func Check(s SessionReader, requiredRole model.Role) Access {
	user := s.User()
	authed := s.IsAuthenticated()

	a := Access{User: user, IsAuthenticated: authed}
	if user != nil {
		a.IsAdmin = user.Role == model.RoleAdmin
		a.IsStudent = user.Role == model.RoleStudent
	}
	a.HasAccess = authed && (requiredRole == "" || (user != nil && user.Role == requiredRole))
	return a
}

// RedirectError tells the caller to navigate away instead of rendering.
type RedirectError struct {
	To string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("access denied: redirect to %s", e.To)
}

// Require returns a *RedirectError to LoginRoute when access is denied.
func Require(s SessionReader, requiredRole model.Role) error {
	if Check(s, requiredRole).HasAccess {
		return nil
	}
	return &RedirectError{To: LoginRoute}
}
