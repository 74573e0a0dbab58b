package guard

import (
	"errors"
	"testing"

	"github.com/stemsi/srms/internal/model"
)

type staticSession struct {
	user  *model.User
	token string
}

func (s staticSession) User() *model.User     { return s.user }
func (s staticSession) IsAuthenticated() bool { return s.user != nil && s.token != "" }

func TestCheck(t *testing.T) {
	admin := &model.User{ID: "a", Role: model.RoleAdmin}
	student := &model.User{ID: "s", Role: model.RoleStudent}

	tests := []struct {
		name    string
		session staticSession
		role    model.Role
		want    Access
	}{
		{"anonymous, any role", staticSession{}, "", Access{}},
		{"admin, any role", staticSession{admin, "t"}, "", Access{User: admin, IsAuthenticated: true, HasAccess: true, IsAdmin: true}},
		{"admin, admin page", staticSession{admin, "t"}, model.RoleAdmin, Access{User: admin, IsAuthenticated: true, HasAccess: true, IsAdmin: true}},
		{"student, admin page", staticSession{student, "t"}, model.RoleAdmin, Access{User: student, IsAuthenticated: true, IsStudent: true}},
		{"student, student page", staticSession{student, "t"}, model.RoleStudent, Access{User: student, IsAuthenticated: true, HasAccess: true, IsStudent: true}},
		{"user without token", staticSession{admin, ""}, model.RoleAdmin, Access{User: admin, IsAdmin: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.session, tt.role); got != tt.want {
				t.Errorf("Check() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequireRedirectsToLogin(t *testing.T) {
	student := staticSession{&model.User{Role: model.RoleStudent}, "t"}

	err := Require(student, model.RoleAdmin)
	var redirect *RedirectError
	if !errors.As(err, &redirect) || redirect.To != LoginRoute {
		t.Fatalf("Require() = %v, want redirect to %s", err, LoginRoute)
	}

	if err := Require(student, model.RoleStudent); err != nil {
		t.Errorf("Require(student) = %v, want nil", err)
	}
}
