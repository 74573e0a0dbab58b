package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository/memory"
)

func repos(s *memory.Store) Repositories {
	return Repositories{Admins: s.Admins(), Students: s.Students(), Courses: s.Courses(), Results: s.Results()}
}

func TestRunIsIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	first, err := Run(ctx, repos(store), bcrypt.MinCost, zerolog.Nop())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	want := Summary{Admins: 1, Students: len(students), Courses: len(courses), Results: len(students) * 3}
	if first != want {
		t.Fatalf("first run = %+v, want %+v", first, want)
	}

	second, err := Run(ctx, repos(store), bcrypt.MinCost, zerolog.Nop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second != (Summary{}) {
		t.Errorf("second run = %+v, want nothing new", second)
	}

	admin, err := store.Admins().GetByEmail(ctx, AdminEmail)
	if err != nil {
		t.Fatalf("admin lookup: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(AdminPassword)) != nil {
		t.Error("admin password does not match the demo credential")
	}
}

func TestMarksCoverPassAndFail(t *testing.T) {
	var passed, failed int
	for i := range students {
		for j := 0; j < 3; j++ {
			m := Marks(i, j)
			if m < 0 || m > 100 {
				t.Fatalf("Marks(%d, %d) = %v out of range", i, j, m)
			}
			if model.Passed(m) {
				passed++
			} else {
				failed++
			}
		}
	}
	if passed == 0 || failed == 0 {
		t.Errorf("passed=%d failed=%d, want both non-zero", passed, failed)
	}
}
