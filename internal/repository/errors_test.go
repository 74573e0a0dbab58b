package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	transient := errors.New("connection reset")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"known unique", &pgconn.PgError{Code: "23505", ConstraintName: "results_unique_exam"}, ErrDuplicateResult},
		{"roll number", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "students_roll_number_key"}), ErrDuplicateRollNumber},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrNotFound},
		{"check constraint", &pgconn.PgError{Code: "23514", Message: "violates check constraint"}, ErrInvalidData},
		{"unknown unique", &pgconn.PgError{Code: "23505", ConstraintName: "other_key"}, ErrInvalidData},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, ErrInvalidData},
		{"bad date", &pgconn.PgError{Code: "22008"}, ErrInvalidData},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, nil},
		{"plain error", transient, transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			switch {
			case tt.err == nil:
				if got != nil {
					t.Errorf("mapError(nil) = %v", got)
				}
			case tt.want == nil:
				if errors.Is(got, ErrInvalidData) || errors.Is(got, ErrNotFound) {
					t.Errorf("mapError(%v) = %v, want the driver error unchanged", tt.err, got)
				}
			case !errors.Is(got, tt.want):
				t.Errorf("mapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
