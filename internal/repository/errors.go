package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateRollNumber = errors.New("student with this roll number already exists")
	ErrDuplicateEmail      = errors.New("account with this email already exists")
	ErrDuplicateCourseCode = errors.New("course with this code already exists")
	ErrDuplicateResult     = errors.New("result for this student, course, exam type and date already exists")
	// ErrInvalidData covers rows the database will never accept as written:
	// data exceptions (class 22) and integrity violations (class 23) that
	// have no more specific sentinel.
	ErrInvalidData = errors.New("record violates a database constraint")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	pgClassDataException      = "22"
	pgClassIntegrityViolation = "23"
)

// uniqueConstraints maps the unique constraints declared by the migrations
// to the sentinel errors callers match on.
var uniqueConstraints = map[string]error{
	"students_roll_number_key": ErrDuplicateRollNumber,
	"students_email_key":       ErrDuplicateEmail,
	"admins_email_key":         ErrDuplicateEmail,
	"courses_course_code_key":  ErrDuplicateCourseCode,
	"results_unique_exam":      ErrDuplicateResult,
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if mapped, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
				return mapped
			}
		case pgForeignKeyViolation:
			return ErrNotFound
		}
		if class := pgErr.Code[:min(2, len(pgErr.Code))]; class == pgClassDataException || class == pgClassIntegrityViolation {
			return fmt.Errorf("%w: %s", ErrInvalidData, pgErr.Message)
		}
	}
	return err
}
