package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/srms/internal/model"
)

// StudentRepository handles student data access.
type StudentRepository interface {
	// List returns active students matching the filter, ordered by roll number,
	// along with the total number of matches.
	List(ctx context.Context, filter model.StudentFilter) ([]model.Student, int, error)
	// GetByID returns a student regardless of its active flag.
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	Dropdown(ctx context.Context) ([]model.StudentOption, error)
}

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a PostgreSQL-backed StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

const studentColumns = `id::text, roll_number, name, email, password_hash, class,
	to_char(date_of_birth, 'YYYY-MM-DD'), phone, address, guardian_name, guardian_phone,
	to_char(enrollment_date, 'YYYY-MM-DD'), is_active, created_at, updated_at`

func scanStudent(row pgx.Row, s *model.Student) error {
	return row.Scan(&s.ID, &s.RollNumber, &s.Name, &s.Email, &s.PasswordHash, &s.Class,
		&s.DateOfBirth, &s.Phone, &s.Address, &s.GuardianName, &s.GuardianPhone,
		&s.EnrollmentDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

func (r *studentRepository) List(ctx context.Context, filter model.StudentFilter) ([]model.Student, int, error) {
	where := ` WHERE is_active = TRUE`
	var args []interface{}

	if filter.Class != "" {
		args = append(args, filter.Class)
		where += ` AND class = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR roll_number ILIKE $` + n + ` OR email ILIKE $` + n + `)`
	}

	// 1. Total count
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// 2. Page
	page := filter.Page.Normalize()
	query := `SELECT ` + studentColumns + ` FROM students` + where +
		` ORDER BY roll_number LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := make([]model.Student, 0, page.Limit)
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id), s); err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE lower(email) = lower($1)`, email), s); err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func (r *studentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (roll_number, name, email, password_hash, class, date_of_birth,
		                       phone, address, guardian_name, guardian_phone, enrollment_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, COALESCE($11::date, CURRENT_DATE), $12)
		 RETURNING id::text, to_char(enrollment_date, 'YYYY-MM-DD'), created_at`,
		s.RollNumber, s.Name, s.Email, s.PasswordHash, s.Class, s.DateOfBirth,
		s.Phone, s.Address, s.GuardianName, s.GuardianPhone, s.EnrollmentDate, s.IsActive,
	).Scan(&s.ID, &s.EnrollmentDate, &s.CreatedAt)
	return mapError(err)
}

// Update modifies profile fields (excluding password and active flag).
func (r *studentRepository) Update(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE students
		 SET name = $1, email = $2, class = $3, date_of_birth = $4::date, phone = $5, address = $6,
		     guardian_name = $7, guardian_phone = $8, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $9
		 RETURNING updated_at`,
		s.Name, s.Email, s.Class, s.DateOfBirth, s.Phone, s.Address,
		s.GuardianName, s.GuardianPhone, s.ID,
	).Scan(&s.UpdatedAt)
	return mapError(err)
}

func (r *studentRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles the soft-delete flag. Deleting a student is SetActive(false).
func (r *studentRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		active, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *studentRepository) Dropdown(ctx context.Context) ([]model.StudentOption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, name, roll_number FROM students WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []model.StudentOption
	for rows.Next() {
		var o model.StudentOption
		if err := rows.Scan(&o.ID, &o.Name, &o.RollNumber); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}
