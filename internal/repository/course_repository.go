package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/srms/internal/model"
)

type CourseRepository interface {
	List(ctx context.Context, filter model.CourseFilter) ([]model.Course, int, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	SetActive(ctx context.Context, id string, active bool) error
	Dropdown(ctx context.Context) ([]model.CourseOption, error)
	Statistics(ctx context.Context, id string) (*model.CourseStatistics, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseColumns = `id::text, course_name, course_code, description, credits, semester, is_active, created_at, updated_at`

func scanCourse(row pgx.Row, c *model.Course) error {
	return row.Scan(&c.ID, &c.CourseName, &c.CourseCode, &c.Description, &c.Credits,
		&c.Semester, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

func (r *courseRepository) List(ctx context.Context, filter model.CourseFilter) ([]model.Course, int, error) {
	where := ` WHERE is_active = TRUE`
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND (course_name ILIKE $1 OR course_code ILIKE $1)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	query := `SELECT ` + courseColumns + ` FROM courses` + where +
		` ORDER BY course_code LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]model.Course, 0, page.Limit)
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	c := &model.Course{}
	if err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id), c); err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *courseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (course_name, course_code, description, credits, semester)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text, is_active, created_at`,
		c.CourseName, c.CourseCode, c.Description, c.Credits, c.Semester,
	).Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	return mapError(err)
}

func (r *courseRepository) Update(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE courses
		 SET course_name = $1, course_code = $2, description = $3, credits = $4, semester = $5,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING updated_at`,
		c.CourseName, c.CourseCode, c.Description, c.Credits, c.Semester, c.ID,
	).Scan(&c.UpdatedAt)
	return mapError(err)
}

func (r *courseRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
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

func (r *courseRepository) Dropdown(ctx context.Context) ([]model.CourseOption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, course_name, course_code FROM courses WHERE is_active = TRUE ORDER BY course_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []model.CourseOption
	for rows.Next() {
		var o model.CourseOption
		if err := rows.Scan(&o.ID, &o.CourseName, &o.CourseCode); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// Statistics aggregates every result recorded against the course.
func (r *courseRepository) Statistics(ctx context.Context, id string) (*model.CourseStatistics, error) {
	st := &model.CourseStatistics{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT student_id),
		        COALESCE(AVG(marks), 0)::float8,
		        COALESCE(MAX(marks), 0)::float8,
		        COALESCE(MIN(marks), 0)::float8,
		        COUNT(*) FILTER (WHERE marks >= $2),
		        COUNT(*) FILTER (WHERE marks < $2)
		 FROM results WHERE course_id = $1`,
		id, model.PassMark,
	).Scan(&st.TotalStudents, &st.AverageMarks, &st.HighestMarks, &st.LowestMarks, &st.PassedStudents, &st.FailedStudents)
	if err != nil {
		return nil, err
	}
	st.AverageMarks = model.Round2(st.AverageMarks)
	return st, nil
}
