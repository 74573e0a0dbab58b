package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/srms/internal/model"
)

// ResultRepository handles result data access. Reads join the student and
// course display fields onto each result.
type ResultRepository interface {
	List(ctx context.Context, filter model.ResultFilter) ([]model.Result, int, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Result, error)
	GetByID(ctx context.Context, id string) (*model.Result, error)
	Create(ctx context.Context, r *model.Result) error
	Update(ctx context.Context, r *model.Result) error
	Delete(ctx context.Context, id string) error
	// BulkInsert inserts all results in one statement, skipping rows that
	// collide with an existing (student, course, exam type, date). It returns
	// the number of rows inserted.
	BulkInsert(ctx context.Context, results []*model.Result) (int, error)
	StudentStatistics(ctx context.Context, studentID string) (*model.StudentStatistics, error)
}

type resultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) ResultRepository {
	return &resultRepository{pool: pool}
}

const resultSelect = `
	SELECT r.id::text, r.student_id::text, r.course_id::text, r.marks::float8, r.grade,
	       r.percentage::float8, to_char(r.exam_date, 'YYYY-MM-DD'), r.exam_type, r.remarks,
	       r.created_at, r.updated_at,
	       s.name, s.roll_number, c.course_name, c.course_code, c.credits
	FROM results r
	JOIN students s ON s.id = r.student_id
	JOIN courses c ON c.id = r.course_id`

const resultOrder = ` ORDER BY r.exam_date DESC, r.created_at DESC`

func scanResult(row pgx.Row, r *model.Result) error {
	return row.Scan(&r.ID, &r.StudentID, &r.CourseID, &r.Marks, &r.Grade,
		&r.Percentage, &r.ExamDate, &r.ExamType, &r.Remarks,
		&r.CreatedAt, &r.UpdatedAt,
		&r.StudentName, &r.RollNumber, &r.CourseName, &r.CourseCode, &r.Credits)
}

func collectResults(rows pgx.Rows) ([]model.Result, error) {
	defer rows.Close()
	results := []model.Result{}
	for rows.Next() {
		var r model.Result
		if err := scanResult(rows, &r); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (repo *resultRepository) List(ctx context.Context, filter model.ResultFilter) ([]model.Result, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		where += ` AND r.student_id = $` + strconv.Itoa(len(args))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		where += ` AND r.course_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM results r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	query := resultSelect + where + resultOrder +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	results, err := collectResults(rows)
	return results, total, err
}

func (repo *resultRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Result, error) {
	rows, err := repo.pool.Query(ctx, resultSelect+` WHERE r.student_id = $1`+resultOrder, studentID)
	if err != nil {
		return nil, err
	}
	return collectResults(rows)
}

func (repo *resultRepository) GetByID(ctx context.Context, id string) (*model.Result, error) {
	r := &model.Result{}
	if err := scanResult(repo.pool.QueryRow(ctx, resultSelect+` WHERE r.id = $1`, id), r); err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

func (repo *resultRepository) Create(ctx context.Context, r *model.Result) error {
	err := repo.pool.QueryRow(ctx,
		`INSERT INTO results (student_id, course_id, marks, grade, percentage, exam_date, exam_type, remarks)
		 VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8)
		 RETURNING id::text, created_at`,
		r.StudentID, r.CourseID, r.Marks, r.Grade, r.Percentage, r.ExamDate, r.ExamType, r.Remarks,
	).Scan(&r.ID, &r.CreatedAt)
	return mapError(err)
}

func (repo *resultRepository) Update(ctx context.Context, r *model.Result) error {
	err := repo.pool.QueryRow(ctx,
		`UPDATE results
		 SET student_id = $1, course_id = $2, marks = $3, grade = $4, percentage = $5,
		     exam_date = $6::date, exam_type = $7, remarks = $8, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $9
		 RETURNING created_at, updated_at`,
		r.StudentID, r.CourseID, r.Marks, r.Grade, r.Percentage, r.ExamDate, r.ExamType, r.Remarks, r.ID,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	return mapError(err)
}

func (repo *resultRepository) Delete(ctx context.Context, id string) error {
	tag, err := repo.pool.Exec(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ----------------------------------------------------------------
// BULK insert using UNNEST
// ----------------------------------------------------------------

func (repo *resultRepository) BulkInsert(ctx context.Context, results []*model.Result) (int, error) {
	n := len(results)
	if n == 0 {
		return 0, nil
	}

	studentIDs := make([]string, 0, n)
	courseIDs := make([]string, 0, n)
	marks := make([]float64, 0, n)
	grades := make([]string, 0, n)
	examDates := make([]string, 0, n)
	examTypes := make([]string, 0, n)
	remarks := make([]*string, 0, n)

	for _, r := range results {
		studentIDs = append(studentIDs, r.StudentID)
		courseIDs = append(courseIDs, r.CourseID)
		marks = append(marks, r.Marks)
		grades = append(grades, r.Grade)
		examDates = append(examDates, r.ExamDate)
		examTypes = append(examTypes, r.ExamType)
		remarks = append(remarks, r.Remarks)
	}

	query := `
		INSERT INTO results (student_id, course_id, marks, grade, percentage, exam_date, exam_type, remarks)
		SELECT u.student_id::uuid, u.course_id::uuid, u.marks, u.grade, u.marks,
		       u.exam_date::date, u.exam_type, u.remarks
		FROM UNNEST(
			$1::text[],
			$2::text[],
			$3::float8[],
			$4::text[],
			$5::text[],
			$6::text[],
			$7::text[]
		) AS u (student_id, course_id, marks, grade, exam_date, exam_type, remarks)
		ON CONFLICT ON CONSTRAINT results_unique_exam DO NOTHING
	`

	tag, err := repo.pool.Exec(ctx, query, studentIDs, courseIDs, marks, grades, examDates, examTypes, remarks)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (repo *resultRepository) StudentStatistics(ctx context.Context, studentID string) (*model.StudentStatistics, error) {
	st := &model.StudentStatistics{}
	err := repo.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(marks), 0)::float8 FROM results WHERE student_id = $1`,
		studentID,
	).Scan(&st.TotalSubjects, &st.AverageMarks)
	if err != nil {
		return nil, err
	}
	return model.FinishStudentStatistics(st), nil
}
