package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/srms/internal/model"
)

// DashboardTotals holds the scalar aggregates behind the admin dashboard.
type DashboardTotals struct {
	Students     int
	Courses      int
	Results      int
	Passed       int
	AverageMarks float64
}

// DashboardRepository serves the read-only aggregates of the admin dashboard.
type DashboardRepository interface {
	Totals(ctx context.Context) (DashboardTotals, error)
	// TopPerformers returns active students ranked by average marks, best first.
	TopPerformers(ctx context.Context, limit int) ([]model.TopPerformer, error)
	GradeCounts(ctx context.Context) (map[string]int, error)
	RecentResults(ctx context.Context, limit int) ([]model.Result, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) Totals(ctx context.Context) (DashboardTotals, error) {
	var t DashboardTotals
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM courses WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM results),
			(SELECT COUNT(*) FROM results WHERE marks >= $1),
			(SELECT COALESCE(AVG(marks), 0)::float8 FROM results)`,
		model.PassMark,
	).Scan(&t.Students, &t.Courses, &t.Results, &t.Passed, &t.AverageMarks)
	return t, err
}

func (r *dashboardRepository) TopPerformers(ctx context.Context, limit int) ([]model.TopPerformer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.name, s.roll_number, ROUND(AVG(r.marks), 2)::float8 AS average_marks
		 FROM results r
		 JOIN students s ON s.id = r.student_id
		 WHERE s.is_active = TRUE
		 GROUP BY s.id, s.name, s.roll_number
		 ORDER BY average_marks DESC, s.roll_number
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performers := []model.TopPerformer{}
	for rows.Next() {
		var p model.TopPerformer
		if err := rows.Scan(&p.Name, &p.RollNumber, &p.AverageMarks); err != nil {
			return nil, err
		}
		p.Grade = model.GradeFor(p.AverageMarks)
		performers = append(performers, p)
	}
	return performers, rows.Err()
}

func (r *dashboardRepository) GradeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT grade, COUNT(*) FROM results GROUP BY grade`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var grade string
		var count int
		if err := rows.Scan(&grade, &count); err != nil {
			return nil, err
		}
		counts[grade] = count
	}
	return counts, rows.Err()
}

func (r *dashboardRepository) RecentResults(ctx context.Context, limit int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		resultSelect+` ORDER BY r.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectResults(rows)
}
