package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	topPerformersLimit = 5
	recentResultsLimit = 5
)

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo repository.DashboardRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo repository.DashboardRepository, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		repo: repo,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "dashboard_service").Logger(),
	}
}

// Stats returns the dashboard aggregate, served from Redis while fresh.
func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	key := config.CacheKey.DashboardStatsKey()

	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached model.DashboardStats
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return &cached, nil
		}
		s.log.Warn().Msg("Discarding malformed dashboard cache entry")
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Msg("Dashboard cache read failed")
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Dashboard cache write failed")
		}
	}
	return stats, nil
}

// Invalidate drops the cached aggregate. Called after every mutation that
// changes a dashboard figure.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.CacheKey.DashboardStatsKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Dashboard cache invalidation failed")
	}
}

func (s *DashboardService) compute(ctx context.Context) (*model.DashboardStats, error) {
	var (
		totals repository.DashboardTotals
		top    []model.TopPerformer
		grades map[string]int
		recent []model.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.Totals(gctx)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.repo.TopPerformers(gctx, topPerformersLimit)
		return err
	})
	g.Go(func() (err error) {
		grades, err = s.repo.GradeCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.repo.RecentResults(gctx, recentResultsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalStudents:     totals.Students,
		TotalCourses:      totals.Courses,
		TotalResults:      totals.Results,
		AverageMarks:      model.Round2(totals.AverageMarks),
		AverageGrade:      model.GradeNone,
		TopPerformers:     top,
		GradeDistribution: gradeDistribution(grades, totals.Results),
		RecentResults:     recent,
	}
	if totals.Results > 0 {
		stats.AverageGrade = model.GradeFor(stats.AverageMarks)
		stats.PassRate = model.Round2(float64(totals.Passed) / float64(totals.Results) * 100)
	}
	if stats.TopPerformers == nil {
		stats.TopPerformers = []model.TopPerformer{}
	}
	if stats.RecentResults == nil {
		stats.RecentResults = []model.Result{}
	}
	return stats, nil
}

// gradeDistribution orders buckets best grade first, omitting empty bands.
func gradeDistribution(counts map[string]int, total int) []model.GradeBucket {
	buckets := []model.GradeBucket{}
	for _, grade := range model.GradeOrder {
		n := counts[grade]
		if n == 0 {
			continue
		}
		b := model.GradeBucket{Grade: grade, Count: n}
		if total > 0 {
			b.Percentage = model.Round2(float64(n) / float64(total) * 100)
		}
		buckets = append(buckets, b)
	}
	return buckets
}
