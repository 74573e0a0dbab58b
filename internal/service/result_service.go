package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
	"github.com/stemsi/srms/internal/response"
)

// ResultService handles exam result business logic.
type ResultService struct {
	results  repository.ResultRepository
	students repository.StudentRepository
	courses  repository.CourseRepository
	rdb      *redis.Client
	events   ResultPublisher
	stats    StatsInvalidator
	log      zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	results repository.ResultRepository,
	students repository.StudentRepository,
	courses repository.CourseRepository,
	rdb *redis.Client,
	events ResultPublisher,
	stats StatsInvalidator,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		results:  results,
		students: students,
		courses:  courses,
		rdb:      rdb,
		events:   events,
		stats:    stats,
		log:      log.With().Str("component", "result_service").Logger(),
	}
}

func (s *ResultService) List(ctx context.Context, filter model.ResultFilter) ([]model.Result, *response.Pagination, error) {
	filter.Page = filter.Page.Normalize()
	results, total, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.Result{}
	}
	return results, &response.Pagination{Limit: filter.Limit, Offset: filter.Offset, TotalItems: total}, nil
}

func (s *ResultService) Get(ctx context.Context, id string) (*model.Result, error) {
	r, err := s.results.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return r, nil
}

// ForStudent lists every result of an active student, newest exam first.
func (s *ResultService) ForStudent(ctx context.Context, studentID string) ([]model.Result, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.results.ListByStudent(ctx, studentID)
}

func (s *ResultService) StudentStatistics(ctx context.Context, studentID string) (*model.StudentStatistics, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.results.StudentStatistics(ctx, studentID)
}

// Create records a result; grade and percentage are derived from marks.
func (s *ResultService) Create(ctx context.Context, req *model.ResultRequest) (*model.Result, error) {
	if err := s.requireRefs(ctx, req); err != nil {
		return nil, err
	}

	r := req.ToResult()
	if err := s.results.Create(ctx, r); err != nil {
		return nil, err
	}

	s.changed(ctx, model.ResultCreated, r)
	return s.Get(ctx, r.ID)
}

func (s *ResultService) Update(ctx context.Context, id string, req *model.ResultRequest) (*model.Result, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.requireRefs(ctx, req); err != nil {
		return nil, err
	}

	r := req.ToResult()
	r.ID = id
	if err := s.results.Update(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}

	s.changed(ctx, model.ResultUpdated, r)
	return s.Get(ctx, id)
}

func (s *ResultService) Delete(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.results.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResultNotFound
		}
		return err
	}
	s.changed(ctx, model.ResultDeleted, r)
	return nil
}

// QueueBulk pushes validated drafts onto the import queue for the import
// worker. It returns the number of drafts queued.
func (s *ResultService) QueueBulk(ctx context.Context, reqs []model.ResultRequest) (int, error) {
	pipe := s.rdb.Pipeline()
	for i := range reqs {
		raw, err := json.Marshal(reqs[i].ToResult())
		if err != nil {
			return 0, fmt.Errorf("marshal draft %d: %w", i, err)
		}
		pipe.RPush(ctx, config.WorkerKey.ResultImportQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("queue drafts: %w", err)
	}

	s.log.Info().Int("count", len(reqs)).Msg("Result drafts queued for import")
	return len(reqs), nil
}

func (s *ResultService) changed(ctx context.Context, kind model.ResultEventType, r *model.Result) {
	s.stats.Invalidate(ctx)
	s.events.Publish(ctx, model.ResultEvent{
		Event:     kind,
		ResultID:  r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
	})
}

func (s *ResultService) requireStudent(ctx context.Context, id string) error {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	if !st.IsActive {
		return ErrStudentNotFound
	}
	return nil
}

func (s *ResultService) requireRefs(ctx context.Context, req *model.ResultRequest) error {
	if err := s.requireStudent(ctx, req.StudentID); err != nil {
		return err
	}
	c, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if !c.IsActive {
		return ErrCourseNotFound
	}
	return nil
}
