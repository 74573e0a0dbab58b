package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
	"github.com/stemsi/srms/internal/response"
)

// CourseService handles course business logic.
type CourseService struct {
	repo  repository.CourseRepository
	stats StatsInvalidator
	log   zerolog.Logger
}

func NewCourseService(repo repository.CourseRepository, stats StatsInvalidator, log zerolog.Logger) *CourseService {
	return &CourseService{
		repo:  repo,
		stats: stats,
		log:   log.With().Str("component", "course_service").Logger(),
	}
}

func (s *CourseService) List(ctx context.Context, filter model.CourseFilter) ([]model.Course, *response.Pagination, error) {
	filter.Page = filter.Page.Normalize()
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list courses: %w", err)
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, &response.Pagination{Limit: filter.Limit, Offset: filter.Offset, TotalItems: total}, nil
}

// Get returns an active course.
func (s *CourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

func (s *CourseService) Create(ctx context.Context, req *model.CourseRequest) (*model.Course, error) {
	c := &model.Course{
		CourseName:  req.CourseName,
		CourseCode:  req.CourseCode,
		Description: req.Description,
		Credits:     req.Credits,
		Semester:    req.Semester,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)
	s.log.Info().Str("course_id", c.ID).Str("course_code", c.CourseCode).Msg("Course created")
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, id string, req *model.CourseRequest) (*model.Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.CourseName = req.CourseName
	c.CourseCode = req.CourseCode
	c.Description = req.Description
	c.Credits = req.Credits
	c.Semester = req.Semester

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	s.stats.Invalidate(ctx)
	return c, nil
}

// Delete soft-deletes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.stats.Invalidate(ctx)
	s.log.Info().Str("course_id", id).Msg("Course deactivated")
	return nil
}

func (s *CourseService) Dropdown(ctx context.Context) ([]model.CourseOption, error) {
	opts, err := s.repo.Dropdown(ctx)
	if opts == nil && err == nil {
		opts = []model.CourseOption{}
	}
	return opts, err
}

func (s *CourseService) Statistics(ctx context.Context, id string) (*model.CourseStatistics, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Statistics(ctx, id)
}
