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

// StudentService handles student business logic.
type StudentService struct {
	repo   repository.StudentRepository
	hasher PasswordHasher
	stats  StatsInvalidator
	log    zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo repository.StudentRepository, hasher PasswordHasher, stats StatsInvalidator, log zerolog.Logger) *StudentService {
	return &StudentService{
		repo:   repo,
		hasher: hasher,
		stats:  stats,
		log:    log.With().Str("component", "student_service").Logger(),
	}
}

// List returns one page of active students.
func (s *StudentService) List(ctx context.Context, filter model.StudentFilter) ([]model.Student, *response.Pagination, error) {
	filter.Page = filter.Page.Normalize()
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, &response.Pagination{Limit: filter.Limit, Offset: filter.Offset, TotalItems: total}, nil
}

// Get returns an active student.
func (s *StudentService) Get(ctx context.Context, id string) (*model.Student, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !st.IsActive {
		return nil, ErrStudentNotFound
	}
	return st, nil
}

// Create inserts a new, active student with a hashed password.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	st := &model.Student{
		RollNumber:     req.RollNumber,
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		Class:          req.Class,
		DateOfBirth:    req.DateOfBirth,
		Phone:          req.Phone,
		Address:        req.Address,
		GuardianName:   req.GuardianName,
		GuardianPhone:  req.GuardianPhone,
		EnrollmentDate: req.EnrollmentDate,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx)
	s.log.Info().Str("student_id", st.ID).Str("roll_number", st.RollNumber).Msg("Student created")
	return st, nil
}

// Update modifies a student's profile. When the actor is the student
// themself the class is kept as stored.
func (s *StudentService) Update(ctx context.Context, id string, req *model.UpdateStudentRequest, actor model.Role) (*model.Student, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	st.Name = req.Name
	st.Email = req.Email
	if actor == model.RoleAdmin {
		st.Class = req.Class
	}
	st.DateOfBirth = req.DateOfBirth
	st.Phone = req.Phone
	st.Address = req.Address
	st.GuardianName = req.GuardianName
	st.GuardianPhone = req.GuardianPhone

	if err := s.repo.Update(ctx, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if req.Password != "" {
		hash, err := s.hasher.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
	}

	s.stats.Invalidate(ctx)
	return st, nil
}

// Delete soft-deletes a student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.stats.Invalidate(ctx)
	s.log.Info().Str("student_id", id).Msg("Student deactivated")
	return nil
}

// Approve activates a pending self-registration.
func (s *StudentService) Approve(ctx context.Context, id string) (*model.Student, error) {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	s.stats.Invalidate(ctx)
	return s.Get(ctx, id)
}

func (s *StudentService) Dropdown(ctx context.Context) ([]model.StudentOption, error) {
	opts, err := s.repo.Dropdown(ctx)
	if opts == nil && err == nil {
		opts = []model.StudentOption{}
	}
	return opts, err
}
