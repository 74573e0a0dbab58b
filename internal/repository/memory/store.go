// Package memory implements the repository interfaces on process memory.
// It backs STORAGE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
)

// Store holds every table. The per-table adapters share its lock.
type Store struct {
	mu       sync.RWMutex
	admins   map[string]model.Admin
	students map[string]model.Student
	courses  map[string]model.Course
	results  map[string]model.Result
	lastTick time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		admins:   make(map[string]model.Admin),
		students: make(map[string]model.Student),
		courses:  make(map[string]model.Course),
		results:  make(map[string]model.Result),
	}
}

func (s *Store) Admins() repository.AdminRepository { return &adminRepo{s} }
func (s *Store) Students() repository.StudentRepository { return &studentRepo{s} }
func (s *Store) Courses() repository.CourseRepository { return &courseRepo{s} }
func (s *Store) Results() repository.ResultRepository { return &resultRepo{s} }
func (s *Store) Dashboard() repository.DashboardRepository { return &dashboardRepo{s} }

// now returns a strictly increasing timestamp so that ordering by
// created_at is deterministic. Caller holds the write lock.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Microsecond)
	}
	s.lastTick = t
	return t
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func window[T any](items []T, page model.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

// ─── Admins ─────────────────────────────────────────────────────────────────

type adminRepo struct{ s *Store }

func (r *adminRepo) GetByID(_ context.Context, id string) (*model.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *adminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.admins {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *adminRepo) Create(_ context.Context, a *model.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if strings.EqualFold(existing.Email, a.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = r.s.now()
	r.s.admins[a.ID] = *a
	return nil
}

// ─── Students ───────────────────────────────────────────────────────────────

type studentRepo struct{ s *Store }

func (r *studentRepo) List(_ context.Context, filter model.StudentFilter) ([]model.Student, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []model.Student{}
	for _, st := range r.s.students {
		if !st.IsActive {
			continue
		}
		if filter.Class != "" && st.Class != filter.Class {
			continue
		}
		if filter.Search != "" &&
			!containsFold(st.Name, filter.Search) &&
			!containsFold(st.RollNumber, filter.Search) &&
			!containsFold(st.Email, filter.Search) {
			continue
		}
		matched = append(matched, st)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].RollNumber < matched[j].RollNumber })
	return window(matched, filter.Page), len(matched), nil
}

func (r *studentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (r *studentRepo) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.s.students {
		if strings.EqualFold(st.Email, email) {
			return &st, nil
		}
	}
	return nil, repository.ErrNotFound
}

// uniqueViolation reports the first unique key of st already taken by
// another student. Caller holds the lock.
func (r *studentRepo) uniqueViolation(st *model.Student) error {
	for id, existing := range r.s.students {
		if id == st.ID {
			continue
		}
		if existing.RollNumber == st.RollNumber {
			return repository.ErrDuplicateRollNumber
		}
		if strings.EqualFold(existing.Email, st.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	return nil
}

func (r *studentRepo) Create(_ context.Context, st *model.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st.ID = ""
	if err := r.uniqueViolation(st); err != nil {
		return err
	}
	st.ID = uuid.NewString()
	st.CreatedAt = r.s.now()
	if st.EnrollmentDate == nil {
		today := st.CreatedAt.Format("2006-01-02")
		st.EnrollmentDate = &today
	}
	r.s.students[st.ID] = *st
	return nil
}

func (r *studentRepo) Update(_ context.Context, st *model.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.students[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	st.RollNumber = existing.RollNumber
	if err := r.uniqueViolation(st); err != nil {
		return err
	}
	existing.Name = st.Name
	existing.Email = st.Email
	existing.Class = st.Class
	existing.DateOfBirth = st.DateOfBirth
	existing.Phone = st.Phone
	existing.Address = st.Address
	existing.GuardianName = st.GuardianName
	existing.GuardianPhone = st.GuardianPhone
	now := r.s.now()
	existing.UpdatedAt = &now
	r.s.students[st.ID] = existing
	*st = existing
	return nil
}

func (r *studentRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.students[id]
	if !ok {
		return repository.ErrNotFound
	}
	st.PasswordHash = passwordHash
	r.s.students[id] = st
	return nil
}

func (r *studentRepo) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.students[id]
	if !ok {
		return repository.ErrNotFound
	}
	st.IsActive = active
	now := r.s.now()
	st.UpdatedAt = &now
	r.s.students[id] = st
	return nil
}

func (r *studentRepo) Dropdown(_ context.Context) ([]model.StudentOption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	opts := []model.StudentOption{}
	for _, st := range r.s.students {
		if st.IsActive {
			opts = append(opts, model.StudentOption{ID: st.ID, Name: st.Name, RollNumber: st.RollNumber})
		}
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })
	return opts, nil
}

// ─── Courses ────────────────────────────────────────────────────────────────

type courseRepo struct{ s *Store }

func (r *courseRepo) List(_ context.Context, filter model.CourseFilter) ([]model.Course, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []model.Course{}
	for _, c := range r.s.courses {
		if !c.IsActive {
			continue
		}
		if filter.Search != "" && !containsFold(c.CourseName, filter.Search) && !containsFold(c.CourseCode, filter.Search) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CourseCode < matched[j].CourseCode })
	return window(matched, filter.Page), len(matched), nil
}

func (r *courseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *courseRepo) codeTaken(c *model.Course) bool {
	for id, existing := range r.s.courses {
		if id != c.ID && existing.CourseCode == c.CourseCode {
			return true
		}
	}
	return false
}

func (r *courseRepo) Create(_ context.Context, c *model.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = ""
	if r.codeTaken(c) {
		return repository.ErrDuplicateCourseCode
	}
	c.ID = uuid.NewString()
	c.IsActive = true
	c.CreatedAt = r.s.now()
	r.s.courses[c.ID] = *c
	return nil
}

func (r *courseRepo) Update(_ context.Context, c *model.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.courses[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.codeTaken(c) {
		return repository.ErrDuplicateCourseCode
	}
	existing.CourseName = c.CourseName
	existing.CourseCode = c.CourseCode
	existing.Description = c.Description
	existing.Credits = c.Credits
	existing.Semester = c.Semester
	now := r.s.now()
	existing.UpdatedAt = &now
	r.s.courses[c.ID] = existing
	*c = existing
	return nil
}

func (r *courseRepo) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsActive = active
	now := r.s.now()
	c.UpdatedAt = &now
	r.s.courses[id] = c
	return nil
}

func (r *courseRepo) Dropdown(_ context.Context) ([]model.CourseOption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	opts := []model.CourseOption{}
	for _, c := range r.s.courses {
		if c.IsActive {
			opts = append(opts, model.CourseOption{ID: c.ID, CourseName: c.CourseName, CourseCode: c.CourseCode})
		}
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].CourseCode < opts[j].CourseCode })
	return opts, nil
}

func (r *courseRepo) Statistics(_ context.Context, id string) (*model.CourseStatistics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st := &model.CourseStatistics{}
	students := map[string]struct{}{}
	var sum float64
	var n int
	for _, res := range r.s.results {
		if res.CourseID != id {
			continue
		}
		students[res.StudentID] = struct{}{}
		if n == 0 || res.Marks > st.HighestMarks {
			st.HighestMarks = res.Marks
		}
		if n == 0 || res.Marks < st.LowestMarks {
			st.LowestMarks = res.Marks
		}
		if model.Passed(res.Marks) {
			st.PassedStudents++
		} else {
			st.FailedStudents++
		}
		sum += res.Marks
		n++
	}
	st.TotalStudents = len(students)
	if n > 0 {
		st.AverageMarks = model.Round2(sum / float64(n))
	}
	return st, nil
}
