package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
)

type resultRepo struct{ s *Store }

// join fills the denormalized display fields. Caller holds the lock.
func (r *resultRepo) join(res model.Result) model.Result {
	if st, ok := r.s.students[res.StudentID]; ok {
		res.StudentName = st.Name
		res.RollNumber = st.RollNumber
	}
	if c, ok := r.s.courses[res.CourseID]; ok {
		res.CourseName = c.CourseName
		res.CourseCode = c.CourseCode
		res.Credits = c.Credits
	}
	return res
}

func sortByExamDate(results []model.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ExamDate != results[j].ExamDate {
			return results[i].ExamDate > results[j].ExamDate
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
}

func (r *resultRepo) List(_ context.Context, filter model.ResultFilter) ([]model.Result, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []model.Result{}
	for _, res := range r.s.results {
		if filter.StudentID != "" && res.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && res.CourseID != filter.CourseID {
			continue
		}
		matched = append(matched, r.join(res))
	}
	sortByExamDate(matched)
	return window(matched, filter.Page), len(matched), nil
}

func (r *resultRepo) ListByStudent(_ context.Context, studentID string) ([]model.Result, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	results := []model.Result{}
	for _, res := range r.s.results {
		if res.StudentID == studentID {
			results = append(results, r.join(res))
		}
	}
	sortByExamDate(results)
	return results, nil
}

func (r *resultRepo) GetByID(_ context.Context, id string) (*model.Result, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.results[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res = r.join(res)
	return &res, nil
}

// conflicts reports whether another result already occupies the
// (student, course, exam type, exam date) slot. Caller holds the lock.
func (r *resultRepo) conflicts(res *model.Result) bool {
	for id, existing := range r.s.results {
		if id == res.ID {
			continue
		}
		if existing.StudentID == res.StudentID && existing.CourseID == res.CourseID &&
			existing.ExamType == res.ExamType && existing.ExamDate == res.ExamDate {
			return true
		}
	}
	return false
}

// insert stores res with a fresh ID. Caller holds the write lock.
func (r *resultRepo) insert(res *model.Result) error {
	res.ID = ""
	if _, ok := r.s.students[res.StudentID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.courses[res.CourseID]; !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(res) {
		return repository.ErrDuplicateResult
	}
	res.ID = uuid.NewString()
	res.CreatedAt = r.s.now()
	res.UpdatedAt = nil
	r.s.results[res.ID] = *res
	*res = r.join(*res)
	return nil
}

func (r *resultRepo) Create(_ context.Context, res *model.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(res)
}

func (r *resultRepo) Update(_ context.Context, res *model.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.results[res.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(res) {
		return repository.ErrDuplicateResult
	}
	now := r.s.now()
	res.CreatedAt = existing.CreatedAt
	res.UpdatedAt = &now
	r.s.results[res.ID] = *res
	*res = r.join(*res)
	return nil
}

func (r *resultRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.results[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.results, id)
	return nil
}

// BulkInsert mirrors ON CONFLICT DO NOTHING: duplicates are skipped.
// A reference to a missing student or course fails the whole batch, as a
// foreign key violation would.
func (r *resultRepo) BulkInsert(_ context.Context, results []*model.Result) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range results {
		if _, ok := r.s.students[res.StudentID]; !ok {
			return 0, repository.ErrNotFound
		}
		if _, ok := r.s.courses[res.CourseID]; !ok {
			return 0, repository.ErrNotFound
		}
	}
	inserted := 0
	for _, res := range results {
		if err := r.insert(res); err != nil {
			continue
		}
		inserted++
	}
	return inserted, nil
}

func (r *resultRepo) StudentStatistics(_ context.Context, studentID string) (*model.StudentStatistics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st := &model.StudentStatistics{}
	var sum float64
	for _, res := range r.s.results {
		if res.StudentID == studentID {
			st.TotalSubjects++
			sum += res.Marks
		}
	}
	if st.TotalSubjects > 0 {
		st.AverageMarks = sum / float64(st.TotalSubjects)
	}
	return model.FinishStudentStatistics(st), nil
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

type dashboardRepo struct{ s *Store }

func (r *dashboardRepo) Totals(_ context.Context) (repository.DashboardTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var t repository.DashboardTotals
	for _, st := range r.s.students {
		if st.IsActive {
			t.Students++
		}
	}
	for _, c := range r.s.courses {
		if c.IsActive {
			t.Courses++
		}
	}
	var sum float64
	for _, res := range r.s.results {
		t.Results++
		sum += res.Marks
		if model.Passed(res.Marks) {
			t.Passed++
		}
	}
	if t.Results > 0 {
		t.AverageMarks = sum / float64(t.Results)
	}
	return t, nil
}

func (r *dashboardRepo) TopPerformers(_ context.Context, limit int) ([]model.TopPerformer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type agg struct {
		sum float64
		n   int
	}
	byStudent := map[string]*agg{}
	for _, res := range r.s.results {
		a, ok := byStudent[res.StudentID]
		if !ok {
			a = &agg{}
			byStudent[res.StudentID] = a
		}
		a.sum += res.Marks
		a.n++
	}

	performers := []model.TopPerformer{}
	for id, a := range byStudent {
		st, ok := r.s.students[id]
		if !ok || !st.IsActive {
			continue
		}
		avg := model.Round2(a.sum / float64(a.n))
		performers = append(performers, model.TopPerformer{
			Name:         st.Name,
			RollNumber:   st.RollNumber,
			AverageMarks: avg,
			Grade:        model.GradeFor(avg),
		})
	}
	sort.Slice(performers, func(i, j int) bool {
		if performers[i].AverageMarks != performers[j].AverageMarks {
			return performers[i].AverageMarks > performers[j].AverageMarks
		}
		return performers[i].RollNumber < performers[j].RollNumber
	})
	if len(performers) > limit {
		performers = performers[:limit]
	}
	return performers, nil
}

func (r *dashboardRepo) GradeCounts(_ context.Context) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int)
	for _, res := range r.s.results {
		counts[res.Grade]++
	}
	return counts, nil
}

func (r *dashboardRepo) RecentResults(_ context.Context, limit int) ([]model.Result, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	results := make([]model.Result, 0, len(r.s.results))
	for _, res := range r.s.results {
		results = append(results, r.joinResult(res))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *dashboardRepo) joinResult(res model.Result) model.Result {
	return (&resultRepo{r.s}).join(res)
}
