package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
)

func seedStudent(t *testing.T, s *Store, roll, email string) *model.Student {
	t.Helper()
	st := &model.Student{RollNumber: roll, Name: "Student " + roll, Email: email, Class: "10A", IsActive: true}
	if err := s.Students().Create(context.Background(), st); err != nil {
		t.Fatalf("create student %s: %v", roll, err)
	}
	return st
}

func seedCourse(t *testing.T, s *Store, code string) *model.Course {
	t.Helper()
	c := &model.Course{CourseName: "Course " + code, CourseCode: code, Credits: 3, Semester: "1"}
	if err := s.Courses().Create(context.Background(), c); err != nil {
		t.Fatalf("create course %s: %v", code, err)
	}
	return c
}

func TestStudentsUniqueKeys(t *testing.T) {
	s := New()
	seedStudent(t, s, "R1", "a@example.com")

	err := s.Students().Create(context.Background(), &model.Student{RollNumber: "R1", Email: "b@example.com"})
	if !errors.Is(err, repository.ErrDuplicateRollNumber) {
		t.Errorf("duplicate roll: got %v", err)
	}
	err = s.Students().Create(context.Background(), &model.Student{RollNumber: "R2", Email: "A@example.com"})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("duplicate email: got %v", err)
	}
}

func TestStudentsListSkipsInactiveAndPages(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedStudent(t, s, "R3", "c@example.com")
	gone := seedStudent(t, s, "R2", "b@example.com")
	seedStudent(t, s, "R1", "a@example.com")

	if err := s.Students().SetActive(ctx, gone.ID, false); err != nil {
		t.Fatal(err)
	}

	list, total, err := s.Students().List(ctx, model.StudentFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("total=%d len=%d, want 2", total, len(list))
	}
	if list[0].RollNumber != "R1" || list[1].RollNumber != "R3" {
		t.Errorf("order = %s, %s", list[0].RollNumber, list[1].RollNumber)
	}

	list, total, _ = s.Students().List(ctx, model.StudentFilter{Page: model.Page{Limit: 1, Offset: 1}})
	if total != 2 || len(list) != 1 || list[0].RollNumber != "R3" {
		t.Errorf("second page = %+v (total %d)", list, total)
	}

	list, _, _ = s.Students().List(ctx, model.StudentFilter{Search: "A@EXAMPLE"})
	if len(list) != 1 || list[0].RollNumber != "R1" {
		t.Errorf("search = %+v", list)
	}
}

func TestResultsDuplicateAndJoin(t *testing.T) {
	s := New()
	ctx := context.Background()
	st := seedStudent(t, s, "R1", "a@example.com")
	c := seedCourse(t, s, "MATH101")

	res := &model.Result{StudentID: st.ID, CourseID: c.ID, Marks: 91, Grade: "A+", ExamDate: "2024-05-01", ExamType: "final"}
	if err := s.Results().Create(ctx, res); err != nil {
		t.Fatal(err)
	}
	if res.StudentName != st.Name || res.CourseCode != "MATH101" {
		t.Errorf("join fields missing: %+v", res)
	}

	dup := *res
	if err := s.Results().Create(ctx, &dup); !errors.Is(err, repository.ErrDuplicateResult) {
		t.Errorf("duplicate result: got %v", err)
	}

	missing := &model.Result{StudentID: "nope", CourseID: c.ID, ExamDate: "2024-05-01", ExamType: "final"}
	if err := s.Results().Create(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing student: got %v", err)
	}
}

func TestResultsBulkInsertSkipsDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()
	st := seedStudent(t, s, "R1", "a@example.com")
	c := seedCourse(t, s, "MATH101")

	batch := []*model.Result{
		{StudentID: st.ID, CourseID: c.ID, Marks: 50, Grade: "C+", ExamDate: "2024-01-01", ExamType: "mid"},
		{StudentID: st.ID, CourseID: c.ID, Marks: 55, Grade: "C+", ExamDate: "2024-01-01", ExamType: "mid"},
		{StudentID: st.ID, CourseID: c.ID, Marks: 70, Grade: "B+", ExamDate: "2024-06-01", ExamType: "final"},
	}
	n, err := s.Results().BulkInsert(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	list, err := s.Results().ListByStudent(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ExamDate != "2024-06-01" {
		t.Errorf("listing = %+v", list)
	}
}

func TestStatistics(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seedStudent(t, s, "R1", "a@example.com")
	b := seedStudent(t, s, "R2", "b@example.com")
	c := seedCourse(t, s, "MATH101")

	for _, r := range []*model.Result{
		{StudentID: a.ID, CourseID: c.ID, Marks: 90, Grade: "A+", ExamDate: "2024-01-01", ExamType: "mid"},
		{StudentID: a.ID, CourseID: c.ID, Marks: 80, Grade: "A", ExamDate: "2024-06-01", ExamType: "final"},
		{StudentID: b.ID, CourseID: c.ID, Marks: 30, Grade: "F", ExamDate: "2024-06-01", ExamType: "final"},
	} {
		if err := s.Results().Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	st, _ := s.Results().StudentStatistics(ctx, a.ID)
	if st.TotalSubjects != 2 || st.AverageMarks != 85 || st.OverallGrade != "A" || st.GPA != 3.4 {
		t.Errorf("student stats = %+v", st)
	}

	none, _ := s.Results().StudentStatistics(ctx, "nobody")
	if none.OverallGrade != model.GradeNone || none.TotalSubjects != 0 {
		t.Errorf("empty stats = %+v", none)
	}

	cs, _ := s.Courses().Statistics(ctx, c.ID)
	if cs.TotalStudents != 2 || cs.HighestMarks != 90 || cs.LowestMarks != 30 || cs.PassedStudents != 2 || cs.FailedStudents != 1 {
		t.Errorf("course stats = %+v", cs)
	}

	top, _ := s.Dashboard().TopPerformers(ctx, 5)
	if len(top) != 2 || top[0].RollNumber != "R1" || top[0].Grade != "A" {
		t.Errorf("top performers = %+v", top)
	}
}
