// Package seed loads the demo school used by cmd/seed and by the server's
// in-memory storage mode.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Demo credentials.
const (
	AdminEmail      = "admin@school.edu"
	AdminPassword   = "password"
	StudentPassword = "password"
)

// Repositories is the storage the seeder writes into.
type Repositories struct {
	Admins   repository.AdminRepository
	Students repository.StudentRepository
	Courses  repository.CourseRepository
	Results  repository.ResultRepository
}

// Summary counts the rows created by one run. Rows that already existed are
// not counted.
type Summary struct {
	Admins   int
	Students int
	Courses  int
	Results  int
}

type demoStudent struct {
	roll, name, email, class, guardian string
}

var students = []demoStudent{
	{"2024001", "John Smith", "john.smith@student.edu", "10-A", "Robert Smith"},
	{"2024002", "Emily Johnson", "emily.johnson@student.edu", "10-A", "Michael Johnson"},
	{"2024003", "Sarah Wilson", "sarah.wilson@student.edu", "10-B", "David Wilson"},
	{"2024004", "Michael Brown", "michael.brown@student.edu", "10-B", "Lisa Brown"},
	{"2024005", "Jessica Davis", "jessica.davis@student.edu", "11-A", "James Davis"},
	{"2024006", "David Miller", "david.miller@student.edu", "11-A", "Susan Miller"},
	{"2024007", "Ashley Garcia", "ashley.garcia@student.edu", "11-B", "Carlos Garcia"},
	{"2024008", "Christopher Lee", "christopher.lee@student.edu", "11-B", "Maria Lee"},
	{"2024009", "Amanda Rodriguez", "amanda.rodriguez@student.edu", "12-A", "Jose Rodriguez"},
	{"2024010", "Matthew Martinez", "matthew.martinez@student.edu", "12-A", "Ana Martinez"},
	{"2024011", "Lauren Anderson", "lauren.anderson@student.edu", "12-B", "Kevin Anderson"},
	{"2024012", "Joshua Taylor", "joshua.taylor@student.edu", "12-B", "Jennifer Taylor"},
}

var courses = []model.Course{
	{CourseCode: "MATH101", CourseName: "Mathematics", Credits: 4, Semester: "1"},
	{CourseCode: "PHY101", CourseName: "Physics", Credits: 4, Semester: "1"},
	{CourseCode: "CHEM101", CourseName: "Chemistry", Credits: 3, Semester: "1"},
	{CourseCode: "ENG101", CourseName: "English Literature", Credits: 3, Semester: "1"},
	{CourseCode: "BIO101", CourseName: "Biology", Credits: 3, Semester: "2"},
	{CourseCode: "HIST101", CourseName: "History", Credits: 2, Semester: "2"},
	{CourseCode: "CS101", CourseName: "Computer Science", Credits: 4, Semester: "2"},
	{CourseCode: "GEO101", CourseName: "Geography", Credits: 2, Semester: "2"},
}

var examDates = []string{"2024-03-15", "2024-03-20", "2024-03-25"}

// Run creates the demo admin, students, courses and results. It is safe to
// run repeatedly: existing rows are left untouched.
func Run(ctx context.Context, repos Repositories, bcryptCost int, log zerolog.Logger) (Summary, error) {
	log = log.With().Str("component", "seed").Logger()
	var sum Summary

	adminHash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcryptCost)
	if err != nil {
		return sum, fmt.Errorf("hash admin password: %w", err)
	}
	err = repos.Admins.Create(ctx, &model.Admin{
		Name:         "System Administrator",
		Email:        AdminEmail,
		PasswordHash: string(adminHash),
		IsActive:     true,
	})
	switch {
	case err == nil:
		sum.Admins++
	case !errors.Is(err, repository.ErrDuplicateEmail):
		return sum, fmt.Errorf("create admin: %w", err)
	}

	studentHash, err := bcrypt.GenerateFromPassword([]byte(StudentPassword), bcryptCost)
	if err != nil {
		return sum, fmt.Errorf("hash student password: %w", err)
	}
	for i, s := range students {
		guardian := s.guardian
		phone := fmt.Sprintf("123-456-%04d", 7890+2*i)
		err := repos.Students.Create(ctx, &model.Student{
			RollNumber:   s.roll,
			Name:         s.name,
			Email:        s.email,
			PasswordHash: string(studentHash),
			Class:        s.class,
			Phone:        &phone,
			GuardianName: &guardian,
			IsActive:     true,
		})
		if err != nil && !isDuplicate(err) {
			return sum, fmt.Errorf("create student %s: %w", s.roll, err)
		}
		if err == nil {
			sum.Students++
		}
	}

	for i := range courses {
		c := courses[i]
		c.IsActive = true
		err := repos.Courses.Create(ctx, &c)
		if err != nil && !errors.Is(err, repository.ErrDuplicateCourseCode) {
			return sum, fmt.Errorf("create course %s: %w", c.CourseCode, err)
		}
		if err == nil {
			sum.Courses++
		}
	}

	studentIDs, courseIDs, err := lookupIDs(ctx, repos)
	if err != nil {
		return sum, err
	}

	drafts := make([]*model.Result, 0, len(students)*3)
	for i, s := range students {
		sid, ok := studentIDs[s.roll]
		if !ok {
			continue
		}
		for j, offset := range []int{0, 1, 3} {
			c := courses[(i+offset)%len(courses)]
			cid, ok := courseIDs[c.CourseCode]
			if !ok {
				continue
			}
			req := model.ResultRequest{
				StudentID: sid,
				CourseID:  cid,
				Marks:     ptr(Marks(i, j)),
				ExamDate:  examDates[j],
				ExamType:  "Final Exam",
			}
			drafts = append(drafts, req.ToResult())
		}
	}

	inserted, err := repos.Results.BulkInsert(ctx, drafts)
	if err != nil {
		return sum, fmt.Errorf("insert results: %w", err)
	}
	sum.Results = inserted

	log.Info().
		Int("admins", sum.Admins).
		Int("students", sum.Students).
		Int("courses", sum.Courses).
		Int("results", sum.Results).
		Msg("Demo data seeded")
	return sum, nil
}

// Marks spreads the demo scores over every grade band, including failures.
func Marks(student, exam int) float64 {
	raw := 28 + float64((student*37+exam*23)%72) + float64((student+exam)%4)*0.25
	return math.Min(raw, 100)
}

func lookupIDs(ctx context.Context, repos Repositories) (map[string]string, map[string]string, error) {
	studentOpts, err := repos.Students.Dropdown(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list students: %w", err)
	}
	courseOpts, err := repos.Courses.Dropdown(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list courses: %w", err)
	}

	studentIDs := make(map[string]string, len(studentOpts))
	for _, o := range studentOpts {
		studentIDs[o.RollNumber] = o.ID
	}
	courseIDs := make(map[string]string, len(courseOpts))
	for _, o := range courseOpts {
		courseIDs[o.CourseCode] = o.ID
	}
	return studentIDs, courseIDs, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicateRollNumber) || errors.Is(err, repository.ErrDuplicateEmail)
}

func ptr(f float64) *float64 { return &f }
