package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
	"github.com/stemsi/srms/internal/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ResultEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt model.ResultEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

type fixture struct {
	mr        *miniredis.Miniredis
	rdb       *redis.Client
	store     *memory.Store
	auth      *AuthService
	students  *StudentService
	courses   *CourseService
	results   *ResultService
	dashboard *DashboardService
	events    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		BcryptCost:        bcrypt.MinCost,
		DashboardCacheTTL: time.Minute,
	}
	log := zerolog.Nop()
	store := memory.New()
	events := &recordingPublisher{}

	dashboard := NewDashboardService(store.Dashboard(), rdb, cfg.DashboardCacheTTL, log)
	auth := NewAuthService(cfg, rdb, store.Admins(), store.Students(), log)
	return &fixture{
		mr:        mr,
		rdb:       rdb,
		store:     store,
		auth:      auth,
		students:  NewStudentService(store.Students(), auth, dashboard, log),
		courses:   NewCourseService(store.Courses(), dashboard, log),
		results:   NewResultService(store.Results(), store.Students(), store.Courses(), rdb, events, dashboard, log),
		dashboard: dashboard,
		events:    events,
	}
}

func (f *fixture) createStudent(t *testing.T, roll, email string) *model.Student {
	t.Helper()
	st, err := f.students.Create(context.Background(), &model.CreateStudentRequest{
		RollNumber: roll, Name: "Student " + roll, Email: email, Password: "secret123", Class: "10A",
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return st
}

func (f *fixture) createCourse(t *testing.T, code string) *model.Course {
	t.Helper()
	c, err := f.courses.Create(context.Background(), &model.CourseRequest{
		CourseName: "Course " + code, CourseCode: code, Credits: 3, Semester: "1",
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

func marks(v float64) *float64 { return &v }

// ─── Auth ───────────────────────────────────────────────────────────────────

func TestLoginChecksAdminsThenStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, _ := f.auth.HashPassword("adminpass")
	if err := f.store.Admins().Create(ctx, &model.Admin{Name: "Root", Email: "admin@school.test", PasswordHash: hash, IsActive: true}); err != nil {
		t.Fatal(err)
	}
	st := f.createStudent(t, "R1", "ana@school.test")

	resp, err := f.auth.Login(ctx, "admin@school.test", "adminpass")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if resp.User.Role != model.RoleAdmin || resp.Token == "" {
		t.Errorf("admin login response = %+v", resp)
	}

	resp, err = f.auth.Login(ctx, "ANA@school.test", "secret123")
	if err != nil {
		t.Fatalf("student login: %v", err)
	}
	if resp.User.Role != model.RoleStudent || resp.User.ID != st.ID {
		t.Errorf("student login user = %+v", resp.User)
	}

	if _, err := f.auth.Login(ctx, "ana@school.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := f.auth.Login(ctx, "nobody@school.test", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestRegisteredStudentCannotLoginUntilApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.auth.Register(ctx, &model.RegisterRequest{
		RollNumber: "R9", Name: "Budi", Email: "budi@school.test", Password: "secret123", Class: "11B",
	})
	if err != nil {
		t.Fatal(err)
	}
	if st.IsActive {
		t.Fatal("registered student should be pending")
	}
	if _, err := f.auth.Login(ctx, "budi@school.test", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("pending login: got %v", err)
	}

	if _, err := f.students.Approve(ctx, st.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.auth.Login(ctx, "budi@school.test", "secret123"); err != nil {
		t.Errorf("approved login: %v", err)
	}
}

func TestTokenSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := model.User{ID: "u-1", Email: "a@b.c", Name: "A", Role: model.RoleAdmin}

	token, err := f.auth.GenerateToken(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.auth.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.User() != user {
		t.Errorf("claims user = %+v, want %+v", claims.User(), user)
	}
	if ttl := f.mr.TTL(config.CacheKey.SessionKey(claims.ID)); ttl != time.Hour {
		t.Errorf("session ttl = %v", ttl)
	}
	if err := f.auth.ValidateSession(ctx, claims); err != nil {
		t.Errorf("fresh session: %v", err)
	}

	if err := f.auth.Logout(ctx, claims); err != nil {
		t.Fatal(err)
	}
	if err := f.auth.ValidateSession(ctx, claims); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("after logout: got %v", err)
	}

	if _, err := f.auth.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}

// ─── Students ───────────────────────────────────────────────────────────────

func TestStudentSelfUpdateKeepsClass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStudent(t, "R1", "ana@school.test")

	req := &model.UpdateStudentRequest{Name: "Ana Maria", Email: "ana@school.test", Class: "12Z"}
	updated, err := f.students.Update(ctx, st.ID, req, model.RoleStudent)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Class != "10A" || updated.Name != "Ana Maria" {
		t.Errorf("student update = %+v", updated)
	}

	updated, err = f.students.Update(ctx, st.ID, req, model.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Class != "12Z" {
		t.Errorf("admin update class = %q", updated.Class)
	}
}

func TestStudentDeleteIsSoft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStudent(t, "R1", "ana@school.test")

	if err := f.students.Delete(ctx, st.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.students.Get(ctx, st.ID); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("get deleted: %v", err)
	}
	list, page, err := f.students.List(ctx, model.StudentFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 || page.TotalItems != 0 || page.Limit != model.DefaultPageLimit {
		t.Errorf("list after delete = %v %+v", list, page)
	}
	if _, err := f.store.Students().GetByID(ctx, st.ID); err != nil {
		t.Errorf("record should still exist: %v", err)
	}
}

func TestDuplicateStudentKeys(t *testing.T) {
	f := newFixture(t)
	f.createStudent(t, "R1", "ana@school.test")
	_, err := f.students.Create(context.Background(), &model.CreateStudentRequest{
		RollNumber: "R1", Name: "Other", Email: "other@school.test", Password: "secret123", Class: "10A",
	})
	if !errors.Is(err, repository.ErrDuplicateRollNumber) {
		t.Errorf("got %v", err)
	}
}

// ─── Results ────────────────────────────────────────────────────────────────

func TestCreateResultDerivesGradeAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStudent(t, "R1", "ana@school.test")
	c := f.createCourse(t, "MATH101")

	req := &model.ResultRequest{StudentID: st.ID, CourseID: c.ID, Marks: marks(89.5), ExamDate: "2024-05-01", ExamType: "final"}
	r, err := f.results.Create(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if r.Grade != "A" || r.Percentage != 89.5 || r.CourseCode != "MATH101" || r.StudentName != st.Name {
		t.Errorf("result = %+v", r)
	}
	if len(f.events.events) != 1 || f.events.events[0].Event != model.ResultCreated || f.events.events[0].ResultID != r.ID {
		t.Errorf("events = %+v", f.events.events)
	}

	if _, err := f.results.Create(ctx, req); !errors.Is(err, repository.ErrDuplicateResult) {
		t.Errorf("duplicate: got %v", err)
	}
}

func TestCreateResultRequiresStudentAndCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStudent(t, "R1", "ana@school.test")
	c := f.createCourse(t, "MATH101")

	missingStudent := &model.ResultRequest{StudentID: "00000000-0000-0000-0000-000000000000", CourseID: c.ID, Marks: marks(50), ExamDate: "2024-05-01", ExamType: "final"}
	if _, err := f.results.Create(ctx, missingStudent); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("missing student: got %v", err)
	}

	if err := f.courses.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	inactiveCourse := &model.ResultRequest{StudentID: st.ID, CourseID: c.ID, Marks: marks(50), ExamDate: "2024-05-01", ExamType: "final"}
	if _, err := f.results.Create(ctx, inactiveCourse); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("inactive course: got %v", err)
	}
}

func TestUpdateAndDeleteResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.createStudent(t, "R1", "ana@school.test")
	c := f.createCourse(t, "MATH101")

	r, err := f.results.Create(ctx, &model.ResultRequest{StudentID: st.ID, CourseID: c.ID, Marks: marks(30), ExamDate: "2024-05-01", ExamType: "final"})
	if err != nil {
		t.Fatal(err)
	}
	updated, err := f.results.Update(ctx, r.ID, &model.ResultRequest{StudentID: st.ID, CourseID: c.ID, Marks: marks(95), ExamDate: "2024-05-01", ExamType: "final"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Grade != "A+" || updated.UpdatedAt == nil {
		t.Errorf("updated = %+v", updated)
	}

	if err := f.results.Delete(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.results.Get(ctx, r.ID); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("after delete: %v", err)
	}
	if got := len(f.events.events); got != 3 {
		t.Errorf("events = %d, want 3", got)
	}
}

func TestQueueBulkPushesDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reqs := []model.ResultRequest{
		{StudentID: "s1", CourseID: "c1", Marks: marks(10), ExamDate: "2024-01-01", ExamType: "quiz"},
		{StudentID: "s2", CourseID: "c1", Marks: marks(20), ExamDate: "2024-01-01", ExamType: "quiz"},
	}
	n, err := f.results.QueueBulk(ctx, reqs)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("queued = %d", n)
	}
	if l, _ := f.rdb.LLen(ctx, config.WorkerKey.ResultImportQueue).Result(); l != 2 {
		t.Errorf("queue length = %d", l)
	}
}

func TestStudentStatisticsWithoutResults(t *testing.T) {
	f := newFixture(t)
	st := f.createStudent(t, "R1", "ana@school.test")

	stats, err := f.results.StudentStatistics(context.Background(), st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.OverallGrade != model.GradeNone || stats.GPA != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

func TestDashboardStatsAndCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createStudent(t, "R1", "a@school.test")
	b := f.createStudent(t, "R2", "b@school.test")
	c := f.createCourse(t, "MATH101")

	for _, req := range []*model.ResultRequest{
		{StudentID: a.ID, CourseID: c.ID, Marks: marks(95), ExamDate: "2024-01-01", ExamType: "mid"},
		{StudentID: a.ID, CourseID: c.ID, Marks: marks(85), ExamDate: "2024-06-01", ExamType: "final"},
		{StudentID: b.ID, CourseID: c.ID, Marks: marks(20), ExamDate: "2024-06-01", ExamType: "final"},
	} {
		if _, err := f.results.Create(ctx, req); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := f.dashboard.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalStudents != 2 || stats.TotalCourses != 1 || stats.TotalResults != 3 {
		t.Errorf("totals = %+v", stats)
	}
	if stats.AverageMarks != 66.67 || stats.AverageGrade != "B" || stats.PassRate != 66.67 {
		t.Errorf("averages = %v %q %v", stats.AverageMarks, stats.AverageGrade, stats.PassRate)
	}
	wantGrades := []string{"A+", "A", "F"}
	if len(stats.GradeDistribution) != len(wantGrades) {
		t.Fatalf("distribution = %+v", stats.GradeDistribution)
	}
	for i, g := range wantGrades {
		if stats.GradeDistribution[i].Grade != g {
			t.Errorf("distribution[%d] = %q, want %q", i, stats.GradeDistribution[i].Grade, g)
		}
	}
	if len(stats.TopPerformers) != 2 || stats.TopPerformers[0].RollNumber != "R1" {
		t.Errorf("top performers = %+v", stats.TopPerformers)
	}
	if len(stats.RecentResults) != 3 {
		t.Errorf("recent = %d", len(stats.RecentResults))
	}

	if !f.mr.Exists(config.CacheKey.DashboardStatsKey()) {
		t.Fatal("stats were not cached")
	}

	f.createStudent(t, "R3", "c@school.test")
	if f.mr.Exists(config.CacheKey.DashboardStatsKey()) {
		t.Error("mutation should invalidate the cache")
	}
	stats, _ = f.dashboard.Stats(ctx)
	if stats.TotalStudents != 3 {
		t.Errorf("recomputed students = %d", stats.TotalStudents)
	}
}

func TestDashboardServesCachedCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.mr.Set(config.CacheKey.DashboardStatsKey(), `{"totalStudents":42,"averageGrade":"A"}`); err != nil {
		t.Fatal(err)
	}
	stats, err := f.dashboard.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalStudents != 42 {
		t.Errorf("expected cached copy, got %+v", stats)
	}
}

func TestDashboardEmpty(t *testing.T) {
	f := newFixture(t)
	stats, err := f.dashboard.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.AverageGrade != model.GradeNone || stats.PassRate != 0 || stats.TopPerformers == nil || stats.GradeDistribution == nil {
		t.Errorf("empty stats = %+v", stats)
	}
}
