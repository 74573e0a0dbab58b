package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
	"github.com/stemsi/srms/internal/repository/memory"
)

type recorder struct {
	mu          sync.Mutex
	events      []model.ResultEvent
	invalidated int
}

func (r *recorder) Publish(_ context.Context, evt model.ResultEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) Invalidate(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated++
}

type workerFixture struct {
	rdb       *redis.Client
	store     *memory.Store
	rec       *recorder
	worker    *ImportWorker
	studentID string
	courseID  string
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	store := memory.New()
	st := &model.Student{RollNumber: "R001", Name: "Asha", Email: "asha@example.com", Class: "10A", IsActive: true}
	if err := store.Students().Create(ctx, st); err != nil {
		t.Fatalf("create student: %v", err)
	}
	co := &model.Course{CourseName: "Mathematics", CourseCode: "MATH101", Credits: 4, IsActive: true}
	if err := store.Courses().Create(ctx, co); err != nil {
		t.Fatalf("create course: %v", err)
	}

	rec := &recorder{}
	return &workerFixture{
		rdb:       rdb,
		store:     store,
		rec:       rec,
		worker:    NewImportWorker(store.Results(), rdb, rec, rec, zerolog.Nop()),
		studentID: st.ID,
		courseID:  co.ID,
	}
}

func (f *workerFixture) draft(examType string, marks float64) *model.Result {
	return &model.Result{
		StudentID:  f.studentID,
		CourseID:   f.courseID,
		Marks:      marks,
		Grade:      model.GradeFor(marks),
		Percentage: marks,
		ExamDate:   "2024-03-01",
		ExamType:   examType,
	}
}

func (f *workerFixture) resultCount(t *testing.T) int {
	t.Helper()
	list, err := f.store.Results().ListByStudent(context.Background(), f.studentID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	return len(list)
}

func TestFlushSkipsDuplicates(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	batch := []*model.Result{f.draft("midterm", 81), f.draft("final", 92), f.draft("midterm", 70)}
	if got := f.worker.Flush(ctx, batch); got != 2 {
		t.Fatalf("inserted = %d, want 2", got)
	}
	if got := f.resultCount(t); got != 2 {
		t.Fatalf("stored results = %d, want 2", got)
	}

	if len(f.rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(f.rec.events))
	}
	evt := f.rec.events[0]
	if evt.Event != model.ResultImported || evt.Count != 2 {
		t.Errorf("event = %+v, want imported with count 2", evt)
	}
	if f.rec.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", f.rec.invalidated)
	}
}

func TestFlushFallbackDiscardsUnknownReferences(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	orphan := f.draft("quiz", 55)
	orphan.StudentID = uuid.NewString()

	if got := f.worker.Flush(ctx, []*model.Result{f.draft("midterm", 64), orphan}); got != 1 {
		t.Fatalf("inserted = %d, want 1", got)
	}
	if got := f.resultCount(t); got != 1 {
		t.Fatalf("stored results = %d, want 1", got)
	}

	queued, err := f.rdb.LLen(ctx, config.WorkerKey.ResultImportQueue).Result()
	if err != nil {
		t.Fatalf("llen: %v", err)
	}
	if queued != 0 {
		t.Errorf("queue length = %d, want 0 (orphan must not be requeued)", queued)
	}
}

func TestFlushEmptyBatchIsQuiet(t *testing.T) {
	f := newWorkerFixture(t)
	if got := f.worker.Flush(context.Background(), nil); got != 0 {
		t.Fatalf("inserted = %d, want 0", got)
	}
	if len(f.rec.events) != 0 || f.rec.invalidated != 0 {
		t.Errorf("empty flush must not notify, got %d events, %d invalidations", len(f.rec.events), f.rec.invalidated)
	}
}

func TestStartDrainsQueueAndFlushesOnShutdown(t *testing.T) {
	f := newWorkerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, typ := range []string{"quiz", "midterm", "final"} {
		raw, err := json.Marshal(f.draft(typ, 75))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := f.rdb.RPush(ctx, config.WorkerKey.ResultImportQueue, raw).Err(); err != nil {
			t.Fatalf("rpush: %v", err)
		}
	}
	if err := f.rdb.RPush(ctx, config.WorkerKey.ResultImportQueue, "not json").Err(); err != nil {
		t.Fatalf("rpush: %v", err)
	}

	done := make(chan struct{})
	go func() {
		f.worker.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := f.rdb.LLen(context.Background(), config.WorkerKey.ResultImportQueue).Result()
		if err != nil {
			t.Fatalf("llen: %v", err)
		}
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("queue not drained, %d items left", n)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	if got := f.resultCount(t); got != 3 {
		t.Fatalf("stored results = %d, want 3", got)
	}
}

// failingResults rejects bulk inserts and fails row inserts for the exam
// types listed in rowErr.
type failingResults struct {
	repository.ResultRepository
	rowErr map[string]error
}

func (f *failingResults) BulkInsert(context.Context, []*model.Result) (int, error) {
	return 0, errors.New("bulk insert unavailable")
}

func (f *failingResults) Create(ctx context.Context, r *model.Result) error {
	if err, ok := f.rowErr[r.ExamType]; ok {
		return err
	}
	return f.ResultRepository.Create(ctx, r)
}

func TestFlushFallbackDiscardsInvalidRowsAndRequeuesTransientOnes(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()
	repo := &failingResults{
		ResultRepository: f.store.Results(),
		rowErr: map[string]error{
			"quiz":  fmt.Errorf("%w: check constraint", repository.ErrInvalidData),
			"final": errors.New("connection reset"),
		},
	}
	w := NewImportWorker(repo, f.rdb, f.rec, f.rec, zerolog.Nop())

	batch := []*model.Result{f.draft("midterm", 64), f.draft("quiz", 50), f.draft("final", 88)}
	if got := w.Flush(ctx, batch); got != 1 {
		t.Fatalf("inserted = %d, want 1", got)
	}

	queued, err := f.rdb.LRange(ctx, config.WorkerKey.ResultImportQueue, 0, -1).Result()
	if err != nil {
		t.Fatalf("lrange: %v", err)
	}
	if len(queued) != 1 {
		t.Fatalf("queue length = %d, want 1", len(queued))
	}
	var back model.Result
	if err := json.Unmarshal([]byte(queued[0]), &back); err != nil {
		t.Fatalf("decode requeued draft: %v", err)
	}
	if back.ExamType != "final" {
		t.Errorf("requeued exam type = %q, want final", back.ExamType)
	}
}
