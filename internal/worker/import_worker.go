package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/metrics"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
)

const (
	ImportBatchSize    = 50
	ImportBatchTimeout = 2 * time.Second
	ImportPollTimeout  = 1 * time.Second
)

// Publisher receives the per-batch import notification.
type Publisher interface {
	Publish(ctx context.Context, evt model.ResultEvent)
}

// Invalidator drops cached aggregates after a batch lands.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// ImportWorker drains the bulk result queue into the results table.
type ImportWorker struct {
	results repository.ResultRepository
	rdb     *redis.Client
	events  Publisher
	stats   Invalidator
	log     zerolog.Logger
}

func NewImportWorker(results repository.ResultRepository, rdb *redis.Client, events Publisher, stats Invalidator, log zerolog.Logger) *ImportWorker {
	return &ImportWorker{
		results: results,
		rdb:     rdb,
		events:  events,
		stats:   stats,
		log:     log.With().Str("component", "import_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled. The batch in hand is flushed on the
// way out.
func (w *ImportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ImportWorker started")

	batch := make([]*model.Result, 0, ImportBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ImportBatchSize || time.Since(lastFlush) >= ImportBatchTimeout) {

			w.Flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.Flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ImportPollTimeout, config.WorkerKey.ResultImportQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var r model.Result
			if err := json.Unmarshal([]byte(item[1]), &r); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				metrics.RecordImport(metrics.ImportDiscarded, 1)
				continue
			}

			batch = append(batch, &r)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with row-by-row fallback
// ----------------------------------------------------------------

// Flush persists one batch and returns how many rows were inserted.
// Duplicates are skipped, drafts pointing at missing students or courses or
// rejected as invalid data are discarded, and any other row failure goes
// back on the queue.
func (w *ImportWorker) Flush(ctx context.Context, batch []*model.Result) int {
	if len(batch) == 0 {
		return 0
	}

	inserted, err := w.results.BulkInsert(ctx, batch)
	if err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk result insert failed, using fallback")
		inserted = w.insertEach(ctx, batch)
	} else {
		metrics.RecordImport(metrics.ImportSkipped, len(batch)-inserted)
	}
	metrics.RecordImport(metrics.ImportInserted, inserted)

	if inserted > 0 {
		w.stats.Invalidate(ctx)
		w.events.Publish(ctx, model.ResultEvent{
			Event: model.ResultImported,
			Count: inserted,
			At:    time.Now().UTC(),
		})
	}

	w.log.Info().Int("size", len(batch)).Int("inserted", inserted).Msg("Result batch flushed")
	return inserted
}

func (w *ImportWorker) insertEach(ctx context.Context, batch []*model.Result) int {
	inserted := 0
	for _, r := range batch {
		err := w.results.Create(ctx, r)
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, repository.ErrDuplicateResult):
			metrics.RecordImport(metrics.ImportSkipped, 1)
		case errors.Is(err, repository.ErrNotFound):
			w.log.Warn().Str("student_id", r.StudentID).Str("course_id", r.CourseID).Msg("Discarding draft with unknown reference")
			metrics.RecordImport(metrics.ImportDiscarded, 1)
		case errors.Is(err, repository.ErrInvalidData):
			w.log.Warn().Err(err).Str("student_id", r.StudentID).Str("course_id", r.CourseID).Msg("Discarding draft rejected by the database")
			metrics.RecordImport(metrics.ImportDiscarded, 1)
		default:
			w.requeue(ctx, r, err)
		}
	}
	return inserted
}

// requeue pushes a row that failed for a transient reason back on the queue.
func (w *ImportWorker) requeue(ctx context.Context, r *model.Result, cause error) {
	raw, err := json.Marshal(r)
	if err != nil {
		w.log.Error().Err(err).Msg("encode result for requeue failed, dropping draft")
		metrics.RecordImport(metrics.ImportDiscarded, 1)
		return
	}
	if err := w.rdb.RPush(ctx, config.WorkerKey.ResultImportQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).AnErr("cause", cause).Str("student_id", r.StudentID).Msg("requeue result failed, dropping draft")
		metrics.RecordImport(metrics.ImportDiscarded, 1)
		return
	}
	w.log.Error().Err(cause).Msg("persist result failed, requeued")
	metrics.RecordImport(metrics.ImportRequeued, 1)
}
