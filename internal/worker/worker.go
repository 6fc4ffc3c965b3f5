// Package worker implements the asynchronous quote archive: a non-blocking
// sink that enqueues asynq tasks and the task handler writing them to the store.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"smartrate/internal/repository"
)

// TaskTypeArchiveQuote is the asynq task type of archive writes.
const TaskTypeArchiveQuote = "quote:archive"

// NewArchiveHandler returns a function to handle quote archive tasks.
func NewArchiveHandler(repo repository.QuoteArchive, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ArchivePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return fmt.Errorf("decode %s payload: %w", t.Type(), asynq.SkipRetry)
		}

		inserted, err := repo.Insert(ctx, payload.Record())
		if err != nil {
			logger.Errorw("Archive write failed", "quote_id", payload.ID, "error", err)
			return err
		}

		logger.Infow("Quote archived", "quote_id", payload.ID, "pair", payload.Base+payload.Target, "duplicate", !inserted)
		return nil
	}
}

// AsynqEnqueuer is responsible for enqueuing tasks to an Asynq queue with specific configurations for retries and timeouts.
type AsynqEnqueuer struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client, retry limit, and task timeout duration.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:   client,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

// EnqueueArchiveTask enqueues a quote archive task. The task ID is the quote
// ID, so a resubmitted quote is rejected by the queue as a duplicate.
func (e *AsynqEnqueuer) EnqueueArchiveTask(ctx context.Context, payload ArchivePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeArchiveQuote, data,
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(e.timeout),
		asynq.TaskID(payload.ID),
	)

	_, err = e.client.EnqueueContext(ctx, task)
	return err
}
