// Package worker runs periodic maintenance tasks in the background.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Task performs one unit of maintenance and reports how many items it
// affected.
type Task func(ctx context.Context) (int64, error)

// Config holds worker configuration
type Config struct {
	// WorkerID identifies this worker in logs
	WorkerID string

	// Name describes the task, e.g. "cache_purge"
	Name string

	// Interval is how often the task runs
	Interval time.Duration
}

// Worker runs a single Task on a fixed interval.
type Worker struct {
	config Config
	task   Task
	logger *slog.Logger
}

// NewWorker creates a worker. Interval defaults to one hour.
func NewWorker(task Task, config Config, logger *slog.Logger) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{config: config, task: task, logger: logger}
}

// Start runs the task every interval until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"task", w.config.Name,
		"interval", w.config.Interval,
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes the task a single time and logs the outcome.
func (w *Worker) RunOnce(ctx context.Context) {
	start := time.Now()
	n, err := w.task(ctx)
	if err != nil {
		w.logger.Warn("task failed",
			"worker_id", w.config.WorkerID,
			"task", w.config.Name,
			"error", err,
		)
		return
	}
	if n > 0 {
		w.logger.Debug("task completed",
			"worker_id", w.config.WorkerID,
			"task", w.config.Name,
			"count", n,
			"duration", time.Since(start),
		)
	}
}
