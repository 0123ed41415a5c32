package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ainews/app/database"
	"ainews/app/news"
	"ainews/app/source"
)

// IngestTask runs one source end to end: fetch, filter, dedup, store.
// Storage is append-only; a record that loses the dedup check is skipped,
// never updated.
type IngestTask struct {
	Task
	adapter source.Adapter
	window  source.Window
	filter  *news.Filter
	gate    *news.Gate
	store   database.ItemStore
	timeout time.Duration
}

// NewIngestTask builds a task for one adapter. A positive timeout bounds
// the whole fetch; zero disables the deadline.
func NewIngestTask(adapter source.Adapter, window source.Window, filter *news.Filter, gate *news.Gate, store database.ItemStore, timeout time.Duration) *IngestTask {
	return &IngestTask{
		Task:    NewTask(TaskTypeIngest, string(adapter.Kind())),
		adapter: adapter,
		window:  window,
		filter:  filter,
		gate:    gate,
		store:   store,
		timeout: timeout,
	}
}

func (t *IngestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fetchCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	fetched, err := t.adapter.Fetch(fetchCtx, t.window)
	if err != nil {
		return fmt.Errorf("failed to fetch from %s: %w", t.Source, err)
	}

	filtered := t.filter.Run(fetched)

	duplicateCount := 0
	newCount := 0

	for _, rec := range filtered.Admitted {
		fresh, err := t.gate.Admit(rec)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}
		if !fresh {
			duplicateCount++
			continue
		}

		if err := t.store.Insert(rec); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				duplicateCount++
				continue
			}
			return fmt.Errorf("failed to store item: %w", err)
		}
		newCount++
	}

	slog.Info("Task completed",
		"type", "Ingest",
		"source", t.Source,
		"duration", t.GetDuration(),
		"fetched", len(fetched),
		"out_of_window", filtered.OutOfWindow,
		"off_topic", filtered.OffTopic,
		"duplicates", duplicateCount,
		"new", newCount)

	return nil
}
