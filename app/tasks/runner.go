package tasks

import (
	"context"
	"log/slog"
)

// RunStats summarizes one pipeline run.
type RunStats struct {
	Succeeded int
	Failed    int
}

// Runner executes ingest tasks sequentially. A failing source is logged
// and skipped; it never aborts the run or touches the other sources.
type Runner struct {
	tasks []*IngestTask
}

func NewRunner(tasks []*IngestTask) *Runner {
	return &Runner{tasks: tasks}
}

func (r *Runner) Run(ctx context.Context) RunStats {
	var stats RunStats

	for _, task := range r.tasks {
		task.Start()

		if err := task.Execute(ctx); err != nil {
			slog.Warn("Source ingest failed", "source", task.GetSource(), "error", err)
			stats.Failed++
			continue
		}
		stats.Succeeded++
	}

	return stats
}
