package task

import "github.com/VictoriaMetrics/metrics"

// Operational counters for task execution. Exposed through the default
// metrics set; a caller embedding the engine can write them out with
// metrics.WritePrometheus.
var (
	runsTotal        = metrics.NewCounter(`kdbtask_runs_total`)
	runFailures      = metrics.NewCounter(`kdbtask_run_failures_total`)
	mergeConflicts   = metrics.NewCounter(`kdbtask_merge_conflicts_total`)
	rollbacks        = metrics.NewCounter(`kdbtask_rollbacks_total`)
	rollbackFailures = metrics.NewCounter(`kdbtask_rollback_failures_total`)
	runDuration      = metrics.NewHistogram(`kdbtask_run_duration_seconds`)
)
