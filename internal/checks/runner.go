package checks

import (
	"context"

	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
)

// Report is the aggregated outcome of one validation run. Counts are always
// derived from Results, so they cannot drift from the per-check list.
type Report struct {
	Results []Outcome
}

// Passed returns the number of passing checks.
func (r *Report) Passed() int { return r.count(StatusPassed) }

// Failed returns the number of failing checks.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// Warned returns the number of warned (including skipped-optional) checks.
func (r *Report) Warned() int { return r.count(StatusWarned) }

func (r *Report) count(status Status) int {
	n := 0
	for _, outcome := range r.Results {
		if outcome.Result.Status == status {
			n++
		}
	}
	return n
}

// Append adds an outcome to the report.
func (r *Report) Append(check Check, result Result) {
	r.Results = append(r.Results, Outcome{Check: check, Result: result})
}

// Runner executes registered checks sequentially against one cluster.
type Runner struct {
	client k8s.Client
	logger logging.Logger
}

// NewRunner creates a runner for the given client.
func NewRunner(client k8s.Client, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Runner{client: client, logger: logger}
}

// Run executes the requested suite (or all suites) in registration order and
// returns the aggregated report. A check that panics or fails while Optional
// is recorded and never aborts the run.
func (r *Runner) Run(ctx context.Context, registry *Registry, suite string) *Report {
	report := &Report{}

	for _, check := range registry.Suite(suite) {
		r.logger.Debug("running check", logging.KeyCheck, check.Name, logging.KeySuite, check.Suite)

		result := r.runOne(ctx, check)

		// A failing optional check is a skip, not a failure
		if result.Status == StatusFailed && check.Optional {
			result.Status = StatusWarned
		}

		switch result.Status {
		case StatusPassed:
			r.logger.Debug("check passed", logging.KeyCheck, check.Name)
		case StatusWarned:
			r.logger.Warn("check warned", logging.KeyCheck, check.Name, "detail", result.Detail)
		default:
			r.logger.Error("check failed", logging.KeyCheck, check.Name, "detail", result.Detail)
		}

		report.Append(check, result)
	}

	return report
}

// runOne invokes a single check, converting a panic into a failed result so
// one faulty check cannot take down the whole run.
func (r *Runner) runOne(ctx context.Context, check Check) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = Failed("check aborted unexpectedly: %v", recovered)
		}
	}()
	return check.Run(ctx, r.client)
}
