package checks

import (
	"context"
	"fmt"

	"github.com/llm-d/xks-validate/internal/k8s"
)

// Status is the outcome of a single check.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusWarned
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusWarned:
		return "warned"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is what a check invocation produces. Detail carries the
// human-readable explanation of what was found or missing.
type Result struct {
	Status Status
	Detail string
}

// Passed builds a passing result.
func Passed(format string, args ...interface{}) Result {
	return Result{Status: StatusPassed, Detail: fmt.Sprintf(format, args...)}
}

// Failed builds a failing result.
func Failed(format string, args ...interface{}) Result {
	return Result{Status: StatusFailed, Detail: fmt.Sprintf(format, args...)}
}

// Warned builds a warning result.
func Warned(format string, args ...interface{}) Result {
	return Result{Status: StatusWarned, Detail: fmt.Sprintf(format, args...)}
}

// Suite names. Built-in checks belong to cluster or operators; the
// conformance runner files its outcomes under conformance.
const (
	SuiteCluster     = "cluster"
	SuiteOperators   = "operators"
	SuiteConformance = "conformance"
	SuiteAll         = "all"
)

// SuiteDescription returns the report section title for a suite.
func SuiteDescription(suite string) string {
	switch suite {
	case SuiteCluster:
		return "Cluster readiness"
	case SuiteOperators:
		return "Operators readiness"
	case SuiteConformance:
		return "Deployment conformance"
	default:
		return suite
	}
}

// RunFunc executes one check against the cluster.
type RunFunc func(ctx context.Context, client k8s.Client) Result

// Check is one named validation. Checks are immutable once registered; a
// failing Optional check is reported as skipped rather than failed.
type Check struct {
	Name            string
	Suite           string
	Description     string
	SuggestedAction string
	Optional        bool
	Run             RunFunc
}

// Outcome pairs a check with the result of running it.
type Outcome struct {
	Check  Check
	Result Result
}
