// Package checks owns the preflight check catalog and the executor that
// runs it.
//
// A Check pairs a name, description and suggested remediation with a run
// function; checks are grouped into suites (cluster, operators) and
// registered once at startup into a Registry that rejects duplicate names.
// The Runner executes a suite sequentially, recovers per-check panics into
// failed results, and aggregates everything into a Report whose counts are
// always consistent with the per-check outcomes.
package checks
