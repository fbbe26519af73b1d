// Package conformance validates a deployed inference stack against a named
// deployment profile. A profile bundles the pods, deployments, services and
// CRDs one supported topology is expected to have; the runner walks a live
// namespace, compares it to the profile, and emits the same check outcomes
// the preflight suites use so one reporter renders both.
package conformance
