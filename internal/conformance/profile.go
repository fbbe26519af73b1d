package conformance

import (
	"context"
	"sort"

	"github.com/llm-d/xks-validate/internal/checks"
	"github.com/llm-d/xks-validate/internal/k8s"
)

// DeploymentMode distinguishes how the inference stack was installed.
// CRD-based deployments manage workloads through LLMInferenceService
// resources; Helm-based deployments install plain workloads from charts.
type DeploymentMode string

const (
	ModeCRDBased  DeploymentMode = "crd-based"
	ModeHelmBased DeploymentMode = "helm-based"
)

// Profile is a named bundle of expected resource patterns describing one
// supported deployment topology. Profiles are immutable values returned by
// pure constructors; nothing here reads per-run state.
//
// A pattern is a case-insensitive substring matched against resource names
// in the target namespace.
type Profile struct {
	Name        string
	Description string

	// Required patterns: zero matches is a failure.
	ExpectedPodPatterns        []string
	ExpectedDeploymentPatterns []string
	ExpectedServicePatterns    []string

	// Optional patterns: zero matches is only surfaced as a warning.
	OptionalPodPatterns []string

	// CRDs that must be installed for this topology.
	ExpectedCRDs []string

	// ExpectInferenceService requires at least one ready LLMInferenceService
	// in the namespace (CRD-based deployments only).
	ExpectInferenceService bool

	// GatewayRequiredIfRoutesExist makes a Gateway mandatory only when at
	// least one HTTPRoute exists in the namespace. Standalone deployments
	// without routes stay valid.
	GatewayRequiredIfRoutesExist bool

	// SmokeServicePatterns selects the backing service for the inference
	// smoke test. Falls back to ExpectedServicePatterns when empty.
	SmokeServicePatterns []string

	// CustomValidate runs profile-specific validations after the generic
	// pattern checks.
	CustomValidate func(ctx context.Context, client k8s.Client, namespace string) []checks.Outcome
}

// Lookup returns the named profile.
func Lookup(name string) (Profile, bool) {
	builder, ok := profileBuilders[name]
	if !ok {
		return Profile{}, false
	}
	return builder(), true
}

// Names returns all profile names, sorted for stable --list-profiles output.
func Names() []string {
	names := make([]string, 0, len(profileBuilders))
	for name := range profileBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the description of the named profile, or "".
func Describe(name string) string {
	profile, ok := Lookup(name)
	if !ok {
		return ""
	}
	return profile.Description
}
