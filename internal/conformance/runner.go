package conformance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/llm-d/xks-validate/internal/checks"
	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
)

// Resource types the runner inspects through the dynamic client.
var (
	gvrLLMInferenceService = schema.GroupVersionResource{
		Group:    "serving.kserve.io",
		Version:  "v1alpha1",
		Resource: "llminferenceservices",
	}
	gvrHTTPRoute = schema.GroupVersionResource{
		Group:    "gateway.networking.k8s.io",
		Version:  "v1",
		Resource: "httproutes",
	}
	gvrGateway = schema.GroupVersionResource{
		Group:    "gateway.networking.k8s.io",
		Version:  "v1",
		Resource: "gateways",
	}
	gvrInferencePool = schema.GroupVersionResource{
		Group:    "inference.networking.x-k8s.io",
		Version:  "v1alpha2",
		Resource: "inferencepools",
	}
)

const (
	// DefaultTimeout bounds how long the runner waits for pods matching a
	// required pattern to become ready.
	DefaultTimeout = 5 * time.Minute

	// DefaultPollInterval is the pause between readiness re-checks.
	DefaultPollInterval = 10 * time.Second

	// DefaultMonitoringNamespace is where the monitoring stack check looks
	// for Prometheus and Grafana pods.
	DefaultMonitoringNamespace = "monitoring"
)

// Options configures a conformance run. The zero value is usable after
// applying defaults in NewRunner.
type Options struct {
	// Namespace holds the deployment under validation.
	Namespace string

	// Timeout bounds pod readiness waits.
	Timeout time.Duration

	// PollInterval is the pause between readiness re-checks.
	PollInterval time.Duration

	// SkipInference disables the port-forwarded inference smoke test.
	SkipInference bool

	// SkipMonitoring disables the advisory monitoring stack check.
	SkipMonitoring bool

	// MonitoringNamespace overrides where monitoring pods are expected.
	MonitoringNamespace string

	Logger logging.Logger
}

// Runner validates a live deployment against a Profile and produces a
// checks.Report. Checks run sequentially; a failed connectivity or
// namespace check aborts the run since everything downstream depends
// on them.
type Runner struct {
	client  k8s.Client
	profile Profile
	opts    Options

	// smoke is swappable so tests can run without a live port-forward.
	smoke smokeFunc
}

// NewRunner builds a Runner for one profile. Nil or zero options fall back
// to package defaults.
func NewRunner(client k8s.Client, profile Profile, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MonitoringNamespace == "" {
		opts.MonitoringNamespace = DefaultMonitoringNamespace
	}
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger()
	}
	return &Runner{
		client:  client,
		profile: profile,
		opts:    opts,
		smoke:   runSmokeTest,
	}
}

// Run executes the conformance sequence. The returned report always contains
// every check that was reached; an aborted run still reports the failure
// that stopped it.
func (r *Runner) Run(ctx context.Context) *checks.Report {
	report := &checks.Report{}
	log := r.opts.Logger

	log.Info("starting conformance run",
		logging.Profile(r.profile.Name),
		logging.Namespace(r.opts.Namespace),
	)

	if !r.checkConnectivity(ctx, report) {
		return report
	}

	mode := r.checkDeploymentMode(ctx, report)

	if !r.checkNamespace(ctx, report) {
		return report
	}

	r.checkPods(ctx, report)
	r.checkOptionalPods(ctx, report)
	r.checkDeployments(ctx, report)
	r.checkServices(ctx, report)
	r.checkCRDs(ctx, report)

	if mode == ModeCRDBased && r.profile.ExpectInferenceService {
		r.checkInferenceServices(ctx, report)
	}
	if r.profile.GatewayRequiredIfRoutesExist {
		r.checkGatewayRouting(ctx, report)
	}
	if r.profile.CustomValidate != nil {
		report.Results = append(report.Results, r.profile.CustomValidate(ctx, r.client, r.opts.Namespace)...)
	}

	if !r.opts.SkipInference {
		r.checkInferenceSmoke(ctx, report)
	}
	if !r.opts.SkipMonitoring {
		r.checkMonitoring(ctx, report)
	}

	log.Info("conformance run finished",
		logging.Profile(r.profile.Name),
		"passed", report.Passed(),
		"failed", report.Failed(),
		"warned", report.Warned(),
	)
	return report
}

func conformanceCheck(name, description, action string, optional bool) checks.Check {
	return checks.Check{
		Name:            name,
		Suite:           checks.SuiteConformance,
		Description:     description,
		SuggestedAction: action,
		Optional:        optional,
	}
}

// checkConnectivity verifies the API server is reachable. Everything else
// is meaningless without it, so a failure aborts the run.
func (r *Runner) checkConnectivity(ctx context.Context, report *checks.Report) bool {
	check := conformanceCheck("cluster_connectivity",
		"Check that the Kubernetes API server is reachable",
		"Verify kubeconfig and network access to the cluster", false)

	nodes, err := r.client.ListNodes(ctx)
	if err != nil {
		report.Append(check, checks.Failed("cannot reach the API server: %v", err))
		return false
	}
	report.Append(check, checks.Passed("connected, %d nodes visible", len(nodes)))
	return true
}

// checkDeploymentMode detects whether the stack is CRD-based or Helm-based
// by probing for the LLMInferenceService CRD. Detection itself never fails
// the run; downstream checks adapt to the detected mode.
func (r *Runner) checkDeploymentMode(ctx context.Context, report *checks.Report) DeploymentMode {
	check := conformanceCheck("deployment_mode",
		"Detect whether the deployment is CRD-based or Helm-based",
		"", false)

	exists, err := r.client.CRDExists(ctx, "llminferenceservices.serving.kserve.io")
	if err != nil {
		report.Append(check, checks.Warned("could not probe for LLMInferenceService CRD: %v", err))
		return ModeHelmBased
	}
	mode := ModeHelmBased
	if exists {
		mode = ModeCRDBased
	}
	report.Append(check, checks.Passed("detected %s deployment", mode))
	return mode
}

func (r *Runner) checkNamespace(ctx context.Context, report *checks.Report) bool {
	check := conformanceCheck("namespace",
		fmt.Sprintf("Check that namespace %q exists", r.opts.Namespace),
		"Create the namespace or pass the correct one with --namespace", false)

	exists, err := r.client.NamespaceExists(ctx, r.opts.Namespace)
	if err != nil {
		report.Append(check, checks.Failed("failed to query namespace: %v", err))
		return false
	}
	if !exists {
		report.Append(check, checks.Failed("namespace %q does not exist", r.opts.Namespace))
		return false
	}
	report.Append(check, checks.Passed("namespace %q exists", r.opts.Namespace))
	return true
}

// checkPods polls until every required pattern has at least one matching pod
// with all of its matches ready, or the timeout elapses.
func (r *Runner) checkPods(ctx context.Context, report *checks.Report) {
	check := conformanceCheck("pods_ready",
		"Check that required pods exist and are ready",
		"Inspect pod events and logs in the target namespace", false)
	if len(r.profile.ExpectedPodPatterns) == 0 {
		return
	}

	deadline := time.Now().Add(r.opts.Timeout)
	var lastProblem string
	for {
		pods, err := r.client.ListPods(ctx, r.opts.Namespace, "")
		if err != nil {
			report.Append(check, checks.Failed("failed to list pods: %v", err))
			return
		}
		lastProblem = unsatisfiedPodPattern(pods, r.profile.ExpectedPodPatterns)
		if lastProblem == "" {
			report.Append(check, checks.Passed("all required pods ready (%d pods in namespace)", len(pods)))
			return
		}
		if time.Now().After(deadline) {
			break
		}
		r.opts.Logger.Debug("waiting for pods", logging.Namespace(r.opts.Namespace), "problem", lastProblem)
		select {
		case <-ctx.Done():
			report.Append(check, checks.Failed("aborted while waiting for pods: %v", ctx.Err()))
			return
		case <-time.After(r.opts.PollInterval):
		}
	}
	report.Append(check, checks.Failed("timed out after %s: %s", r.opts.Timeout, lastProblem))
}

// unsatisfiedPodPattern returns a description of the first pattern that is
// not yet satisfied, or "" when all patterns are.
func unsatisfiedPodPattern(pods []k8s.PodInfo, patterns []string) string {
	for _, pattern := range patterns {
		matched := 0
		ready := 0
		for _, pod := range pods {
			if !matchesPattern(pod.Name, pattern) {
				continue
			}
			matched++
			if pod.Ready() {
				ready++
			}
		}
		if matched == 0 {
			return fmt.Sprintf("no pods matching %q", pattern)
		}
		if ready < matched {
			return fmt.Sprintf("%d of %d pods matching %q ready", ready, matched, pattern)
		}
	}
	return ""
}

func (r *Runner) checkOptionalPods(ctx context.Context, report *checks.Report) {
	if len(r.profile.OptionalPodPatterns) == 0 {
		return
	}
	check := conformanceCheck("optional_pods",
		"Check for optional pods of this topology",
		"", true)

	pods, err := r.client.ListPods(ctx, r.opts.Namespace, "")
	if err != nil {
		report.Append(check, checks.Warned("failed to list pods: %v", err))
		return
	}
	var missing []string
	for _, pattern := range r.profile.OptionalPodPatterns {
		if !anyNameMatches(podNames(pods), pattern) {
			missing = append(missing, pattern)
		}
	}
	if len(missing) > 0 {
		report.Append(check, checks.Warned("no pods matching: %s", strings.Join(missing, ", ")))
		return
	}
	report.Append(check, checks.Passed("all optional pods present"))
}

func (r *Runner) checkDeployments(ctx context.Context, report *checks.Report) {
	if len(r.profile.ExpectedDeploymentPatterns) == 0 {
		return
	}
	check := conformanceCheck("deployments_ready",
		"Check that required deployments exist and are fully available",
		"Inspect the deployment rollout status in the target namespace", false)

	deployments, err := r.client.ListDeployments(ctx, r.opts.Namespace)
	if err != nil {
		report.Append(check, checks.Failed("failed to list deployments: %v", err))
		return
	}
	var problems []string
	for _, pattern := range r.profile.ExpectedDeploymentPatterns {
		matched := false
		for _, d := range deployments {
			if !matchesPattern(d.Name, pattern) {
				continue
			}
			matched = true
			if !d.Ready() {
				problems = append(problems, fmt.Sprintf("%s: %d of %d replicas ready", d.Name, d.ReadyReplicas, d.DesiredReplicas))
			}
		}
		if !matched {
			problems = append(problems, fmt.Sprintf("no deployments matching %q", pattern))
		}
	}
	if len(problems) > 0 {
		report.Append(check, checks.Failed("%s", strings.Join(problems, " | ")))
		return
	}
	report.Append(check, checks.Passed("all required deployments available"))
}

func (r *Runner) checkServices(ctx context.Context, report *checks.Report) {
	if len(r.profile.ExpectedServicePatterns) == 0 {
		return
	}
	check := conformanceCheck("services_present",
		"Check that required services exist",
		"Verify the chart or controller created its services", false)

	services, err := r.client.ListServices(ctx, r.opts.Namespace)
	if err != nil {
		report.Append(check, checks.Failed("failed to list services: %v", err))
		return
	}
	names := serviceNames(services)
	var missing []string
	for _, pattern := range r.profile.ExpectedServicePatterns {
		if !anyNameMatches(names, pattern) {
			missing = append(missing, pattern)
		}
	}
	if len(missing) > 0 {
		report.Append(check, checks.Failed("no services matching: %s", strings.Join(missing, ", ")))
		return
	}
	report.Append(check, checks.Passed("all required services present"))
}

func (r *Runner) checkCRDs(ctx context.Context, report *checks.Report) {
	if len(r.profile.ExpectedCRDs) == 0 {
		return
	}
	check := conformanceCheck("crd_presence",
		"Check that the CRDs of this topology are installed",
		"Install the missing operators or CRD manifests", false)

	installed, err := r.client.CRDNames(ctx)
	if err != nil {
		report.Append(check, checks.Failed("failed to list CRDs: %v", err))
		return
	}
	var missing []string
	for _, name := range r.profile.ExpectedCRDs {
		if _, ok := installed[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		report.Append(check, checks.Failed("missing CRDs: %s", strings.Join(missing, ", ")))
		return
	}
	report.Append(check, checks.Passed("all %d required CRDs installed", len(r.profile.ExpectedCRDs)))
}

// checkInferenceServices requires at least one LLMInferenceService in the
// namespace and reports its readiness from status conditions.
func (r *Runner) checkInferenceServices(ctx context.Context, report *checks.Report) {
	check := conformanceCheck("inference_services",
		"Check that an LLMInferenceService exists and is ready",
		"Inspect the LLMInferenceService status and controller logs", false)

	services, err := r.client.ListCustomResources(ctx, gvrLLMInferenceService, r.opts.Namespace)
	if err != nil {
		report.Append(check, checks.Failed("failed to list LLMInferenceServices: %v", err))
		return
	}
	if len(services) == 0 {
		report.Append(check, checks.Failed("no LLMInferenceService resources in namespace %q", r.opts.Namespace))
		return
	}
	var notReady []string
	for i := range services {
		svc := &services[i]
		if !inferenceServiceReady(svc.Object) {
			notReady = append(notReady, svc.GetName())
		}
	}
	if len(notReady) > 0 {
		report.Append(check, checks.Failed("not ready: %s", strings.Join(notReady, ", ")))
		return
	}
	report.Append(check, checks.Passed("%d LLMInferenceService(s) ready", len(services)))
}

// inferenceServiceReady reads status.conditions looking for Ready=True.
func inferenceServiceReady(obj map[string]interface{}) bool {
	status, ok := obj["status"].(map[string]interface{})
	if !ok {
		return false
	}
	conditions, ok := status["conditions"].([]interface{})
	if !ok {
		return false
	}
	for _, c := range conditions {
		condition, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		if condition["type"] == "Ready" {
			return condition["status"] == "True"
		}
	}
	return false
}

// checkGatewayRouting enforces the conditional gateway requirement: a
// Gateway is mandatory only when HTTPRoutes exist in the namespace.
func (r *Runner) checkGatewayRouting(ctx context.Context, report *checks.Report) {
	check := conformanceCheck("gateway_routing",
		"Check that HTTPRoutes are backed by a Gateway",
		"Create a Gateway for the existing HTTPRoutes", false)

	routes, err := r.client.ListCustomResources(ctx, gvrHTTPRoute, r.opts.Namespace)
	if err != nil {
		report.Append(check, checks.Failed("failed to list HTTPRoutes: %v", err))
		return
	}
	if len(routes) == 0 {
		report.Append(check, checks.Warned("no HTTPRoutes in namespace %q, gateway not required", r.opts.Namespace))
		return
	}
	gateways, err := r.client.ListCustomResources(ctx, gvrGateway, r.opts.Namespace)
	if err != nil {
		report.Append(check, checks.Failed("failed to list Gateways: %v", err))
		return
	}
	if len(gateways) == 0 {
		report.Append(check, checks.Failed("%d HTTPRoute(s) present but no Gateway in namespace %q", len(routes), r.opts.Namespace))
		return
	}
	report.Append(check, checks.Passed("%d HTTPRoute(s) backed by %d Gateway(s)", len(routes), len(gateways)))
}

// checkInferenceSmoke port-forwards to the inference service and issues one
// model listing request against the OpenAI-compatible endpoint.
func (r *Runner) checkInferenceSmoke(ctx context.Context, report *checks.Report) {
	check := conformanceCheck("inference_smoke_test",
		"Check that the inference endpoint answers a model listing request",
		"Inspect the inference server logs and service port configuration", false)

	patterns := r.profile.SmokeServicePatterns
	if len(patterns) == 0 {
		patterns = r.profile.ExpectedServicePatterns
	}
	services, err := r.client.ListServices(ctx, r.opts.Namespace)
	if err != nil {
		report.Append(check, checks.Failed("failed to list services: %v", err))
		return
	}
	service, found := pickSmokeService(services, patterns)
	if !found {
		report.Append(check, checks.Failed("no service matching %s to smoke test", strings.Join(patterns, ", ")))
		return
	}

	report.Append(check, r.smoke(ctx, r.client, r.opts.Namespace, service, r.opts.Logger))
}

// pickSmokeService returns the first service matching any pattern, in
// pattern order, that exposes at least one port.
func pickSmokeService(services []k8s.ServiceInfo, patterns []string) (k8s.ServiceInfo, bool) {
	for _, pattern := range patterns {
		for _, svc := range services {
			if matchesPattern(svc.Name, pattern) && len(svc.Ports) > 0 {
				return svc, true
			}
		}
	}
	return k8s.ServiceInfo{}, false
}

// checkMonitoring is advisory: a missing monitoring stack never fails a run.
func (r *Runner) checkMonitoring(ctx context.Context, report *checks.Report) {
	check := conformanceCheck("monitoring_stack",
		"Check for Prometheus and Grafana pods",
		"", true)

	exists, err := r.client.NamespaceExists(ctx, r.opts.MonitoringNamespace)
	if err != nil {
		report.Append(check, checks.Warned("failed to query monitoring namespace: %v", err))
		return
	}
	if !exists {
		report.Append(check, checks.Warned("monitoring namespace %q does not exist", r.opts.MonitoringNamespace))
		return
	}
	pods, err := r.client.ListPods(ctx, r.opts.MonitoringNamespace, "")
	if err != nil {
		report.Append(check, checks.Warned("failed to list monitoring pods: %v", err))
		return
	}
	names := podNames(pods)
	var missing []string
	for _, component := range []string{"prometheus", "grafana"} {
		if !anyNameMatches(names, component) {
			missing = append(missing, component)
		}
	}
	if len(missing) > 0 {
		report.Append(check, checks.Warned("monitoring components not found: %s", strings.Join(missing, ", ")))
		return
	}
	report.Append(check, checks.Passed("prometheus and grafana pods present in %q", r.opts.MonitoringNamespace))
}

// matchesPattern reports whether name contains pattern, case-insensitively.
func matchesPattern(name, pattern string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

func anyNameMatches(names []string, pattern string) bool {
	for _, name := range names {
		if matchesPattern(name, pattern) {
			return true
		}
	}
	return false
}

func podNames(pods []k8s.PodInfo) []string {
	names := make([]string, 0, len(pods))
	for _, pod := range pods {
		names = append(names, pod.Name)
	}
	return names
}

func serviceNames(services []k8s.ServiceInfo) []string {
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Name)
	}
	return names
}
