package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/llm-d/xks-validate/internal/checks"
)

func init() {
	// Deterministic output regardless of the test environment's TTY
	color.NoColor = true
}

func sampleReport() *checks.Report {
	report := &checks.Report{}
	report.Append(checks.Check{Name: "instance_type", Suite: checks.SuiteCluster, SuggestedAction: "Provision cluster with supported instance types"}, checks.Passed("found Standard_NC24ads_A100_v4"))
	report.Append(checks.Check{Name: "accelerators", Suite: checks.SuiteCluster, SuggestedAction: "Provision cluster with supported accelerators"}, checks.Failed("No accelerators found (checked: GPU)"))
	report.Append(checks.Check{Name: "crd_lwsoperator", Suite: checks.SuiteOperators, Optional: true}, checks.Warned("missing CRDs"))
	report.Append(checks.Check{Name: "zone_compatibility", Suite: checks.SuiteCluster}, checks.Warned("zone not validated"))
	return report
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf, "LLM-D xKS Preflight Validation Report")
	reporter.Render(sampleReport())
	output := buf.String()

	t.Run("banner", func(t *testing.T) {
		assert.Contains(t, output, "LLM-D xKS Preflight Validation Report")
	})

	t.Run("suite sections in first-seen order", func(t *testing.T) {
		cluster := strings.Index(output, "Cluster readiness")
		operators := strings.Index(output, "Operators readiness")
		assert.Greater(t, cluster, -1)
		assert.Greater(t, operators, cluster)
	})

	t.Run("status lines", func(t *testing.T) {
		assert.Contains(t, output, "PASS instance_type")
		assert.Contains(t, output, "FAIL accelerators")
		assert.Contains(t, output, "SKIP crd_lwsoperator (optional)")
		assert.Contains(t, output, "WARN zone_compatibility")
	})

	t.Run("failure carries suggested action verbatim", func(t *testing.T) {
		assert.Contains(t, output, "-> Provision cluster with supported accelerators")
	})

	t.Run("failure carries detail", func(t *testing.T) {
		assert.Contains(t, output, "-> No accelerators found (checked: GPU)")
	})

	t.Run("summary and verdict", func(t *testing.T) {
		assert.Contains(t, output, "1 passed")
		assert.Contains(t, output, "1 failed")
		assert.Contains(t, output, "2 warned")
		assert.Contains(t, output, "Verdict:  FAIL")
	})
}

func TestRenderAllPassing(t *testing.T) {
	report := &checks.Report{}
	report.Append(checks.Check{Name: "instance_type", Suite: checks.SuiteCluster}, checks.Passed("ok"))

	var buf bytes.Buffer
	NewReporter(&buf, "Report").Render(report)
	output := buf.String()

	assert.Contains(t, output, "Verdict:  PASS")
	assert.NotContains(t, output, "warned")
}

func TestExitCode(t *testing.T) {
	t.Run("zero failures", func(t *testing.T) {
		report := &checks.Report{}
		report.Append(checks.Check{Name: "a"}, checks.Passed(""))
		report.Append(checks.Check{Name: "b"}, checks.Warned(""))
		assert.Equal(t, ExitSuccess, ExitCode(report))
	})

	t.Run("any failure is non-zero", func(t *testing.T) {
		report := &checks.Report{}
		report.Append(checks.Check{Name: "a"}, checks.Passed(""))
		report.Append(checks.Check{Name: "b"}, checks.Failed(""))
		assert.Equal(t, ExitFailure, ExitCode(report))
	})

	t.Run("empty report passes", func(t *testing.T) {
		assert.Equal(t, ExitSuccess, ExitCode(&checks.Report{}))
	})
}
