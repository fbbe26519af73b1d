package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/llm-d/xks-validate/internal/conformance"
	"github.com/llm-d/xks-validate/internal/report"
)

const conformanceTitle = "LLM-D xKS Conformance Report"

// newConformanceCmd creates the command that validates a deployed inference
// stack against one of the supported deployment profiles.
func newConformanceCmd() *cobra.Command {
	var (
		profileName         string
		namespace           string
		timeout             time.Duration
		skipInference       bool
		skipMonitoring      bool
		monitoringNamespace string
		listProfiles        bool
	)

	cmd := &cobra.Command{
		Use:   "conformance",
		Short: "Validate a deployed llm-d inference stack against a profile",
		Long: `Conformance compares a live namespace to a named deployment profile:
the pods, deployments, services and CRDs that topology is expected to have,
plus an end-to-end inference smoke test through a port-forward.

Use --list-profiles to see the supported profiles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listProfiles {
				out := cmd.OutOrStdout()
				for _, name := range conformance.Names() {
					fmt.Fprintf(out, "%-18s %s\n", name, conformance.Describe(name))
				}
				return nil
			}
			if profileName == "" {
				return fmt.Errorf("--profile is required (one of: %s)", strings.Join(conformance.Names(), ", "))
			}
			profile, ok := conformance.Lookup(profileName)
			if !ok {
				return fmt.Errorf("unknown profile %q (one of: %s)", profileName, strings.Join(conformance.Names(), ", "))
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			runner := conformance.NewRunner(client, profile, conformance.Options{
				Namespace:           namespace,
				Timeout:             timeout,
				SkipInference:       skipInference,
				SkipMonitoring:      skipMonitoring,
				MonitoringNamespace: monitoringNamespace,
				Logger:              logger,
			})
			result := runner.Run(cmd.Context())
			report.NewReporter(cmd.OutOrStdout(), conformanceTitle).Render(result)

			if code := report.ExitCode(result); code != report.ExitSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "",
		"deployment profile to validate against")
	cmd.Flags().StringVar(&namespace, "namespace", "llm-d",
		"namespace holding the inference deployment")
	cmd.Flags().DurationVar(&timeout, "timeout", conformance.DefaultTimeout,
		"how long to wait for pods to become ready")
	cmd.Flags().BoolVar(&skipInference, "skip-inference", false,
		"skip the port-forwarded inference smoke test")
	cmd.Flags().BoolVar(&skipMonitoring, "skip-monitoring", false,
		"skip the advisory monitoring stack check")
	cmd.Flags().StringVar(&monitoringNamespace, "monitoring-namespace", conformance.DefaultMonitoringNamespace,
		"namespace where the monitoring stack is expected")
	cmd.Flags().BoolVar(&listProfiles, "list-profiles", false,
		"list the supported deployment profiles and exit")

	return cmd
}
