package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llm-d/xks-validate/internal/checks"
	"github.com/llm-d/xks-validate/internal/cloud"
	"github.com/llm-d/xks-validate/internal/logging"
	"github.com/llm-d/xks-validate/internal/report"
)

const preflightTitle = "LLM-D xKS Preflight Validation Report"

// newPreflightCmd creates the command that validates cluster readiness
// before an llm-d deployment: instance types, accelerators, and the
// operator stack.
func newPreflightCmd() *cobra.Command {
	var (
		providerFlag string
		suite        string
	)

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Validate cluster readiness for llm-d inference deployments",
		Long: `Preflight runs the cluster and operators check suites against a live
cluster. The cluster suite validates node instance types and accelerator
availability for the detected (or selected) cloud provider; the operators
suite validates that the required operators and CRDs are installed and ready.

Exit codes: 0 all checks passed, 1 at least one check failed or the cluster
was unreachable, 2 the cloud provider could not be detected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if suite != checks.SuiteCluster && suite != checks.SuiteOperators && suite != checks.SuiteAll {
				return fmt.Errorf("unknown suite %q (choose cluster, operators or all)", suite)
			}
			provider, err := cloud.ParseProvider(providerFlag)
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if provider == cloud.ProviderAuto {
				nodes, err := client.ListNodes(ctx)
				if err != nil {
					return &exitError{
						code: report.ExitFailure,
						msg:  fmt.Sprintf("failed to list nodes: %v", err),
					}
				}
				provider = cloud.Detect(nodes)
				if provider == cloud.ProviderUnknown {
					return &exitError{
						code: report.ExitDetectionFailed,
						msg:  "could not detect the cloud provider from node labels, pass --cloud-provider explicitly",
					}
				}
				logger.Info("detected cloud provider", logging.Provider(string(provider)))
			}

			providerConfig, ok := cloud.Config(provider)
			if !ok {
				return fmt.Errorf("no validation config for provider %q", provider)
			}
			registry, err := checks.DefaultRegistry(checks.ValidationConfig{
				Provider:       provider,
				ProviderConfig: providerConfig,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			result := checks.NewRunner(client, logger).Run(ctx, registry, suite)
			report.NewReporter(cmd.OutOrStdout(), preflightTitle).Render(result)

			if code := report.ExitCode(result); code != report.ExitSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerFlag, "cloud-provider", "auto",
		"cloud provider to validate against (auto, azure, gcp)")
	cmd.Flags().StringVar(&suite, "suite", checks.SuiteAll,
		"check suite to run (cluster, operators, all)")

	return cmd
}
