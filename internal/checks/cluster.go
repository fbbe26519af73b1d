package checks

import (
	"context"

	"github.com/llm-d/xks-validate/internal/cloud"
	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
)

// ValidationConfig carries the resolved cloud provider into the cluster
// suite. It is built once per run and passed by value; there is no
// process-wide registry state.
type ValidationConfig struct {
	Provider       cloud.Provider
	ProviderConfig cloud.ProviderConfig
	Logger         logging.Logger
}

func (c ValidationConfig) logger() logging.Logger {
	if c.Logger == nil {
		return logging.DefaultLogger()
	}
	return c.Logger
}

// ClusterChecks returns the cluster readiness suite for the resolved
// provider: instance types, accelerators, and (GKE only) the advisory zone
// compatibility check.
func ClusterChecks(cfg ValidationConfig) []Check {
	checks := []Check{
		{
			Name:            "instance_type",
			Suite:           SuiteCluster,
			Description:     "Validate machine/instance types for cloud provider",
			SuggestedAction: "Provision cluster with supported instance types",
			Run: func(ctx context.Context, client k8s.Client) Result {
				nodes, err := client.ListNodes(ctx)
				if err != nil {
					return Failed("failed to list nodes: %v", err)
				}
				ok, msg := cloud.ValidateInstanceTypes(nodes, cfg.ProviderConfig, cfg.logger())
				if !ok {
					return Failed("%s", msg)
				}
				return Passed("%s", msg)
			},
		},
		{
			Name:            "accelerators",
			Suite:           SuiteCluster,
			Description:     "Validate accelerator availability",
			SuggestedAction: "Provision cluster with supported accelerators",
			Run: func(ctx context.Context, client k8s.Client) Result {
				nodes, err := client.ListNodes(ctx)
				if err != nil {
					return Failed("failed to list nodes: %v", err)
				}
				ok, msg := cloud.ValidateAccelerators(nodes, cfg.ProviderConfig, cfg.logger())
				if !ok {
					return Failed("%s", msg)
				}
				return Passed("%s", msg)
			},
		},
	}

	if cfg.Provider == cloud.ProviderGCP {
		checks = append(checks, Check{
			Name:            "zone_compatibility",
			Suite:           SuiteCluster,
			Description:     "Validate accelerators are in known-good zones",
			SuggestedAction: "Consider moving accelerator node pools to a validated zone",
			Optional:        true,
			Run: func(ctx context.Context, client k8s.Client) Result {
				table, err := cloud.ZoneData()
				if err != nil {
					return Failed("zone table unavailable: %v", err)
				}
				nodes, err := client.ListNodes(ctx)
				if err != nil {
					return Failed("failed to list nodes: %v", err)
				}
				ok, msg := cloud.ValidateZoneCompatibility(nodes, table, cfg.logger())
				if !ok {
					return Failed("%s", msg)
				}
				return Passed("%s", msg)
			},
		})
	}

	return checks
}

// DefaultRegistry builds the full preflight catalog (cluster + operators)
// for the resolved provider.
func DefaultRegistry(cfg ValidationConfig) (*Registry, error) {
	return NewRegistry(append(ClusterChecks(cfg), OperatorChecks()...)...)
}
