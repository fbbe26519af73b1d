package conformance

import (
	"context"
	"strings"

	"github.com/llm-d/xks-validate/internal/checks"
	"github.com/llm-d/xks-validate/internal/k8s"
)

// profileBuilders maps each profile name to its constructor. Names are
// globally unique by construction.
var profileBuilders = map[string]func() Profile{
	"kserve-basic":     kserveBasicProfile,
	"kserve-gateway":   kserveGatewayProfile,
	"kserve-multinode": kserveMultinodeProfile,
	"helm-basic":       helmBasicProfile,
}

func kserveBasicProfile() Profile {
	return Profile{
		Name:                       "kserve-basic",
		Description:                "Single-node LLMInferenceService deployment managed by KServe",
		ExpectedPodPatterns:        []string{"kserve"},
		ExpectedDeploymentPatterns: []string{"kserve-controller"},
		ExpectedServicePatterns:    []string{"predictor"},
		OptionalPodPatterns:        []string{"modelmesh"},
		ExpectedCRDs: []string{
			"llminferenceservices.serving.kserve.io",
			"llminferenceserviceconfigs.serving.kserve.io",
		},
		ExpectInferenceService: true,
		SmokeServicePatterns:   []string{"predictor"},
	}
}

func kserveGatewayProfile() Profile {
	profile := kserveBasicProfile()
	profile.Name = "kserve-gateway"
	profile.Description = "LLMInferenceService deployment routed through a Gateway API gateway"
	profile.ExpectedServicePatterns = append(profile.ExpectedServicePatterns, "gateway")
	profile.ExpectedCRDs = append(profile.ExpectedCRDs,
		"gateways.gateway.networking.k8s.io",
		"httproutes.gateway.networking.k8s.io",
		"inferencepools.inference.networking.x-k8s.io",
	)
	profile.GatewayRequiredIfRoutesExist = true
	profile.SmokeServicePatterns = []string{"gateway", "predictor"}
	profile.CustomValidate = validateInferencePools
	return profile
}

func kserveMultinodeProfile() Profile {
	profile := kserveBasicProfile()
	profile.Name = "kserve-multinode"
	profile.Description = "Multi-node LLMInferenceService deployment using LeaderWorkerSet"
	profile.ExpectedPodPatterns = append(profile.ExpectedPodPatterns, "lws")
	profile.ExpectedCRDs = append(profile.ExpectedCRDs,
		"leaderworkersets.leaderworkerset.x-k8s.io",
	)
	return profile
}

func helmBasicProfile() Profile {
	return Profile{
		Name:                       "helm-basic",
		Description:                "Helm chart deployment without KServe-managed workloads",
		ExpectedPodPatterns:        []string{"llm-d"},
		ExpectedDeploymentPatterns: []string{"llm-d"},
		ExpectedServicePatterns:    []string{"llm-d"},
		SmokeServicePatterns:       []string{"llm-d"},
	}
}

// validateInferencePools requires at least one InferencePool in the
// namespace for gateway-routed deployments.
func validateInferencePools(ctx context.Context, client k8s.Client, namespace string) []checks.Outcome {
	check := checks.Check{
		Name:            "inference_pools",
		Suite:           checks.SuiteConformance,
		Description:     "Check that an InferencePool backs the gateway routing",
		SuggestedAction: "Create an InferencePool for the inference workload",
	}

	pools, err := client.ListCustomResources(ctx, gvrInferencePool, namespace)
	if err != nil {
		return []checks.Outcome{{Check: check, Result: checks.Failed("failed to list InferencePools: %v", err)}}
	}
	if len(pools) == 0 {
		return []checks.Outcome{{Check: check, Result: checks.Failed("no InferencePool resources in namespace %q", namespace)}}
	}

	names := make([]string, 0, len(pools))
	for _, pool := range pools {
		names = append(names, pool.GetName())
	}
	return []checks.Outcome{{Check: check, Result: checks.Passed("found InferencePools: %s", strings.Join(names, ", "))}}
}
