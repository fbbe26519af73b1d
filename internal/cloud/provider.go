package cloud

import (
	"fmt"

	"github.com/llm-d/xks-validate/internal/k8s"
)

// Provider identifies the managed Kubernetes service the cluster runs on.
type Provider string

const (
	ProviderAuto    Provider = "auto"
	ProviderAzure   Provider = "azure"
	ProviderGCP     Provider = "gcp"
	ProviderAWS     Provider = "aws" // reserved, no detection rule or allow-list yet
	ProviderUnknown Provider = "unknown"
)

// ParseProvider validates a CLI/config provider value. "aws" is reserved but
// not selectable until it has an allow-list.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderAuto, ProviderAzure, ProviderGCP:
		return Provider(s), nil
	case ProviderAWS:
		return ProviderUnknown, fmt.Errorf("cloud provider %q is not supported yet", s)
	default:
		return ProviderUnknown, fmt.Errorf("unknown cloud provider %q (choose auto, azure or gcp)", s)
	}
}

// AcceleratorConfig describes one accelerator family (GPU or TPU) for a
// provider: the node label naming its type, the allocatable resource key, and
// any additional labels worth reporting (e.g. TPU topology).
type AcceleratorConfig struct {
	Name        string
	TypeLabel   string
	ResourceKey string
	ExtraLabels []string
}

// ProviderConfig is the per-provider detection and validation table.
// Adding a provider or instance type is a data change here, not a code change.
type ProviderConfig struct {
	DetectLabels     []string
	InstanceFamilies []string
	Accelerators     []AcceleratorConfig
}

// providerOrder fixes the detection priority. If a cluster somehow carries
// signals for more than one provider, the first match in this order wins.
var providerOrder = []Provider{ProviderAzure, ProviderGCP}

var providerConfigs = map[Provider]ProviderConfig{
	ProviderAzure: {
		DetectLabels: []string{"kubernetes.azure.com/cluster"},
		InstanceFamilies: []string{
			"Standard_NC24ads_A100_v4",
			"Standard_ND96asr_v4",
			"Standard_ND96amsr_A100_v4",
			"Standard_ND96isr_H100_v5",
			"Standard_ND96isr_H200_v5",
		},
		Accelerators: []AcceleratorConfig{{
			Name:        "GPU",
			TypeLabel:   "nvidia.com/gpu.present",
			ResourceKey: "nvidia.com/gpu",
		}},
	},
	ProviderGCP: {
		DetectLabels: []string{
			"cloud.google.com/gke-nodepool",
			"cloud.google.com/gke-os-distribution",
		},
		InstanceFamilies: []string{
			"ct6e", "ct5e", "ct5p", // TPU
			"n1", "a2", "g2", "a3", // GPU
		},
		Accelerators: []AcceleratorConfig{
			{
				Name:        "GPU",
				TypeLabel:   "cloud.google.com/gke-accelerator",
				ResourceKey: "nvidia.com/gpu",
			},
			{
				Name:        "TPU",
				TypeLabel:   "cloud.google.com/gke-tpu-accelerator",
				ResourceKey: "google.com/tpu",
				ExtraLabels: []string{"cloud.google.com/gke-tpu-topology"},
			},
		},
	},
}

// Config returns the validation table for a provider.
func Config(p Provider) (ProviderConfig, bool) {
	cfg, ok := providerConfigs[p]
	return cfg, ok
}

// Detect classifies the cluster from node labels. Detection order is fixed
// (azure, then gcp) so a multi-signal cluster resolves deterministically.
// Returns ProviderUnknown when no node carries a recognized label.
func Detect(nodes []k8s.NodeInfo) Provider {
	for _, provider := range providerOrder {
		if matchesDetectLabels(nodes, providerConfigs[provider]) {
			return provider
		}
	}
	return ProviderUnknown
}

func matchesDetectLabels(nodes []k8s.NodeInfo, cfg ProviderConfig) bool {
	for _, node := range nodes {
		for _, label := range cfg.DetectLabels {
			if _, ok := node.Labels[label]; ok {
				return true
			}
		}
	}
	return false
}
