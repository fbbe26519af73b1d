package cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
)

func testLogger() logging.Logger {
	return logging.DefaultLogger()
}

func TestValidateInstanceTypes(t *testing.T) {
	azure, _ := Config(ProviderAzure)
	gcp, _ := Config(ProviderGCP)

	t.Run("azure exact match", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:   "aks-gpu-0",
			Labels: map[string]string{"node.kubernetes.io/instance-type": "Standard_NC24ads_A100_v4"},
		}}
		ok, msg := ValidateInstanceTypes(nodes, azure, testLogger())
		assert.True(t, ok)
		assert.Contains(t, msg, "Standard_NC24ads_A100_v4 on aks-gpu-0")
	})

	t.Run("azure rejects prefix-only match", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:   "aks-cpu-0",
			Labels: map[string]string{"node.kubernetes.io/instance-type": "Standard_D4s_v5"},
		}}
		ok, msg := ValidateInstanceTypes(nodes, azure, testLogger())
		assert.False(t, ok)
		assert.Contains(t, msg, "No supported instance types found")
	})

	t.Run("azure beta label fallback", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:   "aks-old-0",
			Labels: map[string]string{"beta.kubernetes.io/instance-type": "Standard_ND96isr_H100_v5"},
		}}
		ok, _ := ValidateInstanceTypes(nodes, azure, testLogger())
		assert.True(t, ok)
	})

	t.Run("gcp family prefix match", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:   "gke-a3-0",
			Labels: map[string]string{"node.kubernetes.io/instance-type": "a3-highgpu-8g"},
		}}
		ok, msg := ValidateInstanceTypes(nodes, gcp, testLogger())
		assert.True(t, ok)
		assert.Contains(t, msg, "a3-highgpu-8g on gke-a3-0")
	})

	t.Run("gcp tpu family", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:   "gke-tpu-0",
			Labels: map[string]string{"node.kubernetes.io/instance-type": "ct6e-standard-4t"},
		}}
		ok, _ := ValidateInstanceTypes(nodes, gcp, testLogger())
		assert.True(t, ok)
	})

	t.Run("gcp unsupported family", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:   "gke-e2-0",
			Labels: map[string]string{"node.kubernetes.io/instance-type": "e2-medium"},
		}}
		ok, _ := ValidateInstanceTypes(nodes, gcp, testLogger())
		assert.False(t, ok)
	})

	t.Run("node without instance-type label is skipped", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{Name: "bare-0", Labels: map[string]string{}}}
		ok, _ := ValidateInstanceTypes(nodes, azure, testLogger())
		assert.False(t, ok)
	})
}

func TestValidateAccelerators(t *testing.T) {
	azure, _ := Config(ProviderAzure)
	gcp, _ := Config(ProviderGCP)

	t.Run("azure gpu present and allocatable", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:        "aks-gpu-0",
			Labels:      map[string]string{"nvidia.com/gpu.present": "true"},
			Allocatable: map[string]string{"nvidia.com/gpu": "4"},
		}}
		ok, msg := ValidateAccelerators(nodes, azure, testLogger())
		assert.True(t, ok)
		assert.Contains(t, msg, "GPU available on: aks-gpu-0 (true: 4)")
	})

	t.Run("label without allocatable count fails", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:        "aks-gpu-1",
			Labels:      map[string]string{"nvidia.com/gpu.present": "true"},
			Allocatable: map[string]string{"nvidia.com/gpu": "0"},
		}}
		ok, msg := ValidateAccelerators(nodes, azure, testLogger())
		assert.False(t, ok)
		assert.Contains(t, msg, "No accelerators found")
	})

	t.Run("no gpu labels at all", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{Name: "aks-cpu-0", Labels: map[string]string{}}}
		ok, msg := ValidateAccelerators(nodes, azure, testLogger())
		assert.False(t, ok)
		assert.Contains(t, msg, "checked: GPU")
	})

	t.Run("gcp tpu with topology", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name: "gke-tpu-0",
			Labels: map[string]string{
				"cloud.google.com/gke-tpu-accelerator": "tpu-v6e-slice",
				"cloud.google.com/gke-tpu-topology":    "2x4",
			},
			Allocatable: map[string]string{"google.com/tpu": "8"},
		}}
		ok, msg := ValidateAccelerators(nodes, gcp, testLogger())
		assert.True(t, ok)
		assert.Contains(t, msg, "TPU available on")
		assert.Contains(t, msg, "gke-tpu-topology: 2x4")
	})

	t.Run("gcp reports both gpu and tpu", func(t *testing.T) {
		nodes := []k8s.NodeInfo{
			{
				Name:        "gke-gpu-0",
				Labels:      map[string]string{"cloud.google.com/gke-accelerator": "nvidia-h100-80gb"},
				Allocatable: map[string]string{"nvidia.com/gpu": "8"},
			},
			{
				Name:        "gke-tpu-0",
				Labels:      map[string]string{"cloud.google.com/gke-tpu-accelerator": "tpu-v5e"},
				Allocatable: map[string]string{"google.com/tpu": "4"},
			},
		}
		ok, msg := ValidateAccelerators(nodes, gcp, testLogger())
		assert.True(t, ok)
		assert.Contains(t, msg, "GPU available on")
		assert.Contains(t, msg, "TPU available on")
	})
}

func TestZoneData(t *testing.T) {
	table, err := ZoneData()
	require.NoError(t, err)
	require.NotNil(t, table)

	assert.NotEmpty(t, table.LastUpdated)
	assert.Contains(t, table.TPU, "v6e")
	assert.Contains(t, table.GPU, "h100")
	assert.Equal(t, "US Central", table.TPU["v6e"]["us-central1-b"])
}

func TestValidateZoneCompatibility(t *testing.T) {
	table, err := ZoneData()
	require.NoError(t, err)

	t.Run("validated zone passes", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name: "gke-tpu-0",
			Labels: map[string]string{
				"topology.kubernetes.io/zone":          "us-central1-b",
				"cloud.google.com/gke-tpu-accelerator": "v6e-slice",
			},
		}}
		ok, msg := ValidateZoneCompatibility(nodes, table, testLogger())
		assert.True(t, ok)
		assert.Contains(t, msg, "All accelerators in validated zones")
		assert.Contains(t, msg, table.LastUpdated)
	})

	t.Run("unvalidated tpu zone warns", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name: "gke-tpu-1",
			Labels: map[string]string{
				"topology.kubernetes.io/zone":          "australia-southeast1-a",
				"cloud.google.com/gke-tpu-accelerator": "v6e-slice",
			},
		}}
		ok, msg := ValidateZoneCompatibility(nodes, table, testLogger())
		assert.False(t, ok)
		assert.Contains(t, msg, "not in validated zones for v6e")
	})

	t.Run("gpu type normalization", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name: "gke-gpu-0",
			Labels: map[string]string{
				"topology.kubernetes.io/zone":      "europe-west4-a",
				"cloud.google.com/gke-accelerator": "nvidia-tesla-t4",
			},
		}}
		ok, _ := ValidateZoneCompatibility(nodes, table, testLogger())
		assert.True(t, ok)
	})

	t.Run("unvalidated gpu zone warns", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name: "gke-gpu-1",
			Labels: map[string]string{
				"topology.kubernetes.io/zone":      "asia-east2-a",
				"cloud.google.com/gke-accelerator": "nvidia-h100-80gb",
			},
		}}
		ok, msg := ValidateZoneCompatibility(nodes, table, testLogger())
		assert.False(t, ok)
		assert.Contains(t, msg, "not in validated zones for h100")
	})

	t.Run("node without zone label is skipped", func(t *testing.T) {
		nodes := []k8s.NodeInfo{{
			Name:   "gke-gpu-2",
			Labels: map[string]string{"cloud.google.com/gke-accelerator": "nvidia-tesla-t4"},
		}}
		ok, _ := ValidateZoneCompatibility(nodes, table, testLogger())
		assert.True(t, ok)
	})
}
