package cloud

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
)

//go:embed zones.yaml
var zoneDataRaw []byte

// ZoneTable holds the validated accelerator zones for GKE, keyed by
// accelerator kind and short type name (e.g. gpu/h100, tpu/v6e). The table is
// shipped as a versioned data file; LastUpdated records its vintage so stale
// data is visible in reports.
type ZoneTable struct {
	LastUpdated string                       `json:"lastUpdated"`
	TPU         map[string]map[string]string `json:"tpu"`
	GPU         map[string]map[string]string `json:"gpu"`
}

var (
	zoneOnce  sync.Once
	zoneTable *ZoneTable
	zoneErr   error
)

// ZoneData parses the embedded zone table, once per process.
func ZoneData() (*ZoneTable, error) {
	zoneOnce.Do(func() {
		var table ZoneTable
		if err := yaml.Unmarshal(zoneDataRaw, &table); err != nil {
			zoneErr = fmt.Errorf("failed to parse embedded zone table: %w", err)
			return
		}
		zoneTable = &table
	})
	return zoneTable, zoneErr
}

const (
	zoneLabel           = "topology.kubernetes.io/zone"
	gkeAcceleratorLabel = "cloud.google.com/gke-accelerator"
	gkeTPULabel         = "cloud.google.com/gke-tpu-accelerator"
)

// ValidateZoneCompatibility checks whether GKE accelerator nodes sit in zones
// validated for their accelerator type. The result is advisory: a mismatch
// should surface as a warning, never as a hard failure.
func ValidateZoneCompatibility(nodes []k8s.NodeInfo, table *ZoneTable, logger logging.Logger) (bool, string) {
	var warnings []string

	for _, node := range nodes {
		zone := node.Labels[zoneLabel]
		if zone == "" {
			continue
		}

		if tpuType := node.Labels[gkeTPULabel]; tpuType != "" {
			// "v6e-slice" carries the version before the first hyphen
			version := tpuType
			if idx := strings.Index(tpuType, "-"); idx > 0 {
				version = tpuType[:idx]
			} else {
				logger.Warn("unexpected TPU type format", "tpu_type", tpuType, logging.KeyNode, node.Name)
			}

			if validZones := table.TPU[version]; len(validZones) > 0 {
				if _, ok := validZones[zone]; !ok {
					warning := fmt.Sprintf("TPU %s on %s in zone %s not in validated zones for %s", tpuType, node.Name, zone, version)
					warnings = append(warnings, warning)
					logger.Warn(warning)
				}
			}
		}

		if gpuType := node.Labels[gkeAcceleratorLabel]; gpuType != "" {
			// "nvidia-tesla-t4" and "nvidia-h100-80gb" both shorten to the
			// family name used as the table key
			short := strings.TrimPrefix(gpuType, "nvidia-tesla-")
			short = strings.TrimPrefix(short, "nvidia-")
			if short == gpuType {
				logger.Warn("unexpected GPU type format", "gpu_type", gpuType, logging.KeyNode, node.Name)
			}
			if idx := strings.Index(short, "-"); idx > 0 {
				short = short[:idx]
			}

			if validZones := table.GPU[short]; len(validZones) > 0 {
				if _, ok := validZones[zone]; !ok {
					warning := fmt.Sprintf("GPU %s on %s in zone %s not in validated zones for %s", gpuType, node.Name, zone, short)
					warnings = append(warnings, warning)
					logger.Warn(warning)
				}
			}
		}
	}

	if len(warnings) > 0 {
		return false, strings.Join(warnings, "; ")
	}
	return true, fmt.Sprintf("All accelerators in validated zones (zone data as of %s)", table.LastUpdated)
}
