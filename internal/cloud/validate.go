package cloud

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
)

// Node labels carrying the machine/instance type.
const (
	instanceTypeLabel     = "node.kubernetes.io/instance-type"
	betaInstanceTypeLabel = "beta.kubernetes.io/instance-type"
)

// ValidateInstanceTypes checks node instance-type labels against the
// provider's family table. Families containing '_' use exact matching
// (Azure VM sizes); other families use prefix matching on the first
// '-'-delimited segment (GCP machine families). Passes when at least one
// node matches.
func ValidateInstanceTypes(nodes []k8s.NodeInfo, cfg ProviderConfig, logger logging.Logger) (bool, string) {
	families := cfg.InstanceFamilies

	// Match mode follows the naming convention of the family table
	useExact := false
	for _, family := range families {
		if strings.Contains(family, "_") {
			useExact = true
			break
		}
	}

	var found []string
	for _, node := range nodes {
		instanceType := node.Labels[instanceTypeLabel]
		if instanceType == "" {
			instanceType = node.Labels[betaInstanceTypeLabel]
		}
		if instanceType == "" {
			continue
		}

		matched := false
		if useExact {
			for _, family := range families {
				if instanceType == family {
					matched = true
					break
				}
			}
		} else {
			family := strings.SplitN(instanceType, "-", 2)[0]
			for _, known := range families {
				if family == known {
					matched = true
					break
				}
			}
		}

		if matched {
			found = append(found, fmt.Sprintf("%s on %s", instanceType, node.Name))
			logger.Debug("found supported instance type", "instance_type", instanceType, logging.KeyNode, node.Name)
		}
	}

	if len(found) > 0 {
		return true, fmt.Sprintf("Found supported instance types: %s", strings.Join(found, ", "))
	}
	return false, fmt.Sprintf("No supported instance types found. Expected families: %v", families)
}

// ValidateAccelerators checks that at least one node carries an accelerator
// type label and exposes a non-zero allocatable count for the matching
// resource key. A node with the label but zero allocatable units usually
// means the device plugin or drivers are missing; that is logged but never
// counted as available.
func ValidateAccelerators(nodes []k8s.NodeInfo, cfg ProviderConfig, logger logging.Logger) (bool, string) {
	var allFound []string

	for _, accel := range cfg.Accelerators {
		var accelNodes []string
		for _, node := range nodes {
			typeValue := node.Labels[accel.TypeLabel]
			count := allocatableCount(node, accel.ResourceKey)

			switch {
			case typeValue != "" && count > 0:
				detail := fmt.Sprintf("%s: %d", typeValue, count)
				var extras []string
				for _, extraLabel := range accel.ExtraLabels {
					if value := node.Labels[extraLabel]; value != "" {
						shortKey := extraLabel[strings.LastIndex(extraLabel, "/")+1:]
						extras = append(extras, fmt.Sprintf("%s: %s", shortKey, value))
					}
				}
				if len(extras) > 0 {
					detail += ", " + strings.Join(extras, ", ")
				}
				accelNodes = append(accelNodes, fmt.Sprintf("%s (%s)", node.Name, detail))
				logger.Debug("accelerator available", "accelerator", accel.Name, "type", typeValue, logging.KeyNode, node.Name, "count", count)
			case typeValue != "" && count == 0:
				logger.Warn("accelerator present but no allocatable resources", "accelerator", accel.Name, logging.KeyNode, node.Name)
			}
		}

		if len(accelNodes) > 0 {
			allFound = append(allFound, fmt.Sprintf("%s available on: %s", accel.Name, strings.Join(accelNodes, ", ")))
		}
	}

	if len(allFound) > 0 {
		return true, strings.Join(allFound, " | ")
	}

	names := make([]string, 0, len(cfg.Accelerators))
	for _, accel := range cfg.Accelerators {
		names = append(names, accel.Name)
	}
	return false, fmt.Sprintf("No accelerators found (checked: %s)", strings.Join(names, ", "))
}

func allocatableCount(node k8s.NodeInfo, resourceKey string) int {
	raw := node.Allocatable[resourceKey]
	if raw == "" {
		return 0
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return count
}
