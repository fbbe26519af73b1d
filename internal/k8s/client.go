package k8s

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Client is the read-only interface to the Kubernetes control plane used by
// the validation framework. Every check and the conformance runner go through
// it; nothing behind this interface ever mutates cluster state.
type Client interface {
	// Node Operations
	NodeReader

	// CustomResourceDefinition Operations
	CRDReader

	// Workload Operations
	WorkloadReader

	// Custom Resource Operations
	CustomResourceReader

	// Port Forwarding (inference smoke test only)
	PortForwarder
}

// NodeReader lists cluster nodes.
type NodeReader interface {
	// ListNodes returns all nodes with their labels and allocatable resources.
	ListNodes(ctx context.Context) ([]NodeInfo, error)
}

// CRDReader inspects CustomResourceDefinitions.
type CRDReader interface {
	// CRDExists reports whether a CRD with the given name is installed.
	CRDExists(ctx context.Context, name string) (bool, error)

	// CRDNames returns the set of all installed CRD names. The result is
	// cached for the lifetime of the client; a validation run sees one
	// consistent snapshot.
	CRDNames(ctx context.Context) (map[string]struct{}, error)
}

// WorkloadReader lists namespaced workload resources.
type WorkloadReader interface {
	// NamespaceExists reports whether the named namespace exists.
	NamespaceExists(ctx context.Context, name string) (bool, error)

	// ListPods returns pods in a namespace, optionally filtered by label selector.
	ListPods(ctx context.Context, namespace, labelSelector string) ([]PodInfo, error)

	// ListDeployments returns all deployments in a namespace.
	ListDeployments(ctx context.Context, namespace string) ([]DeploymentInfo, error)

	// GetDeployment returns the named deployment, or nil if it does not exist.
	GetDeployment(ctx context.Context, namespace, name string) (*DeploymentInfo, error)

	// ListServices returns all services in a namespace.
	ListServices(ctx context.Context, namespace string) ([]ServiceInfo, error)
}

// CustomResourceReader reads arbitrary custom resources via the dynamic client.
type CustomResourceReader interface {
	// GetCustomResource returns the named custom resource, or nil if it does
	// not exist (including when the CRD itself is not installed).
	GetCustomResource(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error)

	// ListCustomResources returns all custom resources of the given type in a
	// namespace. A missing CRD yields an empty list, not an error.
	ListCustomResources(ctx context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error)
}

// PortForwarder establishes a local port-forward to the first ready pod
// behind a service. Only the inference smoke test uses this.
type PortForwarder interface {
	PortForwardToService(ctx context.Context, namespace, serviceName string, remotePort int32) (*PortForwardSession, error)
}

// NodeInfo is the subset of node state the checks inspect.
type NodeInfo struct {
	Name        string            `json:"name"`
	Labels      map[string]string `json:"labels"`
	Allocatable map[string]string `json:"allocatable"`
}

// PodInfo is the subset of pod state the checks inspect.
type PodInfo struct {
	Name            string `json:"name"`
	Phase           string `json:"phase"`
	ReadyContainers int    `json:"readyContainers"`
	TotalContainers int    `json:"totalContainers"`
}

// Ready reports whether the pod is running with all containers ready.
func (p PodInfo) Ready() bool {
	return p.Phase == "Running" && p.TotalContainers > 0 && p.ReadyContainers == p.TotalContainers
}

// DeploymentInfo is the subset of deployment state the checks inspect.
type DeploymentInfo struct {
	Name            string `json:"name"`
	ReadyReplicas   int32  `json:"readyReplicas"`
	DesiredReplicas int32  `json:"desiredReplicas"`
}

// Ready reports whether the deployment is fully available: at least one
// replica desired and all of them ready.
func (d DeploymentInfo) Ready() bool {
	return d.DesiredReplicas > 0 && d.ReadyReplicas == d.DesiredReplicas
}

// ServiceInfo is the subset of service state the conformance runner inspects.
type ServiceInfo struct {
	Name  string  `json:"name"`
	Ports []int32 `json:"ports"`
}
