package k8s

import (
	"context"
	"fmt"
	"sync"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	apiextclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"

	"github.com/llm-d/xks-validate/internal/logging"
)

// kubernetesClient implements the Client interface using client-go.
type kubernetesClient struct {
	config *ClientConfig

	clientset  kubernetes.Interface
	apiext     apiextclientset.Interface
	dynamic    dynamic.Interface
	restConfig *rest.Config

	logger logging.Logger

	// CRD name snapshot, one LIST per client lifetime
	crdMu    sync.Mutex
	crdCache map[string]struct{}
}

// ClientConfig holds configuration for the Kubernetes client.
type ClientConfig struct {
	// KubeconfigPath is an explicit kubeconfig location. When empty, the
	// standard loading rules apply (KUBECONFIG, then ~/.kube/config).
	KubeconfigPath string

	// Context selects a kubeconfig context other than the current one.
	Context string

	// Performance settings
	QPSLimit   float32
	BurstLimit int
	Timeout    time.Duration

	// Logging
	Logger logging.Logger
}

// NewClient creates a new Kubernetes client with the given configuration and
// verifies connectivity with a version probe, so an unreachable API server or
// a broken kubeconfig fails here rather than inside the first check.
func NewClient(config *ClientConfig) (*kubernetesClient, error) {
	if config == nil {
		return nil, fmt.Errorf("client configuration is required")
	}

	// Set defaults
	if config.QPSLimit == 0 {
		config.QPSLimit = DefaultQPSLimit
	}
	if config.BurstLimit == 0 {
		config.BurstLimit = DefaultBurstLimit
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout * time.Second
	}
	if config.Logger == nil {
		config.Logger = logging.DefaultLogger()
	}

	restConfig, err := buildRestConfig(config.KubeconfigPath, config.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	restConfig.QPS = config.QPSLimit
	restConfig.Burst = config.BurstLimit
	restConfig.Timeout = config.Timeout

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	apiext, err := apiextclientset.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create apiextensions client: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	version, err := clientset.Discovery().ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("cannot reach the Kubernetes API server: %w", err)
	}
	config.Logger.Info("Kubernetes connection established", "server_version", version.GitVersion)

	return &kubernetesClient{
		config:     config,
		clientset:  clientset,
		apiext:     apiext,
		dynamic:    dynamicClient,
		restConfig: restConfig,
		logger:     config.Logger,
	}, nil
}

// NewWithClients creates a client around pre-built clientsets. Used by tests
// with the client-go fakes; port forwarding is unavailable on such a client.
func NewWithClients(clientset kubernetes.Interface, apiext apiextclientset.Interface, dynamicClient dynamic.Interface, logger logging.Logger) *kubernetesClient {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &kubernetesClient{
		config:    &ClientConfig{Logger: logger},
		clientset: clientset,
		apiext:    apiext,
		dynamic:   dynamicClient,
		logger:    logger,
	}
}

// buildRestConfig resolves a rest.Config from kubeconfig. An explicit path
// takes precedence; otherwise the standard loading rules apply, which honor
// KUBECONFIG and fall back to ~/.kube/config.
func buildRestConfig(kubeconfigPath, kubeContext string) (*rest.Config, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}

	overrides := &clientcmd.ConfigOverrides{}
	if kubeContext != "" {
		overrides.CurrentContext = kubeContext
	}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
}

// ListNodes returns all nodes with their labels and allocatable resources.
func (c *kubernetesClient) ListNodes(ctx context.Context) ([]NodeInfo, error) {
	nodeList, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nodes := make([]NodeInfo, 0, len(nodeList.Items))
	for _, node := range nodeList.Items {
		allocatable := make(map[string]string, len(node.Status.Allocatable))
		for name, quantity := range node.Status.Allocatable {
			allocatable[string(name)] = quantity.String()
		}
		nodes = append(nodes, NodeInfo{
			Name:        node.Name,
			Labels:      node.Labels,
			Allocatable: allocatable,
		})
	}
	return nodes, nil
}

// CRDNames returns the set of installed CRD names, listed once per client.
func (c *kubernetesClient) CRDNames(ctx context.Context) (map[string]struct{}, error) {
	c.crdMu.Lock()
	defer c.crdMu.Unlock()

	if c.crdCache != nil {
		return c.crdCache, nil
	}

	crdList, err := c.apiext.ApiextensionsV1().CustomResourceDefinitions().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list CustomResourceDefinitions: %w", err)
	}

	names := make(map[string]struct{}, len(crdList.Items))
	for _, crd := range crdList.Items {
		names[crd.Name] = struct{}{}
	}
	c.crdCache = names
	return names, nil
}

// CRDExists reports whether a CRD with the given name is installed.
func (c *kubernetesClient) CRDExists(ctx context.Context, name string) (bool, error) {
	names, err := c.CRDNames(ctx)
	if err != nil {
		return false, err
	}
	_, ok := names[name]
	return ok, nil
}

// NamespaceExists reports whether the named namespace exists.
func (c *kubernetesClient) NamespaceExists(ctx context.Context, name string) (bool, error) {
	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get namespace %q: %w", name, err)
	}
	return true, nil
}

// ListPods returns pods in a namespace, optionally filtered by label selector.
func (c *kubernetesClient) ListPods(ctx context.Context, namespace, labelSelector string) ([]PodInfo, error) {
	podList, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %q: %w", namespace, err)
	}

	pods := make([]PodInfo, 0, len(podList.Items))
	for _, pod := range podList.Items {
		ready := 0
		for _, status := range pod.Status.ContainerStatuses {
			if status.Ready {
				ready++
			}
		}
		pods = append(pods, PodInfo{
			Name:            pod.Name,
			Phase:           string(pod.Status.Phase),
			ReadyContainers: ready,
			TotalContainers: len(pod.Spec.Containers),
		})
	}
	return pods, nil
}

// ListDeployments returns all deployments in a namespace.
func (c *kubernetesClient) ListDeployments(ctx context.Context, namespace string) ([]DeploymentInfo, error) {
	deployList, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments in %q: %w", namespace, err)
	}

	deployments := make([]DeploymentInfo, 0, len(deployList.Items))
	for _, deploy := range deployList.Items {
		deployments = append(deployments, deploymentInfo(deploy.Name, deploy.Spec.Replicas, deploy.Status.ReadyReplicas))
	}
	return deployments, nil
}

// GetDeployment returns the named deployment, or nil if it does not exist.
func (c *kubernetesClient) GetDeployment(ctx context.Context, namespace, name string) (*DeploymentInfo, error) {
	deploy, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}
	info := deploymentInfo(deploy.Name, deploy.Spec.Replicas, deploy.Status.ReadyReplicas)
	return &info, nil
}

func deploymentInfo(name string, desired *int32, ready int32) DeploymentInfo {
	// apps/v1 defaults spec.replicas to 1 when unset
	replicas := int32(1)
	if desired != nil {
		replicas = *desired
	}
	return DeploymentInfo{Name: name, ReadyReplicas: ready, DesiredReplicas: replicas}
}

// ListServices returns all services in a namespace.
func (c *kubernetesClient) ListServices(ctx context.Context, namespace string) ([]ServiceInfo, error) {
	svcList, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list services in %q: %w", namespace, err)
	}

	services := make([]ServiceInfo, 0, len(svcList.Items))
	for _, svc := range svcList.Items {
		ports := make([]int32, 0, len(svc.Spec.Ports))
		for _, port := range svc.Spec.Ports {
			ports = append(ports, port.Port)
		}
		services = append(services, ServiceInfo{Name: svc.Name, Ports: ports})
	}
	return services, nil
}

// GetCustomResource returns the named custom resource, or nil when either the
// resource or its CRD is absent.
func (c *kubernetesClient) GetCustomResource(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	obj, err := c.dynamic.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s/%s: %w", gvr.Resource, namespace, name, err)
	}
	return obj, nil
}

// ListCustomResources returns all custom resources of the given type in a
// namespace. A missing CRD yields an empty list.
func (c *kubernetesClient) ListCustomResources(ctx context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error) {
	list, err := c.dynamic.Resource(gvr).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s in %q: %w", gvr.Resource, namespace, err)
	}
	return list.Items, nil
}
