// Package k8s provides the read-only Kubernetes client used by the
// validation framework.
//
// The Client interface is the single point of contact with the control
// plane: nodes, CRDs, workloads, custom resources, and the port-forward used
// by the inference smoke test. All operations are synchronous GET/LIST calls
// with client-go's default behavior; nothing here mutates cluster state.
package k8s
