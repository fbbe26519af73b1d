package k8s

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"
)

// PortForwardSession represents an active port forwarding session.
// Close must be called on every exit path; it is safe to call repeatedly.
type PortForwardSession struct {
	LocalPort uint16

	stopChan  chan struct{}
	closeOnce sync.Once
}

// Close terminates the session and releases the local listening port.
func (s *PortForwardSession) Close() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
}

// resolveRemotePort picks the pod port behind the service's first declared
// port. The forward addresses the pod, so targetPort wins over the service
// port when the two differ. Named target ports fall back to the service
// port; resolving a name would need the pod spec.
func resolveRemotePort(svc *corev1.Service) (int32, error) {
	if len(svc.Spec.Ports) == 0 {
		return 0, fmt.Errorf("service %s/%s declares no ports", svc.Namespace, svc.Name)
	}
	port := svc.Spec.Ports[0]
	if tp := port.TargetPort.IntValue(); tp != 0 {
		return int32(tp), nil
	}
	return port.Port, nil
}

// PortForwardToService establishes a port-forward to the first ready pod
// behind the named service, on an ephemeral local port. remotePort 0 resolves
// the pod target port of the service's first declared port.
func (c *kubernetesClient) PortForwardToService(ctx context.Context, namespace, serviceName string, remotePort int32) (*PortForwardSession, error) {
	if c.restConfig == nil {
		return nil, fmt.Errorf("port forwarding requires a live cluster connection")
	}

	svc, err := c.clientset.CoreV1().Services(namespace).Get(ctx, serviceName, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get service %s/%s: %w", namespace, serviceName, err)
	}
	if len(svc.Spec.Selector) == 0 {
		return nil, fmt.Errorf("service %s/%s has no selector, cannot resolve a backing pod", namespace, serviceName)
	}
	if remotePort == 0 {
		remotePort, err = resolveRemotePort(svc)
		if err != nil {
			return nil, err
		}
	}

	selector := labels.Set(svc.Spec.Selector).String()
	pods, err := c.ListPods(ctx, namespace, selector)
	if err != nil {
		return nil, err
	}
	targetPod := ""
	for _, pod := range pods {
		if pod.Ready() {
			targetPod = pod.Name
			break
		}
	}
	if targetPod == "" {
		return nil, fmt.Errorf("no ready pods behind service %s/%s", namespace, serviceName)
	}

	c.logger.Debug("starting port-forward", "namespace", namespace, "service", serviceName, "pod", targetPod, "remote_port", remotePort)

	req := c.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(targetPod).
		Namespace(namespace).
		SubResource("portforward")

	roundTripper, upgrader, err := spdy.RoundTripperFor(c.restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create round tripper: %w", err)
	}
	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: roundTripper}, http.MethodPost, req.URL())

	stopChan := make(chan struct{}, 1)
	readyChan := make(chan struct{}, 1)

	// Local port 0 lets the kernel pick a free ephemeral port, so repeated
	// runs never collide.
	ports := []string{fmt.Sprintf("0:%d", remotePort)}
	forwarder, err := portforward.New(dialer, ports, stopChan, readyChan, io.Discard, io.Discard)
	if err != nil {
		return nil, fmt.Errorf("failed to create port forwarder: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- forwarder.ForwardPorts()
	}()

	session := &PortForwardSession{stopChan: stopChan}

	select {
	case <-readyChan:
		forwarded, err := forwarder.GetPorts()
		if err != nil || len(forwarded) == 0 {
			session.Close()
			return nil, fmt.Errorf("port forward ready but no ports reported: %w", err)
		}
		session.LocalPort = forwarded[0].Local
		return session, nil
	case err := <-errChan:
		session.Close()
		return nil, fmt.Errorf("port forwarding failed: %w", err)
	case <-ctx.Done():
		session.Close()
		return nil, fmt.Errorf("port forwarding canceled: %w", ctx.Err())
	case <-time.After(DefaultPortForwardReadySeconds * time.Second):
		session.Close()
		return nil, fmt.Errorf("timed out waiting for port forward to become ready")
	}
}
