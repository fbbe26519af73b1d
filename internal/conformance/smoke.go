package conformance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/llm-d/xks-validate/internal/checks"
	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
)

const (
	// smokeRequestTimeout bounds the single HTTP request of the smoke test.
	smokeRequestTimeout = 30 * time.Second

	// smokeResponseLimit caps how much of the response body gets read.
	smokeResponseLimit = 1 << 20
)

// smokeFunc performs the inference smoke test against one service. It is a
// function value on the Runner so tests can substitute a fake.
type smokeFunc func(ctx context.Context, client k8s.Client, namespace string, service k8s.ServiceInfo, log logging.Logger) checks.Result

// runSmokeTest port-forwards to the service's backing pod and issues a
// GET /v1/models against the OpenAI-compatible endpoint. Remote port 0 lets
// the client resolve the pod target port; the service port is not addressable
// on the pod when the two differ. The forward session is torn down on every
// exit path.
func runSmokeTest(ctx context.Context, client k8s.Client, namespace string, service k8s.ServiceInfo, log logging.Logger) checks.Result {
	log.Debug("starting inference smoke test",
		logging.Namespace(namespace),
		"service", service.Name,
	)

	session, err := client.PortForwardToService(ctx, namespace, service.Name, 0)
	if err != nil {
		return checks.Failed("port-forward to service %q failed: %v", service.Name, err)
	}
	defer session.Close()
	log.Debug("port-forward established", "service", service.Name, "localPort", session.LocalPort)

	url := fmt.Sprintf("http://127.0.0.1:%d/v1/models", session.LocalPort)
	httpClient := &http.Client{Timeout: smokeRequestTimeout}
	status, body, err := probeEndpoint(ctx, httpClient, url)
	if err != nil {
		return checks.Failed("request to %s failed: %v", url, err)
	}
	if status != http.StatusOK {
		return checks.Failed("endpoint returned HTTP %d: %s", status, truncate(body, 200))
	}
	return checks.Passed("service %q answered /v1/models with HTTP 200", service.Name)
}

// probeEndpoint issues one GET and returns the status code and body.
func probeEndpoint(ctx context.Context, httpClient *http.Client, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, smokeResponseLimit))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
