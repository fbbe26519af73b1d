package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/llm-d/xks-validate/internal/k8s"
)

// namespacedName identifies a deployment to probe.
type namespacedName struct {
	Namespace string
	Name      string
}

// crdPresenceCheck builds a check that passes iff every named CRD is
// installed. Failures list the missing CRDs.
func crdPresenceCheck(name, description, action string, optional bool, required []string) Check {
	return Check{
		Name:            name,
		Suite:           SuiteOperators,
		Description:     description,
		SuggestedAction: action,
		Optional:        optional,
		Run: func(ctx context.Context, client k8s.Client) Result {
			installed, err := client.CRDNames(ctx)
			if err != nil {
				return Failed("failed to list CRDs: %v", err)
			}
			var missing []string
			for _, crd := range required {
				if _, ok := installed[crd]; !ok {
					missing = append(missing, crd)
				}
			}
			if len(missing) > 0 {
				return Failed("missing CRDs: %s", strings.Join(missing, ", "))
			}
			return Passed("all %d required CRDs present", len(required))
		},
	}
}

// deploymentReadyCheck builds a check that passes iff every listed deployment
// exists with readyReplicas == desiredReplicas > 0.
func deploymentReadyCheck(name, description, action string, optional bool, deployments []namespacedName) Check {
	return Check{
		Name:            name,
		Suite:           SuiteOperators,
		Description:     description,
		SuggestedAction: action,
		Optional:        optional,
		Run: func(ctx context.Context, client k8s.Client) Result {
			var problems []string
			for _, target := range deployments {
				deploy, err := client.GetDeployment(ctx, target.Namespace, target.Name)
				if err != nil {
					return Failed("failed to get deployment %s/%s: %v", target.Namespace, target.Name, err)
				}
				if deploy == nil {
					problems = append(problems, fmt.Sprintf("%s/%s not found", target.Namespace, target.Name))
					continue
				}
				if !deploy.Ready() {
					problems = append(problems, fmt.Sprintf("%s/%s has %d of %d replicas ready",
						target.Namespace, target.Name, deploy.ReadyReplicas, deploy.DesiredReplicas))
				}
			}
			if len(problems) > 0 {
				return Failed("%s", strings.Join(problems, "; "))
			}
			return Passed("all %d deployments ready", len(deployments))
		},
	}
}

// OperatorChecks returns the operators readiness suite covering the CRDs and
// controllers installed by the llm-d operator stack: cert-manager, the sail
// (Istio) operator, the LeaderWorkerSet operator and KServe.
func OperatorChecks() []Check {
	return []Check{
		crdPresenceCheck(
			"crd_certmanager",
			"Check that the cluster has the cert-manager CRDs",
			"Install cert-manager",
			false,
			[]string{
				"certificaterequests.cert-manager.io",
				"certificates.cert-manager.io",
				"clusterissuers.cert-manager.io",
				"issuers.cert-manager.io",
			},
		),
		deploymentReadyCheck(
			"operator_certmanager",
			"Check that the cert-manager operator is running properly",
			"Install or verify cert-manager deployment",
			false,
			[]namespacedName{
				{"cert-manager-operator", "cert-manager-operator-controller-manager"},
				{"cert-manager", "cert-manager-webhook"},
				{"cert-manager", "cert-manager-cainjector"},
				{"cert-manager", "cert-manager"},
			},
		),
		crdPresenceCheck(
			"crd_sailoperator",
			"Check that the cluster has the sail-operator CRDs",
			"Install sail-operator",
			false,
			[]string{
				"istiocnis.sailoperator.io",
				"istiorevisions.sailoperator.io",
				"istiorevisiontags.sailoperator.io",
				"istios.sailoperator.io",
				"ztunnels.sailoperator.io",
			},
		),
		deploymentReadyCheck(
			"operator_sail",
			"Check that the sail operator is running properly",
			"Install or verify sail operator deployment",
			false,
			[]namespacedName{
				{"istio-system", "istiod"},
				{"istio-system", "servicemesh-operator3"},
			},
		),
		crdPresenceCheck(
			"crd_lwsoperator",
			"Check that the cluster has the lws-operator CRDs",
			"Install lws-operator",
			true,
			[]string{
				"leaderworkersets.leaderworkerset.x-k8s.io",
			},
		),
		deploymentReadyCheck(
			"operator_lws",
			"Check that the lws-operator is running properly",
			"Install or verify lws operator deployment",
			true,
			[]namespacedName{
				{"openshift-lws-operator", "openshift-lws-operator"},
			},
		),
		crdPresenceCheck(
			"crd_kserve",
			"Check that the cluster has the kserve CRDs",
			"Install kserve",
			false,
			[]string{
				"llminferenceservices.serving.kserve.io",
				"llminferenceserviceconfigs.serving.kserve.io",
				"inferencepools.inference.networking.k8s.io",
				"inferencemodels.inference.networking.x-k8s.io",
				"inferenceobjectives.inference.networking.x-k8s.io",
				"inferencepoolimports.inference.networking.x-k8s.io",
				"inferencepools.inference.networking.x-k8s.io",
			},
		),
		deploymentReadyCheck(
			"operator_kserve",
			"Check that the kserve controller is running properly",
			"Install or verify kserve deployment",
			false,
			[]namespacedName{
				{"opendatahub", "kserve-controller-manager"},
			},
		),
	}
}
