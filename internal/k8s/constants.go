package k8s

const (
	// Default performance settings
	DefaultQPSLimit   = 20.0
	DefaultBurstLimit = 30
	DefaultTimeout    = 30 // seconds

	// Default port-forward readiness wait
	DefaultPortForwardReadySeconds = 10
)
