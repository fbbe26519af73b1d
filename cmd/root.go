package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llm-d/xks-validate/internal/config"
	"github.com/llm-d/xks-validate/internal/k8s"
	"github.com/llm-d/xks-validate/internal/logging"
	"github.com/llm-d/xks-validate/internal/report"
)

// Global flags, filled by cobra and the config source.
var (
	cfgFile     string
	logLevel    string
	kubeconfig  string
	kubeContext string

	// logger is built in the persistent pre-run once the log level is known.
	logger logging.Logger = logging.DefaultLogger()
)

// exitError carries a specific process exit code out of a RunE function.
// Validation failures and infrastructure failures map to distinct codes so
// scripts can tell them apart.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// rootCmd is the base command of xks-validate. All work happens in the
// preflight and conformance subcommands.
var rootCmd = &cobra.Command{
	Use:   "xks-validate",
	Short: "Validate managed Kubernetes clusters for llm-d inference deployments",
	Long: `xks-validate checks that a managed Kubernetes cluster (AKS or GKE) is
ready to run llm-d inference workloads, and that a deployed inference stack
conforms to one of the supported deployment topologies.

Settings come from flags, LLMD_XKS_* environment variables, or a flat
key=value configuration file, in that order of precedence.`,
	// SilenceUsage keeps validation failures from dumping the help text.
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		source, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := source.Apply(cmd.Flags()); err != nil {
			return err
		}
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger = logging.NewLogger(cmd.ErrOrStderr(), level)
		return nil
	},
}

// SetVersion injects the build-time version into the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI and exits the process with the code the command
// decided on: 0 on success, 1 on failed checks or infrastructure errors,
// 2 when cloud provider detection fails. An interrupt cancels the run.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "xks-validate version %s\n" .Version}}`)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(report.ExitFailure)
}

// newClient connects to the cluster using the global connection flags. An
// unreachable cluster is an infrastructure failure, not a finding.
func newClient() (k8s.Client, error) {
	client, err := k8s.NewClient(&k8s.ClientConfig{
		KubeconfigPath: kubeconfig,
		Context:        kubeContext,
		Logger:         logger,
	})
	if err != nil {
		logger.Debug("cluster connection failed", logging.Err(err))
		return nil, &exitError{
			code: report.ExitFailure,
			msg:  fmt.Sprintf("failed to connect to the cluster: %v", err),
		}
	}
	return client, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default searches ~/.xks-validate.conf, ./xks-validate.conf, /etc/xks-validate.conf)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO",
		"log level (DEBUG, INFO, WARNING, ERROR)")
	rootCmd.PersistentFlags().StringVar(&kubeconfig, "kubeconfig", "",
		"path to the kubeconfig file (default uses KUBECONFIG, then ~/.kube/config)")
	rootCmd.PersistentFlags().StringVar(&kubeContext, "kube-context", "",
		"kubeconfig context to use instead of the current one")

	rootCmd.AddCommand(newPreflightCmd())
	rootCmd.AddCommand(newConformanceCmd())
	rootCmd.AddCommand(newVersionCmd())
}
