package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag on the command tree to its default so the
// shared root command carries no state between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with the given arguments and returns
// the combined output. Tests only exercise paths that never reach a cluster.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3-test")
	output, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "xks-validate version 1.2.3-test")
}

func TestListProfiles(t *testing.T) {
	output, err := executeCommand(t, "conformance", "--list-profiles")
	require.NoError(t, err)
	for _, name := range []string{"helm-basic", "kserve-basic", "kserve-gateway", "kserve-multinode"} {
		assert.Contains(t, output, name)
	}
}

func TestConformanceRequiresProfile(t *testing.T) {
	_, err := executeCommand(t, "conformance")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--profile is required")
}

func TestConformanceUnknownProfile(t *testing.T) {
	_, err := executeCommand(t, "conformance", "--profile", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "bogus"`)
	assert.Contains(t, err.Error(), "kserve-basic")
}

func TestPreflightUnknownSuite(t *testing.T) {
	_, err := executeCommand(t, "preflight", "--suite", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown suite "bogus"`)
}

func TestPreflightRejectsUnsupportedProvider(t *testing.T) {
	_, err := executeCommand(t, "preflight", "--cloud-provider", "aws")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported yet")
}

func TestEnvironmentProvidesFlagValues(t *testing.T) {
	t.Setenv("LLMD_XKS_SUITE", "bogus")
	_, err := executeCommand(t, "preflight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown suite "bogus"`)
}

func TestBadLogLevelRejected(t *testing.T) {
	_, err := executeCommand(t, "version", "--log-level", "LOUD")
	require.Error(t, err)
}
