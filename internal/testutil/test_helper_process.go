package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/decg-project/decg/internal/shell"
)

// HelperProcessConfig configures the behavior of TestHelperProcess.
type HelperProcessConfig struct {
	// ExitCode is the exit code to return (default 0).
	ExitCode int `json:"exit_code"`
	// Stdout is the content to write to stdout.
	Stdout string `json:"stdout"`
	// Stderr is the content to write to stderr.
	Stderr string `json:"stderr"`
	// EchoArgs writes the received argument vector to stdout, one per line.
	EchoArgs bool `json:"echo_args"`
}

// Environment variable names used by TestHelperProcess.
const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	// EnvHelperProcessConfig contains JSON-encoded HelperProcessConfig.
	EnvHelperProcessConfig = "GO_HELPER_PROCESS_CONFIG"
	// EnvHelperProcessArgs contains the original command-line arguments (JSON array).
	EnvHelperProcessArgs = "GO_HELPER_PROCESS_ARGS"
)

// TestHelperProcess implements the helper process pattern. When the test
// binary is started with GO_WANT_HELPER_PROCESS=1 it behaves as the mocked
// command and exits; otherwise it returns immediately.
//
// Usage in test file:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}

	config := HelperProcessConfig{}
	if raw := os.Getenv(EnvHelperProcessConfig); raw != "" {
		_ = json.Unmarshal([]byte(raw), &config)
	}

	if config.EchoArgs {
		var args []string
		_ = json.Unmarshal([]byte(os.Getenv(EnvHelperProcessArgs)), &args)
		fmt.Fprint(os.Stdout, strings.Join(args, "\n"))
	}
	if config.Stdout != "" {
		fmt.Fprint(os.Stdout, config.Stdout)
	}
	if config.Stderr != "" {
		fmt.Fprint(os.Stderr, config.Stderr)
	}
	os.Exit(config.ExitCode)
}

// HelperCommandFunc returns a shell.CommandFunc that starts the test binary
// as a helper process instead of the real command. testName must name a test
// function that calls TestHelperProcess.
func HelperCommandFunc(t *testing.T, testName string, config HelperProcessConfig) shell.CommandFunc {
	t.Helper()

	testBinary, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to get test binary path: %v", err)
	}

	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, testBinary, "-test.run=^"+testName+"$")
		cmd.Env = buildHelperEnv(config, append([]string{name}, args...))
		return cmd
	}
}

// buildHelperEnv constructs the environment variables for helper process.
func buildHelperEnv(config HelperProcessConfig, args []string) []string {
	env := os.Environ()
	env = append(env, EnvWantHelperProcess+"=1")

	if configJSON, err := json.Marshal(config); err == nil {
		env = append(env, EnvHelperProcessConfig+"="+string(configJSON))
	}
	if argsJSON, err := json.Marshal(args); err == nil {
		env = append(env, EnvHelperProcessArgs+"="+string(argsJSON))
	}
	return env
}
