package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	// decgBinaryPath caches the built decg binary path.
	decgBinaryPath string
	decgBuildOnce  sync.Once
	decgBuildErr   error
)

// mockTools are put on PATH ahead of the system so E2E runs never reach a
// real container runtime, GitHub or test runner.
var mockTools = []string{"docker-compose", "gh", "pytest"}

// mockScript records its name and arguments, one call per line, and exits
// with MOCK_EXIT_CODE.
const mockScript = `#!/bin/sh
echo "$(basename "$0") $*" >> "$MOCK_CALL_LOG"
exit "${MOCK_EXIT_CODE:-0}"
`

// E2EGitmodules declares the submodules of an E2E hub.
const E2EGitmodules = `[submodule "decg-fe-monorepo"]
	path = apps/decg-fe-monorepo
	url = https://example.invalid/decg-fe-monorepo.git
[submodule "decg-be-monorepo"]
	path = apps/decg-be-monorepo
	url = https://example.invalid/decg-be-monorepo.git
`

// E2EEnv is an isolated hub plus a freshly built decg binary. PATH holds
// mock docker-compose, gh and pytest scripts in front of the system PATH so
// git is real and everything else is recorded.
type E2EEnv struct {
	t            *testing.T
	rootDir      string
	hubDir       string
	binDir       string
	homeDir      string
	callLog      string
	mockExitCode int
	// sources maps a submodule name to the file:// URL of its remote.
	sources map[string]string
}

// CommandResult captures the result of running a decg command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates the environment. The hub directory exists but is not yet
// a repository; see InitHub.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	tempDir := t.TempDir()
	e := &E2EEnv{
		t:       t,
		rootDir: tempDir,
		sources: make(map[string]string),
		hubDir:  filepath.Join(tempDir, "hub"),
		binDir:  filepath.Join(tempDir, "bin"),
		homeDir: filepath.Join(tempDir, "home"),
		callLog: filepath.Join(tempDir, "calls.log"),
	}
	for _, dir := range []string{e.hubDir, e.binDir, e.homeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating %s: %v", dir, err)
		}
	}

	e.setupMockTools()
	e.buildDecg()
	return e
}

func (e *E2EEnv) setupMockTools() {
	e.t.Helper()

	for _, tool := range mockTools {
		if err := os.WriteFile(filepath.Join(e.binDir, tool), []byte(mockScript), 0o755); err != nil {
			e.t.Fatalf("writing mock %s: %v", tool, err)
		}
	}
}

func (e *E2EEnv) buildDecg() {
	e.t.Helper()

	// Build once per test binary.
	decgBuildOnce.Do(func() {
		decgBinaryPath, decgBuildErr = doBuildDecg()
	})
	if decgBuildErr != nil {
		e.t.Fatalf("building decg: %v", decgBuildErr)
	}

	content, err := os.ReadFile(decgBinaryPath)
	if err != nil {
		e.t.Fatalf("reading decg binary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.binDir, "decg"), content, 0o755); err != nil {
		e.t.Fatalf("writing decg binary: %v", err)
	}
}

func doBuildDecg() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "decg-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}
	binaryPath := filepath.Join(tmpDir, "decg")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/decg")
	cmd.Dir = repoRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build: %w\nOutput: %s", err, output)
	}
	return binaryPath, nil
}

// HubDir returns the hub root.
func (e *E2EEnv) HubDir() string {
	return e.hubDir
}

// Path joins rel to the hub root.
func (e *E2EEnv) Path(rel string) string {
	return filepath.Join(e.hubDir, filepath.FromSlash(rel))
}

// WriteFile writes a file under the hub root.
func (e *E2EEnv) WriteFile(rel, content string) {
	e.t.Helper()
	WriteFile(e.t, e.Path(rel), content)
}

// SetMockExitCode makes every mock tool exit with code.
func (e *E2EEnv) SetMockExitCode(code int) {
	e.mockExitCode = code
}

// Calls returns the recorded mock tool invocations in order.
func (e *E2EEnv) Calls() []string {
	e.t.Helper()

	data, err := os.ReadFile(e.callLog)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		e.t.Fatalf("reading call log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// InitHub makes the hub a git repository with .gitmodules and an initial
// commit. The submodules are not checked out.
func (e *E2EEnv) InitHub() {
	e.t.Helper()

	e.initRepo(e.hubDir)
	e.WriteFile(".gitmodules", E2EGitmodules)
	e.Git(e.hubDir, "add", ".gitmodules")
	e.Git(e.hubDir, "commit", "-m", "Initial commit")
}

// AddSubmoduleRepo creates an independent repository with one commit at a
// submodule path, standing in for a checked-out submodule.
func (e *E2EEnv) AddSubmoduleRepo(rel string) string {
	e.t.Helper()

	dir := e.Path(rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("creating %s: %v", dir, err)
	}
	e.initRepo(dir)
	WriteFile(e.t, filepath.Join(dir, "README.md"), "# "+filepath.Base(dir)+"\n")
	e.Git(dir, "add", "README.md")
	e.Git(dir, "commit", "-m", "Initial commit")
	return dir
}

// NewSourceRepo creates a repository outside the hub holding files (paths
// relative to its root) in one commit. It serves as the remote of the
// submodule called name; the file:// URL is returned.
func (e *E2EEnv) NewSourceRepo(name string, files map[string]string) string {
	e.t.Helper()

	dir := filepath.Join(e.rootDir, "sources", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("creating %s: %v", dir, err)
	}
	e.initRepo(dir)
	WriteFile(e.t, filepath.Join(dir, "README.md"), "# "+name+"\n")
	for rel, content := range files {
		WriteFile(e.t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	e.Git(dir, "add", "-A")
	e.Git(dir, "commit", "-m", "Initial commit")

	url := "file://" + filepath.ToSlash(dir)
	e.sources[name] = url
	return url
}

// InitHubWithSubmodules makes the hub a repository that registers each named
// source repository as a real submodule at apps/<name>, in order.
func (e *E2EEnv) InitHubWithSubmodules(names ...string) {
	e.t.Helper()

	e.initRepo(e.hubDir)
	for _, name := range names {
		url, ok := e.sources[name]
		if !ok {
			e.t.Fatalf("no source repository named %s", name)
		}
		e.Git(e.hubDir, "submodule", "add", "--name", name, url, "apps/"+name)
	}
	e.Git(e.hubDir, "commit", "-m", "Add submodules")
}

// CloneHub clones the hub without recursing into submodules, the way a new
// developer starts, and returns the clone root. Every submodule directory in
// the clone is empty.
func (e *E2EEnv) CloneHub() string {
	e.t.Helper()

	dir := filepath.Join(e.rootDir, "clone")
	e.Git(e.rootDir, "clone", e.hubDir, dir)
	return dir
}

// Commit records an empty commit with subject in the hub.
func (e *E2EEnv) Commit(subject string) {
	e.t.Helper()
	e.Git(e.hubDir, "commit", "--allow-empty", "-m", subject)
}

func (e *E2EEnv) initRepo(dir string) {
	e.t.Helper()

	e.Git(dir, "init", "-b", "main")
	e.Git(dir, "config", "user.email", "test@test.com")
	e.Git(dir, "config", "user.name", "Test")
	e.Git(dir, "config", "commit.gpgsign", "false")
	e.Git(dir, "config", "tag.gpgsign", "false")
}

// Git runs the real git in dir and returns its trimmed output.
func (e *E2EEnv) Git(dir string, args ...string) string {
	e.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = e.environ()
	output, err := cmd.CombinedOutput()
	if err != nil {
		e.t.Fatalf("git %s failed: %v\nOutput: %s", strings.Join(args, " "), err, output)
	}
	return strings.TrimSpace(string(output))
}

// Run executes decg in the hub root.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()
	return e.RunIn(e.hubDir, args...)
}

// RunIn executes decg in dir.
func (e *E2EEnv) RunIn(dir string, args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()
	cmd := exec.Command(filepath.Join(e.binDir, "decg"), args...)
	cmd.Dir = dir
	cmd.Env = e.environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	return result
}

// environ is the isolated environment: mocks first on PATH, a private HOME
// and config dir, no colors.
func (e *E2EEnv) environ() []string {
	path := e.binDir
	if system := os.Getenv("PATH"); system != "" {
		path += string(os.PathListSeparator) + system
	}

	env := []string{
		"PATH=" + path,
		"HOME=" + e.homeDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.homeDir, ".config"),
		"NO_COLOR=1",
		"MOCK_CALL_LOG=" + e.callLog,
		fmt.Sprintf("MOCK_EXIT_CODE=%d", e.mockExitCode),
		"GIT_CONFIG_NOSYSTEM=1",
		// Submodule remotes are local file:// repositories.
		"GIT_CONFIG_COUNT=1",
		"GIT_CONFIG_KEY_0=protocol.file.allow",
		"GIT_CONFIG_VALUE_0=always",
	}
	for _, key := range []string{"TERM", "LANG", "LC_ALL", "TMPDIR", "TMP", "TEMP"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}
