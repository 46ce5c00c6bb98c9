// Package devenv drives the local container dev environment described by the
// hub's compose file.
package devenv

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/decg-project/decg/internal/config"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/logging"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/shell"
	"github.com/mattn/go-shellwords"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Environment runs compose commands against the hub's dev compose file.
type Environment struct {
	hub       *hub.Hub
	runner    shell.Runner
	out       io.Writer
	compose   []string
	endpoints []config.EndpointConfig
	logger    *zap.Logger
}

// New creates an Environment. The compose command string is split into an
// argument vector, so "docker compose" and "docker-compose" both work.
func New(h *hub.Hub, runner shell.Runner, out io.Writer, cfg config.DevConfig, logger *zap.Logger) (*Environment, error) {
	compose, err := shellwords.Parse(cfg.ComposeCommand)
	if err != nil {
		return nil, fmt.Errorf("parsing dev.compose_command %q: %w", cfg.ComposeCommand, err)
	}
	if len(compose) == 0 {
		return nil, fmt.Errorf("dev.compose_command is empty")
	}
	return &Environment{
		hub:       h,
		runner:    runner,
		out:       out,
		compose:   compose,
		endpoints: cfg.Endpoints,
		logger:    logging.OrNop(logger),
	}, nil
}

// ComposeBinary is the executable of the compose command.
func (e *Environment) ComposeBinary() string {
	return e.compose[0]
}

// HasComposeFile reports whether the compose file exists.
func (e *Environment) HasComposeFile() bool {
	_, err := os.Stat(e.hub.ComposeFile())
	return err == nil
}

// RequireComposeFile fails with a prerequisite error when the compose file is
// missing.
func (e *Environment) RequireComposeFile() error {
	if !e.HasComposeFile() {
		return clierrors.ComposeFileMissing(e.hub.ComposeFileRel())
	}
	return nil
}

func (e *Environment) command(interactive bool, args ...string) shell.Command {
	full := make([]string, 0, len(e.compose)+2+len(args))
	full = append(full, e.compose[1:]...)
	full = append(full, "-f", e.hub.ComposeFile())
	full = append(full, args...)
	return shell.Command{Name: e.compose[0], Args: full, Dir: e.hub.Root, Interactive: interactive}
}

// Services loads the compose project and returns its service names, sorted.
func (e *Environment) Services() ([]string, error) {
	file := e.hub.ComposeFile()
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read compose file %s: %w", file, err)
	}

	env := make(composetypes.Mapping)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[key] = value
	}

	details := composetypes.ConfigDetails{
		WorkingDir:  filepath.Dir(file),
		ConfigFiles: []composetypes.ConfigFile{{Filename: file, Content: data}},
		Environment: env,
	}
	project, err := loader.Load(details, func(o *loader.Options) {
		o.SetProjectName(loader.NormalizeProjectName(filepath.Base(e.hub.Root)), true)
		o.SkipResolveEnvironment = true
	})
	if err != nil {
		return nil, fmt.Errorf("loading compose project: %w", err)
	}

	names := project.ServiceNames()
	sort.Strings(names)
	return names, nil
}

// validateService checks service against the compose project. An empty
// service means all services.
func (e *Environment) validateService(service string) error {
	if service == "" {
		return nil
	}
	names, err := e.Services()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == service {
			return nil
		}
	}
	return clierrors.NewArgumentError(
		fmt.Sprintf("unknown service %q", service),
		fmt.Sprintf("Services in %s: %s", e.hub.ComposeFileRel(), strings.Join(names, ", ")),
	)
}

// StartOptions configures Start.
type StartOptions struct {
	// Service limits startup to one service. Empty starts everything.
	Service string
	// Attach runs in the foreground instead of detached.
	Attach bool
}

// Start runs `up`, detached unless opts.Attach.
func (e *Environment) Start(ctx context.Context, opts StartOptions) error {
	if err := e.RequireComposeFile(); err != nil {
		return err
	}
	if err := e.validateService(opts.Service); err != nil {
		return err
	}

	args := []string{"up"}
	if !opts.Attach {
		args = append(args, "-d")
	}
	if opts.Service != "" {
		args = append(args, opts.Service)
	}

	if _, err := e.runner.Run(ctx, e.command(opts.Attach, args...)); err != nil {
		return err
	}

	if !opts.Attach {
		output.Success(e.out, "Dev environment started")
		for _, ep := range e.endpoints {
			output.Plain(e.out, "%s: %s", ep.Name, ep.URL)
		}
	}
	return nil
}

// Stop runs `down`.
func (e *Environment) Stop(ctx context.Context) error {
	if err := e.RequireComposeFile(); err != nil {
		return err
	}
	if _, err := e.runner.Run(ctx, e.command(false, "down")); err != nil {
		return err
	}
	output.Success(e.out, "Dev environment stopped")
	return nil
}

// LogsOptions configures Logs.
type LogsOptions struct {
	Service string
	Follow  bool
	Tail    int
}

// Logs streams `logs --tail N [-f] [service]`.
func (e *Environment) Logs(ctx context.Context, opts LogsOptions) error {
	if err := e.RequireComposeFile(); err != nil {
		return err
	}
	args := []string{"logs", "--tail", strconv.Itoa(opts.Tail)}
	if opts.Follow {
		args = append(args, "-f")
	}
	if opts.Service != "" {
		args = append(args, opts.Service)
	}
	_, err := e.runner.Run(ctx, e.command(true, args...))
	return err
}

// Status streams `ps`. A missing compose file only warns.
func (e *Environment) Status(ctx context.Context) error {
	if !e.HasComposeFile() {
		output.Warning(e.out, "Docker Compose file not found: %s", e.hub.ComposeFileRel())
		return nil
	}
	_, err := e.runner.Run(ctx, e.command(true, "ps"))
	return err
}

// Rebuild runs `up -d --build [service]`.
func (e *Environment) Rebuild(ctx context.Context, service string) error {
	if err := e.RequireComposeFile(); err != nil {
		return err
	}
	if err := e.validateService(service); err != nil {
		return err
	}
	args := []string{"up", "-d", "--build"}
	if service != "" {
		args = append(args, service)
	}
	if _, err := e.runner.Run(ctx, e.command(false, args...)); err != nil {
		return err
	}
	output.Success(e.out, "Rebuild complete")
	return nil
}

// Container is one entry of `ps --format json`.
type Container struct {
	Name    string
	Service string
	State   string
}

// Containers lists the project's containers. Compose prints either a JSON
// array or one JSON object per line depending on its version; both are read.
func (e *Environment) Containers(ctx context.Context) ([]Container, error) {
	res, err := e.runner.Run(ctx, e.command(false, "ps", "--format", "json"))
	if err != nil {
		return nil, err
	}
	return ParseContainers(res.Stdout), nil
}

// ParseContainers reads `ps --format json` output.
func ParseContainers(raw string) []Container {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var containers []Container
	add := func(r gjson.Result) {
		if !r.IsObject() {
			return
		}
		containers = append(containers, Container{
			Name:    r.Get("Name").String(),
			Service: r.Get("Service").String(),
			State:   r.Get("State").String(),
		})
	}

	parsed := gjson.Parse(raw)
	if parsed.IsArray() {
		parsed.ForEach(func(_, value gjson.Result) bool {
			add(value)
			return true
		})
		return containers
	}

	gjson.ForEachLine(raw, func(line gjson.Result) bool {
		add(line)
		return true
	})
	return containers
}
