package shared

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/decg-project/decg/internal/config"
	"github.com/decg-project/decg/internal/devenv"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/git"
	"github.com/decg-project/decg/internal/health"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/logging"
	"github.com/decg-project/decg/internal/progress"
	"github.com/decg-project/decg/internal/release"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/testrun"
	"github.com/decg-project/decg/internal/workspace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Global flag names registered on the root command.
const (
	FlagConfig  = "config"
	FlagDebug   = "debug"
	FlagVerbose = "verbose"
	FlagNoColor = "no-color"
)

// AddGlobalFlags registers the persistent flags every command reads in Setup.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagConfig, "", "Path to a config file (default: <hub>/.decg/config.yml)")
	cmd.PersistentFlags().Bool(FlagDebug, false, "Enable debug logging")
	cmd.PersistentFlags().Bool(FlagVerbose, false, "Enable informational logging")
	cmd.PersistentFlags().Bool(FlagNoColor, false, "Disable colored output")
}

// GlobalFlag returns the value of a root persistent flag as seen by cmd. A
// local flag of the same name (test unit --verbose) is not mistaken for it.
func GlobalFlag(cmd *cobra.Command, name string) string {
	if f := cmd.InheritedFlags().Lookup(name); f != nil {
		return f.Value.String()
	}
	if f := cmd.PersistentFlags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// Overrides replace the process-level collaborators of Setup. Zero fields
// keep the real implementation.
type Overrides struct {
	Runner   shell.Runner
	Git      git.Reader
	LookPath health.LookPathFunc
	Prompter *Prompter
	// WorkDir is where hub discovery starts instead of the current directory.
	WorkDir string
	// SkipUser ignores ~/.config/decg/config.yml.
	SkipUser bool
}

type overridesKey struct{}

// WithOverrides attaches o to ctx for Setup to pick up.
func WithOverrides(ctx context.Context, o Overrides) context.Context {
	return context.WithValue(ctx, overridesKey{}, o)
}

func overridesFrom(ctx context.Context) Overrides {
	if ctx == nil {
		return Overrides{}
	}
	o, _ := ctx.Value(overridesKey{}).(Overrides)
	return o
}

// Env is what a command needs to run: the merged configuration, the
// discovered hub (nil when outside one) and the collaborators that touch
// the outside world.
type Env struct {
	Config   *config.Configuration
	Logger   *zap.Logger
	Hub      *hub.Hub
	Runner   shell.Runner
	Git      git.Reader
	Checker  *health.Checker
	Prompter *Prompter
	Out      io.Writer
}

// Setup loads configuration and discovers the hub for cmd. When needHub is
// set, running outside a hub is an error.
func Setup(cmd *cobra.Command, needHub bool) (*Env, error) {
	o := overridesFrom(cmd.Context())
	explicit := GlobalFlag(cmd, FlagConfig)
	debug := GlobalFlag(cmd, FlagDebug) == "true"
	verbose := GlobalFlag(cmd, FlagVerbose) == "true"

	wd := o.WorkDir
	if wd == "" {
		var err error
		if wd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
	}

	// The first pass only learns hub.marker; the hub layer needs the root.
	opts := config.LoadOptions{ExplicitPath: explicit, SkipUser: o.SkipUser}
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, configError(err)
	}
	root, findErr := hub.FindRoot(wd, cfg.Hub.Marker)
	if findErr == nil {
		opts.HubRoot = root
		if cfg, err = config.Load(opts); err != nil {
			return nil, configError(err)
		}
	}

	level := cfg.LogLevel
	switch {
	case debug:
		level = "debug"
	case verbose:
		level = "info"
	}
	logger, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return nil, configError(err)
	}
	if debug {
		git.SetDebugLogger(logger.Sugar().Debugf)
	}

	out := cmd.OutOrStdout()
	env := &Env{
		Config:   cfg,
		Logger:   logger,
		Runner:   o.Runner,
		Git:      o.Git,
		Prompter: o.Prompter,
		Out:      out,
	}

	switch {
	case findErr == nil:
		h, err := hub.New(root, cfg)
		if err != nil {
			return nil, configError(err)
		}
		env.Hub = h
		logger.Debug("hub discovered", zap.String("root", root), zap.Int("submodules", len(h.Submodules)))
	case needHub:
		cliErr := clierrors.HubRootNotFound(cfg.Hub.Marker)
		cliErr.Err = findErr
		return nil, cliErr
	}

	if env.Runner == nil {
		env.Runner = shell.NewExecRunner(
			shell.WithOutput(out),
			shell.WithErrOutput(cmd.ErrOrStderr()),
			shell.WithInput(cmd.InOrStdin()),
			shell.WithLogger(logger),
			shell.WithSpinner(progress.DetectTerminalCapabilities(out).IsTTY),
		)
	}
	if env.Git == nil {
		env.Git = git.Local{}
	}
	if o.LookPath != nil {
		env.Checker = health.NewChecker(health.WithLookPath(o.LookPath))
	} else {
		env.Checker = health.NewChecker()
	}
	if env.Prompter == nil {
		in := cmd.InOrStdin()
		env.Prompter = NewPrompter(in, out, progress.IsInteractive(in))
	}
	return env, nil
}

func configError(err error) error {
	return clierrors.Wrap(err, clierrors.Configuration,
		"Check the config files with: decg config show",
		fmt.Sprintf("Environment overrides use the %s prefix", config.EnvPrefix))
}

// Workspace builds the hub-wide flow runner.
func (e *Env) Workspace() (*workspace.Workspace, error) {
	return workspace.New(e.Hub, e.Config, e.Runner, e.Out,
		workspace.WithGitReader(e.Git),
		workspace.WithChecker(e.Checker),
		workspace.WithLogger(e.Logger))
}

// Release builds the release manager.
func (e *Env) Release() (*release.Manager, error) {
	ws, err := e.Workspace()
	if err != nil {
		return nil, err
	}
	return release.New(e.Hub, e.Runner, e.Git, ws.Scaffolder(), e.Out,
		release.WithChecker(e.Checker),
		release.WithGitHubCommand(e.Config.GH.Command),
		release.WithLogger(e.Logger)), nil
}

// Dev builds the container dev environment.
func (e *Env) Dev() (*devenv.Environment, error) {
	env, err := devenv.New(e.Hub, e.Runner, e.Out, e.Config.Dev, e.Logger)
	if err != nil {
		return nil, configError(err)
	}
	return env, nil
}

// Tests builds the test suite runner.
func (e *Env) Tests() *testrun.Suite {
	return testrun.New(e.Hub, e.Runner, e.Out, e.Config.Test, e.Logger)
}
