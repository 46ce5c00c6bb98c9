// Package workspace implements the hub-wide flows of decg: workspace
// initialization, version folders, task branches, docs trees and the status
// report. Every flow receives the discovered hub explicitly and issues
// external commands through a shell.Runner.
package workspace

import (
	"context"
	"io"

	"github.com/decg-project/decg/internal/config"
	"github.com/decg-project/decg/internal/devenv"
	"github.com/decg-project/decg/internal/git"
	"github.com/decg-project/decg/internal/health"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/logging"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/scaffold"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/sparse"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
)

const ghInstall = "https://cli.github.com"

// Workspace runs flows against one hub.
type Workspace struct {
	hub      *hub.Hub
	cfg      *config.Configuration
	runner   shell.Runner
	git      git.Reader
	fs       billy.Filesystem
	scaffold *scaffold.Scaffolder
	applier  *sparse.Applier
	dev      *devenv.Environment
	checker  *health.Checker
	gh       string
	out      io.Writer
	logger   *zap.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithGitReader replaces the go-git backed repository reader.
func WithGitReader(r git.Reader) Option {
	return func(w *Workspace) {
		w.git = r
	}
}

// WithFilesystem replaces the hub filesystem used for docs and releases.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(w *Workspace) {
		w.fs = fs
	}
}

// WithChecker sets the tool checker used before invoking gh.
func WithChecker(c *health.Checker) Option {
	return func(w *Workspace) {
		w.checker = c
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workspace) {
		w.logger = l
	}
}

// New creates a Workspace for h.
func New(h *hub.Hub, cfg *config.Configuration, runner shell.Runner, out io.Writer, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		hub:     h,
		cfg:     cfg,
		runner:  runner,
		git:     git.Local{},
		checker: health.NewChecker(),
		gh:      health.Executable(cfg.GH.Command, "gh"),
		out:     out,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrNop(w.logger)
	if w.fs == nil {
		w.fs = osfs.New(h.Root)
	}
	w.scaffold = scaffold.New(w.fs)
	w.applier = sparse.NewApplier(runner, out, cfg.Sparse.AlwaysInclude, w.logger)

	dev, err := devenv.New(h, runner, out, cfg.Dev, w.logger)
	if err != nil {
		return nil, err
	}
	w.dev = dev
	return w, nil
}

// Hub returns the workspace's hub.
func (w *Workspace) Hub() *hub.Hub {
	return w.hub
}

// Scaffolder returns the scaffolder over the hub filesystem.
func (w *Workspace) Scaffolder() *scaffold.Scaffolder {
	return w.scaffold
}

// checkoutOrCreate switches dir to branch, creating it when it does not
// exist. It reports whether the branch was created.
func (w *Workspace) checkoutOrCreate(ctx context.Context, dir, branch string) (bool, error) {
	exists, err := w.git.BranchExists(dir, branch)
	if err != nil {
		return false, err
	}
	if exists {
		_, err := w.runner.Run(ctx, shell.Git(dir, "checkout", branch))
		return false, err
	}
	_, err = w.runner.Run(ctx, shell.Git(dir, "checkout", "-b", branch))
	return err == nil, err
}

// present returns the checked-out submodules, in order.
func (w *Workspace) present() []hub.Submodule {
	var subs []hub.Submodule
	for _, sm := range w.hub.Submodules {
		if w.hub.Present(sm) {
			subs = append(subs, sm)
		}
	}
	return subs
}

func (w *Workspace) branchOf(dir string) string {
	branch, err := w.git.CurrentBranch(dir)
	if err != nil {
		w.logger.Debug("current branch", zap.String("dir", dir), zap.Error(err))
		return "(unknown)"
	}
	return branch
}

func (w *Workspace) warnf(format string, args ...any) {
	output.Warning(w.out, format, args...)
}
