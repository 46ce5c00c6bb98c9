package workspace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/profile"
	"github.com/decg-project/decg/internal/scaffold"
	"github.com/decg-project/decg/internal/shell"
	"go.uber.org/zap"
)

// InitOptions configures Init.
type InitOptions struct {
	Service string
	Version string
	// Include lists sparse paths used when no profile applies.
	Include []string
	// ProfilePath is an explicit profile, relative to the hub root. It must
	// exist.
	ProfilePath string
	SkipDocker  bool
}

const initSteps = 4

// Init prepares the workspace for service at version: hub branch, submodule
// checkout with sparse scopes, submodule branches, docs and release folders.
// Running it again with the same options checks out the existing branches.
func (w *Workspace) Init(ctx context.Context, opts InitOptions) error {
	doc, err := w.resolveProfile(opts)
	if err != nil {
		return err
	}

	output.Title(w.out, "Initializing workspace: %s %s", opts.Service, opts.Version)

	var includeScope profile.Scope
	switch {
	case doc != nil:
		output.Info(w.out, "Sparse profile loaded: %s", w.relative(doc.Path))
	case len(opts.Include) > 0:
		var dropped []string
		includeScope, dropped = profile.FromIncludeFlags(opts.Include)
		output.Info(w.out, "%d module(s) given with --include", len(opts.Include))
		if len(dropped) > 0 {
			w.warnf("Ignoring --include paths under apps/ without a profile: %s", strings.Join(dropped, ", "))
		}
		if len(includeScope.Include) > 0 {
			w.warnf("--include paths apply to every submodule; use a sparse profile to scope them per submodule")
		}
	}

	output.Step(w.out, 1, initSteps, "Hub branch")
	hubBranch := hub.HubBranch(opts.Service, opts.Version)
	created, err := w.checkoutOrCreate(ctx, w.hub.Root, hubBranch)
	if err != nil {
		return err
	}
	if created {
		output.Success(w.out, "Created branch: %s", hubBranch)
	} else {
		output.Info(w.out, "Switched to existing branch: %s", hubBranch)
	}

	output.Step(w.out, 2, initSteps, "Submodules")
	if err := w.initSubmodules(ctx, opts, doc, includeScope); err != nil {
		return err
	}
	output.Success(w.out, "Submodules initialized")

	output.Step(w.out, 3, initSteps, "Docs folders")
	data := scaffold.Data{Service: opts.Service, Version: opts.Version}
	if err := w.scaffold.EnsureDocFolders(w.hub.DocsVersionDir(opts.Service, opts.Version)); err != nil {
		return err
	}
	if _, err := w.scaffold.EnsureReleaseStubs(w.hub.ReleaseVersionDir(opts.Service, opts.Version), data); err != nil {
		return err
	}
	output.Success(w.out, "Docs folders ready")

	if opts.SkipDocker {
		output.Step(w.out, 4, initSteps, "Docker environment (skipped)")
	} else {
		output.Step(w.out, 4, initSteps, "Docker environment")
		if w.dev.HasComposeFile() {
			output.Info(w.out, "Docker Compose file found. Start it with 'decg dev start'.")
		} else {
			w.warnf("Docker Compose file not found: %s", w.hub.ComposeFileRel())
		}
	}

	fmt.Fprintln(w.out)
	output.Success(w.out, "Workspace initialized: %s %s", opts.Service, opts.Version)
	fmt.Fprint(w.out, "\nNext steps:\n  1. decg dev start\n  2. decg branch create <task-id> <description>\n")
	return nil
}

func (w *Workspace) resolveProfile(opts InitOptions) (*profile.Document, error) {
	resolver := profile.Resolver{Root: w.hub.Root, Dir: w.cfg.Paths.ProfilesDir}
	doc, err := resolver.Resolve(opts.Service, opts.Version, opts.ProfilePath)
	if errors.Is(err, profile.ErrNotFound) {
		return nil, clierrors.ProfileNotFound(opts.ProfilePath, err)
	}
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "invalid sparse profile",
			"Profiles map submodule names to include or exclude path lists")
	}
	return doc, nil
}

func (w *Workspace) initSubmodules(ctx context.Context, opts InitOptions, doc *profile.Document, includeScope profile.Scope) error {
	if doc.Lists() {
		if skipped := doc.Skipped(w.hub.Names()); len(skipped) > 0 {
			output.Info(w.out, "Skipped submodules: %s", strings.Join(skipped, ", "))
		}
	}

	branch := hub.SubmoduleBranch(opts.Service, opts.Version)
	for _, sm := range w.hub.Submodules {
		if !doc.Participates(sm.Name) {
			continue
		}

		if !w.hub.Present(sm) {
			if _, err := w.runner.Run(ctx, shell.Git(w.hub.Root, "submodule", "update", "--init", "--depth", "1", sm.Path)); err != nil {
				return err
			}
		}

		scope := includeScope
		if doc.Lists() {
			scope = doc.ScopeFor(sm.Name)
		}

		dir := w.hub.SubmoduleDir(sm)
		if scope.Mode() == profile.ModeNone {
			output.Plain(w.out, "%s: full checkout", sm.Name)
		} else {
			output.Plain(w.out, "Sparse checkout (%s): %s", scope.Mode(), sm.Name)
			if err := w.applier.Apply(ctx, dir, scope); err != nil {
				w.logger.Warn("sparse checkout failed", zap.String("submodule", sm.Name), zap.Error(err))
				w.warnf("Sparse checkout failed for %s: %v", sm.Name, err)
			}
		}

		if _, err := w.checkoutOrCreate(ctx, dir, branch); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) relative(path string) string {
	rel, err := filepath.Rel(w.hub.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
