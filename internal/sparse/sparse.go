// Package sparse applies a profile.Scope to a repository working copy with
// git sparse-checkout.
//
// INCLUDE scopes use cone mode and `git sparse-checkout set`. EXCLUDE scopes
// use a non-cone pattern file that starts with "/*" and negates each
// excluded path; git lets a later negation override the leading catch-all,
// so dropping "/*" would leave an allow-list matching nothing.
package sparse

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/decg-project/decg/internal/logging"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/profile"
	"github.com/decg-project/decg/internal/shell"
	"go.uber.org/zap"
)

// Patterns returns the non-cone pattern lines for an exclude list, in order.
func Patterns(exclude []string) []string {
	patterns := make([]string, 0, len(exclude)+1)
	patterns = append(patterns, "/*")
	for _, p := range exclude {
		patterns = append(patterns, "!/"+strings.TrimPrefix(p, "/"))
	}
	return patterns
}

// Applier configures sparse checkout through git commands.
type Applier struct {
	runner        shell.Runner
	out           io.Writer
	alwaysInclude []string
	logger        *zap.Logger
}

// NewApplier creates an Applier. alwaysInclude is appended to every
// include set.
func NewApplier(runner shell.Runner, out io.Writer, alwaysInclude []string, logger *zap.Logger) *Applier {
	return &Applier{
		runner:        runner,
		out:           out,
		alwaysInclude: alwaysInclude,
		logger:        logging.OrNop(logger),
	}
}

// Apply configures repoPath for scope. A ModeNone scope is a no-op.
func (a *Applier) Apply(ctx context.Context, repoPath string, scope profile.Scope) error {
	switch scope.Mode() {
	case profile.ModeInclude:
		return a.applyInclude(ctx, repoPath, scope.Include)
	case profile.ModeExclude:
		return a.applyExclude(ctx, repoPath, scope.Exclude)
	default:
		a.logger.Debug("empty scope, leaving full checkout", zap.String("repo", repoPath))
		return nil
	}
}

func (a *Applier) applyInclude(ctx context.Context, repoPath string, include []string) error {
	if _, err := a.runner.Run(ctx, shell.Git(repoPath, "sparse-checkout", "init", "--cone")); err != nil {
		return fmt.Errorf("enabling cone sparse checkout: %w", err)
	}

	args := []string{"sparse-checkout", "set"}
	args = append(args, include...)
	args = append(args, a.alwaysInclude...)
	if _, err := a.runner.Run(ctx, shell.Git(repoPath, args...)); err != nil {
		return fmt.Errorf("setting sparse checkout paths: %w", err)
	}

	for _, p := range include {
		output.Item(a.out, output.MarkOK, "%s", p)
	}
	return nil
}

func (a *Applier) applyExclude(ctx context.Context, repoPath string, exclude []string) error {
	if _, err := a.runner.Run(ctx, shell.Git(repoPath, "sparse-checkout", "init", "--no-cone")); err != nil {
		return fmt.Errorf("enabling non-cone sparse checkout: %w", err)
	}

	file, err := a.patternFile(ctx, repoPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(file), err)
	}
	content := strings.Join(Patterns(exclude), "\n") + "\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing sparse patterns: %w", err)
	}
	a.logger.Debug("wrote sparse patterns", zap.String("file", file), zap.Int("excluded", len(exclude)))

	if _, err := a.runner.Run(ctx, shell.Git(repoPath, "read-tree", "-mu", "HEAD")); err != nil {
		return fmt.Errorf("re-reading tree: %w", err)
	}

	output.Item(a.out, output.MarkBullet, "everything included except:")
	for _, p := range exclude {
		output.Item(a.out, output.MarkRemoved, "%s (excluded)", p)
	}
	return nil
}

// patternFile locates info/sparse-checkout in the repository's git dir. A
// submodule's .git is a file pointing elsewhere, so the path is asked of git.
func (a *Applier) patternFile(ctx context.Context, repoPath string) (string, error) {
	res, err := a.runner.Run(ctx, shell.Git(repoPath, "rev-parse", "--git-path", "info/sparse-checkout"))
	if err != nil {
		return "", fmt.Errorf("locating sparse-checkout file: %w", err)
	}
	p := strings.TrimSpace(res.Stdout)
	if p == "" {
		return "", fmt.Errorf("locating sparse-checkout file: git printed no path")
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(repoPath, p)
	}
	return p, nil
}
