package workspace

import (
	"context"
	"fmt"

	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/shell"
	"go.uber.org/zap"
)

// BranchCreateOptions configures BranchCreate.
type BranchCreateOptions struct {
	TaskID      string
	Description string
	// Repos selects submodules by alias, name or path. Empty falls back to
	// branch.default_repos, then to every submodule.
	Repos []string
}

// BranchCreate creates the task branch in each selected submodule. Unknown
// selectors and submodules that are not checked out are skipped with a
// warning. It returns the submodules where the branch was created.
func (w *Workspace) BranchCreate(ctx context.Context, opts BranchCreateOptions) ([]hub.Submodule, error) {
	branch := hub.TaskBranch(opts.TaskID, opts.Description)
	output.Title(w.out, "Creating task branch: %s", branch)

	selectors := opts.Repos
	if len(selectors) == 0 {
		selectors = w.cfg.Branch.DefaultRepos
	}

	targets := w.hub.Submodules
	if len(selectors) > 0 {
		var unknown []string
		targets, unknown = w.hub.Select(selectors)
		for _, sel := range unknown {
			w.warnf("Unknown repository: %s", sel)
		}
	}

	var created []hub.Submodule
	for _, sm := range targets {
		if !w.hub.Present(sm) {
			w.warnf("Repository not checked out: %s", sm.Path)
			continue
		}
		output.Section(w.out, sm.Path)
		if _, err := w.runner.Run(ctx, shell.Git(w.hub.SubmoduleDir(sm), "checkout", "-b", branch)); err != nil {
			return created, err
		}
		output.Success(w.out, "Created branch: %s", branch)
		created = append(created, sm)
	}
	return created, nil
}

// BranchStatus is the checked-out branch of one repository.
type BranchStatus struct {
	Label  string
	Branch string
}

// BranchList prints the hub branch and the branch of each checked-out
// submodule. The hub comes first.
func (w *Workspace) BranchList() []BranchStatus {
	output.Title(w.out, "Branches")

	statuses := []BranchStatus{{Label: "hub", Branch: w.branchOf(w.hub.Root)}}
	output.Section(w.out, "Hub:")
	output.Plain(w.out, "→ %s", statuses[0].Branch)

	for _, sm := range w.present() {
		st := BranchStatus{Label: sm.Path, Branch: w.branchOf(w.hub.SubmoduleDir(sm))}
		statuses = append(statuses, st)
		output.Section(w.out, sm.Path+":")
		output.Plain(w.out, "→ %s", st.Branch)
	}
	return statuses
}

// BranchSync pulls with rebase in each checked-out submodule. A failing pull
// warns and the rest continue; the failed submodules are returned.
func (w *Workspace) BranchSync(ctx context.Context) []hub.Submodule {
	output.Title(w.out, "Syncing submodules")

	var failed []hub.Submodule
	for _, sm := range w.present() {
		output.Section(w.out, sm.Path)
		if _, err := w.runner.Run(ctx, shell.Git(w.hub.SubmoduleDir(sm), "pull", "--rebase")); err != nil {
			w.logger.Warn("pull failed", zap.String("submodule", sm.Name), zap.Error(err))
			w.warnf("Sync failed for %s: %v", sm.Path, err)
			failed = append(failed, sm)
		}
	}

	if len(failed) == 0 {
		output.Success(w.out, "Sync complete")
	} else {
		w.warnf("Sync finished with %d failure(s)", len(failed))
	}
	return failed
}

// PROptions configures BranchPR.
type PROptions struct {
	Title string
	Body  string
	Draft bool
}

// BranchPR opens a pull request for the hub's current branch with gh.
func (w *Workspace) BranchPR(ctx context.Context, opts PROptions) error {
	if err := w.checker.RequireTool(w.gh, ghInstall); err != nil {
		return err
	}

	args := []string{"pr", "create"}
	if opts.Title != "" {
		args = append(args, "--title", opts.Title)
	}
	if opts.Body != "" {
		args = append(args, "--body", opts.Body)
	}
	if opts.Draft {
		args = append(args, "--draft")
	}

	fmt.Fprintln(w.out)
	output.Info(w.out, "Creating pull request")
	_, err := w.runner.Run(ctx, shell.Command{Name: w.gh, Args: args, Dir: w.hub.Root, Interactive: true})
	return err
}
