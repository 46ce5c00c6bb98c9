package workspace

import (
	"context"
	"strings"

	"github.com/decg-project/decg/internal/output"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// statusPreview is the number of hub status lines shown.
	statusPreview = 5
	// statusWorkers bounds the concurrent read-only git queries of Status.
	statusWorkers = 4
)

// SubmoduleStatus is one checked-out submodule in the status report.
type SubmoduleStatus struct {
	Path   string
	Branch string
	Clean  bool
}

// Report is the data behind `decg status`.
type Report struct {
	HubBranch  string
	Submodules []SubmoduleStatus
	// ComposeFile is false when the dev compose file is missing.
	ComposeFile bool
	Containers  int
	Running     int
	HubChanges  []string
}

// Status prints a read-only report of the workspace and returns it.
func (w *Workspace) Status(ctx context.Context) (*Report, error) {
	r := &Report{HubBranch: w.branchOf(w.hub.Root)}

	output.Title(w.out, "DECG workspace status")

	output.Section(w.out, "Hub branch:")
	output.Plain(w.out, "→ %s", r.HubBranch)

	output.Section(w.out, "Submodules:")
	statuses, err := w.submoduleStatuses(ctx)
	if err != nil {
		return r, err
	}
	r.Submodules = statuses
	for _, st := range r.Submodules {
		if st.Clean {
			output.Item(w.out, output.MarkOK, "%s: %s", st.Path, st.Branch)
		} else {
			output.Item(w.out, output.MarkChanged, "%s: %s (uncommitted changes)", st.Path, st.Branch)
		}
	}
	if len(r.Submodules) == 0 {
		output.Plain(w.out, "(none checked out)")
	}

	output.Section(w.out, "Docker containers:")
	r.ComposeFile = w.dev.HasComposeFile()
	if r.ComposeFile {
		containers, err := w.dev.Containers(ctx)
		if err != nil {
			output.Plain(w.out, "(could not query containers: %v)", err)
		} else {
			r.Containers = len(containers)
			for _, c := range containers {
				if c.State == "running" {
					r.Running++
				}
			}
			if r.Containers == 0 {
				output.Plain(w.out, "(no containers)")
			} else {
				output.Plain(w.out, "%d running of %d", r.Running, r.Containers)
			}
		}
	} else {
		output.Plain(w.out, "(no compose file)")
	}

	output.Section(w.out, "Hub changes:")
	changes, err := w.git.ShortStatus(w.hub.Root)
	if err != nil {
		return r, err
	}
	r.HubChanges = changes
	if len(changes) == 0 {
		output.Plain(w.out, "(no changes)")
		return r, nil
	}
	for _, line := range changes[:min(len(changes), statusPreview)] {
		output.Plain(w.out, "%s", strings.TrimRight(line, "\n"))
	}
	if len(changes) > statusPreview {
		output.Plain(w.out, "... and %d more", len(changes)-statusPreview)
	}
	return r, nil
}

// submoduleStatuses reads every checked-out submodule concurrently. The
// result keeps submodule order. A git read failure marks that submodule as
// not clean; only cancellation aborts the report.
func (w *Workspace) submoduleStatuses(ctx context.Context) ([]SubmoduleStatus, error) {
	present := w.present()
	statuses := make([]SubmoduleStatus, len(present))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusWorkers)
	for i, sm := range present {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dir := w.hub.SubmoduleDir(sm)
			clean, err := w.git.IsClean(dir)
			if err != nil {
				w.logger.Debug("worktree status", zap.String("dir", dir), zap.Error(err))
			}
			statuses[i] = SubmoduleStatus{Path: sm.Path, Branch: w.branchOf(dir), Clean: err == nil && clean}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}
