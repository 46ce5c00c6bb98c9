package workspace

import (
	"errors"
	"os"
	"path"

	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/docs"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/scaffold"
)

// VersionNew creates the docs folders and release files of a new version.
// Trees that already exist only warn. With from set, the new changelog
// carries the changelog of that earlier version below its header.
func (w *Workspace) VersionNew(service, version, from string) error {
	output.Title(w.out, "Creating version: %s %s", service, version)

	docsDir := w.hub.DocsVersionDir(service, version)
	err := w.scaffold.CreateDocFolders(docsDir)
	switch {
	case scaffold.IsExists(err):
		w.warnf("%s already exists", docsDir)
	case err != nil:
		return err
	default:
		output.Success(w.out, "Created %s", docsDir)
	}

	releaseDir := w.hub.ReleaseVersionDir(service, version)
	if w.scaffold.Exists(releaseDir) {
		w.warnf("%s already exists", releaseDir)
		return nil
	}

	var previous []byte
	if from != "" {
		prev := path.Join(w.hub.ReleaseVersionDir(service, from), scaffold.ChangelogFile)
		previous, err = w.scaffold.ReadFile(prev)
		switch {
		case errors.Is(err, os.ErrNotExist):
			w.warnf("No changelog to carry over: %s", prev)
			previous = nil
		case err != nil:
			return err
		}
	}

	data := scaffold.Data{Service: service, Version: version}
	if err := w.scaffold.CreateReleaseStubs(releaseDir, data, previous); err != nil {
		return err
	}
	if previous != nil {
		output.Info(w.out, "CHANGELOG.md carried over from %s", from)
	}
	output.Success(w.out, "Created %s", releaseDir)
	return nil
}

// VersionEntry is one documented version of a service.
type VersionEntry struct {
	Name string
	// Released is set when the version has a release folder.
	Released bool
}

// VersionList prints and returns the versions of service, sorted.
func (w *Workspace) VersionList(service string) ([]VersionEntry, error) {
	names, err := docs.VersionNames(w.fs, w.hub.DocsDir(service))
	if errors.Is(err, docs.ErrMissing) {
		return nil, clierrors.ServiceNotFound(service, w.cfg.Paths.DocsDir)
	}
	if err != nil {
		return nil, err
	}

	output.Title(w.out, "%s versions", service)
	entries := make([]VersionEntry, len(names))
	for i, name := range names {
		released := w.scaffold.Exists(w.hub.ReleaseVersionDir(service, name))
		entries[i] = VersionEntry{Name: name, Released: released}
		if released {
			output.Item(w.out, output.MarkOK, "%s (released)", name)
		} else {
			output.Item(w.out, output.MarkBullet, "%s", name)
		}
	}
	return entries, nil
}

// VersionCurrent prints the service and version of the hub's workspace
// branch. When the hub is on another branch it prints the branch and warns;
// ok is false in that case.
func (w *Workspace) VersionCurrent() (service, version string, ok bool, err error) {
	branch, err := w.git.CurrentBranch(w.hub.Root)
	if err != nil {
		return "", "", false, err
	}

	service, version, ok = hub.ParseHubBranch(branch)
	if ok {
		output.Info(w.out, "Current workspace: %s %s", service, version)
		return service, version, true, nil
	}

	output.Info(w.out, "Current branch: %s", branch)
	w.warnf("Not a workspace branch. Run 'decg init <service> <version>' first.")
	return "", "", false, nil
}
