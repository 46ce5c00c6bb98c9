package workspace

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/decg-project/decg/internal/docs"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/scaffold"
)

// DocsInit creates the docs folders of a version, each with a README.md
// template. An existing version folder only warns.
func (w *Workspace) DocsInit(service, version string) error {
	dir := w.hub.DocsVersionDir(service, version)
	output.Title(w.out, "Creating docs: %s %s", service, version)

	err := w.scaffold.CreateDocTemplates(dir, scaffold.Data{Service: service, Version: version})
	if scaffold.IsExists(err) {
		w.warnf("Already exists: %s", dir)
		return nil
	}
	if err != nil {
		return err
	}
	for _, folder := range scaffold.DocFolders {
		output.Item(w.out, output.MarkOK, "%s/", folder)
	}
	output.Success(w.out, "Docs created: %s", dir)
	return nil
}

// DocsList prints each version of service with its markdown file count.
func (w *Workspace) DocsList(service string) ([]docs.Version, error) {
	versions, err := docs.ListVersions(w.fs, w.hub.DocsDir(service))
	if errors.Is(err, docs.ErrMissing) {
		return nil, clierrors.ServiceNotFound(service, w.cfg.Paths.DocsDir)
	}
	if err != nil {
		return nil, err
	}

	output.Title(w.out, "%s docs", service)
	rows := make([][]string, len(versions))
	for i, v := range versions {
		rows[i] = []string{v.Name, strconv.Itoa(v.Markdown)}
	}
	if err := output.Table(w.out, []string{"Version", "Documents"}, rows); err != nil {
		return nil, err
	}
	return versions, nil
}

// DocsDiffOptions configures DocsDiff.
type DocsDiffOptions struct {
	Service string
	From    string
	To      string
	// Patch prints unified diffs of modified files.
	Patch bool
}

// DocsDiff compares the markdown files of two versions of a service.
func (w *Workspace) DocsDiff(opts DocsDiffOptions) (*docs.Diff, error) {
	from := w.hub.DocsVersionDir(opts.Service, opts.From)
	to := w.hub.DocsVersionDir(opts.Service, opts.To)

	d, err := docs.Compare(w.fs, from, to)
	if errors.Is(err, docs.ErrMissing) {
		var missing []string
		for _, dir := range []string{from, to} {
			if !w.scaffold.Exists(dir) {
				missing = append(missing, dir)
			}
		}
		return nil, clierrors.VersionPathMissing(missing...)
	}
	if err != nil {
		return nil, err
	}

	output.Title(w.out, "Docs diff: %s %s → %s", opts.Service, opts.From, opts.To)

	if len(d.Added) > 0 {
		output.Section(w.out, fmt.Sprintf("Added (%d):", len(d.Added)))
		for _, f := range d.Added {
			output.Item(w.out, output.MarkAdded, "%s", f)
		}
	}
	if len(d.Removed) > 0 {
		output.Section(w.out, fmt.Sprintf("Removed (%d):", len(d.Removed)))
		for _, f := range d.Removed {
			output.Item(w.out, output.MarkDeleted, "%s", f)
		}
	}
	if len(d.Modified) > 0 {
		output.Section(w.out, fmt.Sprintf("Modified (%d):", len(d.Modified)))
		for _, f := range d.Modified {
			output.Item(w.out, output.MarkChanged, "%s", f)
		}
	}

	fmt.Fprintln(w.out)
	output.Info(w.out, "%d added, %d removed, %d modified, %d unchanged",
		len(d.Added), len(d.Removed), len(d.Modified), len(d.Common)-len(d.Modified))

	if opts.Patch {
		for _, f := range d.Modified {
			patch, err := d.Patch(w.fs, f)
			if err != nil {
				return d, err
			}
			fmt.Fprintf(w.out, "\n%s", patch)
		}
	}
	return d, nil
}
