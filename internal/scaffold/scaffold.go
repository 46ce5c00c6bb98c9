// Package scaffold creates the per-version documentation and release trees
// of a hub. All paths are relative to the billy filesystem root, which is the
// hub root in production and an in-memory filesystem in tests.
package scaffold

import (
	"errors"
	"fmt"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ErrExists is returned when a tree that must be new already exists.
var ErrExists = errors.New("already exists")

// DocFolders are the numbered documentation folders of a version.
var DocFolders = []string{
	"01.requirements",
	"02.user-stories",
	"03.use-cases",
	"05.api-spec",
	"08.implementation-guide",
	"09.test-automation",
}

// Release file names.
const (
	ReleaseNotesFile  = "RELEASE-NOTES.md"
	VersionMatrixFile = "VERSION-MATRIX.md"
	ChangelogFile     = "CHANGELOG.md"
)

// Scaffolder writes scaffolds into a filesystem.
type Scaffolder struct {
	fs billy.Filesystem
}

// New returns a Scaffolder over fs.
func New(fs billy.Filesystem) *Scaffolder {
	return &Scaffolder{fs: fs}
}

// FS returns the underlying filesystem.
func (s *Scaffolder) FS() billy.Filesystem {
	return s.fs
}

// Exists reports whether name exists.
func (s *Scaffolder) Exists(name string) bool {
	_, err := s.fs.Stat(name)
	return err == nil
}

// EnsureDocFolders creates dir and its doc folders, keeping anything present.
func (s *Scaffolder) EnsureDocFolders(dir string) error {
	for _, folder := range DocFolders {
		if err := s.fs.MkdirAll(path.Join(dir, folder), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path.Join(dir, folder), err)
		}
	}
	return nil
}

// CreateDocFolders creates the empty doc folders of a new version.
func (s *Scaffolder) CreateDocFolders(dir string) error {
	if s.Exists(dir) {
		return fmt.Errorf("%s: %w", dir, ErrExists)
	}
	return s.EnsureDocFolders(dir)
}

// CreateDocTemplates creates the doc folders each with a README.md.
func (s *Scaffolder) CreateDocTemplates(dir string, data Data) error {
	if s.Exists(dir) {
		return fmt.Errorf("%s: %w", dir, ErrExists)
	}
	for _, folder := range DocFolders {
		content, err := render(path.Join("docs", folder+".md.tmpl"), data)
		if err != nil {
			return err
		}
		if err := s.write(path.Join(dir, folder, "README.md"), content); err != nil {
			return err
		}
	}
	return nil
}

// EnsureReleaseStubs creates dir and writes each release file that is
// missing. It returns the files written.
func (s *Scaffolder) EnsureReleaseStubs(dir string, data Data) ([]string, error) {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	stubs := []struct{ file, tmpl string }{
		{ReleaseNotesFile, "release/RELEASE-NOTES.stub.md.tmpl"},
		{VersionMatrixFile, "release/VERSION-MATRIX.stub.md.tmpl"},
		{ChangelogFile, "release/CHANGELOG.md.tmpl"},
	}

	var written []string
	for _, stub := range stubs {
		name := path.Join(dir, stub.file)
		if s.Exists(name) {
			continue
		}
		content, err := render(stub.tmpl, data)
		if err != nil {
			return written, err
		}
		if err := s.write(name, content); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

// CreateReleaseStubs creates a new release directory. When previous is a
// changelog from an earlier version, the new changelog keeps it below a
// separator.
func (s *Scaffolder) CreateReleaseStubs(dir string, data Data, previous []byte) error {
	if s.Exists(dir) {
		return fmt.Errorf("%s: %w", dir, ErrExists)
	}
	if previous != nil {
		header, err := render("release/CHANGELOG.md.tmpl", data)
		if err != nil {
			return err
		}
		content := append(append(header, "---\n\n"...), previous...)
		if err := s.write(path.Join(dir, ChangelogFile), content); err != nil {
			return err
		}
	}
	_, err := s.EnsureReleaseStubs(dir, data)
	return err
}

// CreateReleaseTemplates creates a release directory with full templates.
func (s *Scaffolder) CreateReleaseTemplates(dir string, data Data) error {
	if s.Exists(dir) {
		return fmt.Errorf("%s: %w", dir, ErrExists)
	}
	for _, file := range []string{ReleaseNotesFile, VersionMatrixFile, ChangelogFile} {
		content, err := render(path.Join("release", file+".tmpl"), data)
		if err != nil {
			return err
		}
		if err := s.write(path.Join(dir, file), content); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads name. A missing file returns an error wrapping os.ErrNotExist.
func (s *Scaffolder) ReadFile(name string) ([]byte, error) {
	return util.ReadFile(s.fs, name)
}

// WriteFile writes name, creating parent directories.
func (s *Scaffolder) WriteFile(name string, content []byte) error {
	return s.write(name, content)
}

func (s *Scaffolder) write(name string, content []byte) error {
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", path.Dir(name), err)
	}
	if err := util.WriteFile(s.fs, name, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// IsExists reports whether err is ErrExists.
func IsExists(err error) bool {
	return errors.Is(err, ErrExists)
}
