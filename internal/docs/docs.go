// Package docs lists documentation versions and compares two versions of a
// service's docs tree.
package docs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/zeebo/blake3"
)

// ErrMissing is returned when a service or version directory does not exist.
var ErrMissing = errors.New("path not found")

// Version is one version directory of a service.
type Version struct {
	Name string
	// Markdown is the recursive count of .md files.
	Markdown int
}

// ListVersions returns the version directories under serviceDir, sorted.
func ListVersions(fs billy.Filesystem, serviceDir string) ([]Version, error) {
	entries, err := fs.ReadDir(serviceDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", serviceDir, ErrMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", serviceDir, err)
	}

	var versions []Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := MarkdownFiles(fs, path.Join(serviceDir, e.Name()))
		if err != nil {
			return nil, err
		}
		versions = append(versions, Version{Name: e.Name(), Markdown: len(files)})
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Name < versions[j].Name })
	return versions, nil
}

// VersionNames returns the sorted version directory names under serviceDir.
func VersionNames(fs billy.Filesystem, serviceDir string) ([]string, error) {
	versions, err := ListVersions(fs, serviceDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(versions))
	for i, v := range versions {
		names[i] = v.Name
	}
	return names, nil
}

// MarkdownFiles returns the .md files below dir as sorted slash-separated
// paths relative to dir.
func MarkdownFiles(fs billy.Filesystem, dir string) ([]string, error) {
	var files []string
	err := util.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// SetDiff splits two file sets into added (in2 only), removed (in1 only)
// and common, each sorted.
func SetDiff(files1, files2 []string) (added, removed, common []string) {
	in1 := make(map[string]bool, len(files1))
	for _, f := range files1 {
		in1[f] = true
	}
	in2 := make(map[string]bool, len(files2))
	for _, f := range files2 {
		in2[f] = true
	}

	for f := range in2 {
		if !in1[f] {
			added = append(added, f)
		}
	}
	for f := range in1 {
		if in2[f] {
			common = append(common, f)
		} else {
			removed = append(removed, f)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(common)
	return added, removed, common
}

// Diff is the comparison of two docs trees.
type Diff struct {
	From, To string
	Added    []string
	Removed  []string
	Common   []string
	// Modified lists common files whose content differs.
	Modified []string
}

// Compare diffs the markdown files of dir1 against dir2. Both must exist.
func Compare(fs billy.Filesystem, dir1, dir2 string) (*Diff, error) {
	var missing []string
	for _, d := range []string{dir1, dir2} {
		if _, err := fs.Stat(d); err != nil {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrMissing)
	}

	files1, err := MarkdownFiles(fs, dir1)
	if err != nil {
		return nil, err
	}
	files2, err := MarkdownFiles(fs, dir2)
	if err != nil {
		return nil, err
	}

	d := &Diff{From: dir1, To: dir2}
	d.Added, d.Removed, d.Common = SetDiff(files1, files2)

	for _, rel := range d.Common {
		same, err := sameContent(fs, path.Join(dir1, rel), path.Join(dir2, rel))
		if err != nil {
			return nil, err
		}
		if !same {
			d.Modified = append(d.Modified, rel)
		}
	}
	return d, nil
}

// Patch renders a unified diff of rel between the two trees.
func (d *Diff) Patch(fs billy.Filesystem, rel string) (string, error) {
	a, err := util.ReadFile(fs, path.Join(d.From, rel))
	if err != nil {
		return "", err
	}
	b, err := util.ReadFile(fs, path.Join(d.To, rel))
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: path.Join(d.From, rel),
		ToFile:   path.Join(d.To, rel),
		Context:  3,
	})
}

func sameContent(fs billy.Filesystem, a, b string) (bool, error) {
	ha, err := fingerprint(fs, a)
	if err != nil {
		return false, err
	}
	hb, err := fingerprint(fs, b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

func fingerprint(fs billy.Filesystem, name string) ([32]byte, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return [32]byte{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return blake3.Sum256(data), nil
}
