package testutil

import (
	"slices"
	"time"
)

// FakeGit answers repository queries from maps keyed by repository path. It
// satisfies git.Reader. Checkouts performed through a FakeRunner can update it
// with Checkout so later queries see the new state.
type FakeGit struct {
	// Current maps a repository path to its checked-out branch.
	Current map[string]string
	// Branches maps a repository path to its local branches.
	Branches map[string][]string
	// Tags maps a repository path to its tags.
	Tags map[string][]string
	// Status maps a repository path to `status --short` lines. A path with
	// lines is dirty.
	Status map[string][]string
	// Subjects are returned by CommitSubjects for every path.
	Subjects []string
	// Since records the last CommitSubjects bound.
	Since time.Time
	// Err is returned by every query when set.
	Err error
}

// NewFakeGit returns an empty FakeGit.
func NewFakeGit() *FakeGit {
	return &FakeGit{
		Current:  make(map[string]string),
		Branches: make(map[string][]string),
		Tags:     make(map[string][]string),
		Status:   make(map[string][]string),
	}
}

// AddBranch records branch in the repository at path.
func (f *FakeGit) AddBranch(path, branch string) {
	f.Branches[path] = append(f.Branches[path], branch)
}

// Checkout makes branch current, creating it when missing.
func (f *FakeGit) Checkout(path, branch string) {
	if !slices.Contains(f.Branches[path], branch) {
		f.AddBranch(path, branch)
	}
	f.Current[path] = branch
}

// CurrentBranch returns the recorded branch, "main" by default.
func (f *FakeGit) CurrentBranch(path string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if b, ok := f.Current[path]; ok {
		return b, nil
	}
	return "main", nil
}

// BranchExists reports whether branch was recorded at path.
func (f *FakeGit) BranchExists(path, branch string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	return slices.Contains(f.Branches[path], branch), nil
}

// TagExists reports whether tag was recorded at path.
func (f *FakeGit) TagExists(path, tag string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	return slices.Contains(f.Tags[path], tag), nil
}

// IsClean reports whether no status lines were recorded at path.
func (f *FakeGit) IsClean(path string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	return len(f.Status[path]) == 0, nil
}

// ShortStatus returns the recorded status lines.
func (f *FakeGit) ShortStatus(path string) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Status[path], nil
}

// CommitSubjects returns Subjects and records since.
func (f *FakeGit) CommitSubjects(_ string, since time.Time) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.Since = since
	return f.Subjects, nil
}
