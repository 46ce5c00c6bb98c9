// Package git provides read-only repository queries for decg: current branch,
// branch and tag existence, working-tree state and recent commit subjects.
// It uses the go-git library so queries do not spawn processes; operations
// that change repository state (checkout, pull, sparse-checkout, tag push)
// go through the git CLI via internal/shell so they are echoed to the operator.
package git

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Reader answers read-only questions about the repository at a path.
// Workspace flows depend on this interface so tests can substitute answers.
type Reader interface {
	CurrentBranch(path string) (string, error)
	BranchExists(path, branch string) (bool, error)
	TagExists(path, tag string) (bool, error)
	IsClean(path string) (bool, error)
	ShortStatus(path string) ([]string, error)
	CommitSubjects(path string, since time.Time) ([]string, error)
}

// Local implements Reader with go-git.
type Local struct{}

var _ Reader = Local{}

// CurrentBranch implements Reader.
func (Local) CurrentBranch(path string) (string, error) { return CurrentBranch(path) }

// BranchExists implements Reader.
func (Local) BranchExists(path, branch string) (bool, error) { return BranchExists(path, branch) }

// TagExists implements Reader.
func (Local) TagExists(path, tag string) (bool, error) { return TagExists(path, tag) }

// IsClean implements Reader.
func (Local) IsClean(path string) (bool, error) { return IsClean(path) }

// ShortStatus implements Reader.
func (Local) ShortStatus(path string) ([]string, error) { return ShortStatus(path) }

// CommitSubjects implements Reader.
func (Local) CommitSubjects(path string, since time.Time) ([]string, error) {
	return CommitSubjects(path, since)
}

// openRepo opens the git repository at path. The path may be a submodule
// whose .git is a gitdir file.
func openRepo(path string) (*git.Repository, error) {
	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// IsRepository reports whether path is the top of a git working copy.
func IsRepository(path string) bool {
	_, err := openRepo(path)
	return err == nil
}

// CurrentBranch returns the checked-out branch at path.
// Returns empty string if in detached HEAD state.
func CurrentBranch(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch(%s): detached HEAD state", path)
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch(%s): %s", path, branch)
	return branch, nil
}

// BranchExists reports whether the local branch exists at path.
func BranchExists(path, branch string) (bool, error) {
	repo, err := openRepo(path)
	if err != nil {
		return false, err
	}
	return refExists(repo, plumbing.NewBranchReferenceName(branch))
}

// TagExists reports whether the tag exists at path.
func TagExists(path, tag string) (bool, error) {
	repo, err := openRepo(path)
	if err != nil {
		return false, err
	}
	return refExists(repo, plumbing.NewTagReferenceName(tag))
}

func refExists(repo *git.Repository, name plumbing.ReferenceName) (bool, error) {
	_, err := repo.Reference(name, false)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", name, err)
}

// IsClean reports whether the working tree at path has no changes,
// untracked files included.
func IsClean(path string) (bool, error) {
	status, err := worktreeStatus(path)
	if err != nil {
		return false, err
	}
	return status.IsClean(), nil
}

// ShortStatus returns `git status --short` style lines ("XY path"), sorted
// by path.
func ShortStatus(path string) ([]string, error) {
	status, err := worktreeStatus(path)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(status))
	for file, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		files = append(files, file)
	}
	sort.Strings(files)

	lines := make([]string, 0, len(files))
	for _, file := range files {
		fs := status[file]
		lines = append(lines, fmt.Sprintf("%c%c %s", fs.Staging, fs.Worktree, file))
	}
	return lines, nil
}

func worktreeStatus(path string) (git.Status, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status of %s: %w", path, err)
	}
	return status, nil
}

// CommitSubjects returns the first line of every commit reachable from HEAD
// authored at or after since, newest first.
func CommitSubjects(path string, since time.Time) ([]string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	var subjects []string
	err = iter.ForEach(func(c *object.Commit) error {
		subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
		subjects = append(subjects, strings.TrimSpace(subject))
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("iterating log: %w", err)
	}

	logDebug("[git] CommitSubjects(%s): %d since %s", path, len(subjects), since.Format(time.RFC3339))
	return subjects, nil
}
