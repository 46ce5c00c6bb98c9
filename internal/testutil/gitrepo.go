package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// InitRepo creates a git repository in dir with one commit on branch "main"
// and returns it. go-git is used so tests do not depend on a git binary.
func InitRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	if err != nil {
		t.Fatalf("git init %s: %v", dir, err)
	}
	WriteFile(t, filepath.Join(dir, "README.md"), "# test\n")
	Commit(t, repo, "Initial commit")
	return repo
}

// Commit stages everything in the worktree and commits it with msg.
func Commit(t *testing.T, repo *git.Repository, msg string) plumbing.Hash {
	t.Helper()

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if err := wt.AddGlob("."); err != nil {
		t.Fatalf("git add: %v", err)
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("git commit: %v", err)
	}
	return hash
}

// CreateBranch creates a branch at HEAD without checking it out.
func CreateBranch(t *testing.T, repo *git.Repository, name string) {
	t.Helper()

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("HEAD: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatalf("creating branch %s: %v", name, err)
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// CheckoutSubmodule makes dir look like an initialized submodule working copy:
// the directory plus a .git file pointing into the hub's modules dir.
func CheckoutSubmodule(t *testing.T, dir string) {
	t.Helper()
	WriteFile(t, filepath.Join(dir, ".git"), "gitdir: ../../.git/modules/"+filepath.Base(dir)+"\n")
}
