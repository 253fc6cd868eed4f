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

// Repo is a throwaway git repository for tests.
type Repo struct {
	Dir  string
	Repo *git.Repository
	t    testing.TB
}

// InitRepo creates an empty repository in dir whose HEAD points at
// refs/heads/main.
func InitRepo(t testing.TB, dir string) *Repo {
	t.Helper()
	r, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	if err != nil {
		t.Fatalf("git init: %v", err)
	}
	return &Repo{Dir: dir, Repo: r, t: t}
}

// Write creates or replaces a file relative to the repository root.
func (r *Repo) Write(name, content string) {
	r.t.Helper()
	p := filepath.Join(r.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		r.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
}

// Commit stages names and records a commit with a fixed author and time.
func (r *Repo) Commit(msg string, names ...string) plumbing.Hash {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("worktree: %v", err)
	}
	for _, n := range names {
		if _, err := wt.Add(n); err != nil {
			r.t.Fatalf("add %s: %v", n, err)
		}
	}
	sig := &object.Signature{Name: "Fixture", Email: "fixture@example.com", When: time.Unix(1700000000, 0).UTC()}
	h, err := wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		r.t.Fatalf("commit: %v", err)
	}
	return h
}

// Tag creates a lightweight tag at h.
func (r *Repo) Tag(name string, h plumbing.Hash) {
	r.t.Helper()
	if _, err := r.Repo.CreateTag(name, h, nil); err != nil {
		r.t.Fatalf("tag %s: %v", name, err)
	}
}

// Detach checks out h directly, leaving HEAD detached.
func (r *Repo) Detach(h plumbing.Hash) {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("worktree: %v", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: h}); err != nil {
		r.t.Fatalf("checkout: %v", err)
	}
}
