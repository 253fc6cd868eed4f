package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/flarebyte/buildfacts/internal/facts"
)

const gitProbe = "git"

const (
	EnvOverrideGitVersion         = "BUILDFACTS_OVERRIDE_GIT_VERSION"
	EnvOverrideGitDirty           = "BUILDFACTS_OVERRIDE_GIT_DIRTY"
	EnvOverrideGitHeadRef         = "BUILDFACTS_OVERRIDE_GIT_HEAD_REF"
	EnvOverrideGitCommitHash      = "BUILDFACTS_OVERRIDE_GIT_COMMIT_HASH"
	EnvOverrideGitCommitHashShort = "BUILDFACTS_OVERRIDE_GIT_COMMIT_HASH_SHORT"
)

// MinShortHash is the shortest abbreviated commit hash produced.
const MinShortHash = 7

var (
	errGitRepoNotFound   = errors.New("git repo not found")
	errGitRepoOpenFailed = errors.New("git repo open failed")
	errGitNoCommits      = errors.New("git repo has no commits")
	errGitStatusFailed   = errors.New("git status failed")
	errGitObjectsFailed  = errors.New("git object listing failed")
)

func init() { Register(gitProbe, facts.CapGit, gitRunner) }

func gitRunner(_ context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	repo, readErr := ReadRepository(deps.Dir)
	if readErr != nil {
		deps.Logger.Debug("git facts unavailable", "probe", gitProbe, "reason", readErr.Error())
	}
	g := applyGitOverrides(repo, deps)
	if g == nil {
		return in, absent(gitProbe, readErr.Error())
	}
	out := in
	out.Git = g
	return out, present(gitProbe)
}

// ReadRepository returns the facts of the repository at or above dir.
func ReadRepository(dir string) (*facts.Git, error) {
	root, err := repoRootFor(dir)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errGitRepoOpenFailed, err)
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, errGitNoCommits
		}
		return nil, fmt.Errorf("%w: %v", errGitRepoOpenFailed, err)
	}

	g := &facts.Git{}
	if ref, err := repo.Storer.Reference(plumbing.HEAD); err == nil && ref.Type() == plumbing.SymbolicReference {
		name := ref.Target().String()
		g.HeadRef = &name
	}
	hash := head.Hash().String()
	g.CommitHash = &hash

	short, err := shortHash(repo, head.Hash())
	if err != nil {
		return nil, err
	}
	g.CommitHashShort = &short

	describe := short
	if tag, ok, err := tagAt(repo, head.Hash()); err != nil {
		return nil, err
	} else if ok {
		describe = tag
	}
	g.Describe = &describe

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errGitStatusFailed, err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errGitStatusFailed, err)
	}
	dirty := !st.IsClean()
	g.Dirty = &dirty
	return g, nil
}

func repoRootFor(start string) (string, error) {
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", errGitRepoOpenFailed
	}
	for {
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", errGitRepoNotFound
		}
		cur = parent
	}
}

// prefixIndex is implemented by the filesystem object storage: it answers
// from loose object directories and pack indexes without decoding objects.
type prefixIndex interface {
	HashesWithPrefix(prefix []byte) ([]plumbing.Hash, error)
}

// shortHash abbreviates h to the shortest prefix of at least MinShortHash
// characters that no other object in the repository shares.
func shortHash(repo *git.Repository, h plumbing.Hash) (string, error) {
	var others []plumbing.Hash
	var err error
	if idx, ok := repo.Storer.(prefixIndex); ok {
		others, err = idx.HashesWithPrefix(h[:MinShortHash/2])
	} else {
		others, err = scanHashes(repo)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errGitObjectsFailed, err)
	}
	return abbreviate(h, others), nil
}

// scanHashes lists every object hash. Only used for storages without a
// prefix index, such as in-memory repositories.
func scanHashes(repo *git.Repository) ([]plumbing.Hash, error) {
	iter, err := repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return nil, err
	}
	var out []plumbing.Hash
	err = iter.ForEach(func(o plumbing.EncodedObject) error {
		out = append(out, o.Hash())
		return nil
	})
	return out, err
}

// abbreviate returns the shortest prefix of h, at least MinShortHash long,
// that none of others shares.
func abbreviate(h plumbing.Hash, others []plumbing.Hash) string {
	full := h.String()
	longest := 0
	for _, o := range others {
		if o == h {
			continue
		}
		if n := commonPrefix(full, o.String()); n > longest {
			longest = n
		}
	}
	n := max(MinShortHash, longest+1)
	return full[:min(n, len(full))]
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// tagAt returns the lexicographically first tag whose commit is h.
func tagAt(repo *git.Repository, h plumbing.Hash) (string, bool, error) {
	tags, err := repo.Tags()
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", errGitRepoOpenFailed, err)
	}
	var names []string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if obj, err := repo.TagObject(target); err == nil {
			c, err := obj.Commit()
			if err != nil {
				return nil
			}
			target = c.Hash
		} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
			return err
		}
		if target == h {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", errGitRepoOpenFailed, err)
	}
	if len(names) == 0 {
		return "", false, nil
	}
	sort.Strings(names)
	return names[0], true, nil
}

// applyGitOverrides replaces repository values with the override
// variables. Overrides alone are enough to make git facts present. An
// unparsable dirty override is logged and ignored.
func applyGitOverrides(g *facts.Git, deps Deps) *facts.Git {
	var out facts.Git
	if g != nil {
		out = *g
	}
	set := false
	for _, o := range []struct {
		key string
		dst **string
	}{
		{EnvOverrideGitVersion, &out.Describe},
		{EnvOverrideGitHeadRef, &out.HeadRef},
		{EnvOverrideGitCommitHash, &out.CommitHash},
		{EnvOverrideGitCommitHashShort, &out.CommitHashShort},
	} {
		if v, ok := deps.Env(o.key); ok && v != "" {
			*o.dst = &v
			set = true
		}
	}
	if v, ok := deps.Env(EnvOverrideGitDirty); ok && v != "" {
		if b, err := strconv.ParseBool(v); err != nil {
			deps.Logger.Warn("ignoring invalid override", "probe", gitProbe, "variable", EnvOverrideGitDirty, "value", v)
		} else {
			out.Dirty = &b
			set = true
		}
	}
	if g == nil && !set {
		return nil
	}
	if out.CommitHash != nil && out.CommitHashShort == nil {
		s := *out.CommitHash
		s = s[:min(8, len(s))]
		out.CommitHashShort = &s
	}
	return &out
}
