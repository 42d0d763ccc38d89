// Package gitmeta resolves document last-modified timestamps from the git
// history of the site source tree.
package gitmeta

import (
	"errors"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
)

// ErrNoRepository indicates the source tree is not inside a git repository.
// Callers fall back to filesystem mtimes.
var ErrNoRepository = errors.New("source tree is not a git repository")

// Resolver answers last-modified queries against a repository's commit log.
type Resolver struct {
	repo *git.Repository

	mu    sync.Mutex
	cache map[string]time.Time
}

// Open locates the repository enclosing dir (walking up to find .git, the
// same detection the git CLI performs).
func Open(dir string) (*Resolver, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNoRepository
		}
		return nil, err
	}
	return &Resolver{repo: repo, cache: map[string]time.Time{}}, nil
}

// LastModified returns the committer time of the newest commit touching the
// given path (relative to the repository root). ok is false for untracked
// paths or when the log cannot be read.
func (r *Resolver) LastModified(rel string) (time.Time, bool) {
	if r == nil {
		return time.Time{}, false
	}

	r.mu.Lock()
	if t, hit := r.cache[rel]; hit {
		r.mu.Unlock()
		return t, true
	}
	r.mu.Unlock()

	iter, err := r.repo.Log(&git.LogOptions{
		FileName: &rel,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return time.Time{}, false
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return time.Time{}, false
	}

	t := commit.Committer.When
	r.mu.Lock()
	r.cache[rel] = t
	r.mu.Unlock()
	return t, true
}
