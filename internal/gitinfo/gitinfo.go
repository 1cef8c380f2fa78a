// Package gitinfo reports the commit a docs tree was exported from.
package gitinfo

import (
	"errors"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

// Info describes the HEAD of the repository containing a docs tree.
type Info struct {
	Commit string
	Branch string // Empty for a detached HEAD
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// Head opens the repository containing path, searching parent directories, and returns
// its HEAD. A path outside any repository, or a repository without commits, yields
// (nil, nil).
func Head(path string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Debug("Docs root is not inside a git repository", slog.String("path", path))
			return nil, nil
		}
		return nil, ferrors.FileSystemError("failed to open git repository").WithCause(err).WithPath(path).Build()
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, ferrors.FileSystemError("failed to resolve HEAD").WithCause(err).WithPath(path).Build()
	}

	info := &Info{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}
