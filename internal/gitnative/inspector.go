// Package gitnative answers repository queries in-process through go-git,
// providing the same capabilities as the shell-backed inspector without
// requiring a git executable.
package gitnative

import (
	"context"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	detachedHeadLabelConstant           = "HEAD"
	repositoryOpenErrorTemplateConstant = "unable to open repository at %s: %w"
	remoteWithoutURLTemplateConstant    = "remote %s has no configured URL"
)

// RepositoryInspector answers branch, remote, status, describe, and commit
// count queries by reading repository storage directly.
//
// Each query opens the repository anew so successive resolutions never share state.
type RepositoryInspector struct{}

// NewRepositoryInspector constructs a go-git backed inspector.
func NewRepositoryInspector() *RepositoryInspector {
	return &RepositoryInspector{}
}

// CurrentBranch reports the short branch name of HEAD, or the literal "HEAD" when detached.
func (inspector *RepositoryInspector) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	repository, openError := openRepository(repositoryPath)
	if openError != nil {
		return "", openError
	}

	headReference, headError := repository.Head()
	if headError != nil {
		return "", headError
	}

	if headReference.Name().IsBranch() {
		return headReference.Name().Short(), nil
	}
	return detachedHeadLabelConstant, nil
}

// RemoteURL reports the first URL configured for the named remote.
func (inspector *RepositoryInspector) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	repository, openError := openRepository(repositoryPath)
	if openError != nil {
		return "", openError
	}

	remote, remoteError := repository.Remote(remoteName)
	if remoteError != nil {
		return "", remoteError
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return "", fmt.Errorf(remoteWithoutURLTemplateConstant, remoteName)
	}
	return strings.TrimSpace(remoteURLs[0]), nil
}

// WorktreeStatus reports the porcelain-style status output for the repository.
//
// An empty string means the worktree is clean.
func (inspector *RepositoryInspector) WorktreeStatus(executionContext context.Context, repositoryPath string) (string, error) {
	repository, openError := openRepository(repositoryPath)
	if openError != nil {
		return "", openError
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return "", worktreeError
	}

	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return "", statusError
	}

	if worktreeStatus.IsClean() {
		return "", nil
	}
	return strings.TrimSpace(worktreeStatus.String()), nil
}

// Describe reports the tag-relative description of HEAD, appending dirtyMarker
// when the worktree has local changes.
func (inspector *RepositoryInspector) Describe(executionContext context.Context, repositoryPath string, dirtyMarker string) (string, error) {
	repository, openError := openRepository(repositoryPath)
	if openError != nil {
		return "", openError
	}
	return describeHead(repository, dirtyMarker)
}

// CommitCount reports the number of commits reachable from HEAD.
func (inspector *RepositoryInspector) CommitCount(executionContext context.Context, repositoryPath string) (int, error) {
	repository, openError := openRepository(repositoryPath)
	if openError != nil {
		return 0, openError
	}

	headReference, headError := repository.Head()
	if headError != nil {
		return 0, headError
	}

	commitIterator, logError := repository.Log(&gogit.LogOptions{From: headReference.Hash()})
	if logError != nil {
		return 0, logError
	}
	defer commitIterator.Close()

	commitCount := 0
	iterationError := commitIterator.ForEach(func(*object.Commit) error {
		commitCount++
		return nil
	})
	if iterationError != nil {
		return 0, iterationError
	}
	return commitCount, nil
}

func openRepository(repositoryPath string) (*gogit.Repository, error) {
	repository, openError := gogit.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, repositoryPath, openError)
	}
	return repository, nil
}
