package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/relkit/relkit/internal/execshell"
)

const (
	gitRevParseSubcommandConstant         = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	gitRemoteSubcommandConstant           = "remote"
	gitRemoteGetURLSubcommandConstant     = "get-url"
	gitStatusSubcommandConstant           = "status"
	gitStatusPorcelainFlagConstant        = "--porcelain"
	gitDescribeSubcommandConstant         = "describe"
	gitDescribeTagsFlagConstant           = "--tags"
	gitDescribeAlwaysFlagConstant         = "--always"
	gitDescribeDirtyFlagTemplateConstant  = "--dirty=%s"
	gitRevListSubcommandConstant          = "rev-list"
	gitRevListCountFlagConstant           = "--count"
	commitCountParseErrorTemplateConstant = "unable to parse commit count %q: %w"
	executorNotConfiguredMessageConstant  = "repository manager requires a git executor"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager answers repository-level git queries through a GitExecutor.
type RepositoryManager struct {
	gitExecutor GitExecutor
}

// NewRepositoryManager validates dependencies and constructs a RepositoryManager.
func NewRepositoryManager(gitExecutor GitExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// CurrentBranch reports the abbreviated reference name of HEAD.
//
// Detached HEAD states surface as the literal string "HEAD".
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// RemoteURL reports the fetch URL configured for the named remote.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// WorktreeStatus reports the porcelain status output for the repository.
//
// An empty string means the worktree is clean.
func (manager *RepositoryManager) WorktreeStatus(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// Describe reports the tag-relative description of HEAD, appending dirtyMarker when the worktree has local changes.
func (manager *RepositoryManager) Describe(executionContext context.Context, repositoryPath string, dirtyMarker string) (string, error) {
	dirtyFlag := fmt.Sprintf(gitDescribeDirtyFlagTemplateConstant, dirtyMarker)
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitDescribeSubcommandConstant, gitDescribeTagsFlagConstant, gitDescribeAlwaysFlagConstant, dirtyFlag)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CommitCount reports the number of commits reachable from HEAD.
func (manager *RepositoryManager) CommitCount(executionContext context.Context, repositoryPath string) (int, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevListSubcommandConstant, gitRevListCountFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return 0, executionError
	}

	trimmedCount := strings.TrimSpace(executionResult.StandardOutput)
	commitCount, parseError := strconv.Atoi(trimmedCount)
	if parseError != nil {
		return 0, fmt.Errorf(commitCountParseErrorTemplateConstant, trimmedCount, parseError)
	}
	return commitCount, nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	}
	return manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
}
