// Package testsupport builds throwaway git repositories with controlled
// history, tags, branches, and remotes for hermetic integration tests.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	fixtureAuthorNameConstant        = "Fixture Author"
	fixtureAuthorEmailConstant       = "fixture@example.com"
	fixtureCommitFileTemplateConstant = "file-%d.txt"
	fixtureDirtyFileNameConstant     = "uncommitted.txt"
	fixtureDirtyFileContentConstant  = "local modification\n"
	branchReferencePrefixConstant    = "refs/heads/"
	tagReferencePrefixConstant       = "refs/tags/"
)

// RepositoryFixture drives a temporary git repository for tests.
type RepositoryFixture struct {
	testInstance   testing.TB
	repositoryPath string
	repository     *gogit.Repository
	commitTime     time.Time
}

// NewRepositoryFixture creates and initializes a git repository in a temporary directory.
func NewRepositoryFixture(testInstance testing.TB) *RepositoryFixture {
	testInstance.Helper()
	repositoryPath := testInstance.TempDir()

	repository, initError := gogit.PlainInit(repositoryPath, false)
	if initError != nil {
		testInstance.Fatalf("failed to init repository: %v", initError)
	}

	return &RepositoryFixture{
		testInstance:   testInstance,
		repositoryPath: repositoryPath,
		repository:     repository,
		commitTime:     time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Path returns the repository root directory.
func (fixture *RepositoryFixture) Path() string {
	return fixture.repositoryPath
}

// AddCommit creates a commit containing one new file and returns the commit SHA.
func (fixture *RepositoryFixture) AddCommit(message string) string {
	fixture.testInstance.Helper()
	fixture.commitTime = fixture.commitTime.Add(time.Minute)

	worktree, worktreeError := fixture.repository.Worktree()
	if worktreeError != nil {
		fixture.testInstance.Fatalf("getting worktree: %v", worktreeError)
	}

	fileName := fmt.Sprintf(fixtureCommitFileTemplateConstant, fixture.commitTime.Unix())
	filePath := filepath.Join(fixture.repositoryPath, fileName)
	if writeError := os.WriteFile(filePath, []byte(message), 0o644); writeError != nil {
		fixture.testInstance.Fatalf("writing file: %v", writeError)
	}

	if _, addError := worktree.Add(fileName); addError != nil {
		fixture.testInstance.Fatalf("staging file: %v", addError)
	}

	commitHash, commitError := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  fixtureAuthorNameConstant,
			Email: fixtureAuthorEmailConstant,
			When:  fixture.commitTime,
		},
	})
	if commitError != nil {
		fixture.testInstance.Fatalf("committing: %v", commitError)
	}

	return commitHash.String()
}

// CreateLightweightTag creates a lightweight tag pointing at the given SHA.
func (fixture *RepositoryFixture) CreateLightweightTag(tagName string, commitSHA string) {
	fixture.testInstance.Helper()
	tagReference := plumbing.NewReferenceFromStrings(tagReferencePrefixConstant+tagName, commitSHA)
	if referenceError := fixture.repository.Storer.SetReference(tagReference); referenceError != nil {
		fixture.testInstance.Fatalf("creating tag %s: %v", tagName, referenceError)
	}
}

// CreateAnnotatedTag creates an annotated tag pointing at the given SHA.
func (fixture *RepositoryFixture) CreateAnnotatedTag(tagName string, commitSHA string, message string) {
	fixture.testInstance.Helper()
	fixture.commitTime = fixture.commitTime.Add(time.Second)

	_, tagError := fixture.repository.CreateTag(tagName, plumbing.NewHash(commitSHA), &gogit.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  fixtureAuthorNameConstant,
			Email: fixtureAuthorEmailConstant,
			When:  fixture.commitTime,
		},
		Message: message,
	})
	if tagError != nil {
		fixture.testInstance.Fatalf("creating annotated tag %s: %v", tagName, tagError)
	}
}

// CreateBranch creates a branch pointing at the given SHA without checking it out.
func (fixture *RepositoryFixture) CreateBranch(branchName string, commitSHA string) {
	fixture.testInstance.Helper()

	branchReference := plumbing.NewReferenceFromStrings(branchReferencePrefixConstant+branchName, commitSHA)
	if referenceError := fixture.repository.Storer.SetReference(branchReference); referenceError != nil {
		fixture.testInstance.Fatalf("creating branch %s: %v", branchName, referenceError)
	}

	repositoryConfiguration, configurationError := fixture.repository.Config()
	if configurationError != nil {
		fixture.testInstance.Fatalf("reading config: %v", configurationError)
	}
	repositoryConfiguration.Branches[branchName] = &gogitconfig.Branch{
		Name:  branchName,
		Merge: plumbing.ReferenceName(branchReferencePrefixConstant + branchName),
	}
	if saveError := fixture.repository.SetConfig(repositoryConfiguration); saveError != nil {
		fixture.testInstance.Fatalf("saving config: %v", saveError)
	}
}

// Checkout switches HEAD to the given branch.
func (fixture *RepositoryFixture) Checkout(branchName string) {
	fixture.testInstance.Helper()
	worktree, worktreeError := fixture.repository.Worktree()
	if worktreeError != nil {
		fixture.testInstance.Fatalf("getting worktree: %v", worktreeError)
	}

	checkoutError := worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branchName),
	})
	if checkoutError != nil {
		fixture.testInstance.Fatalf("checking out %s: %v", branchName, checkoutError)
	}
}

// DetachHead checks out the given SHA directly, leaving HEAD detached.
func (fixture *RepositoryFixture) DetachHead(commitSHA string) {
	fixture.testInstance.Helper()
	worktree, worktreeError := fixture.repository.Worktree()
	if worktreeError != nil {
		fixture.testInstance.Fatalf("getting worktree: %v", worktreeError)
	}

	checkoutError := worktree.Checkout(&gogit.CheckoutOptions{
		Hash: plumbing.NewHash(commitSHA),
	})
	if checkoutError != nil {
		fixture.testInstance.Fatalf("detaching HEAD at %s: %v", commitSHA, checkoutError)
	}
}

// AddRemote registers a remote with a single URL.
func (fixture *RepositoryFixture) AddRemote(remoteName string, remoteURL string) {
	fixture.testInstance.Helper()
	_, remoteError := fixture.repository.CreateRemote(&gogitconfig.RemoteConfig{
		Name: remoteName,
		URLs: []string{remoteURL},
	})
	if remoteError != nil {
		fixture.testInstance.Fatalf("creating remote %s: %v", remoteName, remoteError)
	}
}

// MakeWorktreeDirty writes an untracked file so the worktree reports local changes.
func (fixture *RepositoryFixture) MakeWorktreeDirty() {
	fixture.testInstance.Helper()
	filePath := filepath.Join(fixture.repositoryPath, fixtureDirtyFileNameConstant)
	if writeError := os.WriteFile(filePath, []byte(fixtureDirtyFileContentConstant), 0o644); writeError != nil {
		fixture.testInstance.Fatalf("writing dirty file: %v", writeError)
	}
}

// HeadSha returns the current HEAD commit SHA.
func (fixture *RepositoryFixture) HeadSha() string {
	fixture.testInstance.Helper()
	headReference, headError := fixture.repository.Head()
	if headError != nil {
		fixture.testInstance.Fatalf("getting HEAD: %v", headError)
	}
	return headReference.Hash().String()
}
