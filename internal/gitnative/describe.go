package gitnative

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	shortHashLengthConstant             = 7
	describeDistanceTemplateConstant    = "%s-%d-g%s"
	describeDirtySuffixTemplateConstant = "%s%s"
)

// describeHead emulates `git describe --tags --always --dirty=<marker>` for
// linear histories: the nearest reachable tag along the first-parent chain,
// the commit distance to it, and the abbreviated HEAD hash, with the dirty
// marker appended when the worktree has local changes.
func describeHead(repository *gogit.Repository, dirtyMarker string) (string, error) {
	headReference, headError := repository.Head()
	if headError != nil {
		return "", headError
	}

	tagNamesByCommit, tagError := collectTagTargets(repository)
	if tagError != nil {
		return "", tagError
	}

	worktreeDirty, dirtyError := isWorktreeDirty(repository)
	if dirtyError != nil {
		return "", dirtyError
	}

	shortHeadHash := headReference.Hash().String()[:shortHashLengthConstant]

	description := findNearestTagDescription(repository, headReference.Hash(), tagNamesByCommit, shortHeadHash)
	if len(description) == 0 {
		description = shortHeadHash
	}

	if worktreeDirty {
		description = fmt.Sprintf(describeDirtySuffixTemplateConstant, description, dirtyMarker)
	}
	return description, nil
}

func findNearestTagDescription(repository *gogit.Repository, headHash plumbing.Hash, tagNamesByCommit map[plumbing.Hash]string, shortHeadHash string) string {
	currentHash := headHash
	distance := 0

	for {
		if tagName, tagged := tagNamesByCommit[currentHash]; tagged {
			if distance == 0 {
				return tagName
			}
			return fmt.Sprintf(describeDistanceTemplateConstant, tagName, distance, shortHeadHash)
		}

		currentCommit, commitError := repository.CommitObject(currentHash)
		if commitError != nil || currentCommit.NumParents() == 0 {
			return ""
		}

		parentCommit, parentError := currentCommit.Parent(0)
		if parentError != nil {
			return ""
		}
		currentHash = parentCommit.Hash
		distance++
	}
}

// collectTagTargets maps commit hashes to tag names, resolving annotated tag
// objects to their target commits. Annotated tags win over lightweight tags
// pointing at the same commit, matching git describe preference.
func collectTagTargets(repository *gogit.Repository) (map[plumbing.Hash]string, error) {
	tagNamesByCommit := map[plumbing.Hash]string{}
	annotatedCommits := map[plumbing.Hash]bool{}

	tagIterator, tagsError := repository.Tags()
	if tagsError != nil {
		return nil, tagsError
	}
	defer tagIterator.Close()

	iterationError := tagIterator.ForEach(func(tagReference *plumbing.Reference) error {
		tagName := tagReference.Name().Short()

		tagObject, tagObjectError := repository.TagObject(tagReference.Hash())
		if tagObjectError == nil {
			tagNamesByCommit[tagObject.Target] = tagName
			annotatedCommits[tagObject.Target] = true
			return nil
		}
		if tagObjectError != plumbing.ErrObjectNotFound {
			return tagObjectError
		}

		if !annotatedCommits[tagReference.Hash()] {
			tagNamesByCommit[tagReference.Hash()] = tagName
		}
		return nil
	})
	if iterationError != nil && iterationError != storer.ErrStop {
		return nil, iterationError
	}

	return tagNamesByCommit, nil
}

func isWorktreeDirty(repository *gogit.Repository) (bool, error) {
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return false, worktreeError
	}

	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return false, statusError
	}
	return !worktreeStatus.IsClean(), nil
}
