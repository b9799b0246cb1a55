package gitnative_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relkit/relkit/internal/gitnative"
	"github.com/relkit/relkit/internal/testsupport"
)

const (
	testNativeRemoteNameConstant    = "origin"
	testNativeRemoteURLConstant     = "git@github.com:acme/widget.git"
	testNativeDirtyMarkerConstant   = "-dirty"
	testNativeTagNameConstant       = "1.2.3"
	testNativeBranchNameConstant    = "develop"
	testNativeShortHashLength       = 7
	testNativeCommitMessageTemplate = "commit %d"
)

func TestRepositoryInspectorCurrentBranch(testInstance *testing.T) {
	inspector := gitnative.NewRepositoryInspector()

	testInstance.Run("checked_out_branch", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		commitSHA := fixture.AddCommit("initial")
		fixture.CreateBranch(testNativeBranchNameConstant, commitSHA)
		fixture.Checkout(testNativeBranchNameConstant)

		branchName, branchError := inspector.CurrentBranch(context.Background(), fixture.Path())
		require.NoError(testInstance, branchError)
		require.Equal(testInstance, testNativeBranchNameConstant, branchName)
	})

	testInstance.Run("detached_head", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		firstCommitSHA := fixture.AddCommit("initial")
		fixture.AddCommit("second")
		fixture.DetachHead(firstCommitSHA)

		branchName, branchError := inspector.CurrentBranch(context.Background(), fixture.Path())
		require.NoError(testInstance, branchError)
		require.Equal(testInstance, "HEAD", branchName)
	})

	testInstance.Run("repository_without_commits", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)

		_, branchError := inspector.CurrentBranch(context.Background(), fixture.Path())
		require.Error(testInstance, branchError)
	})
}

func TestRepositoryInspectorRemoteURL(testInstance *testing.T) {
	inspector := gitnative.NewRepositoryInspector()

	testInstance.Run("configured_remote", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		fixture.AddCommit("initial")
		fixture.AddRemote(testNativeRemoteNameConstant, testNativeRemoteURLConstant)

		remoteURL, remoteError := inspector.RemoteURL(context.Background(), fixture.Path(), testNativeRemoteNameConstant)
		require.NoError(testInstance, remoteError)
		require.Equal(testInstance, testNativeRemoteURLConstant, remoteURL)
	})

	testInstance.Run("missing_remote", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		fixture.AddCommit("initial")

		_, remoteError := inspector.RemoteURL(context.Background(), fixture.Path(), testNativeRemoteNameConstant)
		require.Error(testInstance, remoteError)
	})
}

func TestRepositoryInspectorWorktreeStatus(testInstance *testing.T) {
	inspector := gitnative.NewRepositoryInspector()

	testInstance.Run("clean_worktree", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		fixture.AddCommit("initial")

		statusOutput, statusError := inspector.WorktreeStatus(context.Background(), fixture.Path())
		require.NoError(testInstance, statusError)
		require.Empty(testInstance, statusOutput)
	})

	testInstance.Run("dirty_worktree", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		fixture.AddCommit("initial")
		fixture.MakeWorktreeDirty()

		statusOutput, statusError := inspector.WorktreeStatus(context.Background(), fixture.Path())
		require.NoError(testInstance, statusError)
		require.NotEmpty(testInstance, statusOutput)
	})
}

func TestRepositoryInspectorDescribe(testInstance *testing.T) {
	inspector := gitnative.NewRepositoryInspector()

	testInstance.Run("exact_annotated_tag", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		commitSHA := fixture.AddCommit("initial")
		fixture.CreateAnnotatedTag(testNativeTagNameConstant, commitSHA, "release")

		description, describeError := inspector.Describe(context.Background(), fixture.Path(), testNativeDirtyMarkerConstant)
		require.NoError(testInstance, describeError)
		require.Equal(testInstance, testNativeTagNameConstant, description)
	})

	testInstance.Run("tag_with_distance", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		taggedCommitSHA := fixture.AddCommit("initial")
		fixture.CreateAnnotatedTag(testNativeTagNameConstant, taggedCommitSHA, "release")
		fixture.AddCommit("second")
		headSHA := fixture.AddCommit("third")

		description, describeError := inspector.Describe(context.Background(), fixture.Path(), testNativeDirtyMarkerConstant)
		require.NoError(testInstance, describeError)
		expectedDescription := fmt.Sprintf("%s-2-g%s", testNativeTagNameConstant, headSHA[:testNativeShortHashLength])
		require.Equal(testInstance, expectedDescription, description)
	})

	testInstance.Run("lightweight_tag", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		commitSHA := fixture.AddCommit("initial")
		fixture.CreateLightweightTag(testNativeTagNameConstant, commitSHA)

		description, describeError := inspector.Describe(context.Background(), fixture.Path(), testNativeDirtyMarkerConstant)
		require.NoError(testInstance, describeError)
		require.Equal(testInstance, testNativeTagNameConstant, description)
	})

	testInstance.Run("no_tags_uses_short_hash", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		headSHA := fixture.AddCommit("initial")

		description, describeError := inspector.Describe(context.Background(), fixture.Path(), testNativeDirtyMarkerConstant)
		require.NoError(testInstance, describeError)
		require.Equal(testInstance, headSHA[:testNativeShortHashLength], description)
	})

	testInstance.Run("dirty_marker_appended", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		commitSHA := fixture.AddCommit("initial")
		fixture.CreateAnnotatedTag(testNativeTagNameConstant, commitSHA, "release")
		fixture.MakeWorktreeDirty()

		description, describeError := inspector.Describe(context.Background(), fixture.Path(), testNativeDirtyMarkerConstant)
		require.NoError(testInstance, describeError)
		require.Equal(testInstance, testNativeTagNameConstant+testNativeDirtyMarkerConstant, description)
	})

	testInstance.Run("repository_without_commits", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)

		_, describeError := inspector.Describe(context.Background(), fixture.Path(), testNativeDirtyMarkerConstant)
		require.Error(testInstance, describeError)
	})
}

func TestRepositoryInspectorCommitCount(testInstance *testing.T) {
	inspector := gitnative.NewRepositoryInspector()

	testInstance.Run("linear_history", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)
		for commitIndex := 0; commitIndex < 3; commitIndex++ {
			fixture.AddCommit(fmt.Sprintf(testNativeCommitMessageTemplate, commitIndex))
		}

		commitCount, countError := inspector.CommitCount(context.Background(), fixture.Path())
		require.NoError(testInstance, countError)
		require.Equal(testInstance, 3, commitCount)
	})

	testInstance.Run("repository_without_commits", func(testInstance *testing.T) {
		fixture := testsupport.NewRepositoryFixture(testInstance)

		_, countError := inspector.CommitCount(context.Background(), fixture.Path())
		require.Error(testInstance, countError)
	})
}
