package describe_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relkit/relkit/internal/describe"
)

const (
	sampleRemoteURLConstant     = "git@github.com:acme/widget.git"
	sampleCommitHashConstant    = "abc1234"
	sampleDirtyMarkerConstant   = "-dirty"
	sampleCleanStatusConstant   = ""
	sampleDirtyStatusConstant   = " M internal/widget/widget.go"
	queryFailureMessageConstant = "repository query failed"
)

var errQueryFailure = errors.New(queryFailureMessageConstant)

type fakeRepositoryInspector struct {
	branchValue   string
	branchError   error
	remoteValue   string
	remoteError   error
	statusValue   string
	statusError   error
	describeValue string
	describeError error
	countValue    int
	countError    error
}

func (inspector *fakeRepositoryInspector) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	return inspector.branchValue, inspector.branchError
}

func (inspector *fakeRepositoryInspector) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	return inspector.remoteValue, inspector.remoteError
}

func (inspector *fakeRepositoryInspector) WorktreeStatus(executionContext context.Context, repositoryPath string) (string, error) {
	return inspector.statusValue, inspector.statusError
}

func (inspector *fakeRepositoryInspector) Describe(executionContext context.Context, repositoryPath string, dirtyMarker string) (string, error) {
	return inspector.describeValue, inspector.describeError
}

func (inspector *fakeRepositoryInspector) CommitCount(executionContext context.Context, repositoryPath string) (int, error) {
	return inspector.countValue, inspector.countError
}

func defaultResolveOptions(repositoryPath string) describe.Options {
	defaults := describe.DefaultCommandConfiguration()
	return describe.Options{
		RepositoryPath: repositoryPath,
		RemoteName:     defaults.RemoteName,
		DirtyMarker:    defaults.DirtyMarker,
		Fallbacks:      defaults.Fallbacks,
	}
}

func canonicalTestPath(testInstance *testing.T, candidatePath string) string {
	canonicalPath, canonicalError := filepath.EvalSymlinks(candidatePath)
	require.NoError(testInstance, canonicalError)
	return canonicalPath
}

func TestNewServiceRequiresInspector(testInstance *testing.T) {
	_, creationError := describe.NewService(describe.ServiceDependencies{})
	require.ErrorIs(testInstance, creationError, describe.ErrInspectorNotConfigured)
}

func TestServiceResolveDescriptorFields(testInstance *testing.T) {
	testCases := []struct {
		name            string
		inspector       fakeRepositoryInspector
		ciReferenceName string
		expectedBranch  string
		expectedCommit  string
		expectedIsDirty string
		expectedRemote  string
		expectedSemver  string
		expectedStage   string
		expectedVersion string
	}{
		{
			name: "clean_tagged_master",
			inspector: fakeRepositoryInspector{
				branchValue:   "master",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "1.2.3-2-gabc1234",
			},
			expectedBranch:  "master",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "1.2.3",
			expectedStage:   "master",
			expectedVersion: "1.2.3-2-gabc1234",
		},
		{
			name: "dirty_tagged_worktree_strips_marker_from_commit",
			inspector: fakeRepositoryInspector{
				branchValue:   "develop",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleDirtyStatusConstant,
				describeValue: "1.2.3-2-gabc1234-dirty",
			},
			expectedBranch:  "develop",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "true",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "1.2.3",
			expectedStage:   "develop",
			expectedVersion: "1.2.3-2-gabc1234-dirty",
		},
		{
			name: "untagged_repository_builds_synthetic_version",
			inspector: fakeRepositoryInspector{
				branchValue:   "develop",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: sampleCommitHashConstant,
				countValue:    5,
			},
			expectedBranch:  "develop",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "nosemver",
			expectedStage:   "develop",
			expectedVersion: "notag-5-gabc1234",
		},
		{
			name: "untagged_dirty_repository_appends_marker_to_synthetic_version",
			inspector: fakeRepositoryInspector{
				branchValue:   "develop",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleDirtyStatusConstant,
				describeValue: sampleCommitHashConstant + sampleDirtyMarkerConstant,
				countValue:    5,
			},
			expectedBranch:  "develop",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "true",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "nosemver",
			expectedStage:   "develop",
			expectedVersion: "notag-5-gabc1234-dirty",
		},
		{
			name: "release_branch_version_outranks_tag_derived_semver",
			inspector: fakeRepositoryInspector{
				branchValue:   "release/2.0.0",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "1.9.0-3-gabc1234",
			},
			expectedBranch:  "release/2.0.0",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "2.0.0",
			expectedStage:   "release",
			expectedVersion: "1.9.0-3-gabc1234",
		},
		{
			name: "feature_branch_maps_to_feature_stage",
			inspector: fakeRepositoryInspector{
				branchValue:   "feature/login-form",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "0.3.0-8-gabc1234",
			},
			expectedBranch:  "feature/login-form",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "0.3.0",
			expectedStage:   "feature",
			expectedVersion: "0.3.0-8-gabc1234",
		},
		{
			name: "unrecognized_branch_shape_degrades_stage",
			inspector: fakeRepositoryInspector{
				branchValue:   "hotfix-preview",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "1.2.3-2-gabc1234",
			},
			expectedBranch:  "hotfix-preview",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "1.2.3",
			expectedStage:   "nostage",
			expectedVersion: "1.2.3-2-gabc1234",
		},
		{
			name: "detached_head_substitutes_pipeline_reference",
			inspector: fakeRepositoryInspector{
				branchValue:   "HEAD",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "1.2.3-2-gabc1234",
			},
			ciReferenceName: "develop",
			expectedBranch:  "develop",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "1.2.3",
			expectedStage:   "develop",
			expectedVersion: "1.2.3-2-gabc1234",
		},
		{
			name: "detached_head_without_pipeline_reference_keeps_marker",
			inspector: fakeRepositoryInspector{
				branchValue:   "HEAD",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "1.2.3-2-gabc1234",
			},
			expectedBranch:  "HEAD",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "1.2.3",
			expectedStage:   "nostage",
			expectedVersion: "1.2.3-2-gabc1234",
		},
		{
			name: "branch_query_failure_degrades_branch_and_stage",
			inspector: fakeRepositoryInspector{
				branchError:   errQueryFailure,
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "1.2.3-2-gabc1234",
			},
			expectedBranch:  "nobranch",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "1.2.3",
			expectedStage:   "nostage",
			expectedVersion: "1.2.3-2-gabc1234",
		},
		{
			name: "remote_query_failure_degrades_remote_only",
			inspector: fakeRepositoryInspector{
				branchValue:   "master",
				remoteError:   errQueryFailure,
				statusValue:   sampleCleanStatusConstant,
				describeValue: "1.2.3-2-gabc1234",
			},
			expectedBranch:  "master",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  "noremote",
			expectedSemver:  "1.2.3",
			expectedStage:   "master",
			expectedVersion: "1.2.3-2-gabc1234",
		},
		{
			name: "status_query_failure_degrades_dirtiness_only",
			inspector: fakeRepositoryInspector{
				branchValue:   "master",
				remoteValue:   sampleRemoteURLConstant,
				statusError:   errQueryFailure,
				describeValue: "1.2.3-2-gabc1234",
			},
			expectedBranch:  "master",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "nostatus",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "1.2.3",
			expectedStage:   "master",
			expectedVersion: "1.2.3-2-gabc1234",
		},
		{
			name: "describe_failure_degrades_commit_semver_and_version",
			inspector: fakeRepositoryInspector{
				branchValue:   "master",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeError: errQueryFailure,
			},
			expectedBranch:  "master",
			expectedCommit:  "nocommit",
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "nosemver",
			expectedStage:   "master",
			expectedVersion: "noversion",
		},
		{
			name: "describe_failure_keeps_release_branch_semver",
			inspector: fakeRepositoryInspector{
				branchValue:   "release/2.0.0",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeError: errQueryFailure,
			},
			expectedBranch:  "release/2.0.0",
			expectedCommit:  "nocommit",
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "2.0.0",
			expectedStage:   "release",
			expectedVersion: "noversion",
		},
		{
			name: "commit_count_failure_uses_count_token_in_synthetic_version",
			inspector: fakeRepositoryInspector{
				branchValue:   "develop",
				remoteValue:   sampleRemoteURLConstant,
				statusValue:   sampleCleanStatusConstant,
				describeValue: sampleCommitHashConstant,
				countError:    errQueryFailure,
			},
			expectedBranch:  "develop",
			expectedCommit:  sampleCommitHashConstant,
			expectedIsDirty: "false",
			expectedRemote:  sampleRemoteURLConstant,
			expectedSemver:  "nosemver",
			expectedStage:   "develop",
			expectedVersion: "notag-nocount-gabc1234",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			repositoryDirectory := subtestInstance.TempDir()
			inspector := testCase.inspector
			service, serviceError := describe.NewService(describe.ServiceDependencies{Inspector: &inspector})
			require.NoError(subtestInstance, serviceError)

			resolveOptions := defaultResolveOptions(repositoryDirectory)
			resolveOptions.CIReferenceName = testCase.ciReferenceName

			descriptor, resolveError := service.Resolve(context.Background(), resolveOptions)
			require.NoError(subtestInstance, resolveError)

			require.Equal(subtestInstance, canonicalTestPath(subtestInstance, repositoryDirectory), descriptor.Location)
			require.Equal(subtestInstance, testCase.expectedBranch, descriptor.Branch)
			require.Equal(subtestInstance, testCase.expectedCommit, descriptor.Commit)
			require.Equal(subtestInstance, testCase.expectedIsDirty, descriptor.IsDirty)
			require.Equal(subtestInstance, testCase.expectedRemote, descriptor.Remote)
			require.Equal(subtestInstance, testCase.expectedSemver, descriptor.Semver)
			require.Equal(subtestInstance, testCase.expectedStage, descriptor.Stage)
			require.Equal(subtestInstance, testCase.expectedVersion, descriptor.Version)
		})
	}
}

func TestServiceResolveRejectsInvalidPaths(testInstance *testing.T) {
	existingFilePath := filepath.Join(testInstance.TempDir(), "descriptor.txt")
	require.NoError(testInstance, os.WriteFile(existingFilePath, []byte("payload"), 0o644))

	testCases := []struct {
		name                 string
		repositoryPath       string
		expectedErrorMessage string
	}{
		{
			name:                 "empty_path",
			repositoryPath:       "   ",
			expectedErrorMessage: "repository path must be provided",
		},
		{
			name:                 "missing_path",
			repositoryPath:       filepath.Join(testInstance.TempDir(), "absent"),
			expectedErrorMessage: "does not exist",
		},
		{
			name:                 "path_is_regular_file",
			repositoryPath:       existingFilePath,
			expectedErrorMessage: "is not a directory",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			service, serviceError := describe.NewService(describe.ServiceDependencies{Inspector: &fakeRepositoryInspector{}})
			require.NoError(subtestInstance, serviceError)

			_, resolveError := service.Resolve(context.Background(), defaultResolveOptions(testCase.repositoryPath))
			require.Error(subtestInstance, resolveError)
			require.Contains(subtestInstance, resolveError.Error(), testCase.expectedErrorMessage)
		})
	}
}

func TestServiceResolveIsRepeatable(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	inspector := fakeRepositoryInspector{
		branchValue:   "master",
		remoteValue:   sampleRemoteURLConstant,
		statusValue:   sampleCleanStatusConstant,
		describeValue: "1.2.3-2-gabc1234",
	}

	service, serviceError := describe.NewService(describe.ServiceDependencies{Inspector: &inspector})
	require.NoError(testInstance, serviceError)

	firstDescriptor, firstError := service.Resolve(context.Background(), defaultResolveOptions(repositoryDirectory))
	require.NoError(testInstance, firstError)

	secondDescriptor, secondError := service.Resolve(context.Background(), defaultResolveOptions(repositoryDirectory))
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, firstDescriptor, secondDescriptor)
}
