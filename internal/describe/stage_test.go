package describe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyStage(testInstance *testing.T) {
	testCases := []struct {
		name            string
		branchName      string
		expectedStage   string
		expectedMatched bool
	}{
		{name: "feature_prefixed_branch", branchName: "feature/login-form", expectedStage: StageFeature, expectedMatched: true},
		{name: "develop_branch", branchName: "develop", expectedStage: StageDevelop, expectedMatched: true},
		{name: "master_branch", branchName: "master", expectedStage: StageMaster, expectedMatched: true},
		{name: "release_prefixed_branch", branchName: "release/1.4.0", expectedStage: StageRelease, expectedMatched: true},
		{name: "develop_prefix_without_exact_match", branchName: "develop-preview", expectedMatched: false},
		{name: "main_branch_is_not_master", branchName: "main", expectedMatched: false},
		{name: "detached_head_marker", branchName: "HEAD", expectedMatched: false},
		{name: "empty_branch_name", branchName: "", expectedMatched: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			stageName, stageMatched := classifyStage(testCase.branchName)
			require.Equal(subtestInstance, testCase.expectedMatched, stageMatched)
			require.Equal(subtestInstance, testCase.expectedStage, stageName)
		})
	}
}

func TestReleaseBranchVersion(testInstance *testing.T) {
	testCases := []struct {
		name            string
		branchName      string
		expectedVersion string
	}{
		{name: "release_branch_with_version", branchName: "release/1.4.0", expectedVersion: "1.4.0"},
		{name: "nested_release_branch", branchName: "release/widget/2.0.0", expectedVersion: "2.0.0"},
		{name: "branch_without_separator", branchName: "release", expectedVersion: "release"},
		{name: "trailing_separator", branchName: "release/", expectedVersion: ""},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			require.Equal(subtestInstance, testCase.expectedVersion, releaseBranchVersion(testCase.branchName))
		})
	}
}
