package describe

import "strings"

// Stage values recognized by the release pipeline.
const (
	StageFeature = "feature"
	StageDevelop = "develop"
	StageMaster  = "master"
	StageRelease = "release"
)

const (
	featureBranchPrefixConstant = "feature/"
	releaseBranchPrefixConstant = "release/"
	branchSeparatorConstant     = "/"
)

// stageRule pairs a branch predicate with the stage it produces.
type stageRule struct {
	matches func(branchName string) bool
	stage   string
}

// stageRules are evaluated top to bottom with first-match-wins semantics.
var stageRules = []stageRule{
	{
		matches: func(branchName string) bool { return strings.HasPrefix(branchName, featureBranchPrefixConstant) },
		stage:   StageFeature,
	},
	{
		matches: func(branchName string) bool { return branchName == StageDevelop },
		stage:   StageDevelop,
	},
	{
		matches: func(branchName string) bool { return branchName == StageMaster },
		stage:   StageMaster,
	},
	{
		matches: func(branchName string) bool { return strings.HasPrefix(branchName, releaseBranchPrefixConstant) },
		stage:   StageRelease,
	},
}

// classifyStage maps a branch name onto a pipeline stage.
//
// The boolean result reports whether any rule matched; unmatched branch
// shapes degrade to the stage fallback token at the call site.
func classifyStage(branchName string) (string, bool) {
	for _, rule := range stageRules {
		if rule.matches(branchName) {
			return rule.stage, true
		}
	}
	return "", false
}

// releaseBranchVersion extracts the version encoded after the final separator
// of a release branch name, e.g. release/1.4.0 yields 1.4.0.
func releaseBranchVersion(branchName string) string {
	separatorIndex := strings.LastIndex(branchName, branchSeparatorConstant)
	if separatorIndex < 0 {
		return branchName
	}
	return branchName[separatorIndex+len(branchSeparatorConstant):]
}
