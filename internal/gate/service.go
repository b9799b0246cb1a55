package gate

import (
	"github.com/relkit/relkit/internal/describe"
)

const (
	dirtyWorktreeReasonConstant    = "worktree has uncommitted changes"
	unknownDirtinessReasonConstant = "worktree dirtiness could not be determined"
	unresolvedSemverReasonConstant = "semantic version could not be determined"
	cleanWorktreeDescriptorValue   = "false"
	dirtyWorktreeDescriptorValue   = "true"
)

// Options configure a single gate evaluation.
type Options struct {
	Descriptor          describe.RepositoryDescriptor
	RequireClean        bool
	RequireSemver       bool
	SemverFallbackToken string
}

// Result reports the gate verdict together with every violated policy.
type Result struct {
	Allowed bool
	Reasons []string
}

// Evaluate checks the descriptor against the configured release policy.
//
// A field carrying its fallback token counts against the policy that
// depends on it; the gate never guesses in favor of shipping.
func Evaluate(options Options) Result {
	var reasons []string

	if options.RequireClean {
		switch options.Descriptor.IsDirty {
		case cleanWorktreeDescriptorValue:
		case dirtyWorktreeDescriptorValue:
			reasons = append(reasons, dirtyWorktreeReasonConstant)
		default:
			reasons = append(reasons, unknownDirtinessReasonConstant)
		}
	}

	if options.RequireSemver {
		if len(options.Descriptor.Semver) == 0 || options.Descriptor.Semver == options.SemverFallbackToken {
			reasons = append(reasons, unresolvedSemverReasonConstant)
		}
	}

	return Result{Allowed: len(reasons) == 0, Reasons: reasons}
}
