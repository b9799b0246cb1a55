package gate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relkit/relkit/internal/describe"
	"github.com/relkit/relkit/internal/utils"
	pathutils "github.com/relkit/relkit/internal/utils/path"
)

const (
	commandUseConstant              = "gate <path>"
	commandShortDescriptionConstant = "Check a repository working copy against release policy"
	commandLongDescriptionConstant  = "gate resolves the descriptor of the repository at the provided path and verifies it satisfies the configured release policy. The command fails when the worktree carries uncommitted changes or when no semantic version can be determined, so CI pipelines can stop before publishing."
	commandExampleConstant          = "relkit gate ~/Development/widget --require-semver=false"
	exactlyOnePathMessageConstant   = "provide exactly one repository path argument"
	requireCleanFlagNameConstant    = "require-clean"
	requireCleanFlagDescription     = "fail when the worktree has uncommitted changes"
	requireSemverFlagNameConstant   = "require-semver"
	requireSemverFlagDescription    = "fail when no semantic version can be determined"
	backendFlagNameConstant         = "backend"
	backendFlagDescriptionConstant  = "repository query backend (cli or native)"
	remoteFlagNameConstant          = "remote"
	remoteFlagDescriptionConstant   = "remote whose URL populates the descriptor"
	passedMessageTemplateConstant   = "release gate passed for %s (version %s)\n"
	blockedReasonTemplateConstant   = "blocked: %s\n"
	blockedErrorTemplateConstant    = "release gate blocked for %s: %s"
	reasonSeparatorConstant         = "; "
	emptyFlagDefaultConstant        = ""
)

// CommandBuilder assembles the gate command.
type CommandBuilder struct {
	LoggerProvider                describe.LoggerProvider
	Inspector                     describe.RepositoryInspector
	ConfigurationProvider         func() CommandConfiguration
	DescribeConfigurationProvider func() describe.CommandConfiguration
	EnvironmentLookup             describe.EnvironmentLookup
}

// Build constructs the gate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.ArbitraryArgs,
		RunE:    builder.run,
	}

	command.Flags().Bool(requireCleanFlagNameConstant, true, requireCleanFlagDescription)
	command.Flags().Bool(requireSemverFlagNameConstant, true, requireSemverFlagDescription)
	command.Flags().String(backendFlagNameConstant, emptyFlagDefaultConstant, backendFlagDescriptionConstant)
	command.Flags().String(remoteFlagNameConstant, emptyFlagDefaultConstant, remoteFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		if command != nil {
			_ = command.Help()
		}
		return errors.New(exactlyOnePathMessageConstant)
	}

	policyConfiguration := builder.resolvePolicyConfiguration(command)
	describeConfiguration := builder.resolveDescribeConfiguration()
	describeConfiguration = applyInspectionFlagOverrides(command, describeConfiguration)

	inspectorBackend, backendError := describe.ParseInspectorBackend(describeConfiguration.Backend)
	if backendError != nil {
		return backendError
	}

	logger := builder.resolveLogger()

	inspector, inspectorError := describe.ResolveInspector(builder.Inspector, inspectorBackend, logger)
	if inspectorError != nil {
		return inspectorError
	}

	service, serviceError := describe.NewService(describe.ServiceDependencies{Inspector: inspector, Logger: logger})
	if serviceError != nil {
		return serviceError
	}

	homeExpander := pathutils.NewHomeExpander()
	repositoryPath := homeExpander.Expand(strings.TrimSpace(arguments[0]))

	descriptor, resolveError := service.Resolve(command.Context(), describe.Options{
		RepositoryPath:  repositoryPath,
		RemoteName:      describeConfiguration.RemoteName,
		DirtyMarker:     describeConfiguration.DirtyMarker,
		CIReferenceName: builder.lookupCIReferenceName(describeConfiguration.CIReferenceEnvironmentVariable),
		Fallbacks:       describeConfiguration.Fallbacks,
	})
	if resolveError != nil {
		return resolveError
	}

	evaluation := Evaluate(Options{
		Descriptor:          descriptor,
		RequireClean:        policyConfiguration.RequireClean,
		RequireSemver:       policyConfiguration.RequireSemver,
		SemverFallbackToken: describeConfiguration.Fallbacks.Semver,
	})

	verdictWriter := utils.NewFlushingWriter(command.OutOrStdout())
	if evaluation.Allowed {
		_, writeError := fmt.Fprintf(verdictWriter, passedMessageTemplateConstant, descriptor.Location, descriptor.Version)
		return writeError
	}

	for _, reason := range evaluation.Reasons {
		fmt.Fprintf(verdictWriter, blockedReasonTemplateConstant, reason)
	}
	return fmt.Errorf(blockedErrorTemplateConstant, descriptor.Location, strings.Join(evaluation.Reasons, reasonSeparatorConstant))
}

func (builder *CommandBuilder) resolvePolicyConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command == nil {
		return configuration
	}
	if command.Flags().Changed(requireCleanFlagNameConstant) {
		if flagValue, flagError := command.Flags().GetBool(requireCleanFlagNameConstant); flagError == nil {
			configuration.RequireClean = flagValue
		}
	}
	if command.Flags().Changed(requireSemverFlagNameConstant) {
		if flagValue, flagError := command.Flags().GetBool(requireSemverFlagNameConstant); flagError == nil {
			configuration.RequireSemver = flagValue
		}
	}
	return configuration
}

func (builder *CommandBuilder) resolveDescribeConfiguration() describe.CommandConfiguration {
	if builder.DescribeConfigurationProvider == nil {
		return describe.DefaultCommandConfiguration()
	}
	return builder.DescribeConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) lookupCIReferenceName(environmentVariableName string) string {
	trimmedVariableName := strings.TrimSpace(environmentVariableName)
	if len(trimmedVariableName) == 0 {
		return ""
	}

	lookup := builder.EnvironmentLookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	referenceName, referencePresent := lookup(trimmedVariableName)
	if !referencePresent {
		return ""
	}
	return strings.TrimSpace(referenceName)
}

func applyInspectionFlagOverrides(command *cobra.Command, configuration describe.CommandConfiguration) describe.CommandConfiguration {
	if command == nil {
		return configuration
	}

	overridden := configuration
	if command.Flags().Changed(backendFlagNameConstant) {
		if flagValue, flagError := command.Flags().GetString(backendFlagNameConstant); flagError == nil {
			overridden.Backend = flagValue
		}
	}
	if command.Flags().Changed(remoteFlagNameConstant) {
		if flagValue, flagError := command.Flags().GetString(remoteFlagNameConstant); flagError == nil {
			overridden.RemoteName = flagValue
		}
	}
	return overridden
}
