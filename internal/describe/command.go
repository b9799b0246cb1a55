package describe

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relkit/relkit/internal/utils"
	pathutils "github.com/relkit/relkit/internal/utils/path"
)

const (
	commandUseConstant              = "describe <path>"
	commandShortDescriptionConstant = "Emit a normalized descriptor of a repository working copy"
	commandLongDescriptionConstant  = "describe inspects the repository at the provided path and prints its branch, commit, dirty state, remote URL, semantic version, release stage, and composite version string. Fields whose true value cannot be determined are reported with configured fallback tokens; only an invalid path aborts the command."
	commandExampleConstant          = "relkit describe ~/Development/widget --format json"
	exactlyOnePathMessageConstant   = "provide exactly one repository path argument"
	formatFlagNameConstant          = "format"
	formatFlagDescriptionConstant   = "output format (text or json)"
	backendFlagNameConstant         = "backend"
	backendFlagDescriptionConstant  = "repository query backend (cli or native)"
	remoteFlagNameConstant          = "remote"
	remoteFlagDescriptionConstant   = "remote whose URL populates the descriptor"
	emptyFlagDefaultConstant        = ""
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// EnvironmentLookup reads an environment variable by name.
type EnvironmentLookup func(variableName string) (string, bool)

// CommandBuilder assembles the describe command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	Inspector             RepositoryInspector
	ConfigurationProvider func() CommandConfiguration
	EnvironmentLookup     EnvironmentLookup
}

// Build constructs the describe command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.ArbitraryArgs,
		RunE:    builder.run,
	}

	command.Flags().String(formatFlagNameConstant, emptyFlagDefaultConstant, formatFlagDescriptionConstant)
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

	configuration := builder.resolveConfiguration()
	configuration = applyFlagOverrides(command, configuration)

	outputFormat, formatError := ParseOutputFormat(configuration.Format)
	if formatError != nil {
		return formatError
	}

	inspectorBackend, backendError := ParseInspectorBackend(configuration.Backend)
	if backendError != nil {
		return backendError
	}

	logger := builder.resolveLogger()

	inspector, inspectorError := ResolveInspector(builder.Inspector, inspectorBackend, logger)
	if inspectorError != nil {
		return inspectorError
	}

	service, serviceError := NewService(ServiceDependencies{Inspector: inspector, Logger: logger})
	if serviceError != nil {
		return serviceError
	}

	homeExpander := pathutils.NewHomeExpander()
	repositoryPath := homeExpander.Expand(strings.TrimSpace(arguments[0]))

	descriptor, resolveError := service.Resolve(command.Context(), Options{
		RepositoryPath:  repositoryPath,
		RemoteName:      configuration.RemoteName,
		DirtyMarker:     configuration.DirtyMarker,
		CIReferenceName: builder.lookupCIReferenceName(configuration.CIReferenceEnvironmentVariable),
		Fallbacks:       configuration.Fallbacks,
	})
	if resolveError != nil {
		return resolveError
	}

	return WriteDescriptor(utils.NewFlushingWriter(command.OutOrStdout()), descriptor, outputFormat)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
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

func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	if command == nil {
		return configuration
	}

	overridden := configuration
	if command.Flags().Changed(formatFlagNameConstant) {
		if flagValue, flagError := command.Flags().GetString(formatFlagNameConstant); flagError == nil {
			overridden.Format = flagValue
		}
	}
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
