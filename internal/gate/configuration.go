package gate

const (
	requireCleanConfigurationKeyConstant  = "require_clean"
	requireSemverConfigurationKeyConstant = "require_semver"
	configurationKeySeparatorConstant     = "."
)

// CommandConfiguration captures configuration values for the gate command.
type CommandConfiguration struct {
	RequireClean  bool `mapstructure:"require_clean"`
	RequireSemver bool `mapstructure:"require_semver"`
}

// DefaultCommandConfiguration provides baseline configuration values for gate.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RequireClean:  true,
		RequireSemver: true,
	}
}

// DefaultConfigurationValues produces Viper defaults for the gate command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + requireCleanConfigurationKeyConstant:  defaults.RequireClean,
		rootKey + configurationKeySeparatorConstant + requireSemverConfigurationKeyConstant: defaults.RequireSemver,
	}
}
