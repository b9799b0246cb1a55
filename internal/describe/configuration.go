package describe

import "strings"

const (
	remoteConfigurationKeyConstant            = "remote"
	backendConfigurationKeyConstant           = "backend"
	formatConfigurationKeyConstant            = "format"
	ciReferenceEnvironmentConfigurationKey    = "ci_ref_environment"
	dirtyStringConfigurationKeyConstant       = "dirty_string"
	branchFallbackConfigurationKeyConstant    = "no_branch_fallback"
	commitFallbackConfigurationKeyConstant    = "no_commit_fallback"
	countFallbackConfigurationKeyConstant     = "no_count_fallback"
	remoteFallbackConfigurationKeyConstant    = "no_remote_fallback"
	semverFallbackConfigurationKeyConstant    = "no_semver_fallback"
	stageFallbackConfigurationKeyConstant     = "no_stage_fallback"
	statusFallbackConfigurationKeyConstant    = "no_status_fallback"
	tagFallbackConfigurationKeyConstant       = "no_tag_fallback"
	versionFallbackConfigurationKeyConstant   = "no_version_fallback"
	configurationKeySeparatorConstant         = "."
	defaultRemoteNameConstant                 = "origin"
	defaultDirtyMarkerConstant                = "-dirty"
	defaultCIReferenceEnvironmentNameConstant = "CI_COMMIT_REF_NAME"
	defaultBranchFallbackTokenConstant        = "nobranch"
	defaultCommitFallbackTokenConstant        = "nocommit"
	defaultCountFallbackTokenConstant         = "nocount"
	defaultRemoteFallbackTokenConstant        = "noremote"
	defaultSemverFallbackTokenConstant        = "nosemver"
	defaultStageFallbackTokenConstant         = "nostage"
	defaultStatusFallbackTokenConstant        = "nostatus"
	defaultTagFallbackTokenConstant           = "notag"
	defaultVersionFallbackTokenConstant       = "noversion"
)

// InspectorBackend selects how repository queries are executed.
type InspectorBackend string

// Supported inspector backends.
const (
	BackendCLI    InspectorBackend = "cli"
	BackendNative InspectorBackend = "native"
)

// FallbackTokens supplies the per-field sentinel strings substituted when a
// repository query fails or returns unusable data.
type FallbackTokens struct {
	Branch  string `mapstructure:"no_branch_fallback"`
	Commit  string `mapstructure:"no_commit_fallback"`
	Count   string `mapstructure:"no_count_fallback"`
	Remote  string `mapstructure:"no_remote_fallback"`
	Semver  string `mapstructure:"no_semver_fallback"`
	Stage   string `mapstructure:"no_stage_fallback"`
	Status  string `mapstructure:"no_status_fallback"`
	Tag     string `mapstructure:"no_tag_fallback"`
	Version string `mapstructure:"no_version_fallback"`
}

// CommandConfiguration captures configuration values for the describe command.
type CommandConfiguration struct {
	RemoteName                     string         `mapstructure:"remote"`
	Backend                        string         `mapstructure:"backend"`
	Format                         string         `mapstructure:"format"`
	CIReferenceEnvironmentVariable string         `mapstructure:"ci_ref_environment"`
	DirtyMarker                    string         `mapstructure:"dirty_string"`
	Fallbacks                      FallbackTokens `mapstructure:",squash"`
}

// DefaultCommandConfiguration provides baseline configuration values for describe.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:                     defaultRemoteNameConstant,
		Backend:                        string(BackendCLI),
		Format:                         string(OutputFormatText),
		CIReferenceEnvironmentVariable: defaultCIReferenceEnvironmentNameConstant,
		DirtyMarker:                    defaultDirtyMarkerConstant,
		Fallbacks: FallbackTokens{
			Branch:  defaultBranchFallbackTokenConstant,
			Commit:  defaultCommitFallbackTokenConstant,
			Count:   defaultCountFallbackTokenConstant,
			Remote:  defaultRemoteFallbackTokenConstant,
			Semver:  defaultSemverFallbackTokenConstant,
			Stage:   defaultStageFallbackTokenConstant,
			Status:  defaultStatusFallbackTokenConstant,
			Tag:     defaultTagFallbackTokenConstant,
			Version: defaultVersionFallbackTokenConstant,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for the describe command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + remoteConfigurationKeyConstant:          defaults.RemoteName,
		rootKey + configurationKeySeparatorConstant + backendConfigurationKeyConstant:         defaults.Backend,
		rootKey + configurationKeySeparatorConstant + formatConfigurationKeyConstant:          defaults.Format,
		rootKey + configurationKeySeparatorConstant + ciReferenceEnvironmentConfigurationKey:  defaults.CIReferenceEnvironmentVariable,
		rootKey + configurationKeySeparatorConstant + dirtyStringConfigurationKeyConstant:     defaults.DirtyMarker,
		rootKey + configurationKeySeparatorConstant + branchFallbackConfigurationKeyConstant:  defaults.Fallbacks.Branch,
		rootKey + configurationKeySeparatorConstant + commitFallbackConfigurationKeyConstant:  defaults.Fallbacks.Commit,
		rootKey + configurationKeySeparatorConstant + countFallbackConfigurationKeyConstant:   defaults.Fallbacks.Count,
		rootKey + configurationKeySeparatorConstant + remoteFallbackConfigurationKeyConstant:  defaults.Fallbacks.Remote,
		rootKey + configurationKeySeparatorConstant + semverFallbackConfigurationKeyConstant:  defaults.Fallbacks.Semver,
		rootKey + configurationKeySeparatorConstant + stageFallbackConfigurationKeyConstant:   defaults.Fallbacks.Stage,
		rootKey + configurationKeySeparatorConstant + statusFallbackConfigurationKeyConstant:  defaults.Fallbacks.Status,
		rootKey + configurationKeySeparatorConstant + tagFallbackConfigurationKeyConstant:     defaults.Fallbacks.Tag,
		rootKey + configurationKeySeparatorConstant + versionFallbackConfigurationKeyConstant: defaults.Fallbacks.Version,
	}
}

// Sanitize trims configuration values and substitutes defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RemoteName = valueOrDefault(configuration.RemoteName, defaults.RemoteName)
	sanitized.Backend = valueOrDefault(configuration.Backend, defaults.Backend)
	sanitized.Format = valueOrDefault(configuration.Format, defaults.Format)
	sanitized.CIReferenceEnvironmentVariable = valueOrDefault(configuration.CIReferenceEnvironmentVariable, defaults.CIReferenceEnvironmentVariable)
	sanitized.DirtyMarker = valueOrDefault(configuration.DirtyMarker, defaults.DirtyMarker)
	sanitized.Fallbacks = configuration.Fallbacks.sanitize(defaults.Fallbacks)

	return sanitized
}

func (tokens FallbackTokens) sanitize(defaults FallbackTokens) FallbackTokens {
	return FallbackTokens{
		Branch:  valueOrDefault(tokens.Branch, defaults.Branch),
		Commit:  valueOrDefault(tokens.Commit, defaults.Commit),
		Count:   valueOrDefault(tokens.Count, defaults.Count),
		Remote:  valueOrDefault(tokens.Remote, defaults.Remote),
		Semver:  valueOrDefault(tokens.Semver, defaults.Semver),
		Stage:   valueOrDefault(tokens.Stage, defaults.Stage),
		Status:  valueOrDefault(tokens.Status, defaults.Status),
		Tag:     valueOrDefault(tokens.Tag, defaults.Tag),
		Version: valueOrDefault(tokens.Version, defaults.Version),
	}
}

func valueOrDefault(candidate string, defaultValue string) string {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) == 0 {
		return defaultValue
	}
	return trimmed
}
