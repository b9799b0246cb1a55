package describe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	repositoryPathRequiredMessageConstant  = "repository path must be provided"
	inspectorMissingMessageConstant        = "repository inspector not configured"
	repositoryPathMissingTemplateConstant  = "repository path %s does not exist"
	repositoryPathNotDirectoryTemplate     = "repository path %s is not a directory"
	repositoryPathResolveTemplateConstant  = "unable to resolve repository path %s: %w"
	detachedHeadMarkerConstant             = "HEAD"
	dirtyTrueValueConstant                 = "true"
	dirtyFalseValueConstant                = "false"
	syntheticVersionTemplateConstant       = "%s-%s-g%s"
	fieldDegradedMessageConstant           = "field degraded to fallback token"
	unexpectedBranchShapeMessageConstant   = "branch name does not match any recognized stage shape"
	detachedHeadSubstitutedMessageConstant = "substituted CI reference name for detached HEAD"
	fieldLogKeyConstant                    = "field"
	fallbackTokenLogKeyConstant            = "fallback"
	branchNameLogKeyConstant               = "branch"
	repositoryPathLogKeyConstant           = "repository"
	reasonLogKeyConstant                   = "reason"
)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrInspectorNotConfigured indicates the inspector dependency was missing.
var ErrInspectorNotConfigured = errors.New(inspectorMissingMessageConstant)

var (
	commitHashPattern   = regexp.MustCompile(`[0-9a-f]{7}`)
	semverPrefixPattern = regexp.MustCompile(`^\d+\.\d+\.\d+`)
)

// RepositoryInspector exposes the read-only repository queries consumed by the resolver.
type RepositoryInspector interface {
	CurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	WorktreeStatus(executionContext context.Context, repositoryPath string) (string, error)
	Describe(executionContext context.Context, repositoryPath string, dirtyMarker string) (string, error)
	CommitCount(executionContext context.Context, repositoryPath string) (int, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Inspector RepositoryInspector
	Logger    *zap.Logger
}

// Options configure a single descriptor resolution.
type Options struct {
	RepositoryPath  string
	RemoteName      string
	DirtyMarker     string
	CIReferenceName string
	Fallbacks       FallbackTokens
}

// Service resolves repository descriptors.
//
// Each call to Resolve is a fresh, fully isolated computation; nothing is
// cached or carried over between invocations.
type Service struct {
	inspector RepositoryInspector
	logger    *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{inspector: dependencies.Inspector, logger: logger}, nil
}

// fieldValue tracks whether a derived field holds real data or a fallback
// token, so an already-resolved value is never overwritten structurally.
type fieldValue struct {
	text     string
	resolved bool
}

func resolvedField(value string) fieldValue {
	return fieldValue{text: value, resolved: true}
}

func fallbackField(token string) fieldValue {
	return fieldValue{text: token}
}

// Resolve inspects the repository at the configured path and produces a
// fully populated descriptor.
//
// Individual query failures degrade the affected fields to their fallback
// tokens; only an invalid repository path yields an error.
func (service *Service) Resolve(executionContext context.Context, options Options) (RepositoryDescriptor, error) {
	repositoryLocation, locationError := service.resolveLocation(options.RepositoryPath)
	if locationError != nil {
		return RepositoryDescriptor{}, locationError
	}

	branchField := service.resolveBranch(executionContext, repositoryLocation, options)
	remoteField := service.resolveRemote(executionContext, repositoryLocation, options)
	dirtyField := service.resolveDirtiness(executionContext, repositoryLocation, options)
	stageField := service.resolveStage(branchField, options)

	semverField := fallbackField(options.Fallbacks.Semver)
	if stageField.resolved && stageField.text == StageRelease {
		semverField = resolvedField(releaseBranchVersion(branchField.text))
	}

	commitField, semverField, versionField := service.resolveVersionFields(executionContext, repositoryLocation, options, semverField)

	descriptor := RepositoryDescriptor{
		Location: repositoryLocation,
		Branch:   branchField.text,
		Commit:   commitField.text,
		IsDirty:  dirtyField.text,
		Remote:   remoteField.text,
		Semver:   semverField.text,
		Stage:    stageField.text,
		Version:  versionField.text,
	}
	return descriptor, nil
}

func (service *Service) resolveLocation(repositoryPath string) (string, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return "", ErrRepositoryPathRequired
	}

	absolutePath, absoluteError := filepath.Abs(trimmedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(repositoryPathResolveTemplateConstant, trimmedPath, absoluteError)
	}

	pathInformation, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(repositoryPathMissingTemplateConstant, absolutePath)
	}
	if !pathInformation.IsDir() {
		return "", fmt.Errorf(repositoryPathNotDirectoryTemplate, absolutePath)
	}

	canonicalPath, canonicalError := filepath.EvalSymlinks(absolutePath)
	if canonicalError != nil {
		return absolutePath, nil
	}
	return canonicalPath, nil
}

func (service *Service) resolveBranch(executionContext context.Context, repositoryLocation string, options Options) fieldValue {
	branchName, branchError := service.inspector.CurrentBranch(executionContext, repositoryLocation)
	if branchError != nil {
		service.logDegradedField(BranchFieldKeyConstant, options.Fallbacks.Branch, repositoryLocation, branchError)
		return fallbackField(options.Fallbacks.Branch)
	}

	trimmedBranchName := strings.TrimSpace(branchName)
	if trimmedBranchName == detachedHeadMarkerConstant && len(options.CIReferenceName) > 0 {
		service.logger.Info(detachedHeadSubstitutedMessageConstant,
			zap.String(repositoryPathLogKeyConstant, repositoryLocation),
			zap.String(branchNameLogKeyConstant, options.CIReferenceName),
		)
		return resolvedField(options.CIReferenceName)
	}
	return resolvedField(trimmedBranchName)
}

func (service *Service) resolveRemote(executionContext context.Context, repositoryLocation string, options Options) fieldValue {
	remoteURL, remoteError := service.inspector.RemoteURL(executionContext, repositoryLocation, options.RemoteName)
	if remoteError != nil {
		service.logDegradedField(RemoteFieldKeyConstant, options.Fallbacks.Remote, repositoryLocation, remoteError)
		return fallbackField(options.Fallbacks.Remote)
	}
	return resolvedField(strings.TrimSpace(remoteURL))
}

func (service *Service) resolveDirtiness(executionContext context.Context, repositoryLocation string, options Options) fieldValue {
	statusOutput, statusError := service.inspector.WorktreeStatus(executionContext, repositoryLocation)
	if statusError != nil {
		service.logDegradedField(IsDirtyFieldKeyConstant, options.Fallbacks.Status, repositoryLocation, statusError)
		return fallbackField(options.Fallbacks.Status)
	}
	if len(strings.TrimSpace(statusOutput)) > 0 {
		return resolvedField(dirtyTrueValueConstant)
	}
	return resolvedField(dirtyFalseValueConstant)
}

func (service *Service) resolveStage(branchField fieldValue, options Options) fieldValue {
	if !branchField.resolved {
		return fallbackField(options.Fallbacks.Stage)
	}

	stageName, stageMatched := classifyStage(branchField.text)
	if !stageMatched {
		service.logger.Error(unexpectedBranchShapeMessageConstant,
			zap.String(branchNameLogKeyConstant, branchField.text),
			zap.String(fallbackTokenLogKeyConstant, options.Fallbacks.Stage),
		)
		return fallbackField(options.Fallbacks.Stage)
	}
	return resolvedField(stageName)
}

func (service *Service) resolveVersionFields(executionContext context.Context, repositoryLocation string, options Options, semverField fieldValue) (fieldValue, fieldValue, fieldValue) {
	describeOutput, describeError := service.inspector.Describe(executionContext, repositoryLocation, options.DirtyMarker)
	if describeError != nil {
		service.logDegradedField(VersionFieldKeyConstant, options.Fallbacks.Version, repositoryLocation, describeError)
		return fallbackField(options.Fallbacks.Commit), semverField, fallbackField(options.Fallbacks.Version)
	}

	trimmedDescribeOutput := strings.TrimSpace(describeOutput)

	// The dirty marker must be stripped before hash extraction so marker
	// characters never leak into the commit field.
	strippedDescribeOutput := trimmedDescribeOutput
	dirtySuffixPresent := false
	if len(options.DirtyMarker) > 0 && strings.HasSuffix(trimmedDescribeOutput, options.DirtyMarker) {
		strippedDescribeOutput = strings.TrimSuffix(trimmedDescribeOutput, options.DirtyMarker)
		dirtySuffixPresent = true
	}

	commitField := fallbackField(options.Fallbacks.Commit)
	if commitHash := commitHashPattern.FindString(strippedDescribeOutput); len(commitHash) > 0 {
		commitField = resolvedField(commitHash)
	} else {
		service.logDegradedField(CommitFieldKeyConstant, options.Fallbacks.Commit, repositoryLocation, nil)
	}

	if !semverPrefixPattern.MatchString(trimmedDescribeOutput) {
		versionField := service.buildSyntheticVersion(executionContext, repositoryLocation, options, commitField, dirtySuffixPresent)
		return commitField, semverField, versionField
	}

	if !semverField.resolved {
		semverText := trimmedDescribeOutput
		if separatorIndex := strings.Index(trimmedDescribeOutput, "-"); separatorIndex >= 0 {
			semverText = trimmedDescribeOutput[:separatorIndex]
		}
		semverField = resolvedField(semverText)
	}

	return commitField, semverField, resolvedField(trimmedDescribeOutput)
}

// buildSyntheticVersion reconstructs a describe-style version for tag-less
// repositories: <tag-fallback>-<count>-g<commit>, plus the dirty marker when
// the describe output carried one.
func (service *Service) buildSyntheticVersion(executionContext context.Context, repositoryLocation string, options Options, commitField fieldValue, dirtySuffixPresent bool) fieldValue {
	countText := options.Fallbacks.Count
	commitCount, countError := service.inspector.CommitCount(executionContext, repositoryLocation)
	if countError != nil {
		service.logDegradedField(VersionFieldKeyConstant, options.Fallbacks.Count, repositoryLocation, countError)
	} else {
		countText = strconv.Itoa(commitCount)
	}

	syntheticVersion := fmt.Sprintf(syntheticVersionTemplateConstant, options.Fallbacks.Tag, countText, commitField.text)
	if dirtySuffixPresent {
		syntheticVersion += options.DirtyMarker
	}
	return resolvedField(syntheticVersion)
}

func (service *Service) logDegradedField(fieldName string, fallbackToken string, repositoryLocation string, degradationCause error) {
	logFields := []zap.Field{
		zap.String(fieldLogKeyConstant, fieldName),
		zap.String(fallbackTokenLogKeyConstant, fallbackToken),
		zap.String(repositoryPathLogKeyConstant, repositoryLocation),
	}
	if degradationCause != nil {
		logFields = append(logFields, zap.String(reasonLogKeyConstant, degradationCause.Error()))
	}
	service.logger.Info(fieldDegradedMessageConstant, logFields...)
}
