package describe

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/relkit/relkit/internal/execshell"
	"github.com/relkit/relkit/internal/gitnative"
	"github.com/relkit/relkit/internal/gitrepo"
)

const unsupportedBackendTemplateConstant = "unsupported inspector backend: %s"

// ParseInspectorBackend validates a backend name supplied via configuration or flags.
func ParseInspectorBackend(candidate string) (InspectorBackend, error) {
	normalized := InspectorBackend(strings.ToLower(strings.TrimSpace(candidate)))
	switch normalized {
	case BackendCLI, BackendNative:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedBackendTemplateConstant, candidate)
	}
}

// ResolveInspector returns the provided inspector when available, otherwise
// constructs one for the requested backend.
func ResolveInspector(existingInspector RepositoryInspector, backend InspectorBackend, logger *zap.Logger) (RepositoryInspector, error) {
	if existingInspector != nil {
		return existingInspector, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch backend {
	case BackendNative:
		return gitnative.NewRepositoryInspector(), nil
	default:
		shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if creationError != nil {
			return nil, creationError
		}
		return gitrepo.NewRepositoryManager(shellExecutor)
	}
}
