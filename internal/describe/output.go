package describe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	recordLineTemplateConstant           = "%s=%s\n"
	jsonIndentConstant                   = "  "
	jsonPrefixConstant                   = ""
	trailingNewlineConstant              = "\n"
	unsupportedFormatTemplateConstant    = "unsupported output format: %s"
	descriptorEncodeErrorTemplateConstant = "failed to encode descriptor: %w"
)

// OutputFormat selects how the descriptor is rendered on standard output.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format name supplied via configuration or flags.
func ParseOutputFormat(candidate string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(candidate)))
	switch normalized {
	case OutputFormatText, OutputFormatJSON:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, candidate)
	}
}

// WriteDescriptor renders the descriptor in the requested format.
func WriteDescriptor(writer io.Writer, descriptor RepositoryDescriptor, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		return WriteDescriptorJSON(writer, descriptor)
	default:
		return WriteDescriptorRecord(writer, descriptor)
	}
}

// WriteDescriptorRecord emits the descriptor as key=value lines in fixed field order.
func WriteDescriptorRecord(writer io.Writer, descriptor RepositoryDescriptor) error {
	for _, field := range descriptor.OrderedFields() {
		if _, writeError := fmt.Fprintf(writer, recordLineTemplateConstant, field.Key, field.Value); writeError != nil {
			return writeError
		}
	}
	return nil
}

// WriteDescriptorJSON emits the descriptor as an indented JSON document.
func WriteDescriptorJSON(writer io.Writer, descriptor RepositoryDescriptor) error {
	encodedDescriptor, encodeError := json.MarshalIndent(descriptor, jsonPrefixConstant, jsonIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(descriptorEncodeErrorTemplateConstant, encodeError)
	}

	if _, writeError := writer.Write(append(encodedDescriptor, []byte(trailingNewlineConstant)...)); writeError != nil {
		return writeError
	}
	return nil
}
