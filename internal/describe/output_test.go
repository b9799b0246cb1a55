package describe_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relkit/relkit/internal/describe"
)

func sampleDescriptor() describe.RepositoryDescriptor {
	return describe.RepositoryDescriptor{
		Location: "/home/developer/widget",
		Branch:   "master",
		Commit:   "abc1234",
		IsDirty:  "false",
		Remote:   "git@github.com:acme/widget.git",
		Semver:   "1.2.3",
		Stage:    "master",
		Version:  "1.2.3-2-gabc1234",
	}
}

func TestParseOutputFormat(testInstance *testing.T) {
	testCases := []struct {
		name           string
		candidate      string
		expectedFormat describe.OutputFormat
		expectError    bool
	}{
		{name: "text_format", candidate: "text", expectedFormat: describe.OutputFormatText},
		{name: "json_format", candidate: "json", expectedFormat: describe.OutputFormatJSON},
		{name: "uppercase_format_is_normalized", candidate: " JSON ", expectedFormat: describe.OutputFormatJSON},
		{name: "unknown_format", candidate: "yaml", expectError: true},
		{name: "empty_format", candidate: "", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			parsedFormat, parseError := describe.ParseOutputFormat(testCase.candidate)
			if testCase.expectError {
				require.Error(subtestInstance, parseError)
				return
			}
			require.NoError(subtestInstance, parseError)
			require.Equal(subtestInstance, testCase.expectedFormat, parsedFormat)
		})
	}
}

func TestWriteDescriptorRecordEmitsFixedFieldOrder(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	require.NoError(testInstance, describe.WriteDescriptorRecord(outputBuffer, sampleDescriptor()))

	expectedOutput := "location=/home/developer/widget\n" +
		"branch=master\n" +
		"commit=abc1234\n" +
		"is_dirty=false\n" +
		"remote=git@github.com:acme/widget.git\n" +
		"semver=1.2.3\n" +
		"stage=master\n" +
		"version=1.2.3-2-gabc1234\n"
	require.Equal(testInstance, expectedOutput, outputBuffer.String())
}

func TestWriteDescriptorJSONRoundTrips(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	require.NoError(testInstance, describe.WriteDescriptorJSON(outputBuffer, sampleDescriptor()))
	require.True(testInstance, bytes.HasSuffix(outputBuffer.Bytes(), []byte("\n")))

	var decodedDescriptor describe.RepositoryDescriptor
	require.NoError(testInstance, json.Unmarshal(outputBuffer.Bytes(), &decodedDescriptor))
	require.Equal(testInstance, sampleDescriptor(), decodedDescriptor)
}

func TestWriteDescriptorDispatchesOnFormat(testInstance *testing.T) {
	textBuffer := &bytes.Buffer{}
	require.NoError(testInstance, describe.WriteDescriptor(textBuffer, sampleDescriptor(), describe.OutputFormatText))
	require.Contains(testInstance, textBuffer.String(), "version=1.2.3-2-gabc1234\n")

	jsonBuffer := &bytes.Buffer{}
	require.NoError(testInstance, describe.WriteDescriptor(jsonBuffer, sampleDescriptor(), describe.OutputFormatJSON))
	require.Contains(testInstance, jsonBuffer.String(), "\"version\": \"1.2.3-2-gabc1234\"")
}
