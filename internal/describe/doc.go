// Package describe derives a normalized descriptor of a git working copy.
//
// The resolver queries branch, remote, status, describe, and commit count
// through a narrow RepositoryInspector interface, reconciles missing or
// inconsistent answers with per-field fallback tokens, and emits a single
// immutable RepositoryDescriptor record.
package describe
