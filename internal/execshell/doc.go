// Package execshell wraps operating system command execution with logging,
// typed errors, and lifecycle observer hooks for the git invocations issued
// by the CLI.
package execshell
