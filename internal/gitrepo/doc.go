// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes RepositoryManager, which answers branch, remote, status,
// describe, and commit count queries by shelling out to the git executable.
package gitrepo
