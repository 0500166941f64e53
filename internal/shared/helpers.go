// Package shared provides common utility functions used across multiple
// packages in the wrapdb-release codebase.
package shared

import (
	"fmt"
	"strings"
)

// NormalizeRepository reduces a repository reference to owner/name. Plain
// owner/name values, web or clone URLs and scp-style git remotes are
// accepted, with or without a trailing .git.
func NormalizeRepository(value string) string {
	repo := strings.TrimSpace(value)
	if idx := strings.Index(repo, "://"); idx >= 0 {
		repo = repo[idx+len("://"):]
		slash := strings.Index(repo, "/")
		if slash < 0 {
			return ""
		}
		repo = repo[slash+1:]
	} else if at := strings.Index(repo, "@"); at >= 0 {
		if colon := strings.Index(repo[at:], ":"); colon >= 0 {
			repo = repo[at+colon+1:]
		}
	}
	repo = strings.TrimSuffix(strings.Trim(repo, "/"), ".git")
	parts := strings.Split(repo, "/")
	if len(parts) > 2 && strings.Contains(parts[0], ".") {
		repo = strings.Join(parts[1:], "/")
	}
	return strings.Trim(repo, "/")
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
