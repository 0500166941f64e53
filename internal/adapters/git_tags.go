package adapters

import (
	"context"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"wrapdb-release/internal/ports"
	"wrapdb-release/internal/shared"
)

// GitTagAdapter lists tags of the git checkout at Dir.
type GitTagAdapter struct {
	Dir    string
	Binary string
}

func NewGitTagAdapter(dir string) GitTagAdapter {
	return GitTagAdapter{Dir: dir, Binary: "git"}
}

func (a GitTagAdapter) ListTags(ctx context.Context) ([]string, error) {
	binary := a.Binary
	if binary == "" {
		binary = "git"
	}
	cmd := exec.CommandContext(ctx, binary, "tag", "--list")
	cmd.Dir = a.Dir
	output, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = exitErr.Stderr
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("git tag command failed").
			WithCause(shared.CommandError(stderr, err))
	}
	return ParseTagList(string(output)), nil
}

// ParseTagList splits git tag output into trimmed, non-empty tags.
func ParseTagList(output string) []string {
	var tags []string
	for _, line := range strings.Split(output, "\n") {
		tag := strings.TrimSpace(line)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

var _ ports.TagSourcePort = GitTagAdapter{}
