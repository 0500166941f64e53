package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"wrapdb-release/internal/ports"
	"wrapdb-release/internal/types"
)

const (
	subprojectsDirName  = "subprojects"
	packageFilesDirName = "packagefiles"
	wrapFileExt         = ".wrap"
)

// WrapFileAdapter stores wrap documents under <root>/subprojects.
type WrapFileAdapter struct {
	Root string
}

func NewWrapFileAdapter(root string) WrapFileAdapter {
	return WrapFileAdapter{Root: root}
}

// SubprojectsDir returns the directory holding wrap files for root.
func SubprojectsDir(root string) string {
	return filepath.Join(root, subprojectsDirName)
}

func (a WrapFileAdapter) Load(pkg string) (*types.WrapMetadata, error) {
	path := filepath.Join(SubprojectsDir(a.Root), pkg+wrapFileExt)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("wrap file not found for package %s", pkg)).
				WithCause(err)
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read wrap file for package %s", pkg)).
			WithCause(err)
	}
	doc, err := ParseWrap(data)
	if err != nil {
		return nil, err
	}
	doc.Package = pkg
	return doc, nil
}

func (a WrapFileAdapter) Serialize(doc *types.WrapMetadata) []byte {
	return RenderWrap(doc)
}

func (a WrapFileAdapter) Write(doc *types.WrapMetadata, dir string) (string, error) {
	if strings.TrimSpace(doc.Package) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("wrap document has no package name")
	}
	path := filepath.Join(dir, doc.Package+wrapFileExt)
	if err := os.WriteFile(path, a.Serialize(doc), 0o644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write wrap file").
			WithCause(err)
	}
	return path, nil
}

func (a WrapFileAdapter) PatchDir(name string) string {
	return filepath.Join(SubprojectsDir(a.Root), packageFilesDirName, name)
}

// ParseWrap reads an ini style wrap document. Comment and blank lines
// are kept so that RenderWrap can reproduce the input exactly.
func ParseWrap(data []byte) (*types.WrapMetadata, error) {
	text := string(data)
	doc := &types.WrapMetadata{
		TrailingNewline: strings.HasSuffix(text, "\n"),
		CRLF:            strings.Contains(text, "\r\n"),
	}
	text = strings.TrimSuffix(text, "\n")
	if text == "" && !doc.TrailingNewline {
		return nil, invalidWrap(0, "wrap file is empty")
	}

	var section *types.WrapSection
	lines := &doc.Preamble
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";"):
			*lines = append(*lines, types.WrapLine{Raw: raw})
		case continuationOwner(raw, *lines) >= 0:
			owner := continuationOwner(raw, *lines)
			entry := &(*lines)[owner]
			for _, skipped := range (*lines)[owner+1:] {
				entry.Raw += "\n" + skipped.Raw
				if strings.TrimSpace(skipped.Raw) == "" {
					entry.Value += "\n"
				}
			}
			entry.Raw += "\n" + raw
			entry.Value += "\n" + trimmed
			*lines = (*lines)[:owner+1]
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if name == "" {
				return nil, invalidWrap(lineNo, "empty section name")
			}
			doc.Sections = append(doc.Sections, types.WrapSection{Name: name, Header: raw})
			section = &doc.Sections[len(doc.Sections)-1]
			lines = &section.Lines
		default:
			if section == nil {
				return nil, invalidWrap(lineNo, "entry before first section header")
			}
			key, value, ok := splitWrapEntry(trimmed)
			if !ok {
				return nil, invalidWrap(lineNo, "expected key = value")
			}
			*lines = append(*lines, types.WrapLine{Raw: raw, Key: key, Value: value})
		}
	}
	if len(doc.Sections) == 0 {
		return nil, invalidWrap(0, "wrap file has no section")
	}
	return doc, nil
}

// RenderWrap is the inverse of ParseWrap.
func RenderWrap(doc *types.WrapMetadata) []byte {
	render := func(line types.WrapLine) string {
		text := line.Render()
		if line.Dirty && doc.CRLF {
			text = strings.ReplaceAll(text, "\n", "\r\n") + "\r"
		}
		return text
	}
	var out []string
	for _, line := range doc.Preamble {
		out = append(out, render(line))
	}
	for _, section := range doc.Sections {
		out = append(out, section.Header)
		for _, line := range section.Lines {
			out = append(out, render(line))
		}
	}
	text := strings.Join(out, "\n")
	if doc.TrailingNewline {
		text += "\n"
	}
	return []byte(text)
}

// continuationOwner returns the index of the entry an indented line
// continues, or -1. Blank and comment lines in between do not end the
// value.
func continuationOwner(raw string, lines []types.WrapLine) int {
	if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
		return -1
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].IsEntry() {
			return i
		}
	}
	return -1
}

func splitWrapEntry(line string) (string, string, bool) {
	idx := strings.IndexAny(line, "=:")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func invalidWrap(line int, msg string) error {
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid wrap file: " + msg)
}

var _ ports.WrapStorePort = WrapFileAdapter{}
