package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/jsonc"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"wrapdb-release/internal/ports"
	"wrapdb-release/internal/types"
)

// DefaultCatalogNames are tried in order when no catalog path is given.
var DefaultCatalogNames = []string{"releases.json", "wrapdb.json", "releases.yaml", "releases.yml"}

type CatalogFileAdapter struct{}

func NewCatalogFileAdapter() CatalogFileAdapter {
	return CatalogFileAdapter{}
}

// FindCatalog returns the first default catalog present under root.
func FindCatalog(root string) (string, error) {
	for _, name := range DefaultCatalogNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no release catalog found in %s (tried %s)", root, strings.Join(DefaultCatalogNames, ", ")))
}

func (a CatalogFileAdapter) LoadCatalog(path string) (types.ReleaseCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ReleaseCatalog{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("release catalog not found").
			WithCause(err)
	}
	var entries []types.CatalogEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = parseYAMLCatalog(data)
	default:
		entries, err = parseJSONCatalog(data)
	}
	if err != nil {
		return types.ReleaseCatalog{}, err
	}
	return types.ReleaseCatalog{Path: path, Entries: entries}, nil
}

func parseJSONCatalog(data []byte) ([]types.CatalogEntry, error) {
	root := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(jsonc.ToJSON(data), root); err != nil {
		return nil, invalidCatalog("failed to parse catalog json", err)
	}
	entries := make([]types.CatalogEntry, 0, root.Len())
	for pair := root.Oldest(); pair != nil; pair = pair.Next() {
		entry, err := parseJSONCatalogEntry(pair.Key, pair.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseJSONCatalogEntry(pkg string, raw json.RawMessage) (types.CatalogEntry, error) {
	entry := types.CatalogEntry{Package: pkg}
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		var versions []string
		if err := json.Unmarshal(trimmed, &versions); err != nil {
			return entry, invalidCatalog(fmt.Sprintf("package %s: versions must be strings", pkg), err)
		}
		entry.Shape = types.CatalogShapeList
		entry.Versions = versions
	case bytes.HasPrefix(trimmed, []byte("{")):
		versions := orderedmap.New[string, json.RawMessage]()
		if err := json.Unmarshal(trimmed, versions); err != nil {
			return entry, invalidCatalog(fmt.Sprintf("package %s: invalid version map", pkg), err)
		}
		entry.Shape = types.CatalogShapeMap
		for pair := versions.Oldest(); pair != nil; pair = pair.Next() {
			entry.Versions = append(entry.Versions, pair.Key)
		}
	default:
		return entry, invalidCatalog(fmt.Sprintf("package %s: expected a version list or map", pkg), nil)
	}
	return entry, validateCatalogEntry(entry)
}

func parseYAMLCatalog(data []byte) ([]types.CatalogEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalidCatalog("failed to parse catalog yaml", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, invalidCatalog("catalog must be a mapping of package names", nil)
	}
	entries := make([]types.CatalogEntry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		pkg := root.Content[i].Value
		value := root.Content[i+1]
		entry := types.CatalogEntry{Package: pkg}
		switch value.Kind {
		case yaml.SequenceNode:
			entry.Shape = types.CatalogShapeList
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, invalidCatalog(fmt.Sprintf("package %s: versions must be strings", pkg), nil)
				}
				entry.Versions = append(entry.Versions, item.Value)
			}
		case yaml.MappingNode:
			entry.Shape = types.CatalogShapeMap
			for j := 0; j+1 < len(value.Content); j += 2 {
				entry.Versions = append(entry.Versions, value.Content[j].Value)
			}
		default:
			return nil, invalidCatalog(fmt.Sprintf("package %s: expected a version list or map", pkg), nil)
		}
		if err := validateCatalogEntry(entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func validateCatalogEntry(entry types.CatalogEntry) error {
	if strings.TrimSpace(entry.Package) == "" {
		return invalidCatalog("catalog contains an empty package name", nil)
	}
	if len(entry.Versions) == 0 {
		return invalidCatalog(fmt.Sprintf("package %s has no versions", entry.Package), nil)
	}
	for _, version := range entry.Versions {
		if strings.TrimSpace(version) == "" {
			return invalidCatalog(fmt.Sprintf("package %s has an empty version", entry.Package), nil)
		}
	}
	return nil
}

func invalidCatalog(msg string, cause error) error {
	err := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}

var _ ports.CatalogPort = CatalogFileAdapter{}
