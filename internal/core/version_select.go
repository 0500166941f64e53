package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"

	"wrapdb-release/internal/types"
)

// SelectVersion picks the version of entry that is eligible for release
// under policy.
func SelectVersion(entry types.CatalogEntry, policy types.VersionPolicy) (string, error) {
	if len(entry.Versions) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package %s has no versions", entry.Package))
	}
	switch policy {
	case types.VersionPolicyAuto, "":
		if entry.Shape == types.CatalogShapeList {
			return entry.Versions[len(entry.Versions)-1], nil
		}
		return entry.Versions[0], nil
	case types.VersionPolicyFirst:
		return entry.Versions[0], nil
	case types.VersionPolicyLast:
		return entry.Versions[len(entry.Versions)-1], nil
	case types.VersionPolicyHighest:
		return highestVersion(entry)
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown version policy %q", policy))
	}
}

// highestVersion compares wrap versions (upstream-revision) with Debian
// ordering rules. Ties keep the earliest entry.
func highestVersion(entry types.CatalogEntry) (string, error) {
	var best debversion.Version
	bestRaw := ""
	for i, raw := range entry.Versions {
		parsed, err := debversion.NewVersion(raw)
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("package %s: invalid version %q", entry.Package, raw)).
				WithCause(err)
		}
		if i == 0 || parsed.GreaterThan(best) {
			best = parsed
			bestRaw = raw
		}
	}
	return bestRaw, nil
}
