package core

import (
	"github.com/rs/zerolog/log"

	"wrapdb-release/internal/types"
)

type TagPlanner struct {
	Policy types.VersionPolicy
}

func NewTagPlanner(policy types.VersionPolicy) TagPlanner {
	return TagPlanner{Policy: policy}
}

// PendingTags returns, in catalog order, one release per package whose
// selected version has no tag in existing.
func (p TagPlanner) PendingTags(catalog types.ReleaseCatalog, existing []string) ([]types.PendingRelease, error) {
	tagged := make(map[string]struct{}, len(existing))
	for _, tag := range existing {
		tagged[tag] = struct{}{}
	}
	var pending []types.PendingRelease
	for _, entry := range catalog.Entries {
		version, err := SelectVersion(entry, p.Policy)
		if err != nil {
			return nil, err
		}
		tag := types.ReleaseTag(entry.Package, version)
		if _, ok := tagged[tag]; ok {
			log.Info().
				Str("tag", tag).
				Msg("already tagged, skipping")
			continue
		}
		pending = append(pending, types.PendingRelease{
			Package: entry.Package,
			Version: version,
			Tag:     tag,
		})
	}
	return pending, nil
}
