package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrapdb-release/internal/types"
)

func testCatalog() types.ReleaseCatalog {
	return types.ReleaseCatalog{Entries: []types.CatalogEntry{
		{Package: "zlib", Versions: []string{"1.3.0-1", "1.3.1-1"}, Shape: types.CatalogShapeList},
		{Package: "expat", Versions: []string{"2.6.2-1", "2.6.1-1"}, Shape: types.CatalogShapeMap},
		{Package: "foo", Versions: []string{"1.0.0"}, Shape: types.CatalogShapeList},
	}}
}

func TestPendingTagsSkipsExisting(t *testing.T) {
	pending, err := NewTagPlanner(types.VersionPolicyAuto).PendingTags(testCatalog(), []string{"expat-2.6.2-1", "unrelated-1.0"})
	require.NoError(t, err)

	expected := []types.PendingRelease{
		{Package: "zlib", Version: "1.3.1-1", Tag: "zlib-1.3.1-1"},
		{Package: "foo", Version: "1.0.0", Tag: "foo-1.0.0"},
	}
	if diff := cmp.Diff(expected, pending); diff != "" {
		t.Fatalf("unexpected pending releases (-want +got):\n%s", diff)
	}
}

func TestPendingTagsOneEntryPerUntaggedPackage(t *testing.T) {
	catalog := testCatalog()
	existingSets := [][]string{
		nil,
		{"zlib-1.3.1-1"},
		{"zlib-1.3.0-1", "expat-2.6.1-1"},
		{"zlib-1.3.1-1", "expat-2.6.2-1", "foo-1.0.0"},
	}
	for _, policy := range []types.VersionPolicy{types.VersionPolicyFirst, types.VersionPolicyLast, types.VersionPolicyAuto} {
		for _, existing := range existingSets {
			pending, err := NewTagPlanner(policy).PendingTags(catalog, existing)
			require.NoError(t, err)

			tagged := map[string]bool{}
			for _, tag := range existing {
				tagged[tag] = true
			}
			expectedCount := 0
			for _, entry := range catalog.Entries {
				version, err := SelectVersion(entry, policy)
				require.NoError(t, err)
				if !tagged[types.ReleaseTag(entry.Package, version)] {
					expectedCount++
				}
			}
			assert.Len(t, pending, expectedCount, "policy=%s existing=%v", policy, existing)
			seen := map[string]bool{}
			for _, release := range pending {
				assert.False(t, tagged[release.Tag], "pending contains existing tag %s", release.Tag)
				assert.False(t, seen[release.Package], "package %s planned twice", release.Package)
				seen[release.Package] = true
				assert.Equal(t, types.ReleaseTag(release.Package, release.Version), release.Tag)
			}
		}
	}
}

func TestPendingTagsEmptyCatalog(t *testing.T) {
	pending, err := NewTagPlanner(types.VersionPolicyAuto).PendingTags(types.ReleaseCatalog{}, []string{"foo-1.0.0"})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPendingTagsPropagatesPolicyErrors(t *testing.T) {
	catalog := types.ReleaseCatalog{Entries: []types.CatalogEntry{
		{Package: "bad", Versions: []string{"not a version!"}, Shape: types.CatalogShapeList},
	}}
	_, err := NewTagPlanner(types.VersionPolicyHighest).PendingTags(catalog, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `package bad: invalid version "not a version!"`)
}
