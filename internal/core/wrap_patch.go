package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"wrapdb-release/internal/shared"
	"wrapdb-release/internal/types"
)

// PatchURL is the public download location of an asset attached to tag.
func PatchURL(releaseHost string, repository string, tag string, filename string) string {
	host := strings.TrimRight(strings.TrimSpace(releaseHost), "/")
	return fmt.Sprintf("%s/%s/releases/download/%s/%s", host, shared.NormalizeRepository(repository), tag, filename)
}

// PatchDirectory returns the patch_directory of doc and whether it is set.
// The value must name a directory below packagefiles; empty, "." and
// escaping paths are rejected.
func PatchDirectory(doc *types.WrapMetadata) (string, bool, error) {
	value, ok := doc.Get(types.WrapKeyPatchDirectory)
	if !ok {
		return "", false, nil
	}
	name := strings.TrimSpace(value)
	if name == "" || !filepath.IsLocal(name) || filepath.Clean(name) == "." {
		return "", true, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("wrap %s has an invalid patch_directory %q", doc.Package, value))
	}
	return name, true, nil
}

// ApplyPatchArchive points doc at the uploaded patch archive and drops
// the local patch_directory reference.
func ApplyPatchArchive(doc *types.WrapMetadata, release types.PendingRelease, archive types.PackagedArchive, patchURL string) {
	doc.Set(types.WrapKeyDirectory, release.Tag)
	doc.Set(types.WrapKeyWrapdbVersion, release.Version)
	doc.Set(types.WrapKeyPatchURL, patchURL)
	doc.Set(types.WrapKeyPatchHash, archive.SHA256)
	doc.Set(types.WrapKeyPatchFilename, archive.Filename)
	doc.Remove(types.WrapKeyPatchDirectory)
}

// ValidatePublishable checks a document is ready to be uploaded. When
// patched is set the archive triple must be present.
func ValidatePublishable(doc *types.WrapMetadata, patched bool) error {
	if _, ok := doc.Get(types.WrapKeyPatchDirectory); ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("wrap %s still references a local patch_directory", doc.Package))
	}
	if !patched {
		return nil
	}
	for _, key := range []string{types.WrapKeyPatchURL, types.WrapKeyPatchHash, types.WrapKeyPatchFilename} {
		if value, ok := doc.Get(key); !ok || strings.TrimSpace(value) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("wrap %s is missing %s", doc.Package, key))
		}
	}
	return nil
}
