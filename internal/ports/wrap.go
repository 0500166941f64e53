package ports

import "wrapdb-release/internal/types"

// WrapStorePort reads and writes per-package wrap metadata documents.
type WrapStorePort interface {
	// Load reads subprojects/<package>.wrap. A missing file yields a
	// CodeNotFound error.
	Load(pkg string) (*types.WrapMetadata, error)

	// Serialize renders the document. Unmodified documents round-trip
	// byte for byte.
	Serialize(doc *types.WrapMetadata) []byte

	// Write serializes doc into dir as <package>.wrap and returns the path.
	Write(doc *types.WrapMetadata, dir string) (string, error)

	// PatchDir resolves a patch_directory value to a local path.
	PatchDir(name string) string
}
