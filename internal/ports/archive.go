package ports

import "wrapdb-release/internal/types"

// PatchArchivePort packages a patch directory into a zip archive whose
// single root entry is named after root.
type PatchArchivePort interface {
	Build(sourceDir string, workDir string, root string) (types.PackagedArchive, error)
}
