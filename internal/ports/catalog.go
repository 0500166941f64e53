package ports

import "wrapdb-release/internal/types"

// CatalogPort loads the package to version release catalog.
type CatalogPort interface {
	LoadCatalog(path string) (types.ReleaseCatalog, error)
}
