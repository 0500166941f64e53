package types

// CatalogEntry is one package of a ReleaseCatalog with its versions in
// file order.
type CatalogEntry struct {
	Package  string
	Versions []string
	Shape    CatalogShape
}

// ReleaseCatalog lists the packages eligible for release in file order.
type ReleaseCatalog struct {
	Path    string
	Entries []CatalogEntry
}

func (c ReleaseCatalog) Packages() []string {
	names := make([]string, 0, len(c.Entries))
	for _, entry := range c.Entries {
		names = append(names, entry.Package)
	}
	return names
}
