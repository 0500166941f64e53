package types

// CatalogShape records which on-disk layout a catalog entry was read from.
type CatalogShape string

const (
	// CatalogShapeMap is a package mapped to an object keyed by version.
	CatalogShapeMap CatalogShape = "map"
	// CatalogShapeList is a package mapped to an array of version strings.
	CatalogShapeList CatalogShape = "list"
)

type VersionPolicy string

const (
	// VersionPolicyAuto picks first for map-shaped entries and last for
	// list-shaped entries.
	VersionPolicyAuto    VersionPolicy = "auto"
	VersionPolicyFirst   VersionPolicy = "first"
	VersionPolicyLast    VersionPolicy = "last"
	VersionPolicyHighest VersionPolicy = "highest"
)

func ParseVersionPolicy(value string) (VersionPolicy, bool) {
	switch VersionPolicy(value) {
	case "":
		return VersionPolicyAuto, true
	case VersionPolicyAuto, VersionPolicyFirst, VersionPolicyLast, VersionPolicyHighest:
		return VersionPolicy(value), true
	default:
		return "", false
	}
}
