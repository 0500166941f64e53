package app

import (
	"wrapdb-release/internal/core"
	"wrapdb-release/internal/types"
)

type PlanRequest struct {
	Root          string
	CatalogPath   string
	VersionPolicy string
}

type PlanResult struct {
	CatalogPath string
	Pending     []types.PendingRelease
	Skipped     []string
}

type PublishRequest struct {
	Root          string
	CatalogPath   string
	VersionPolicy string
	Repository    string
	Token         string
	APIURL        string
	ReleaseHost   string
	TimeoutSec    int
	FailFast      bool
}

// PackageFailure is a pending release that could not be published.
type PackageFailure struct {
	Release types.PendingRelease
	State   core.PublishState
	Err     error
}

type PublishResult struct {
	Published []core.PublishReport
	Skipped   []string
	Failed    []PackageFailure
}
