package ports

import (
	"context"

	"wrapdb-release/internal/types"
)

// ReleaseAPIPort is the remote release-per-tag API.
type ReleaseAPIPort interface {
	ListReleases(ctx context.Context) ([]types.RemoteRelease, error)
	CreateRelease(ctx context.Context, tag string) (types.RemoteRelease, error)
	UploadAsset(ctx context.Context, uploadURL string, artifact types.Artifact) (types.ReleaseAsset, error)
}
