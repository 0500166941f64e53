package core

import (
	"context"
	"fmt"

	"wrapdb-release/internal/types"
)

// fakeReleaseAPI records every call and keeps created releases so that a
// later list sees them.
type fakeReleaseAPI struct {
	releases  []types.RemoteRelease
	calls     []string
	listErr   error
	createErr error
	uploadErr map[string]error
	nextID    int64
}

func (f *fakeReleaseAPI) ListReleases(_ context.Context) ([]types.RemoteRelease, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]types.RemoteRelease(nil), f.releases...), nil
}

func (f *fakeReleaseAPI) CreateRelease(_ context.Context, tag string) (types.RemoteRelease, error) {
	f.calls = append(f.calls, "create "+tag)
	if f.createErr != nil {
		return types.RemoteRelease{}, f.createErr
	}
	f.nextID++
	release := types.RemoteRelease{
		ID:        f.nextID,
		TagName:   tag,
		Name:      tag,
		UploadURL: fmt.Sprintf("https://uploads.example.com/releases/%d/assets", f.nextID),
	}
	f.releases = append(f.releases, release)
	return release, nil
}

func (f *fakeReleaseAPI) UploadAsset(_ context.Context, uploadURL string, artifact types.Artifact) (types.ReleaseAsset, error) {
	f.calls = append(f.calls, "upload "+artifact.Name+" -> "+uploadURL)
	if err := f.uploadErr[artifact.Name]; err != nil {
		return types.ReleaseAsset{}, err
	}
	return types.ReleaseAsset{Name: artifact.Name}, nil
}
