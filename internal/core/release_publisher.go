package core

import (
	"context"
	"errors"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"wrapdb-release/internal/ports"
	"wrapdb-release/internal/types"
)

// PublishState is the progress of a single tag through the publisher.
type PublishState string

const (
	StatePreparing        PublishState = "preparing"
	StateResolvingRelease PublishState = "resolving_release"
	StateCreatingRelease  PublishState = "creating_release"
	StateUploading        PublishState = "uploading"
	StateDone             PublishState = "done"
	StateFailed           PublishState = "failed"
)

// PublishReport describes what happened to one tag. FailedIn is the
// state that was active when the publisher moved to StateFailed.
type PublishReport struct {
	Tag      string
	State    PublishState
	FailedIn PublishState
	Created  bool
	Assets   []types.ReleaseAsset
}

type ReleasePublisher struct {
	API ports.ReleaseAPIPort
}

func NewReleasePublisher(api ports.ReleaseAPIPort) ReleasePublisher {
	return ReleasePublisher{API: api}
}

// ResolveOrCreateRelease returns the release tagged tag, creating it
// only when the remote list has no exact match.
func (p ReleasePublisher) ResolveOrCreateRelease(ctx context.Context, tag string) (types.RemoteRelease, bool, error) {
	release, created, _, err := p.resolve(ctx, tag)
	return release, created, err
}

func (p ReleasePublisher) resolve(ctx context.Context, tag string) (types.RemoteRelease, bool, PublishState, error) {
	assert.NotEmpty(ctx, tag, "release tag must be set")
	releases, err := p.API.ListReleases(ctx)
	if err != nil {
		return types.RemoteRelease{}, false, StateResolvingRelease, err
	}
	for _, release := range releases {
		if release.TagName == tag {
			log.Debug().
				Str("tag", tag).
				Int64("release_id", release.ID).
				Msg("reusing existing release")
			return release, false, StateResolvingRelease, nil
		}
	}
	created, err := p.API.CreateRelease(ctx, tag)
	if err != nil {
		return types.RemoteRelease{}, false, StateCreatingRelease, err
	}
	log.Debug().
		Str("tag", tag).
		Int64("release_id", created.ID).
		Msg("created release")
	return created, true, StateCreatingRelease, nil
}

// UploadAll attaches artifacts to the release in the given order and
// stops at the first failure. Nothing already uploaded is rolled back.
func (p ReleasePublisher) UploadAll(ctx context.Context, tag string, uploadURL string, artifacts []types.Artifact) ([]types.ReleaseAsset, error) {
	if uploadURL == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("release %s has no upload url", tag))
	}
	assets := make([]types.ReleaseAsset, 0, len(artifacts))
	for _, artifact := range artifacts {
		log.Debug().
			Str("tag", tag).
			Str("artifact", artifact.Name).
			Str("content_type", artifact.ContentType).
			Msg("uploading artifact")
		asset, err := p.API.UploadAsset(ctx, uploadURL, artifact)
		if err != nil {
			var apiErr *types.APIError
			if errors.As(err, &apiErr) {
				return assets, &types.UploadError{Tag: tag, Artifact: artifact.Name, APIError: *apiErr}
			}
			return assets, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// Publish drives one tag from release lookup to the last upload.
func (p ReleasePublisher) Publish(ctx context.Context, tag string, artifacts []types.Artifact) (PublishReport, error) {
	report := PublishReport{Tag: tag, State: StateResolvingRelease}
	release, created, state, err := p.resolve(ctx, tag)
	report.Created = created
	if err != nil {
		return report.fail(state), err
	}
	report.State = StateUploading
	assets, err := p.UploadAll(ctx, tag, release.UploadURL, artifacts)
	report.Assets = assets
	if err != nil {
		return report.fail(StateUploading), err
	}
	report.State = StateDone
	return report, nil
}

func (r PublishReport) fail(in PublishState) PublishReport {
	r.FailedIn = in
	r.State = StateFailed
	return r
}
