package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"wrapdb-release/internal/adapters"
	"wrapdb-release/internal/core"
	"wrapdb-release/internal/ports"
	"wrapdb-release/internal/shared"
	"wrapdb-release/internal/types"
)

// DefaultReleaseHost is the public base for release download URLs.
const DefaultReleaseHost = "https://github.com"

// Publish releases every pending catalog version. Packages are handled
// one at a time in catalog order. A failing package is recorded and the
// run moves on unless FailFast is set.
func (s Service) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	repository := shared.NormalizeRepository(req.Repository)
	if repository == "" {
		return PublishResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository is required")
	}
	if strings.TrimSpace(req.Token) == "" {
		return PublishResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("access token is required")
	}
	releaseHost := strings.TrimSpace(req.ReleaseHost)
	if releaseHost == "" {
		releaseHost = DefaultReleaseHost
	}
	plan, err := s.plan(ctx, req.Root, req.CatalogPath, req.VersionPolicy)
	if err != nil {
		return PublishResult{}, err
	}
	result := PublishResult{Skipped: plan.Skipped}
	if len(plan.Pending) == 0 {
		log.Info().
			Int("skipped", len(plan.Skipped)).
			Msg("nothing to release")
		return result, nil
	}

	api := s.NewReleaseAPI(adapters.GitHubReleaseConfig{
		APIURL:     req.APIURL,
		Repository: repository,
		Token:      req.Token,
		TimeoutSec: req.TimeoutSec,
	})
	run := releaseRun{
		service:     s,
		wraps:       s.NewWrapStore(plan.Root),
		publisher:   core.NewReleasePublisher(api),
		repository:  repository,
		releaseHost: releaseHost,
	}
	for _, pending := range plan.Pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		log.Info().
			Str("tag", pending.Tag).
			Msg("releasing")
		report, err := run.release(ctx, pending)
		if err != nil {
			log.Warn().
				Err(err).
				Str("tag", pending.Tag).
				Str("state", string(report.FailedIn)).
				Msg("release failed")
			result.Failed = append(result.Failed, PackageFailure{Release: pending, State: report.FailedIn, Err: err})
			if req.FailFast {
				return result, err
			}
			continue
		}
		log.Info().
			Str("tag", pending.Tag).
			Bool("created", report.Created).
			Int("assets", len(report.Assets)).
			Msg("released")
		result.Published = append(result.Published, report)
	}
	if len(result.Failed) > 0 {
		return result, failureSummary(result.Failed, len(plan.Pending))
	}
	return result, nil
}

type releaseRun struct {
	service     Service
	wraps       ports.WrapStorePort
	publisher   core.ReleasePublisher
	repository  string
	releaseHost string
}

// release builds the artifact set of one tag in a scratch directory and
// hands it to the publisher. The scratch directory is removed on every
// exit path.
func (r releaseRun) release(ctx context.Context, pending types.PendingRelease) (core.PublishReport, error) {
	report := core.PublishReport{Tag: pending.Tag, State: core.StateFailed, FailedIn: core.StatePreparing}
	doc, err := r.wraps.Load(pending.Package)
	if err != nil {
		return report, err
	}
	workDir, err := r.service.MakeWorkDir()
	if err != nil {
		return report, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create work directory").
			WithCause(err)
	}
	defer func() {
		if err := r.service.RemoveWorkDir(workDir); err != nil {
			log.Warn().
				Err(err).
				Str("dir", workDir).
				Msg("failed to remove work directory")
		}
	}()

	var artifacts []types.Artifact
	patchDir, patched, err := core.PatchDirectory(doc)
	if err != nil {
		return report, err
	}
	if patched {
		archive, err := r.service.Archiver.Build(r.wraps.PatchDir(patchDir), workDir, pending.Tag)
		if err != nil {
			return report, err
		}
		core.ApplyPatchArchive(doc, pending, archive, core.PatchURL(r.releaseHost, r.repository, pending.Tag, archive.Filename))
		artifacts = append(artifacts, types.Artifact{
			Path:        archive.Path,
			ContentType: types.ContentTypeZip,
			Name:        archive.Filename,
		})
		log.Debug().
			Str("tag", pending.Tag).
			Str("archive", archive.Filename).
			Str("sha256", archive.SHA256).
			Msg("built patch archive")
	}
	if err := core.ValidatePublishable(doc, patched); err != nil {
		return report, err
	}
	wrapPath, err := r.wraps.Write(doc, workDir)
	if err != nil {
		return report, err
	}
	artifacts = append(artifacts, types.Artifact{
		Path:        wrapPath,
		ContentType: types.ContentTypeText,
		Name:        pending.Package + ".wrap",
	})
	return r.publisher.Publish(ctx, pending.Tag, artifacts)
}

func failureSummary(failures []PackageFailure, total int) error {
	tags := make([]string, 0, len(failures))
	causes := make([]error, 0, len(failures))
	for _, failure := range failures {
		tags = append(tags, failure.Release.Tag)
		causes = append(causes, fmt.Errorf("%s: %w", failure.Release.Tag, failure.Err))
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%d of %d releases failed: %s", len(failures), total, strings.Join(tags, ", "))).
		WithCause(errors.Join(causes...))
}
