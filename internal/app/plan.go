package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"wrapdb-release/internal/adapters"
	"wrapdb-release/internal/core"
	"wrapdb-release/internal/types"
)

type releasePlan struct {
	Root    string
	Catalog types.ReleaseCatalog
	Pending []types.PendingRelease
	Skipped []string
}

// Plan reports which catalog versions still need a release without
// touching the network.
func (s Service) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	plan, err := s.plan(ctx, req.Root, req.CatalogPath, req.VersionPolicy)
	if err != nil {
		return PlanResult{}, err
	}
	return PlanResult{
		CatalogPath: plan.Catalog.Path,
		Pending:     plan.Pending,
		Skipped:     plan.Skipped,
	}, nil
}

func (s Service) plan(ctx context.Context, root string, catalogPath string, policyName string) (releasePlan, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return releasePlan{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project root is required")
	}
	policy, ok := types.ParseVersionPolicy(strings.ToLower(strings.TrimSpace(policyName)))
	if !ok {
		return releasePlan{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported version policy %q (expected auto, first, last or highest)", policyName))
	}
	if info, err := os.Stat(adapters.SubprojectsDir(root)); err != nil || !info.IsDir() {
		return releasePlan{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("unable to locate subprojects dir in %s", root))
	}
	path, err := resolveCatalogPath(root, catalogPath)
	if err != nil {
		return releasePlan{}, err
	}
	catalog, err := s.Catalog.LoadCatalog(path)
	if err != nil {
		return releasePlan{}, err
	}
	log.Debug().
		Str("catalog", path).
		Strs("packages", catalog.Packages()).
		Msg("catalog loaded")
	existing, err := s.NewTagSource(root).ListTags(ctx)
	if err != nil {
		return releasePlan{}, err
	}
	pending, err := core.NewTagPlanner(policy).PendingTags(catalog, existing)
	if err != nil {
		return releasePlan{}, err
	}
	return releasePlan{
		Root:    root,
		Catalog: catalog,
		Pending: pending,
		Skipped: skippedTags(catalog, pending, policy),
	}, nil
}

func resolveCatalogPath(root string, catalogPath string) (string, error) {
	catalogPath = strings.TrimSpace(catalogPath)
	if catalogPath == "" {
		return adapters.FindCatalog(root)
	}
	if filepath.IsAbs(catalogPath) {
		return catalogPath, nil
	}
	return filepath.Join(root, catalogPath), nil
}

func skippedTags(catalog types.ReleaseCatalog, pending []types.PendingRelease, policy types.VersionPolicy) []string {
	waiting := make(map[string]struct{}, len(pending))
	for _, release := range pending {
		waiting[release.Package] = struct{}{}
	}
	var skipped []string
	for _, entry := range catalog.Entries {
		if _, ok := waiting[entry.Package]; ok {
			continue
		}
		version, err := core.SelectVersion(entry, policy)
		if err != nil {
			continue
		}
		skipped = append(skipped, types.ReleaseTag(entry.Package, version))
	}
	return skipped
}
