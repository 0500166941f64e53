package app

import (
	"os"

	"wrapdb-release/internal/adapters"
	"wrapdb-release/internal/ports"
)

type Service struct {
	Catalog       ports.CatalogPort
	Archiver      ports.PatchArchivePort
	NewTagSource  func(root string) ports.TagSourcePort
	NewWrapStore  func(root string) ports.WrapStorePort
	NewReleaseAPI func(cfg adapters.GitHubReleaseConfig) ports.ReleaseAPIPort
	MakeWorkDir   func() (string, error)
	RemoveWorkDir func(dir string) error
}

func NewService() Service {
	return Service{
		Catalog:  adapters.NewCatalogFileAdapter(),
		Archiver: adapters.NewPatchArchiveAdapter(),
		NewTagSource: func(root string) ports.TagSourcePort {
			return adapters.NewGitTagAdapter(root)
		},
		NewWrapStore: func(root string) ports.WrapStorePort {
			return adapters.NewWrapFileAdapter(root)
		},
		NewReleaseAPI: func(cfg adapters.GitHubReleaseConfig) ports.ReleaseAPIPort {
			return adapters.NewGitHubReleaseAdapter(cfg)
		},
		MakeWorkDir: func() (string, error) {
			return os.MkdirTemp("", "wrapdb-release-*")
		},
		RemoveWorkDir: os.RemoveAll,
	}
}
