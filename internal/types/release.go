package types

import "fmt"

const (
	ContentTypeZip  = "application/zip"
	ContentTypeText = "text/plain"
)

// ReleaseTag builds the unique release identifier for a package version.
func ReleaseTag(pkg string, version string) string {
	return fmt.Sprintf("%s-%s", pkg, version)
}

// PendingRelease is a catalog version that has no tag yet.
type PendingRelease struct {
	Package string
	Version string
	Tag     string
}

// Artifact is a local file scheduled for upload to a release.
type Artifact struct {
	Path        string
	ContentType string
	Name        string
}

// RemoteRelease is a release object on the hosting provider.
type RemoteRelease struct {
	ID        int64
	TagName   string
	Name      string
	UploadURL string
}

// ReleaseAsset is a file attached to a RemoteRelease.
type ReleaseAsset struct {
	ID                 int64
	Name               string
	Size               int64
	BrowserDownloadURL string
}

// PackagedArchive is the output of the patch archive builder.
type PackagedArchive struct {
	Path     string
	Filename string
	SHA256   string
}
