package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"wrapdb-release/internal/ports"
	"wrapdb-release/internal/shared"
	"wrapdb-release/internal/types"
)

const (
	DefaultGitHubAPIURL     = "https://api.github.com"
	defaultGitHubTimeout    = 60 * time.Second
	githubReleasesPerPage   = 100
	githubUploadURLTemplate = "{?name,label}"
	githubAcceptHeader      = "application/vnd.github+json"
	maxErrorBodyBytes       = 64 << 10
)

type GitHubReleaseConfig struct {
	APIURL     string
	Repository string
	Token      string
	TimeoutSec int
}

// GitHubReleaseAdapter talks to the GitHub releases REST API of one
// repository.
type GitHubReleaseAdapter struct {
	APIURL     string
	Repository string
	Token      string
	Timeout    time.Duration
	Client     *http.Client
}

func NewGitHubReleaseAdapter(cfg GitHubReleaseConfig) GitHubReleaseAdapter {
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultGitHubAPIURL
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultGitHubTimeout
	}
	return GitHubReleaseAdapter{
		APIURL:     apiURL,
		Repository: shared.NormalizeRepository(cfg.Repository),
		Token:      strings.TrimSpace(cfg.Token),
		Timeout:    timeout,
		Client:     &http.Client{Timeout: timeout},
	}
}

type githubRelease struct {
	ID        int64  `json:"id"`
	TagName   string `json:"tag_name"`
	Name      string `json:"name"`
	UploadURL string `json:"upload_url"`
}

type githubAsset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type githubCreateRelease struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
}

func (a GitHubReleaseAdapter) releasesURL() string {
	return fmt.Sprintf("%s/repos/%s/releases", a.APIURL, a.Repository)
}

func (a GitHubReleaseAdapter) ListReleases(ctx context.Context) ([]types.RemoteRelease, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	var releases []types.RemoteRelease
	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s?per_page=%d&page=%d", a.releasesURL(), githubReleasesPerPage, page)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, requestError("failed to create release list request", err)
		}
		body, err := a.do(req, "list releases")
		if err != nil {
			return nil, err
		}
		var batch []githubRelease
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to parse release list").
				WithCause(err)
		}
		for _, item := range batch {
			releases = append(releases, item.toRemote())
		}
		log.Debug().
			Int("page", page).
			Int("count", len(batch)).
			Msg("listed releases")
		if len(batch) < githubReleasesPerPage {
			return releases, nil
		}
	}
}

func (a GitHubReleaseAdapter) CreateRelease(ctx context.Context, tag string) (types.RemoteRelease, error) {
	if err := a.validate(); err != nil {
		return types.RemoteRelease{}, err
	}
	payload, err := json.Marshal(githubCreateRelease{TagName: tag, Name: tag})
	if err != nil {
		return types.RemoteRelease{}, requestError("failed to encode release payload", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.releasesURL(), bytes.NewReader(payload))
	if err != nil {
		return types.RemoteRelease{}, requestError("failed to create release request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	body, err := a.do(req, "create release")
	if err != nil {
		return types.RemoteRelease{}, err
	}
	var created githubRelease
	if err := json.Unmarshal(body, &created); err != nil {
		return types.RemoteRelease{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse created release").
			WithCause(err)
	}
	return created.toRemote(), nil
}

func (a GitHubReleaseAdapter) UploadAsset(ctx context.Context, uploadURL string, artifact types.Artifact) (types.ReleaseAsset, error) {
	file, err := os.Open(artifact.Path)
	if err != nil {
		return types.ReleaseAsset{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to open artifact %s", artifact.Name)).
			WithCause(err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return types.ReleaseAsset{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to stat artifact %s", artifact.Name)).
			WithCause(err)
	}
	target := fmt.Sprintf("%s?%s", uploadURL, url.Values{"name": {artifact.Name}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, file)
	if err != nil {
		return types.ReleaseAsset{}, requestError("failed to create upload request", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", artifact.ContentType)
	body, err := a.do(req, "upload "+artifact.Name)
	if err != nil {
		return types.ReleaseAsset{}, err
	}
	var asset githubAsset
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &asset); err != nil {
			return types.ReleaseAsset{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to parse uploaded asset").
				WithCause(err)
		}
	}
	return types.ReleaseAsset{
		ID:                 asset.ID,
		Name:               asset.Name,
		Size:               asset.Size,
		BrowserDownloadURL: asset.BrowserDownloadURL,
	}, nil
}

// do sends req with credentials and returns the body of a 2xx response.
// Transport failures become *types.NetworkError, other statuses
// *types.APIError.
func (a GitHubReleaseAdapter) do(req *http.Request, op string) ([]byte, error) {
	a.applyAuth(req)
	req.Header.Set("Accept", githubAcceptHeader)
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: a.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &types.NetworkError{Op: op, URL: req.URL.Redacted(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &types.APIError{
			Op:     op,
			URL:    req.URL.Redacted(),
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.NetworkError{Op: op, URL: req.URL.Redacted(), Err: err}
	}
	return body, nil
}

func (a GitHubReleaseAdapter) applyAuth(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "token "+a.Token)
}

func (a GitHubReleaseAdapter) validate() error {
	if a.Repository == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository is empty")
	}
	return nil
}

func (r githubRelease) toRemote() types.RemoteRelease {
	return types.RemoteRelease{
		ID:        r.ID,
		TagName:   r.TagName,
		Name:      r.Name,
		UploadURL: StripUploadURLTemplate(r.UploadURL),
	}
}

// StripUploadURLTemplate removes the RFC 6570 query template GitHub
// appends to upload_url.
func StripUploadURLTemplate(raw string) string {
	trimmed := strings.Replace(raw, githubUploadURLTemplate, "", 1)
	if idx := strings.Index(trimmed, "{"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

func requestError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(cause)
}

var _ ports.ReleaseAPIPort = GitHubReleaseAdapter{}
