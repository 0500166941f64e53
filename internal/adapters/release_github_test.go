package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrapdb-release/internal/types"
)

func newTestGitHubAdapter(serverURL string) GitHubReleaseAdapter {
	return NewGitHubReleaseAdapter(GitHubReleaseConfig{
		APIURL:     serverURL,
		Repository: "/acme/wraps/",
		Token:      "secret",
		TimeoutSec: 5,
	})
}

func TestNewGitHubReleaseAdapterDefaults(t *testing.T) {
	adapter := NewGitHubReleaseAdapter(GitHubReleaseConfig{Repository: "acme/wraps"})
	assert.Equal(t, DefaultGitHubAPIURL, adapter.APIURL)
	assert.Equal(t, defaultGitHubTimeout, adapter.Timeout)
}

func TestStripUploadURLTemplate(t *testing.T) {
	assert.Equal(t,
		"https://uploads.github.com/repos/acme/wraps/releases/1/assets",
		StripUploadURLTemplate("https://uploads.github.com/repos/acme/wraps/releases/1/assets{?name,label}"))
	assert.Equal(t,
		"https://uploads.github.com/repos/acme/wraps/releases/1/assets",
		StripUploadURLTemplate("https://uploads.github.com/repos/acme/wraps/releases/1/assets{?name}"))
	assert.Equal(t, "https://x/assets", StripUploadURLTemplate("https://x/assets"))
}

func TestGitHubReleaseAdapter_ListReleases(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/acme/wraps/releases", r.URL.Path)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		var items []githubRelease
		switch page {
		case "1":
			for i := 0; i < githubReleasesPerPage; i++ {
				items = append(items, githubRelease{ID: int64(i), TagName: fmt.Sprintf("pkg-%d", i)})
			}
		case "2":
			items = append(items, githubRelease{
				ID:        500,
				TagName:   "zlib-1.3.1-1",
				Name:      "zlib-1.3.1-1",
				UploadURL: "https://uploads.example.com/releases/500/assets{?name,label}",
			})
		}
		_ = json.NewEncoder(w).Encode(items)
	}))
	defer server.Close()

	releases, err := newTestGitHubAdapter(server.URL).ListReleases(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pages)
	require.Len(t, releases, githubReleasesPerPage+1)
	last := releases[len(releases)-1]
	expected := types.RemoteRelease{
		ID:        500,
		TagName:   "zlib-1.3.1-1",
		Name:      "zlib-1.3.1-1",
		UploadURL: "https://uploads.example.com/releases/500/assets",
	}
	if diff := cmp.Diff(expected, last); diff != "" {
		t.Fatalf("unexpected release (-want +got):\n%s", diff)
	}
}

func TestGitHubReleaseAdapter_RepositoryURL(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode([]githubRelease{})
	}))
	defer server.Close()

	for _, repository := range []string{"https://github.com/acme/wraps", "https://github.com/acme/wraps.git", "git@github.com:acme/wraps.git"} {
		adapter := NewGitHubReleaseAdapter(GitHubReleaseConfig{APIURL: server.URL, Repository: repository, Token: "secret"})
		assert.Equal(t, "acme/wraps", adapter.Repository)
		_, err := adapter.ListReleases(t.Context())
		require.NoError(t, err, repository)
	}
	assert.Equal(t, []string{"/repos/acme/wraps/releases", "/repos/acme/wraps/releases", "/repos/acme/wraps/releases"}, paths)
}

func TestGitHubReleaseAdapter_CreateRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/wraps/releases", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload githubCreateRelease
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, githubCreateRelease{TagName: "zlib-1.3.1-1", Name: "zlib-1.3.1-1"}, payload)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(githubRelease{
			ID:        7,
			TagName:   payload.TagName,
			Name:      payload.Name,
			UploadURL: "https://uploads.example.com/releases/7/assets{?name,label}",
		})
	}))
	defer server.Close()

	release, err := newTestGitHubAdapter(server.URL).CreateRelease(t.Context(), "zlib-1.3.1-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), release.ID)
	assert.Equal(t, "https://uploads.example.com/releases/7/assets", release.UploadURL)
}

func TestGitHubReleaseAdapter_UploadAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zlib.wrap")
	require.NoError(t, os.WriteFile(path, []byte("[wrap-file]\n"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/releases/7/assets", r.URL.Path)
		assert.Equal(t, "zlib.wrap", r.URL.Query().Get("name"))
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "[wrap-file]\n", string(body))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(githubAsset{ID: 9, Name: "zlib.wrap", Size: int64(len(body))})
	}))
	defer server.Close()

	asset, err := newTestGitHubAdapter(server.URL).UploadAsset(t.Context(), server.URL+"/releases/7/assets", types.Artifact{
		Path:        path,
		ContentType: types.ContentTypeText,
		Name:        "zlib.wrap",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ReleaseAsset{ID: 9, Name: "zlib.wrap", Size: 12}, asset)
}

func TestGitHubReleaseAdapter_UploadMissingFile(t *testing.T) {
	adapter := newTestGitHubAdapter("http://127.0.0.1:1")
	_, err := adapter.UploadAsset(t.Context(), "http://127.0.0.1:1/assets", types.Artifact{
		Path: filepath.Join(t.TempDir(), "missing.zip"),
		Name: "missing.zip",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open artifact missing.zip")
}

func TestGitHubReleaseAdapter_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	_, err := newTestGitHubAdapter(server.URL).ListReleases(t.Context())
	require.Error(t, err)
	var apiErr *types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "list releases", apiErr.Op)
	assert.Contains(t, apiErr.Body, "Bad credentials")
}

func TestGitHubReleaseAdapter_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	_, err := newTestGitHubAdapter(serverURL).CreateRelease(t.Context(), "zlib-1.3.1-1")
	require.Error(t, err)
	var netErr *types.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "create release", netErr.Op)
}

func TestGitHubReleaseAdapter_EmptyRepository(t *testing.T) {
	adapter := NewGitHubReleaseAdapter(GitHubReleaseConfig{Repository: " / "})
	_, err := adapter.ListReleases(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository is empty")
}
