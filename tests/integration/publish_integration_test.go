package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrapdb-release/internal/app"
	"wrapdb-release/internal/ports"
	"wrapdb-release/tests/testutil"
)

type recordedRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Auth        string
}

// fakeGitHub serves the subset of the releases API the publisher uses.
type fakeGitHub struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []recordedRequest
	releases []map[string]any
	uploads  map[string][]byte
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{uploads: map[string][]byte{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Auth:        r.Header.Get("Authorization"),
	})
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/wraps/releases":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.releases)
	case r.Method == http.MethodPost && r.URL.Path == "/repos/acme/wraps/releases":
		var payload struct {
			TagName string `json:"tag_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id := len(f.releases) + 1
		release := map[string]any{
			"id":         id,
			"tag_name":   payload.TagName,
			"name":       payload.TagName,
			"upload_url": fmt.Sprintf("%s/uploads/%d/assets{?name,label}", f.server.URL, id),
		}
		f.releases = append(f.releases, release)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(release)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/uploads/"):
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := r.URL.Query().Get("name")
		f.uploads[name] = data
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": len(f.uploads), "name": name, "size": len(data)})
	default:
		http.NotFound(w, r)
	}
}

type staticTags []string

func (s staticTags) ListTags(_ context.Context) ([]string, error) {
	return s, nil
}

func newService(tags staticTags) app.Service {
	svc := app.NewService()
	svc.NewTagSource = func(_ string) ports.TagSourcePort {
		return tags
	}
	return svc
}

func TestPublishAgainstFakeGitHub(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"releases.json":                            `{"foo": ["0.9.0", "1.0.0"], "bar": ["2.0"]}`,
		"subprojects/foo.wrap":                     "[wrap-file]\nsource_url = https://example.com/foo.tar.gz\npatch_directory = foo\n",
		"subprojects/bar.wrap":                     "[wrap-git]\nurl = https://example.com/bar.git\nrevision = v2.0\n",
		"subprojects/packagefiles/foo/meson.build": "project('foo', 'c')\n",
	})
	gh := newFakeGitHub(t)

	result, err := newService(staticTags{"bar-2.0"}).Publish(context.Background(), app.PublishRequest{
		Root:        root,
		Repository:  "acme/wraps",
		Token:       "secret",
		APIURL:      gh.server.URL,
		ReleaseHost: "https://downloads.example.com",
		TimeoutSec:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar-2.0"}, result.Skipped)
	require.Len(t, result.Published, 1)
	assert.Equal(t, "foo-1.0.0", result.Published[0].Tag)

	expected := []recordedRequest{
		{Method: http.MethodGet, Path: "/repos/acme/wraps/releases", Query: "per_page=100&page=1", Auth: "token secret"},
		{Method: http.MethodPost, Path: "/repos/acme/wraps/releases", ContentType: "application/json", Auth: "token secret"},
		{Method: http.MethodPost, Path: "/uploads/1/assets", Query: "name=foo-1.0.0-patch.zip", ContentType: "application/zip", Auth: "token secret"},
		{Method: http.MethodPost, Path: "/uploads/1/assets", Query: "name=foo.wrap", ContentType: "text/plain", Auth: "token secret"},
	}
	if diff := cmp.Diff(expected, gh.requests); diff != "" {
		t.Fatalf("unexpected requests (-want +got):\n%s", diff)
	}

	archive := gh.uploads["foo-1.0.0-patch.zip"]
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	assert.Equal(t, []string{"foo-1.0.0/", "foo-1.0.0/meson.build"}, names)

	wrap := string(gh.uploads["foo.wrap"])
	assert.Contains(t, wrap, "directory = foo-1.0.0\n")
	assert.Contains(t, wrap, "patch_url = https://downloads.example.com/acme/wraps/releases/download/foo-1.0.0/foo-1.0.0-patch.zip\n")
	assert.Contains(t, wrap, "patch_filename = foo-1.0.0-patch.zip\n")
	assert.NotContains(t, wrap, "patch_directory")
}

func TestPublishReusesExistingRelease(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"releases.json":        `{"bar": ["2.0"]}`,
		"subprojects/bar.wrap": "[wrap-git]\nurl = https://example.com/bar.git\nrevision = v2.0\n",
	})
	gh := newFakeGitHub(t)
	gh.releases = []map[string]any{{
		"id":         7,
		"tag_name":   "bar-2.0",
		"upload_url": gh.server.URL + "/uploads/7/assets{?name,label}",
	}}

	_, err := newService(nil).Publish(context.Background(), app.PublishRequest{
		Root:       root,
		Repository: "https://github.com/acme/wraps",
		Token:      "secret",
		APIURL:     gh.server.URL,
	})
	require.NoError(t, err)

	methods := make([]string, 0, len(gh.requests))
	for _, req := range gh.requests {
		methods = append(methods, req.Method+" "+req.Path)
	}
	assert.Equal(t, []string{"GET /repos/acme/wraps/releases", "POST /uploads/7/assets"}, methods)
	assert.Equal(t, "[wrap-git]\nurl = https://example.com/bar.git\nrevision = v2.0\n", string(gh.uploads["bar.wrap"]))
}

func TestPublishReportsAPIFailure(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"releases.json":        `{"bar": ["2.0"]}`,
		"subprojects/bar.wrap": "[wrap-git]\nurl = https://example.com/bar.git\n",
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	result, err := newService(nil).Publish(context.Background(), app.PublishRequest{
		Root:       root,
		Repository: "acme/wraps",
		Token:      "wrong",
		APIURL:     server.URL,
	})
	require.Error(t, err)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Err.Error(), "status=401")
	assert.Contains(t, result.Failed[0].Err.Error(), "Bad credentials")
}
