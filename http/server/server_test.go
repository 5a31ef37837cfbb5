package server

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/leeforge/mediaserve/concurrency"
	"github.com/leeforge/mediaserve/http/middleware"
	"github.com/leeforge/mediaserve/http/responder"
	"github.com/leeforge/mediaserve/lookup"
	"github.com/leeforge/mediaserve/media/fetch"
	"github.com/leeforge/mediaserve/media/metadata"
	"github.com/leeforge/mediaserve/media/processor"
	"github.com/leeforge/mediaserve/media/storage"
	"github.com/leeforge/mediaserve/metrics"
	nfnt "github.com/nfnt/resize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagSet map[string]bool

func (t tagSet) HasTag(name string) bool { return t[name] }

const cacheControl = "public, max-age=604800, must-revalidate"

func boolPtr(v bool) *bool { return &v }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 80, 40))))
	require.NoError(t, os.WriteFile(filepath.Join(root, "img"), buf.Bytes(), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "gone"), []byte("bye"), 0644))

	backend, err := storage.NewLocalProvider(root)
	require.NoError(t, err)
	pool := concurrency.NewPool(concurrency.PoolConfig{Workers: 2, QueueSize: 8})
	t.Cleanup(func() { _ = pool.Stop() })

	files := lookup.NewMemoryRepository(
		lookup.File{ID: "img", Tag: "attachments", ContentType: "image/png", Metadata: metadata.Image(80, 40)},
		lookup.File{ID: "doc", Tag: "attachments", ContentType: "text/plain", Metadata: metadata.File()},
		lookup.File{ID: "gone", Tag: "attachments", ContentType: "image/png", Deleted: boolPtr(true), Metadata: metadata.Image(80, 40)},
		lookup.File{ID: "lost", Tag: "attachments", ContentType: "image/png", Metadata: metadata.Image(80, 40)},
	)
	svc := fetch.NewService(backend, processor.NewNativeProcessor(processor.PNG(), nfnt.Bilinear), pool)

	return New(Config{CacheControl: cacheControl}, tagSet{"attachments": true}, files, svc, WithMetrics(metrics.New()))
}

func do(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) responder.Response {
	t.Helper()
	var res responder.Response
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Error)
	return res
}

func TestServeOriginal(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, "/attachments/doc")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, cacheControl, rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceIDHeader))
}

func TestServeResizedImage(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, "/attachments/img?width=20")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "inline", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, cacheControl, rec.Header().Get("Cache-Control"))

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestServeWithFilenameSegment(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, "/attachments/doc/readme.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestServeErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		code   int
	}{
		{"unknown tag", "/avatars/img", http.StatusBadRequest, responder.ErrCodeBadRequest},
		{"missing record", "/attachments/nope", http.StatusNotFound, responder.ErrCodeNotFound},
		{"soft deleted", "/attachments/gone", http.StatusNotFound, responder.ErrCodeNotFound},
		{"soft deleted with resize", "/attachments/gone?size=10", http.StatusNotFound, responder.ErrCodeNotFound},
		{"soft deleted with bad resize", "/attachments/gone?size=0", http.StatusNotFound, responder.ErrCodeNotFound},
		{"missing record with bad resize", "/attachments/nope?width=wide", http.StatusNotFound, responder.ErrCodeNotFound},
		{"record without object", "/attachments/lost", http.StatusInternalServerError, responder.ErrCodeStorageService},
		{"malformed param", "/attachments/img?width=wide", http.StatusBadRequest, responder.ErrCodeBadRequest},
		{"non-positive param", "/attachments/img?size=0", http.StatusBadRequest, responder.ErrCodeValidationFailed},
		{"no route", "/", http.StatusNotFound, responder.ErrCodeRouteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), tt.path)
			assert.Equal(t, tt.status, rec.Code)
			res := decodeError(t, rec)
			assert.Equal(t, tt.code, res.Error.Code)
			assert.NotEmpty(t, res.Meta.TraceId)
		})
	}
}

func TestCacheControlDefault(t *testing.T) {
	s := newTestServer(t)
	s = New(Config{}, s.tags, s.files, s.fetcher)

	rec := do(t, s, "/attachments/doc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultCacheControl, rec.Header().Get("Cache-Control"))
}

func TestStorageErrorMessageIsGeneric(t *testing.T) {
	rec := do(t, newTestServer(t), "/attachments/lost")
	res := decodeError(t, rec)
	assert.Equal(t, "storage backend error", res.Error.Message)
	assert.NotContains(t, rec.Body.String(), "no such file")
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Data["status"])

	_ = do(t, s, "/attachments/doc")
	rec = do(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mediaserve_http_requests_total{method="GET",status="200"}`)
}

func TestDisposition(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4", "video/webm", "video/webp", "audio/quicktime", "audio/mpeg"} {
		assert.Equal(t, "inline", Disposition(ct), ct)
	}
	for _, ct := range []string{"text/plain", "application/pdf", "image/svg+xml", "image/bmp", ""} {
		assert.Equal(t, "attachment", Disposition(ct), ct)
	}
}
