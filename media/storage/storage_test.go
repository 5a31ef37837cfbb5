package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	apperrors "github.com/leeforge/mediaserve/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderFetch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "abc123"), []byte("payload"), 0644))

	p, err := NewLocalProvider(root)
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	data, err := p.Fetch(context.Background(), "abc123", "attachments")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestLocalProviderErrors(t *testing.T) {
	root := t.TempDir()
	p, err := NewLocalProvider(root)
	require.NoError(t, err)

	for _, id := range []string{"missing", "../outside", "/etc/passwd", ""} {
		_, err := p.Fetch(context.Background(), id, "attachments")
		require.Error(t, err, id)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage), "%q: %v", id, err)
	}
}

func TestLocalProviderCancelledContext(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), []byte("x"), 0644))
	p, err := NewLocalProvider(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Fetch(ctx, "f", "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))
}

func TestBuckets(t *testing.T) {
	b := Buckets{"attachments": "revolt-uploads", "empty": ""}

	name, err := b.Bucket("attachments")
	require.NoError(t, err)
	assert.Equal(t, "revolt-uploads", name)

	_, err = b.Bucket("avatars")
	assert.Error(t, err)
	_, err = b.Bucket("empty")
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	b, err := NewFromConfig(ProviderConfig{Backend: "local", Local: LocalConfig{Root: t.TempDir()}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", b.Name())

	b, err = NewFromConfig(ProviderConfig{Backend: "s3", S3: S3Config{Endpoint: "localhost:9000", Region: "us-east-1"}}, Buckets{})
	require.NoError(t, err)
	assert.Equal(t, "s3", b.Name())

	b, err = NewFromConfig(ProviderConfig{Backend: "oss", OSS: OSSConfig{Endpoint: "oss-cn-hangzhou.aliyuncs.com", AccessKeyID: "id", AccessKeySecret: "secret"}}, Buckets{})
	require.NoError(t, err)
	assert.Equal(t, "oss", b.Name())

	_, err = NewFromConfig(ProviderConfig{Backend: "ftp"}, nil)
	assert.Error(t, err)
}

// fakeS3 answers path-style GetObject requests for a single bucket.
func fakeS3(t *testing.T, bucket string, objects map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/"+bucket+"/")
		body, ok := objects[key]
		if !strings.HasPrefix(r.URL.Path, "/"+bucket+"/") || !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestS3ProviderFetch(t *testing.T) {
	srv := fakeS3(t, "uploads", map[string]string{"abc": "hello from s3"})
	defer srv.Close()

	p, err := NewS3Provider(S3Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
		PathStyle: true,
	}, Buckets{"attachments": "uploads"})
	require.NoError(t, err)

	data, err := p.Fetch(context.Background(), "abc", "attachments")
	require.NoError(t, err)
	assert.Equal(t, "hello from s3", string(data))

	_, err = p.Fetch(context.Background(), "missing", "attachments")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage), "%v", err)

	_, err = p.Fetch(context.Background(), "abc", "avatars")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage), "unknown tag has no bucket")
}

// fakeOSS answers path-style GetObject requests. An object named "boom"
// fails with a 500.
func fakeOSS(t *testing.T, bucket string, objects map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/"+bucket+"/")
		if key == "boom" {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>InternalError</Code><Message>We encountered an internal error.</Message></Error>`))
			return
		}
		body, ok := objects[key]
		if !strings.HasPrefix(r.URL.Path, "/"+bucket+"/") || !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write([]byte(body))
	}))
}

func TestOSSProviderFetch(t *testing.T) {
	srv := fakeOSS(t, "uploads", map[string]string{"abc": "hello from oss"})
	defer srv.Close()

	p, err := NewOSSProvider(OSSConfig{
		Endpoint:        srv.URL,
		AccessKeyID:     "id",
		AccessKeySecret: "secret",
	}, Buckets{"attachments": "uploads", "avatars": "elsewhere"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		tag     string
		want    string
		wantErr bool
	}{
		{"found", "abc", "attachments", "hello from oss", false},
		{"leading slash", "/abc", "attachments", "hello from oss", false},
		{"missing object", "missing", "attachments", "", true},
		{"server error", "boom", "attachments", "", true},
		{"wrong bucket", "abc", "avatars", "", true},
		{"unknown tag", "abc", "banners", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := p.Fetch(context.Background(), tt.id, tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage), "%v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

type recordingObserver struct {
	backend string
	err     error
	calls   int
}

func (o *recordingObserver) ObserveStorageFetch(backend string, err error, _ time.Duration) {
	o.backend, o.err = backend, err
	o.calls++
}

func TestInstrument(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	obs := &recordingObserver{}
	b := Instrument(p, obs)

	_, err = b.Fetch(context.Background(), "missing", "")
	require.Error(t, err)
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, "local", obs.backend)
	assert.Equal(t, err, obs.err)

	assert.Same(t, p, Instrument(p, nil))
}
