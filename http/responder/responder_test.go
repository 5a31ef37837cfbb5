package responder

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/leeforge/mediaserve/errors"
	"github.com/leeforge/mediaserve/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestFromErrorHidesInnerError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
		msg    string
	}{
		{"storage", apperrors.NewStorage(errors.New("dial tcp 10.0.0.1:9000: refused")), http.StatusInternalServerError, ErrCodeStorageService, "storage backend error"},
		{"transcode", apperrors.NewTranscode(errors.New("png: invalid format")), http.StatusInternalServerError, ErrCodeIO, "i/o error"},
		{"blocking", apperrors.NewBlocking(errors.New("queue full")), http.StatusInternalServerError, ErrCodeBlocking, "blocking task failed"},
		{"not found", apperrors.NewNotFound("file"), http.StatusNotFound, ErrCodeNotFound, "file not found"},
		{"plain", errors.New("secret detail"), http.StatusInternalServerError, ErrCodeInternalServer, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.msg, resp.Error.Message)
			assert.NotContains(t, rec.Body.String(), "refused")
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestOKCarriesTraceID(t *testing.T) {
	h := middleware.TraceIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		OK(w, r, map[string]string{"status": "ok"})
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.TraceIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "trace-123", resp.Meta.TraceId)
}

func TestDefaultMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", decode(t, rec).Error.Message)

	assert.Equal(t, "Unknown Error", GetErrorMessage(1))
	assert.Equal(t, ErrCodeInternalServer, CodeFor("unheard-of"))
}
