package responder

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	apperrors "github.com/leeforge/mediaserve/errors"
	"github.com/leeforge/mediaserve/http/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// writeJSON is the internal helper for all response functions
func writeJSON(w http.ResponseWriter, status int, payload any) {
	raw, err := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":5000,"message":"encode failed"}}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// requestMeta fills trace id and elapsed time from the request context.
func requestMeta(r *http.Request, opts []Option) Meta {
	if r != nil {
		opts = append([]Option{
			WithTraceID(middleware.GetTraceIDFromRequest(r)),
			WithTook(middleware.GetRequestDurationFromRequest(r)),
		}, opts...)
	}
	return NewMeta(opts...)
}

// Write sends a success response with data
func Write(w http.ResponseWriter, r *http.Request, status int, data any, opts ...Option) {
	writeJSON(w, status, &Response{
		Data: data,
		Meta: requestMeta(r, opts),
	})
}

// OK responds with 200 OK and data
func OK(w http.ResponseWriter, r *http.Request, data any, opts ...Option) {
	Write(w, r, http.StatusOK, data, opts...)
}

// WriteError sends an error response
func WriteError(w http.ResponseWriter, r *http.Request, status int, err Error, opts ...Option) {
	writeJSON(w, status, &Response{
		Error: &err,
		Meta:  requestMeta(r, opts),
	})
}

// FromError writes err using its application type. Only the public message
// of an AppError reaches the client; wrapped causes stay in the logs.
func FromError(w http.ResponseWriter, r *http.Request, err error, opts ...Option) {
	appErr := apperrors.FromError(err)
	WriteError(w, r, appErr.HTTPStatus, NewError(CodeFor(appErr.Type), appErr.Message), opts...)
}

// BadRequest responds with 400 Bad Request
func BadRequest(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	WriteError(w, r, http.StatusBadRequest, NewError(ErrCodeBadRequest, message), opts...)
}

// ValidationError responds with 400 Bad Request and validation details
func ValidationError(w http.ResponseWriter, r *http.Request, details any, opts ...Option) {
	err := NewError(ErrCodeValidationFailed, "")
	err.Details = details
	WriteError(w, r, http.StatusBadRequest, err, opts...)
}

// NotFound responds with 404 Not Found
func NotFound(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	WriteError(w, r, http.StatusNotFound, NewError(ErrCodeNotFound, message), opts...)
}

// RouteNotFound is the router's fallback handler.
func RouteNotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, NewError(ErrCodeRouteNotFound, ""))
}

// MethodNotAllowed is the router's 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusMethodNotAllowed, NewError(ErrCodeMethodNotAllowed, ""))
}

// InternalServerError responds with 500 Internal Server Error
func InternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusInternalServerError, NewError(ErrCodeInternalServer, ""))
}
