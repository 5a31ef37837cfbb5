package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/leeforge/mediaserve/errors"
	"github.com/leeforge/mediaserve/http/binding"
	"github.com/leeforge/mediaserve/http/responder"
	"github.com/leeforge/mediaserve/logging"
	"github.com/leeforge/mediaserve/lookup"
	"github.com/leeforge/mediaserve/media/fetch"
	"github.com/leeforge/mediaserve/media/resize"
	"go.uber.org/zap"
)

// inlineTypes 浏览器直接展示的类型，其余类型下载
var inlineTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"video/mp4":       {},
	"video/webm":      {},
	"video/webp":      {},
	"audio/quicktime": {},
	"audio/mpeg":      {},
}

// Disposition returns the Content-Disposition value for a content type.
func Disposition(contentType string) string {
	if _, ok := inlineTypes[contentType]; ok {
		return "inline"
	}
	return "attachment"
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	id := chi.URLParam(r, "id")

	if !s.tags.HasTag(tag) {
		responder.FromError(w, r, apperrors.NewBadRequest("unknown tag"))
		return
	}

	file, err := s.files.Find(r.Context(), id, tag)
	if errors.Is(err, lookup.ErrNotFound) {
		responder.FromError(w, r, apperrors.NewNotFound("file"))
		return
	}
	if err != nil {
		s.fail(w, r, apperrors.NewInternal(err))
		return
	}
	if file.IsDeleted() {
		responder.FromError(w, r, apperrors.NewNotFound("file"))
		return
	}

	// 记录检查之后再绑定参数：文件不存在时无论参数如何都返回 404
	var params resize.Request
	if err := binding.Query(r, &params); err != nil {
		var ve binding.ValidationErrors
		if errors.As(err, &ve) {
			responder.ValidationError(w, r, ve)
			return
		}
		responder.BadRequest(w, r, err.Error())
		return
	}

	req := fetch.Request{ID: id, Tag: tag, Metadata: file.Metadata}
	if !params.Empty() {
		req.Resize = &params
	}
	res, err := s.fetcher.Fetch(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = file.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", Disposition(contentType))
	h.Set("Content-Length", strconv.Itoa(len(res.Body)))
	h.Set("Cache-Control", s.cfg.CacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)
}

// fail 记录服务端错误及原因并写入错误响应
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError && !apperrors.IsType(appErr, apperrors.ErrorTypeTranscode) {
		logging.FromContext(r.Context()).Error("request failed",
			zap.String("type", string(appErr.Type)),
			zap.Error(appErr),
		)
	}
	responder.FromError(w, r, appErr)
}
