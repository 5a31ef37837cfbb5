// Package fetch serves stored objects, resizing images on the way out.
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/leeforge/mediaserve/concurrency"
	apperrors "github.com/leeforge/mediaserve/errors"
	"github.com/leeforge/mediaserve/logging"
	"github.com/leeforge/mediaserve/media/metadata"
	"github.com/leeforge/mediaserve/media/processor"
	"github.com/leeforge/mediaserve/media/resize"
	"github.com/leeforge/mediaserve/media/storage"
	"github.com/leeforge/mediaserve/metrics"
	"go.uber.org/zap"
)

// Request identifies the object to serve and how to size it.
type Request struct {
	ID       string
	Tag      string
	Metadata metadata.Metadata
	// Resize is nil when the client sent no resize parameters.
	Resize *resize.Request
}

// Result is the body to send. An empty ContentType means the caller keeps
// the content type recorded for the file.
type Result struct {
	Body        []byte
	ContentType string
}

// Recorder receives fetch outcomes. *metrics.Metrics implements it.
type Recorder interface {
	ObserveFetch(outcome string)
	ObserveTranscode(err error, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(string)                   {}
func (nopRecorder) ObserveTranscode(error, time.Duration) {}

// Service fetches from one backend and transcodes on the blocking pool.
type Service struct {
	backend    storage.Backend
	transcoder processor.Transcoder
	pool       *concurrency.Pool
	logger     logging.Logger
	recorder   Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the fallback logger used when the request context has none.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(backend storage.Backend, transcoder processor.Transcoder, pool *concurrency.Pool, opts ...Option) *Service {
	s := &Service{
		backend:    backend,
		transcoder: transcoder,
		pool:       pool,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the stored bytes, resized when the object is an image and
// the resize parameters call for it. Non-images and requests without
// parameters are passed through untouched.
func (s *Service) Fetch(ctx context.Context, req Request) (Result, error) {
	data, err := s.backend.Fetch(ctx, req.ID, req.Tag)
	if err != nil {
		s.recorder.ObserveFetch(metrics.OutcomeStorageError)
		if !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
			err = apperrors.NewStorage(err)
		}
		return Result{}, err
	}

	width, height, ok := req.Metadata.Dimensions()
	if !ok || req.Resize == nil {
		s.recorder.ObserveFetch(metrics.OutcomePassthrough)
		return Result{Body: data}, nil
	}

	target, ok := resize.Resolve(width, height, *req.Resize)
	if !ok {
		s.recorder.ObserveFetch(metrics.OutcomePassthrough)
		return Result{Body: data}, nil
	}

	start := time.Now()
	future, err := concurrency.Go(s.pool, func() ([]byte, error) {
		return s.transcoder.Transcode(data, target.Width, target.Height)
	})
	if err != nil {
		s.recorder.ObserveFetch(metrics.OutcomeBlockingError)
		return Result{}, apperrors.NewBlocking(err)
	}

	out, err := future.Await(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		s.recorder.ObserveFetch(metrics.OutcomeBlockingError)
		return Result{}, apperrors.NewBlocking(err)
	}
	s.recorder.ObserveTranscode(err, time.Since(start))
	if err != nil {
		s.log(ctx).Error("failed to resize image",
			zap.String("id", req.ID),
			zap.String("tag", req.Tag),
			zap.Stringer("params", req.Resize),
			zap.Error(err),
		)
		s.recorder.ObserveFetch(metrics.OutcomeTranscodeError)
		return Result{}, apperrors.NewTranscode(err)
	}

	s.recorder.ObserveFetch(metrics.OutcomeResized)
	return Result{Body: out, ContentType: s.transcoder.ContentType()}, nil
}

func (s *Service) log(ctx context.Context) logging.Logger {
	if s.logger != nil {
		return logging.WithContext(s.logger, ctx)
	}
	return logging.FromContext(ctx)
}
