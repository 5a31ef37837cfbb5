// Package server exposes stored files over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/leeforge/mediaserve/http/middleware"
	"github.com/leeforge/mediaserve/http/responder"
	"github.com/leeforge/mediaserve/logging"
	"github.com/leeforge/mediaserve/lookup"
	"github.com/leeforge/mediaserve/media/fetch"
	"github.com/leeforge/mediaserve/metrics"
	"go.uber.org/zap"
)

// Fetcher 生成文件响应内容
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (fetch.Result, error)
}

// TagSet 判断路径中的标签是否已配置
type TagSet interface {
	HasTag(name string) bool
}

// DefaultCacheControl Config.CacheControl 为空时使用
const DefaultCacheControl = "public, max-age=604800, must-revalidate"

// Config HTTP 服务配置
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheControl string
}

// Server 将路由连接到文件记录查询和读取服务
type Server struct {
	cfg     Config
	tags    TagSet
	files   lookup.Repository
	fetcher Fetcher
	logger  logging.Logger
	metrics *metrics.Metrics

	router chi.Router
	server *http.Server
}

// Option Server 配置项
type Option func(*Server)

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics 记录请求指标并提供 /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func New(cfg Config, tags TagSet, files lookup.Repository, fetcher Fetcher, opts ...Option) *Server {
	if cfg.CacheControl == "" {
		cfg.CacheControl = DefaultCacheControl
	}
	s := &Server{
		cfg:     cfg,
		tags:    tags,
		files:   files,
		fetcher: fetcher,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TimingMiddleware())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.SecureHeadersMiddleware())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(logging.HTTPMiddleware(s.logger))
	r.Use(logging.RecoveryMiddleware(responder.InternalServerError))

	r.NotFound(responder.RouteNotFound)
	r.MethodNotAllowed(responder.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		responder.OK(w, r, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/{tag}/{id}", s.serveFile)
	r.Get("/{tag}/{id}/{filename}", s.serveFile)
	return r
}

// Handler 返回根处理器，主要用于测试
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 启动服务，阻塞直到调用 Shutdown
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收新连接并等待处理中的请求
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
