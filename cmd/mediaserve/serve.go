package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/leeforge/mediaserve/concurrency"
	"github.com/leeforge/mediaserve/config"
	"github.com/leeforge/mediaserve/http/server"
	"github.com/leeforge/mediaserve/logging"
	"github.com/leeforge/mediaserve/lookup"
	"github.com/leeforge/mediaserve/media/fetch"
	"github.com/leeforge/mediaserve/media/processor"
	"github.com/leeforge/mediaserve/media/storage"
	"github.com/leeforge/mediaserve/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(*configPath)
			if err != nil {
				return err
			}

			logger := logging.NewLogger(settings.Log)
			logging.SetGlobal(logger)
			defer func() {
				_ = logger.Sync()
				_ = logging.CloseAllWriters()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, settings, logger, metrics.New())
			if err != nil {
				return err
			}
			return a.run(ctx)
		},
	}
}

func loadSettings(configPath string) (*config.Settings, error) {
	opts := config.DefaultOptions()
	if configPath != "" {
		opts.BasePath = configPath
	}
	return config.Load(opts)
}

// app serve 命令根据 Settings 构建的组件
type app struct {
	logger logging.Logger
	pool   *concurrency.Pool
	server *server.Server
	closer func() error
}

// buildApp 组装所有组件，出错时释放已启动的资源
func buildApp(ctx context.Context, settings *config.Settings, logger logging.Logger, m *metrics.Metrics) (_ *app, err error) {
	output, err := settings.OutputFormat()
	if err != nil {
		return nil, err
	}
	filter, err := settings.Filter()
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewFromConfig(settings.Storage, settings.Buckets())
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	backend = storage.Instrument(backend, m)

	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	files, closer, err := newRepository(ctx, settings.Lookup, logger)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	a.closer = closer

	a.pool = concurrency.NewPool(settings.Pool)
	if err := m.RegisterQueueDepth(a.pool.QueueDepth); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	svc := fetch.NewService(backend, processor.NewNativeProcessor(output, filter), a.pool, fetch.WithRecorder(m))
	a.server = server.New(server.Config{
		Addr:         settings.Server.Addr,
		ReadTimeout:  settings.Server.ReadTimeout,
		WriteTimeout: settings.Server.WriteTimeout,
		CacheControl: settings.Server.CacheControl,
	}, settings, files, svc, server.WithLogger(logger), server.WithMetrics(m))

	logger.Info("mediaserve configured",
		zap.String("storage", backend.Name()),
		zap.String("lookup", settings.Lookup.Backend),
		zap.String("output", output.ContentType()),
		zap.Int("workers", a.pool.Size()),
	)
	return a, nil
}

func newRepository(ctx context.Context, cfg lookup.Config, logger logging.Logger) (lookup.Repository, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return lookup.NewCachedRepository(lookup.NewMemoryRepository(), cfg.CacheSize, cfg.CacheTTL), func() error { return nil }, nil
	case "redis", "":
		client, err := lookup.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return lookup.NewCachedRepository(lookup.NewRedisRepository(client, cfg.Prefix), cfg.CacheSize, cfg.CacheTTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lookup backend: %s", cfg.Backend)
	}
}

// run 运行直到 ctx 取消，先关闭 HTTP 服务再停止任务池
func (a *app) run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		a.release()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http shutdown", zap.Error(err))
	}
	a.release()
	a.logger.Info("server stopped")
	return err
}

// release 停止任务池并关闭记录存储连接
func (a *app) release() {
	if a.pool != nil {
		if err := a.pool.Stop(); err != nil {
			a.logger.Error("worker pool stop", zap.Error(err))
		}
	}
	if a.closer != nil {
		if err := a.closer(); err != nil {
			a.logger.Error("lookup close", zap.Error(err))
		}
	}
}
