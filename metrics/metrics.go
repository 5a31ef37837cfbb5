package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mediaserve"

// Fetch 结果
const (
	OutcomePassthrough    = "passthrough"
	OutcomeResized        = "resized"
	OutcomeStorageError   = "storage_error"
	OutcomeTranscodeError = "transcode_error"
	OutcomeBlockingError  = "blocking_error"
)

// Metrics 服务指标，注册在独立的 Registry 上
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal     *prometheus.CounterVec
	storageFetch   *prometheus.HistogramVec
	transcode      *prometheus.HistogramVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New 创建使用独立 Registry 的 Metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Fetch requests by outcome.",
		}, []string{"outcome"}),
		storageFetch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_fetch_seconds",
			Help:      "Latency of storage backend reads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "result"}),
		transcode: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcode_seconds",
			Help:      "Time spent resizing and re-encoding images.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Registry 返回底层 Registry，主要用于测试
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 以 Prometheus 文本格式输出指标
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch 记录一次完成的读取
func (m *Metrics) ObserveFetch(outcome string) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
}

// ObserveStorageFetch 实现 storage.Observer
func (m *Metrics) ObserveStorageFetch(backend string, err error, took time.Duration) {
	m.storageFetch.WithLabelValues(backend, result(err)).Observe(took.Seconds())
}

// ObserveTranscode 记录一次缩放和编码
func (m *Metrics) ObserveTranscode(err error, took time.Duration) {
	m.transcode.WithLabelValues(result(err)).Observe(took.Seconds())
}

// RegisterQueueDepth 将 depth() 注册为任务队列长度指标
func (m *Metrics) RegisterQueueDepth(depth func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_queue_depth",
		Help:      "Jobs waiting in the blocking worker pool.",
	}, func() float64 {
		return float64(depth())
	}))
}

// Middleware HTTP 指标中间件
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 包装 ResponseWriter
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.statusCode)).Inc()
		m.requestLatency.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// responseWriter 包装器
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
