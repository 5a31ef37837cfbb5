package concurrency

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// DefaultQueueSize QueueSize 未设置或非正数时使用的队列长度
const DefaultQueueSize = 64

var (
	// ErrQueueFull 队列已满时 Submit 返回
	ErrQueueFull = errors.New("job queue is full")
	// ErrPoolClosed Stop 之后 Submit 返回
	ErrPoolClosed = errors.New("pool is shutting down")
)

// Job 任务接口
type Job interface {
	Execute()
}

// JobFunc 函数式任务
type JobFunc func()

// Execute 执行函数
func (f JobFunc) Execute() {
	f()
}

// PoolConfig Worker 池配置
type PoolConfig struct {
	Workers     int           `mapstructure:"workers" json:"workers" yaml:"workers"`
	QueueSize   int           `mapstructure:"queue_size" json:"queueSize" yaml:"queue_size" default:"64" validate:"gt=0"`
	StopTimeout time.Duration `mapstructure:"stop_timeout" json:"stopTimeout" yaml:"stop_timeout" default:"30s"`
}

// Pool 在固定数量的 goroutine 上执行 CPU 密集型任务，
// 请求处理方只在 channel 上等待。Submit 从不阻塞。
type Pool struct {
	size        int
	stopTimeout time.Duration
	jobQueue    chan Job
	wg          sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPool 创建 Worker 池并启动所有 worker
func NewPool(cfg PoolConfig) *Pool {
	size := cfg.Workers
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}

	p := &Pool{
		size:        size,
		stopTimeout: cfg.StopTimeout,
		jobQueue:    make(chan Job, cfg.QueueSize),
	}
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Size 返回 worker 数量
func (p *Pool) Size() int {
	return p.size
}

// QueueDepth 返回排队等待的任务数
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// Submit 提交任务
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop 拒绝新任务，等待已排队的任务执行完毕
func (p *Pool) Stop() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(p.stopTimeout):
		return fmt.Errorf("timeout waiting for workers to finish")
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobQueue {
		job.Execute()
	}
}

// Future 通过 Go 提交的函数的待定结果
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go 将 fn 提交到池中并返回其 Future。
// fn 中的 panic 会被恢复并作为 Future 的错误返回。
func Go[T any](p *Pool, fn func() (T, error)) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}

	err := p.Submit(JobFunc(func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		f.value, f.err = fn()
	}))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Await 等待任务完成或 ctx 结束。
// ctx 结束不会停止任务，任务结果被丢弃。
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done 任务完成后关闭
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
