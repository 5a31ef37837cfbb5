package storage

import (
	"context"
	"fmt"
	"time"
)

// Backend 按标识读取完整的存储对象。
// 所有失败都以 storage 错误返回，调用方无法区分远程和本地失败。
type Backend interface {
	Fetch(ctx context.Context, id, tag string) ([]byte, error)
	Name() string
}

// Buckets 标签到存储桶的映射
type Buckets map[string]string

// Bucket 返回 tag 对应的存储桶
func (b Buckets) Bucket(tag string) (string, error) {
	name, ok := b[tag]
	if !ok || name == "" {
		return "", fmt.Errorf("no bucket configured for tag %q", tag)
	}
	return name, nil
}

// ProviderConfig 存储提供者配置
type ProviderConfig struct {
	Backend string      `mapstructure:"backend" json:"backend" yaml:"backend" default:"local" validate:"oneof=local s3 oss"`
	Local   LocalConfig `mapstructure:"local" json:"local" yaml:"local"`
	S3      S3Config    `mapstructure:"s3" json:"s3" yaml:"s3"`
	OSS     OSSConfig   `mapstructure:"oss" json:"oss" yaml:"oss"`
}

// LocalConfig 本地文件系统存储配置
type LocalConfig struct {
	Root string `mapstructure:"root" json:"root" yaml:"root" default:"files"`
}

// NewFromConfig 从配置创建存储后端
func NewFromConfig(cfg ProviderConfig, buckets Buckets) (Backend, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalProvider(cfg.Local.Root)
	case "s3":
		return NewS3Provider(cfg.S3, buckets)
	case "oss":
		return NewOSSProvider(cfg.OSS, buckets)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// Observer 接收每次读取的结果
type Observer interface {
	ObserveStorageFetch(backend string, err error, took time.Duration)
}

type instrumented struct {
	Backend
	observer Observer
}

// Instrument 将 b 的每次 Fetch 上报给 observer
func Instrument(b Backend, observer Observer) Backend {
	if observer == nil {
		return b
	}
	return &instrumented{Backend: b, observer: observer}
}

func (i *instrumented) Fetch(ctx context.Context, id, tag string) ([]byte, error) {
	start := time.Now()
	data, err := i.Backend.Fetch(ctx, id, tag)
	i.observer.ObserveStorageFetch(i.Backend.Name(), err, time.Since(start))
	return data, err
}
