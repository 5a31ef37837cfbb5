package config

import (
	"time"

	"github.com/leeforge/mediaserve/concurrency"
	"github.com/leeforge/mediaserve/logging"
	"github.com/leeforge/mediaserve/lookup"
	"github.com/leeforge/mediaserve/media/processor"
	"github.com/leeforge/mediaserve/media/storage"
	nfnt "github.com/nfnt/resize"
)

// Options 配置加载选项
type Options struct {
	BasePath  string
	FileName  string
	FileType  string
	EnvPrefix string
	Mode      Mode
}

// Settings 进程配置，启动时读取一次，之后不再修改
type Settings struct {
	Server  ServerConfig           `mapstructure:"server" json:"server" yaml:"server"`
	Storage storage.ProviderConfig `mapstructure:"storage" json:"storage" yaml:"storage"`
	Serve   ServeConfig            `mapstructure:"serve" json:"serve" yaml:"serve"`
	Pool    concurrency.PoolConfig `mapstructure:"pool" json:"pool" yaml:"pool"`
	Lookup  lookup.Config          `mapstructure:"lookup" json:"lookup" yaml:"lookup"`
	Log     logging.Config         `mapstructure:"log" json:"log" yaml:"log"`
	Tags    map[string]TagConfig   `mapstructure:"tags" json:"tags" yaml:"tags" validate:"dive"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" json:"addr" yaml:"addr" default:":8080" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"readTimeout" yaml:"read_timeout" default:"15s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"writeTimeout" yaml:"write_timeout" default:"60s"`
	CacheControl string        `mapstructure:"cache_control" json:"cacheControl" yaml:"cache_control" default:"public, max-age=604800, must-revalidate" validate:"required"`
}

// ServeConfig 缩放图片的输出编码配置
type ServeConfig struct {
	Format  string   `mapstructure:"format" json:"format" yaml:"format" default:"webp" validate:"oneof=png webp"`
	Quality *float32 `mapstructure:"quality" json:"quality,omitempty" yaml:"quality" validate:"omitempty,gte=0,lte=100"`
	Filter  string   `mapstructure:"filter" json:"filter" yaml:"filter" default:"bilinear" validate:"oneof=nearest bilinear bicubic lanczos3"`
}

// TagConfig 标签配置
type TagConfig struct {
	Bucket string `mapstructure:"bucket" json:"bucket" yaml:"bucket"`
}

// Buckets 返回标签到存储桶的映射
func (s *Settings) Buckets() storage.Buckets {
	b := make(storage.Buckets, len(s.Tags))
	for name, tag := range s.Tags {
		b[name] = tag.Bucket
	}
	return b
}

// HasTag 判断标签是否已配置
func (s *Settings) HasTag(name string) bool {
	_, ok := s.Tags[name]
	return ok
}

// OutputFormat 构建输出编码设置
func (s *Settings) OutputFormat() (processor.OutputFormat, error) {
	return processor.ParseOutputFormat(s.Serve.Format, s.Serve.Quality)
}

// Filter 返回缩放插值函数
func (s *Settings) Filter() (nfnt.InterpolationFunction, error) {
	return processor.ParseFilter(s.Serve.Filter)
}

// Redacted 返回隐藏密钥后的副本，可安全打印
func (s Settings) Redacted() Settings {
	mask := func(v *string) {
		if *v != "" {
			*v = "[REDACTED]"
		}
	}
	mask(&s.Storage.S3.SecretKey)
	mask(&s.Storage.OSS.AccessKeySecret)
	mask(&s.Lookup.Redis.Password)
	return s
}
