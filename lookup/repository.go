package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/leeforge/mediaserve/media/metadata"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("file not found")

// File 上传对象的文件记录
type File struct {
	ID          string            `json:"_id"`
	Tag         string            `json:"tag"`
	Filename    string            `json:"filename"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Deleted     *bool             `json:"deleted,omitempty"`
	Metadata    metadata.Metadata `json:"metadata"`
}

// IsDeleted 判断记录是否已软删除
func (f *File) IsDeleted() bool {
	return f.Deleted != nil && *f.Deleted
}

// Repository 文件记录查询接口
type Repository interface {
	Find(ctx context.Context, id, tag string) (*File, error)
}

// Config 文件记录存储配置
type Config struct {
	Backend string      `mapstructure:"backend" json:"backend" yaml:"backend" default:"redis" validate:"oneof=redis memory"`
	Prefix  string      `mapstructure:"prefix" json:"prefix" yaml:"prefix" default:"file"`
	Redis   RedisConfig `mapstructure:"redis" json:"redis" yaml:"redis"`

	// 0 关闭进程内记录缓存（默认关闭）
	CacheTTL  time.Duration `mapstructure:"cache_ttl" json:"cacheTtl" yaml:"cache_ttl"`
	CacheSize int           `mapstructure:"cache_size" json:"cacheSize" yaml:"cache_size" default:"1024" validate:"gte=0"`
}
