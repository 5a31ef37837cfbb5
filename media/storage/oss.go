package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	apperrors "github.com/leeforge/mediaserve/errors"
)

// OSSConfig 阿里云 OSS 配置
// Endpoint 示例: oss-cn-hangzhou.aliyuncs.com
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"accessKeyId" yaml:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret" json:"-" yaml:"access_key_secret"`
}

// OSSProvider 阿里云 OSS 存储实现
type OSSProvider struct {
	client  *oss.Client
	buckets Buckets
}

// NewOSSProvider 创建 OSS 存储提供者
func NewOSSProvider(cfg OSSConfig, buckets Buckets) (*OSSProvider, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	return &OSSProvider{
		client:  client,
		buckets: buckets,
	}, nil
}

// Fetch 从 tag 对应的存储桶下载对象
func (p *OSSProvider) Fetch(ctx context.Context, id, tag string) ([]byte, error) {
	name, err := p.buckets.Bucket(tag)
	if err != nil {
		return nil, apperrors.NewStorage(err)
	}

	bucket, err := p.client.Bucket(name)
	if err != nil {
		return nil, apperrors.NewStorage(fmt.Errorf("failed to get bucket %s: %w", name, err))
	}

	// 去掉开头的斜杠，避免出现空目录
	objectKey := strings.TrimPrefix(id, "/")
	body, err := bucket.GetObject(objectKey, oss.WithContext(ctx))
	if err != nil {
		return nil, apperrors.NewStorage(err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperrors.NewStorage(err)
	}
	return data, nil
}

func (p *OSSProvider) Name() string {
	return "oss"
}
