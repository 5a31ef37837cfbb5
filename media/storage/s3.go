package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/leeforge/mediaserve/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config S3 兼容对象存储配置
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" json:"region" yaml:"region"`
	AccessKey string `mapstructure:"access_key" json:"accessKey" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" json:"-" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" json:"useSsl" yaml:"use_ssl"`
	PathStyle bool   `mapstructure:"path_style" json:"pathStyle" yaml:"path_style"`
}

// S3Provider S3 兼容存储实现
type S3Provider struct {
	client  *minio.Client
	buckets Buckets
}

// NewS3Provider 创建 S3 客户端，Fetch 之前不会发起请求
func NewS3Provider(cfg S3Config, buckets Buckets) (*S3Provider, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &S3Provider{
		client:  client,
		buckets: buckets,
	}, nil
}

// Fetch issues a single GetObject against the bucket configured for tag.
// Any non-200 answer is a storage error.
func (p *S3Provider) Fetch(ctx context.Context, id, tag string) ([]byte, error) {
	bucket, err := p.buckets.Bucket(tag)
	if err != nil {
		return nil, apperrors.NewStorage(err)
	}

	obj, err := p.client.GetObject(ctx, bucket, strings.TrimPrefix(id, "/"), minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.NewStorage(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.StatusCode != 0 && resp.StatusCode != http.StatusOK {
			return nil, apperrors.NewStorage(fmt.Errorf("s3 returned %d for %s/%s: %w", resp.StatusCode, bucket, id, err))
		}
		return nil, apperrors.NewStorage(err)
	}
	return data, nil
}

func (p *S3Provider) Name() string {
	return "s3"
}
