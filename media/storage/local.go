package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/leeforge/mediaserve/errors"
)

// LocalProvider 本地文件系统存储实现
type LocalProvider struct {
	basePath string
}

// NewLocalProvider 创建本地存储提供者
func NewLocalProvider(basePath string) (*LocalProvider, error) {
	if basePath == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}
	// 确保根目录存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalProvider{basePath: basePath}, nil
}

// Fetch 读取 <root>/<id>，tag 不参与路径
func (p *LocalProvider) Fetch(ctx context.Context, id, tag string) ([]byte, error) {
	if !filepath.IsLocal(id) {
		return nil, apperrors.NewStorage(fmt.Errorf("invalid path %q", id))
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewStorage(err)
	}

	data, err := os.ReadFile(filepath.Join(p.basePath, id))
	if err != nil {
		return nil, apperrors.NewStorage(err)
	}
	return data, nil
}

func (p *LocalProvider) Name() string {
	return "local"
}
