package lookup

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultCacheSize = 1024

// CachedRepository 在 Repository 前加一层有容量上限的 TTL LRU 缓存。
// 只缓存命中的记录，新上传的文件下次请求即可见；
// 软删除最多需要 ttl 才能生效，因此只有设置 lookup.cache_ttl 时才开启。
type CachedRepository struct {
	next  Repository
	cache *expirable.LRU[string, File]
}

// NewCachedRepository 包装 next。ttl 非正数时不启用缓存，直接返回 next；
// size 非正数时使用 1024。
func NewCachedRepository(next Repository, size int, ttl time.Duration) Repository {
	if ttl <= 0 {
		return next
	}
	if size <= 0 {
		size = defaultCacheSize
	}
	return &CachedRepository{
		next:  next,
		cache: expirable.NewLRU[string, File](size, nil, ttl),
	}
}

func (c *CachedRepository) Find(ctx context.Context, id, tag string) (*File, error) {
	key := tag + "/" + id
	if f, ok := c.cache.Get(key); ok {
		return &f, nil
	}

	f, err := c.next.Find(ctx, id, tag)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, *f)
	return f, nil
}

// Len 返回缓存条目数，可能包含尚未清理的过期条目
func (c *CachedRepository) Len() int {
	return c.cache.Len()
}
