package lookup

import (
	"context"
	"sync"
)

// MemoryRepository 内存文件记录存储
type MemoryRepository struct {
	mu    sync.RWMutex
	files map[string]File
}

func NewMemoryRepository(files ...File) *MemoryRepository {
	r := &MemoryRepository{files: make(map[string]File, len(files))}
	for _, f := range files {
		r.Put(f)
	}
	return r
}

// Put 保存记录，覆盖相同 tag 和 id 的旧记录
func (r *MemoryRepository) Put(f File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.Tag+"/"+f.ID] = f
}

func (r *MemoryRepository) Find(ctx context.Context, id, tag string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[tag+"/"+id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}
