package lookup

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/leeforge/mediaserve/logging"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type RedisConfig struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host" default:"127.0.0.1"`
	Port     string `mapstructure:"port" json:"port" yaml:"port" default:"6379"`
	Password string `mapstructure:"password" json:"-" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db"`
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// LogFields 返回隐藏密码后的连接信息
func (c *RedisConfig) LogFields() string {
	return fmt.Sprintf("addr=%s db=%d password=%s", c.Addr(), c.DB, redactedPassword(c.Password))
}

func redactedPassword(password string) string {
	if password == "" {
		return "<empty>"
	}
	return "[REDACTED]"
}

// NewRedis 连接 Redis 并执行一次 Ping
func NewRedis(ctx context.Context, cnf RedisConfig, log logging.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cnf.Addr(),
		Password: cnf.Password,
		DB:       cnf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cnf.Addr(), err)
	}
	if log != nil {
		log.Debug("redis connected", zap.String("config", cnf.LogFields()))
	}
	return client, nil
}

// RedisRepository 读取存储在 <prefix>:<tag>:<id> 下的 JSON 记录
type RedisRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "file"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(id, tag string) string {
	return r.prefix + ":" + tag + ":" + id
}

func (r *RedisRepository) Find(ctx context.Context, id, tag string) (*File, error) {
	raw, err := r.client.Get(ctx, r.key(id, tag)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", r.key(id, tag), err)
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", r.key(id, tag), err)
	}
	if f.ID == "" {
		f.ID = id
	}
	if f.Tag == "" {
		f.Tag = tag
	}
	return &f, nil
}

// Save 以 JSON 写入记录，用于初始化数据
func (r *RedisRepository) Save(ctx context.Context, f File) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(f.ID, f.Tag), raw, 0).Err()
}
