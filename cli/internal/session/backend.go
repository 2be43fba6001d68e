package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/securegate/sgadmin/common/config"
)

// FileBackend keeps the token on a profile of the CLI config file.
type FileBackend struct {
	cfg     *config.CLIConfig
	profile string
	baseURL string
}

// NewFileBackend stores the token on profile. A non-empty baseURL is recorded
// on the profile when the token is saved so later runs talk to the same
// service; an empty one leaves the profile's URL untouched.
func NewFileBackend(cfg *config.CLIConfig, profile, baseURL string) *FileBackend {
	if profile == "" {
		profile = cfg.CurrentProfile
	}
	if profile == "" {
		profile = config.DefaultProfile
	}
	return &FileBackend{cfg: cfg, profile: profile, baseURL: baseURL}
}

func (b *FileBackend) Load(_ context.Context) (string, error) {
	return b.cfg.Token(b.profile), nil
}

func (b *FileBackend) Save(_ context.Context, token string) error {
	return b.cfg.SaveToken(b.profile, b.baseURL, token)
}

func (b *FileBackend) Delete(_ context.Context) error {
	return b.cfg.ClearToken(b.profile)
}

// RedisBackend keeps the token in Redis so several shells share a session.
type RedisBackend struct {
	client  *redis.Client
	prefix  string
	profile string
}

func NewRedisBackend(client *redis.Client, prefix, profile string) *RedisBackend {
	if profile == "" {
		profile = config.DefaultProfile
	}
	return &RedisBackend{client: client, prefix: prefix, profile: profile}
}

// NewRedisBackendFromURL connects using a redis:// URL.
func NewRedisBackendFromURL(url, prefix, profile string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisBackend(redis.NewClient(opts), prefix, profile), nil
}

func (b *RedisBackend) Load(ctx context.Context) (string, error) {
	token, err := b.client.Get(ctx, b.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

func (b *RedisBackend) Save(ctx context.Context, token string) error {
	if err := b.client.Set(ctx, b.key(), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context) error {
	if err := b.client.Del(ctx, b.key()).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) key() string {
	if b.prefix == "" {
		return fmt.Sprintf("%s:token", b.profile)
	}
	return fmt.Sprintf("%s:%s:token", b.prefix, b.profile)
}

// MemoryBackend keeps the token for the life of the process only.
type MemoryBackend struct {
	mu    sync.Mutex
	token string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, nil
}

func (b *MemoryBackend) Save(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = ""
	return nil
}
