package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/teacher-eval-api/pkg/storage"
)

// ErrKeyNotFound is returned by KV.Get for containers that were never written.
var ErrKeyNotFound = errors.New("kv: key not found")

// KV is the flat key-value namespace behind the local backing. Each key holds
// one whole JSON container.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// FileKV keeps each container in <dir>/<key>.json.
type FileKV struct {
	files *storage.LocalStorage
}

// NewFileKV wraps a LocalStorage rooted at the data directory.
func NewFileKV(files *storage.LocalStorage) *FileKV {
	return &FileKV{files: files}
}

// Get reads the container file.
func (k *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := k.files.Read(key + ".json")
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set replaces the container file.
func (k *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.files.Save(key+".json", value)
}

// Delete removes the container file.
func (k *FileKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.files.Delete(key + ".json")
}

// Ping is a no-op beyond context checks; the directory exists once constructed.
func (k *FileKV) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(k.files.Path(""))
	if err != nil {
		return fmt.Errorf("stat local store dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local store path %s is not a directory", k.files.Path(""))
	}
	return nil
}

// RedisKV keeps each container in one Redis string key.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV constructs a Redis-backed KV. The prefix namespaces every key.
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

// Get retrieves the raw container bytes.
func (k *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := k.client.Get(ctx, k.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores the container without expiry.
func (k *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.client.Set(ctx, k.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the container key.
func (k *RedisKV) Delete(ctx context.Context, key string) error {
	if err := k.client.Del(ctx, k.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (k *RedisKV) Ping(ctx context.Context) error {
	if err := k.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (k *RedisKV) Close() error {
	return k.client.Close()
}
