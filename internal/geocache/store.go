package geocache

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// Store is the persisted tier. Implementations report failures; the cache
// treats a failed read as a miss and ignores failed writes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// Clear deletes every key starting with prefix.
	Clear(ctx context.Context, prefix string) error
}

// NopStore is a disabled persisted tier.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Del(context.Context, string) error                        { return nil }
func (NopStore) Clear(context.Context, string) error                      { return nil }

// RedisStore keeps entries in Redis. The Redis expiry is set to the TTL as
// well, the timestamp inside the entry stays authoritative.
type RedisStore struct {
	rc *redis.Client
}

func NewRedisStore(rc *redis.Client) *RedisStore { return &RedisStore{rc: rc} }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rc.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "redis get %s", key)
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return eris.Wrapf(s.rc.Set(ctx, key, val, ttl).Err(), "redis set %s", key)
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return eris.Wrapf(s.rc.Del(ctx, key).Err(), "redis del %s", key)
}

func (s *RedisStore) Clear(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := s.rc.Scan(ctx, cursor, prefix+"*", 500).Result()
		if err != nil {
			return eris.Wrapf(err, "redis scan %s", prefix)
		}
		if len(keys) > 0 {
			if err := s.rc.Del(ctx, keys...).Err(); err != nil {
				return eris.Wrapf(err, "redis del %s*", prefix)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// DirStore keeps one file per key under a directory. Keys are query-escaped
// into file names.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "mkdir %s", dir)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

func (s *DirStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "read %s", key)
	}
	return b, true, nil
}

func (s *DirStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	fp := s.path(key)
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, val, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", key)
	}
	return eris.Wrapf(os.Rename(tmp, fp), "rename %s", key)
}

func (s *DirStore) Del(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "remove %s", key)
	}
	return nil
}

func (s *DirStore) Clear(ctx context.Context, prefix string) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return eris.Wrapf(err, "read %s", s.dir)
	}
	for _, ent := range entries {
		name := strings.TrimSuffix(ent.Name(), ".json")
		key, err := url.QueryUnescape(name)
		if err != nil || !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, ent.Name())); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "remove %s", key)
		}
	}
	return nil
}
