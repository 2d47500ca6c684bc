package keyval

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps every transport-level failure returned by the store,
// so callers can classify storage outages with errors.Is without depending
// on the redis package.
var ErrUnavailable = errors.New("keyval: storage unavailable")

// Store is a prefix-namespaced durable key-value store.
//
// Store instances are intended to be configured during initialization and
// then treated as immutable. All methods are safe for concurrent use.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewStore creates a Store over the given Redis client. All keys are stored
// under "<prefix>:".
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	return &Store{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (s *Store) key(k string) string {
	return s.prefix + ":" + k
}

// Get reads the value stored under key. The second return value reports
// whether the key was present; an absent key is not an error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	return val, true, nil
}

// Set durably stores value under key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key succeeds; the contract requires
// Delete to be idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrUnavailable, key, err)
	}
	return nil
}
