// Package presence implements the ephemeral Presence Store: TTL-based
// online/offline tracking in Redis, grounded on the teacher's
// gateway.UserMap setOnline/setOffline/RefreshOnlineStatus methods, pulled
// out into its own package so it is independently testable.
package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttl = 60 * time.Second

// Store wraps the shared redis client with presence-specific key handling.
type Store struct {
	rdb       *redis.Client
	keyPrefix string
}

func New(rdb *redis.Client, keyPrefix string) *Store {
	return &Store{rdb: rdb, keyPrefix: keyPrefix}
}

func (s *Store) key(userId string) string {
	return fmt.Sprintf("%suser:%s:online", s.keyPrefix, userId)
}

// MarkOnline sets the presence key with a 60s TTL (handshake success).
func (s *Store) MarkOnline(ctx context.Context, userId string) error {
	return s.rdb.Set(ctx, s.key(userId), "1", ttl).Err()
}

// Heartbeat extends the key's TTL by 60s via an atomic expiry refresh
// rather than a write+delete, per §4.6.
func (s *Store) Heartbeat(ctx context.Context, userId string) error {
	ok, err := s.rdb.Expire(ctx, s.key(userId), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		// Key had already expired or never existed; re-create it so a late
		// heartbeat still results in an online user rather than silently
		// doing nothing.
		return s.MarkOnline(ctx, userId)
	}
	return nil
}

// MarkOffline deletes the presence key (clean disconnect).
func (s *Store) MarkOffline(ctx context.Context, userId string) error {
	return s.rdb.Del(ctx, s.key(userId)).Err()
}

// IsOnline tests key existence.
func (s *Store) IsOnline(ctx context.Context, userId string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(userId)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListOnline scans keys with prefix "user:" and suffix ":online" and parses
// out the id segment, per §4.6 "list online users".
func (s *Store) ListOnline(ctx context.Context) ([]string, error) {
	pattern := s.keyPrefix + "user:*:online"
	var ids []string
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			trimmed := strings.TrimPrefix(k, s.keyPrefix+"user:")
			trimmed = strings.TrimSuffix(trimmed, ":online")
			ids = append(ids, trimmed)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}
