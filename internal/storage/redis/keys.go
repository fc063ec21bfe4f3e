package redis

import "fmt"

// Key prefix used when the config does not set one
const defaultKeyPrefix = "scorepad"

// storageKey returns the Redis key for a logical storage key
func (s *Storage) storageKey(key string) string {
	prefix := s.cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return fmt.Sprintf("%s:%s", prefix, key)
}
