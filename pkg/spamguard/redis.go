// RedisStore — Çoklu instance deploy için paylaşımlı Store backend'i.
//
// State tek bir JSON blob olarak saklanır ve TTL redis tarafında işler.
// Read-modify-write atomik değildir: iki instance aynı anahtarı aynı anda
// güncellerse bir yazma kaybolabilir. Guard zaten yaklaşık sayım yapar —
// bu kayıp kabul edilen bir yaklasıklıktır, doğruluk garantisi değildir.
package spamguard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "spamguard:"

// RedisStore, go-redis üzerinden çalışan Store implementasyonu.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore, verilen adrese bağlanan store oluşturur ve bağlantıyı test eder.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get, anahtarın state'ini döner; yoksa (nil, nil).
func (s *RedisStore) Get(ctx context.Context, key string) (*State, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		// Bozuk blob — yok say, yeni state ile devam edilir.
		return nil, nil
	}
	return &state, nil
}

// Put, state'i TTL ile yazar.
func (s *RedisStore) Put(ctx context.Context, key string, state *State, ttl time.Duration) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal spamguard state: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close, redis bağlantısını kapatır.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
