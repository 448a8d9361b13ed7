// Store backend'leri.
//
// MemoryStore tek instance deploy için yeterlidir — mutex'li map + arka plan
// temizleme goroutine'i. Paylaşımlı sayım gerektiğinde RedisStore kullanılır
// (redis.go); Guard hangisi verilirse onunla çalışır, ikisini ayırt etmez.
package spamguard

import (
	"context"
	"sync"
	"time"
)

// SeenFingerprint, bir fingerprint ve görülme zamanı.
type SeenFingerprint struct {
	Value string    `json:"v"`
	At    time.Time `json:"at"`
}

// State, bir (scope, userID) anahtarının spam takip durumu.
// JSON tag'leri RedisStore'un blob serialize'ı içindir.
type State struct {
	Timestamps   []time.Time       `json:"ts"`
	Fingerprints []SeenFingerprint `json:"fp"`
	BlockedUntil time.Time         `json:"blocked_until"`
}

// prune, pencerelerin dışında kalan kayıtları düşürür.
func (s *State) prune(now time.Time, rateWindow, dupWindow time.Duration) {
	kept := s.Timestamps[:0]
	for _, ts := range s.Timestamps {
		if now.Sub(ts) < rateWindow {
			kept = append(kept, ts)
		}
	}
	s.Timestamps = kept

	keptFP := s.Fingerprints[:0]
	for _, fp := range s.Fingerprints {
		if now.Sub(fp.At) < dupWindow {
			keptFP = append(keptFP, fp)
		}
	}
	s.Fingerprints = keptFP
}

// Store, guard state'inin key-value soyutlaması.
// Get, anahtar yoksa (nil, nil) döner.
type Store interface {
	Get(ctx context.Context, key string) (*State, error)
	Put(ctx context.Context, key string, state *State, ttl time.Duration) error
}

// memoryEntry, MemoryStore'daki bir kayıt ve son kullanma zamanı.
type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// MemoryStore, process-local Store implementasyonu.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	stop    chan struct{}
}

// NewMemoryStore, in-memory store oluşturur ve arka plan temizleme
// goroutine'ini başlatır (uzun süre çalışan sunucuda bellek birikmesini önler).
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Get, anahtarın state'ini döner; yoksa veya süresi dolmuşsa nil.
func (s *MemoryStore) Get(_ context.Context, key string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}

	// Kopya dönülür — caller state'i serbestçe mutate edip Put ile geri yazar.
	cp := *e.state
	cp.Timestamps = append([]time.Time(nil), e.state.Timestamps...)
	cp.Fingerprints = append([]SeenFingerprint(nil), e.state.Fingerprints...)
	return &cp, nil
}

// Put, state'i TTL ile yazar.
func (s *MemoryStore) Put(_ context.Context, key string, state *State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &memoryEntry{state: state, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Close, temizleme goroutine'ini durdurur.
func (s *MemoryStore) Close() {
	close(s.stop)
}

// cleanupLoop, süresi dolmuş kayıtları periyodik olarak siler.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
