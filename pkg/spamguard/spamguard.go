// Package spamguard — Mesaj spam koruması.
//
// Her (scope, userID) çifti için sliding window rate limit + duplicate
// content tespiti yapar. Scope bir kanal id'si veya DM conversation id'sidir.
//
// Karar akışı (Check):
//  1. Rate window'dan eski timestamp'ler ve dup window'dan eski
//     fingerprint'ler temizlenir.
//  2. blockedUntil geçilmemişse → RateLimited (kalan saniye ile).
//  3. Window içi mesaj sayısı limiti aşarsa → blok başlat, reddet.
//  4. Normalize edilmiş fingerprint window içinde maxIdentical kez
//     görüldüyse → blok başlat, reddet.
//  5. Aksi halde kabul: timestamp + fingerprint kaydedilir.
//
// Guard in-process, best-effort bir yaklaşımdır: state paylaşımsızdır ve
// yatay ölçeklemede pencereler sadece instance-local tutarlıdır. Çapraz
// instance doğruluk gerekiyorsa RedisStore backend'i kullanılır — o da
// read-modify-write yaptığı için kesin sayım değil, yaklaşık sayımdır.
//
// Clock ve Store inject edilir: test'te fake clock, deploy'da memory veya
// redis store. Guard process başında bir kez kurulur ve handle olarak taşınır,
// ambient global state yoktur.
package spamguard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/veyra-chat/server/pkg"
)

// Varsayılan eşikler ve kabul edilen aralıklar.
// Aralık dışı bir option sessizce varsayılana döner — tek bir yanlış
// konfigürasyon değeri tüm mesajlaşmayı kilitleyemez.
const (
	DefaultRateWindow    = 10 * time.Second
	DefaultMaxPerWindow  = 6
	DefaultDupWindow     = 15 * time.Second
	DefaultMaxIdentical  = 2
	DefaultBlockDuration = 15 * time.Second
)

// emptyFingerprint, boş içeriğin sentinel fingerprint'i.
// Boş mesajlar da duplicate sayımına girer.
const emptyFingerprint = "<empty>"

// Clock, zaman kaynağı soyutlaması. Test'lerde fake clock geçilir.
type Clock interface {
	Now() time.Time
}

// SystemClock, gerçek zamanı kullanan Clock implementasyonu.
type SystemClock struct{}

// Now, time.Now döner.
func (SystemClock) Now() time.Time { return time.Now() }

// Options, guard eşikleri. Sıfır değerler varsayılana düşer.
type Options struct {
	RateWindow    time.Duration // Mesaj sayma penceresi
	MaxPerWindow  int           // Pencere başına mesaj limiti
	DupWindow     time.Duration // Duplicate fingerprint penceresi
	MaxIdentical  int           // İzin verilen özdeş mesaj sayısı
	BlockDuration time.Duration // Limit aşımında blok süresi
}

// normalize, her option'ı bağımsız olarak kendi aralığına göre doğrular.
func (o Options) normalize() Options {
	if o.RateWindow < time.Second || o.RateWindow > 2*time.Minute {
		o.RateWindow = DefaultRateWindow
	}
	if o.MaxPerWindow < 1 || o.MaxPerWindow > 100 {
		o.MaxPerWindow = DefaultMaxPerWindow
	}
	if o.DupWindow < time.Second || o.DupWindow > 5*time.Minute {
		o.DupWindow = DefaultDupWindow
	}
	if o.MaxIdentical < 1 || o.MaxIdentical > 20 {
		o.MaxIdentical = DefaultMaxIdentical
	}
	if o.BlockDuration < time.Second || o.BlockDuration > 10*time.Minute {
		o.BlockDuration = DefaultBlockDuration
	}
	return o
}

// Guard, spam koruması state machine'i.
type Guard struct {
	opts  Options
	clock Clock
	store Store
}

// New, yeni bir Guard oluşturur.
// clock veya store nil ise sistem saati ve in-memory store kullanılır.
func New(opts Options, clock Clock, store Store) *Guard {
	if clock == nil {
		clock = SystemClock{}
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Guard{
		opts:  opts.normalize(),
		clock: clock,
		store: store,
	}
}

// Check, bir aday mesajı değerlendirir.
//
// Kabul → nil. Red → pkg.ErrRateLimited'a sarılı, kalan bekleme süresini
// insan-okunur şekilde taşıyan error. Retry-After değeri için
// RetryAfterSeconds ile çözülebilir.
func (g *Guard) Check(ctx context.Context, scope, userID, content string) error {
	now := g.clock.Now()
	key := scope + ":" + userID

	state, err := g.store.Get(ctx, key)
	if err != nil {
		// Store hatası mesajlaşmayı durdurmamalı — guard best-effort'tur.
		return nil
	}
	if state == nil {
		state = &State{}
	}

	// 1. Eski kayıtları buda
	state.prune(now, g.opts.RateWindow, g.opts.DupWindow)

	// 2. Aktif blok kontrolü
	if now.Before(state.BlockedUntil) {
		return g.blockedErr(state, now)
	}

	// 3. Rate window kontrolü
	if len(state.Timestamps) >= g.opts.MaxPerWindow {
		state.BlockedUntil = now.Add(g.opts.BlockDuration)
		g.put(ctx, key, state)
		return g.blockedErr(state, now)
	}

	// 4. Duplicate kontrolü
	fp := Fingerprint(content)
	identical := 0
	for _, seen := range state.Fingerprints {
		if seen.Value == fp {
			identical++
		}
	}
	if identical >= g.opts.MaxIdentical {
		state.BlockedUntil = now.Add(g.opts.BlockDuration)
		g.put(ctx, key, state)
		return g.blockedErr(state, now)
	}

	// 5. Kabul
	state.Timestamps = append(state.Timestamps, now)
	state.Fingerprints = append(state.Fingerprints, SeenFingerprint{Value: fp, At: now})
	g.put(ctx, key, state)
	return nil
}

// put, state'i TTL ile store'a yazar. Yazma hatası yutulur (best-effort).
func (g *Guard) put(ctx context.Context, key string, state *State) {
	ttl := g.opts.RateWindow
	if g.opts.DupWindow > ttl {
		ttl = g.opts.DupWindow
	}
	if g.opts.BlockDuration > ttl {
		ttl = g.opts.BlockDuration
	}
	_ = g.store.Put(ctx, key, state, 2*ttl)
}

// blockedErr, kalan bekleme süresini taşıyan RateLimited hatası üretir.
// +1 yuvarlama — client'ın tam süreyi beklemesi için.
func (g *Guard) blockedErr(state *State, now time.Time) error {
	seconds := int(state.BlockedUntil.Sub(now).Seconds()) + 1
	return fmt.Errorf("%w: try again in %d second(s)", pkg.ErrRateLimited, seconds)
}

// Fingerprint, içeriği duplicate karşılaştırması için kanonik forma çevirir:
// Unicode NFKC normalize → lowercase → whitespace collapse → trim.
// Boş içerik sentinel fingerprint'e map'lenir.
func Fingerprint(content string) string {
	normalized := norm.NFKC.String(content)
	normalized = strings.ToLower(normalized)
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return emptyFingerprint
	}
	return strings.Join(fields, " ")
}
