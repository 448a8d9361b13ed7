package spamguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veyra-chat/server/pkg"
)

// fakeClock, test edilen zamanı elle ilerletir.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestGuard() (*Guard, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	guard := New(Options{
		RateWindow:    10 * time.Second,
		MaxPerWindow:  3,
		DupWindow:     15 * time.Second,
		MaxIdentical:  2,
		BlockDuration: 20 * time.Second,
	}, clock, NewMemoryStore())
	return guard, clock
}

func TestGuardAllowsUnderLimit(t *testing.T) {
	guard, _ := newTestGuard()
	ctx := context.Background()

	for i, msg := range []string{"bir", "iki", "üç"} {
		if err := guard.Check(ctx, "conv1", "u1", msg); err != nil {
			t.Fatalf("message %d should be accepted: %v", i, err)
		}
	}
}

func TestGuardRateLimitBlocks(t *testing.T) {
	guard, clock := newTestGuard()
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c"} {
		if err := guard.Check(ctx, "conv1", "u1", msg); err != nil {
			t.Fatalf("setup message rejected: %v", err)
		}
	}

	// 4. mesaj pencere limitini aşar → blok.
	err := guard.Check(ctx, "conv1", "u1", "d")
	if !errors.Is(err, pkg.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// Blok süresi boyunca içerikten bağımsız red.
	clock.advance(5 * time.Second)
	if err := guard.Check(ctx, "conv1", "u1", "farklı içerik"); !errors.Is(err, pkg.ErrRateLimited) {
		t.Errorf("still blocked, expected ErrRateLimited, got %v", err)
	}

	// Blok bitince kabul. 25s sonra rate window da boşalmış durumda.
	clock.advance(25 * time.Second)
	if err := guard.Check(ctx, "conv1", "u1", "yeni mesaj"); err != nil {
		t.Errorf("after block expiry message should be accepted: %v", err)
	}
}

func TestGuardRateWindowSlides(t *testing.T) {
	guard, clock := newTestGuard()
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c"} {
		if err := guard.Check(ctx, "conv1", "u1", msg); err != nil {
			t.Fatalf("setup message rejected: %v", err)
		}
	}

	// Pencere kayınca eski timestamp'ler düşer, yeni mesaj sığar.
	clock.advance(11 * time.Second)
	if err := guard.Check(ctx, "conv1", "u1", "d"); err != nil {
		t.Errorf("message outside the window should be accepted: %v", err)
	}
}

func TestGuardDuplicateDetection(t *testing.T) {
	guard, _ := newTestGuard()
	ctx := context.Background()

	// maxIdentical=2: aynı içerik iki kez kabul, üçüncüsü blok.
	for i := 0; i < 2; i++ {
		if err := guard.Check(ctx, "conv1", "u1", "selam millet"); err != nil {
			t.Fatalf("duplicate %d should still be accepted: %v", i+1, err)
		}
	}

	err := guard.Check(ctx, "conv1", "u1", "selam millet")
	if !errors.Is(err, pkg.ErrRateLimited) {
		t.Fatalf("third identical message should be blocked, got %v", err)
	}
}

func TestGuardDuplicateUsesNormalizedFingerprint(t *testing.T) {
	guard, _ := newTestGuard()
	ctx := context.Background()

	// Case ve whitespace farkları aynı fingerprint'e düşer.
	variants := []string{"Selam   Millet", "selam millet", "SELAM MILLET "}
	if err := guard.Check(ctx, "conv1", "u1", variants[0]); err != nil {
		t.Fatalf("first variant rejected: %v", err)
	}
	if err := guard.Check(ctx, "conv1", "u1", variants[1]); err != nil {
		t.Fatalf("second variant rejected: %v", err)
	}
	if err := guard.Check(ctx, "conv1", "u1", variants[2]); !errors.Is(err, pkg.ErrRateLimited) {
		t.Errorf("normalized duplicates should trip the limit, got %v", err)
	}
}

func TestGuardScopesAreIndependent(t *testing.T) {
	guard, _ := newTestGuard()
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c", "d"} {
		_ = guard.Check(ctx, "conv1", "u1", msg)
	}

	// conv1'de bloklanmış kullanıcı conv2'de temiz başlar.
	if err := guard.Check(ctx, "conv2", "u1", "merhaba"); err != nil {
		t.Errorf("different scope should have independent counters: %v", err)
	}
	// Aynı scope'ta farklı kullanıcı da bağımsızdır.
	if err := guard.Check(ctx, "conv1", "u2", "merhaba"); err != nil {
		t.Errorf("different user should have independent counters: %v", err)
	}
}

func TestOptionsNormalizeBoundsEachIndependently(t *testing.T) {
	opts := Options{
		RateWindow:    time.Hour, // aralık dışı → varsayılan
		MaxPerWindow:  5,         // geçerli → korunur
		DupWindow:     0,         // aralık dışı → varsayılan
		MaxIdentical:  500,       // aralık dışı → varsayılan
		BlockDuration: 30 * time.Second,
	}.normalize()

	if opts.RateWindow != DefaultRateWindow {
		t.Errorf("out-of-range RateWindow should fall back, got %v", opts.RateWindow)
	}
	if opts.MaxPerWindow != 5 {
		t.Errorf("valid MaxPerWindow should be kept, got %d", opts.MaxPerWindow)
	}
	if opts.DupWindow != DefaultDupWindow {
		t.Errorf("zero DupWindow should fall back, got %v", opts.DupWindow)
	}
	if opts.MaxIdentical != DefaultMaxIdentical {
		t.Errorf("out-of-range MaxIdentical should fall back, got %d", opts.MaxIdentical)
	}
	if opts.BlockDuration != 30*time.Second {
		t.Errorf("valid BlockDuration should be kept, got %v", opts.BlockDuration)
	}
}

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"case folded", "Merhaba", "merhaba", true},
		{"whitespace collapsed", "bir  iki\tüç", "bir iki üç", true},
		{"trimmed", "  selam  ", "selam", true},
		{"nfkc normalized", "ﬁle", "file", true}, // U+FB01 ligature
		{"different content", "selam", "merhaba", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(tt.a) == Fingerprint(tt.b)
			if got != tt.same {
				t.Errorf("Fingerprint(%q) == Fingerprint(%q): %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}

	if Fingerprint("") != Fingerprint("   ") {
		t.Error("empty and whitespace-only content should share the sentinel fingerprint")
	}
}
