// Package models — ServerRestriction domain modeli.
//
// Restriction state machine:
//
//	created (aktif) ──► revoked  (açık geri alma, terminal)
//	        └────────► expired  (örtük, terminal — expires_at geçince)
//
// Geri dönüş yoktur: yeni bir ban/timeout her zaman yeni kayıttır.
// Expiry lazy değerlendirilir — arka plan temizliği yoktur, her okumada
// IsActiveAt ile kontrol edilir.
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// RestrictionType, kısıtlama türünü temsil eden kapalı tip.
type RestrictionType string

const (
	RestrictionServerBan    RestrictionType = "server_ban"
	RestrictionVoiceTimeout RestrictionType = "voice_timeout"
)

// Voice timeout süresi sınırları (dakika).
// İstenen süre bu aralığa clamp edilir.
const (
	MinTimeoutMinutes = 1
	MaxTimeoutMinutes = 4320 // 3 gün
)

// ServerRestriction, bir (server, user) çifti üzerindeki zaman-sınırlı
// veya kalıcı kısıtlamayı temsil eder.
type ServerRestriction struct {
	ID        string          `json:"id"`
	ServerID  string          `json:"server_id"`
	UserID    string          `json:"user_id"`
	Type      RestrictionType `json:"type"`
	ActorID   string          `json:"actor_id"`
	Reason    *string         `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt *time.Time      `json:"expires_at"` // nil = kalıcı
	RevokedAt *time.Time      `json:"revoked_at"` // nil = geri alınmamış
}

// IsActiveAt, kısıtlamanın verilen anda aktif olup olmadığını döner.
// Aktif ⇔ revoked_at boş ∧ (expires_at boş ∨ expires_at > now).
func (r *ServerRestriction) IsActiveAt(now time.Time) bool {
	if r.RevokedAt != nil {
		return false
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return false
	}
	return true
}

// ClampTimeoutMinutes, istenen timeout süresini [1, 4320] aralığına çeker.
func ClampTimeoutMinutes(minutes int) int {
	if minutes < MinTimeoutMinutes {
		return MinTimeoutMinutes
	}
	if minutes > MaxTimeoutMinutes {
		return MaxTimeoutMinutes
	}
	return minutes
}

// BanRequest, ban oluşturma isteği.
type BanRequest struct {
	Reason string `json:"reason"`
}

// Validate, BanRequest kontrolü.
func (r *BanRequest) Validate() error {
	if utf8.RuneCountInString(r.Reason) > 512 {
		return fmt.Errorf("ban reason must be at most 512 characters")
	}
	return nil
}

// TimeoutRequest, voice timeout isteği.
type TimeoutRequest struct {
	Minutes int    `json:"minutes"`
	Reason  string `json:"reason"`
}

// Validate, TimeoutRequest kontrolü.
// Pozitif Minutes kabul edilir; [1, 4320] aralığına clamp servis katmanında yapılır.
func (r *TimeoutRequest) Validate() error {
	if r.Minutes <= 0 {
		return fmt.Errorf("timeout duration must be positive")
	}
	if utf8.RuneCountInString(r.Reason) > 512 {
		return fmt.Errorf("timeout reason must be at most 512 characters")
	}
	return nil
}
