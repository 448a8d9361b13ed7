// Package models — User domain modeli.
//
// Kullanıcı hesapları üç yoldan oluşur:
// 1. Açık kayıt (register) — şifre hash'lenir
// 2. Davet kabulü sırasında ilk referans (ensure)
// 3. Sistem tarafından otomatik oluşturma
//
// 2 ve 3'te password_hash sentinel değerdir — bu hesaplar şifresizdir ve
// davet kabulü gibi "gerçek hesap" gerektiren işlemlerde reddedilir.
//
// Kullanıcı asla hard-delete edilmez: silme işlemi anonimleştirir
// (display name değiştirilir, hash sentinel'e çekilir, avatar temizlenir).
// Mesaj geçmişindeki foreign key'ler böylece bozulmaz.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// PasswordSentinel, şifresiz / sistem tarafından oluşturulmuş hesapları
// işaretleyen hash değeri. bcrypt çıktısı asla "*" olamaz.
const PasswordSentinel = "*"

// AnonymizedDisplayName, silinen hesapların görünen adı.
const AnonymizedDisplayName = "Deleted User"

// AudioInputMode, kullanıcının ses giriş tercihi.
type AudioInputMode string

const (
	AudioInputVoiceActivity AudioInputMode = "voice_activity"
	AudioInputPushToTalk    AudioInputMode = "push_to_talk"
)

// User, bir kullanıcı hesabını temsil eder.
// Username her zaman normalize edilmiş lowercase saklanır.
type User struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	DisplayName    *string        `json:"display_name"`
	DisplayColor   *string        `json:"display_color"`
	PasswordHash   string         `json:"-"` // JSON'a asla serialize edilmez
	AvatarURL      *string        `json:"avatar_url"`
	AudioInputMode AudioInputMode `json:"audio_input_mode"`
	NotifySounds   bool           `json:"notify_sounds"`
	CreatedAt      time.Time      `json:"created_at"`
}

// HasRealCredential, hesabın gerçek bir şifreyle oluşturulup
// oluşturulmadığını döner. Davet kabulü placeholder hesaplarla yapılamaz.
func (u *User) HasRealCredential() bool {
	return u.PasswordHash != "" && u.PasswordHash != PasswordSentinel
}

// NormalizeUsername, kullanıcı adını kanonik forma çevirir:
// trim + lowercase. Tüm lookup'lar bu form üzerinden yapılır.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// RegisterRequest, açık kayıt isteği.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, RegisterRequest kontrolü.
func (r *RegisterRequest) Validate() error {
	r.Username = NormalizeUsername(r.Username)
	if err := validateUsername(r.Username); err != nil {
		return err
	}

	passLen := utf8.RuneCountInString(r.Password)
	if passLen < 8 || passLen > 128 {
		return fmt.Errorf("password must be between 8 and 128 characters")
	}
	return nil
}

// LoginRequest, giriş isteği.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, LoginRequest kontrolü.
func (r *LoginRequest) Validate() error {
	r.Username = NormalizeUsername(r.Username)
	if r.Username == "" || r.Password == "" {
		return fmt.Errorf("username and password are required")
	}
	return nil
}

// UpdateProfileRequest, kullanıcının kendi profil güncelleme isteği.
// Partial update: nil field'lar değiştirilmez.
type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name"`
	DisplayColor   *string `json:"display_color"`
	AvatarURL      *string `json:"avatar_url"`
	AudioInputMode *string `json:"audio_input_mode"`
	NotifySounds   *bool   `json:"notify_sounds"`
}

// Validate, UpdateProfileRequest kontrolü.
func (r *UpdateProfileRequest) Validate() error {
	if r.DisplayName != nil {
		*r.DisplayName = strings.TrimSpace(*r.DisplayName)
		if utf8.RuneCountInString(*r.DisplayName) > 64 {
			return fmt.Errorf("display name must be at most 64 characters")
		}
	}
	if r.DisplayColor != nil && *r.DisplayColor != "" {
		if !isHexColor(*r.DisplayColor) {
			return fmt.Errorf("display color must be a hex color like #a1b2c3")
		}
	}
	if r.AudioInputMode != nil {
		mode := AudioInputMode(*r.AudioInputMode)
		if mode != AudioInputVoiceActivity && mode != AudioInputPushToTalk {
			return fmt.Errorf("audio input mode must be 'voice_activity' or 'push_to_talk'")
		}
	}
	return nil
}

// validateUsername, kullanıcı adı shape/length/charset kontrolü.
// Mutasyondan önce çağrılır — geçersiz ad hiçbir zaman DB'ye ulaşmaz.
func validateUsername(username string) error {
	nameLen := utf8.RuneCountInString(username)
	if nameLen < 2 || nameLen > 32 {
		return fmt.Errorf("username must be between 2 and 32 characters")
	}
	for _, ch := range username {
		if !unicode.IsLower(ch) && !unicode.IsDigit(ch) && ch != '_' && ch != '.' {
			return fmt.Errorf("username may only contain lowercase letters, digits, '_' and '.'")
		}
	}
	return nil
}

// isHexColor, "#rrggbb" formatını kontrol eder.
func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, ch := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", ch) {
			return false
		}
	}
	return true
}
