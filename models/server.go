// Package models — Server domain modeli.
//
// Server, bir sunucuyu (guild) temsil eder. Her sunucunun tam olarak bir
// sahibi vardır; sahiplik transferi desteklenmez. Sunucu seviyesindeki
// policy flag'leri, admin dışı rollerin hangi sunucu-geneli işlemleri
// yapabileceğini belirler.
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ServerPolicy, sunucu-geneli boolean policy flag'leri.
//
// Kanal izinlerinden farkı: bunlar kanala değil sunucuya bağlıdır ve
// moderator/member için ortak tek flag vardır. Admin her zaman izinlidir —
// aynı Role.Allowed basamaklaması, iki rol için de aynı flag geçilerek
// uygulanır.
type ServerPolicy struct {
	AllowMemberInvites     bool `json:"allow_member_invites"`
	AllowSoundUpload       bool `json:"allow_sound_upload"`
	AllowSoundDelete       bool `json:"allow_sound_delete"`
	AllowStickerCreate     bool `json:"allow_sticker_create"`
	AllowEmojiCreate       bool `json:"allow_emoji_create"`
	AllowCrossServerSounds bool `json:"allow_cross_server_sounds"`
}

// VirusScanConfig, opsiyonel virüs tarama entegrasyonu ayarları.
// Enabled true yapılabilmesi için APIKey'in dolu olması gerekir
// (mevcut config'de veya aynı istekte).
type VirusScanConfig struct {
	Enabled bool    `json:"enabled"`
	APIKey  *string `json:"-"` // API key response'larda asla dönülmez
}

// Server, sunucu verisini temsil eder.
// DB'deki "servers" tablosunun Go karşılığıdır.
type Server struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Name      string          `json:"name"`
	IconURL   *string         `json:"icon_url"`
	BannerURL *string         `json:"banner_url"`
	Policy    ServerPolicy    `json:"policy"`
	VirusScan VirusScanConfig `json:"virus_scan"`
	CreatedAt time.Time       `json:"created_at"`
}

// Sunucu-geneli action gate'leri. Admin her zaman izinli;
// moderator ve member için ilgili policy flag'i geçerli.

// AllowsInviteCreate, rolün davet kodu oluşturup oluşturamayacağını döner.
func (s *Server) AllowsInviteCreate(role Role) bool {
	return role.Allowed(s.Policy.AllowMemberInvites, s.Policy.AllowMemberInvites)
}

// AllowsSoundUpload, rolün ses dosyası yükleyip yükleyemeyeceğini döner.
func (s *Server) AllowsSoundUpload(role Role) bool {
	return role.Allowed(s.Policy.AllowSoundUpload, s.Policy.AllowSoundUpload)
}

// AllowsSoundDelete, rolün ses dosyası silip silemeyeceğini döner.
func (s *Server) AllowsSoundDelete(role Role) bool {
	return role.Allowed(s.Policy.AllowSoundDelete, s.Policy.AllowSoundDelete)
}

// AllowsStickerCreate, rolün sticker oluşturup oluşturamayacağını döner.
func (s *Server) AllowsStickerCreate(role Role) bool {
	return role.Allowed(s.Policy.AllowStickerCreate, s.Policy.AllowStickerCreate)
}

// AllowsEmojiCreate, rolün emoji oluşturup oluşturamayacağını döner.
func (s *Server) AllowsEmojiCreate(role Role) bool {
	return role.Allowed(s.Policy.AllowEmojiCreate, s.Policy.AllowEmojiCreate)
}

// AllowsCrossServerSounds, rolün başka sunucudan ses paylaşıp
// paylaşamayacağını döner.
func (s *Server) AllowsCrossServerSounds(role Role) bool {
	return role.Allowed(s.Policy.AllowCrossServerSounds, s.Policy.AllowCrossServerSounds)
}

// AssetAction, blob collaborator'ının yetki sorduğu asset aksiyonları.
// Binary işleme bu çekirdeğin dışındadır — çekirdek sadece karar verir.
type AssetAction string

const (
	AssetSoundUpload      AssetAction = "sound_upload"
	AssetSoundDelete      AssetAction = "sound_delete"
	AssetStickerCreate    AssetAction = "sticker_create"
	AssetEmojiCreate      AssetAction = "emoji_create"
	AssetCrossServerSound AssetAction = "cross_server_sound"
)

// Valid, aksiyonun tanınan bir değer olup olmadığını döner.
func (a AssetAction) Valid() bool {
	switch a {
	case AssetSoundUpload, AssetSoundDelete, AssetStickerCreate, AssetEmojiCreate, AssetCrossServerSound:
		return true
	default:
		return false
	}
}

// AllowsAssetAction, aksiyonu ilgili policy gate'ine yönlendirir.
// Bilinmeyen aksiyon false döner.
func (s *Server) AllowsAssetAction(action AssetAction, role Role) bool {
	switch action {
	case AssetSoundUpload:
		return s.AllowsSoundUpload(role)
	case AssetSoundDelete:
		return s.AllowsSoundDelete(role)
	case AssetStickerCreate:
		return s.AllowsStickerCreate(role)
	case AssetEmojiCreate:
		return s.AllowsEmojiCreate(role)
	case AssetCrossServerSound:
		return s.AllowsCrossServerSounds(role)
	default:
		return false
	}
}

// CreateServerRequest, yeni sunucu oluşturma isteği.
type CreateServerRequest struct {
	Name string `json:"name"`
}

// Validate, CreateServerRequest kontrolü.
func (r *CreateServerRequest) Validate() error {
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("server name must be between 1 and 100 characters")
	}
	return nil
}

// UpdateServerSettingsRequest, sunucu ayar güncelleme isteği.
//
// Tek istek içinde üç bağımsız yetki katmanı vardır; service katmanı
// her katmanı ayrı kontrol eder:
//   - Owner-only: Name, IconURL, VirusScanEnabled, VirusScanAPIKey
//   - Admin-or-owner: Policy flag'leri
//   - Owner/admin/moderator: BannerURL
//
// Partial update: nil field'lar değiştirilmez.
type UpdateServerSettingsRequest struct {
	// Owner-only alanlar
	Name             *string `json:"name"`
	IconURL          *string `json:"icon_url"`
	VirusScanEnabled *bool   `json:"virus_scan_enabled"`
	VirusScanAPIKey  *string `json:"virus_scan_api_key"`

	// Admin-or-owner alanlar
	AllowMemberInvites     *bool `json:"allow_member_invites"`
	AllowSoundUpload       *bool `json:"allow_sound_upload"`
	AllowSoundDelete       *bool `json:"allow_sound_delete"`
	AllowStickerCreate     *bool `json:"allow_sticker_create"`
	AllowEmojiCreate       *bool `json:"allow_emoji_create"`
	AllowCrossServerSounds *bool `json:"allow_cross_server_sounds"`

	// Banner katmanı (owner, admin veya moderator)
	BannerURL *string `json:"banner_url"`
}

// Validate, UpdateServerSettingsRequest kontrolü.
func (r *UpdateServerSettingsRequest) Validate() error {
	if r.Name != nil {
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("server name must be between 1 and 100 characters")
		}
	}
	return nil
}

// TouchesOwnerFields, istekte owner-only alan olup olmadığını döner.
func (r *UpdateServerSettingsRequest) TouchesOwnerFields() bool {
	return r.Name != nil || r.IconURL != nil ||
		r.VirusScanEnabled != nil || r.VirusScanAPIKey != nil
}

// TouchesPolicyFields, istekte admin-or-owner alan olup olmadığını döner.
func (r *UpdateServerSettingsRequest) TouchesPolicyFields() bool {
	return r.AllowMemberInvites != nil || r.AllowSoundUpload != nil ||
		r.AllowSoundDelete != nil || r.AllowStickerCreate != nil ||
		r.AllowEmojiCreate != nil || r.AllowCrossServerSounds != nil
}

// TouchesBannerFields, istekte banner alanı olup olmadığını döner.
func (r *UpdateServerSettingsRequest) TouchesBannerFields() bool {
	return r.BannerURL != nil
}
