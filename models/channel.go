package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ChannelType, kanalın türünü temsil eder (text veya voice).
type ChannelType string

const (
	ChannelTypeText  ChannelType = "text"
	ChannelTypeVoice ChannelType = "voice"
)

// ChannelFlags, bir rol katmanının (member veya moderator) kanal üzerindeki
// 6 bağımsız iznini taşır. Kanalda iki set bulunur: Member ve Moderator.
// Admin için flag yoktur — her capability'de örtük izinli.
//
// View ile Access ayrımı:
// Access, kanalın görünür/girilebilir olup olmadığını belirler.
// View, üye listesine gönderilmeden önce kanal listesinin filtrelenmesinde
// kullanılır — Access'i olmayan bir rol kanalı hiç görmez bile.
type ChannelFlags struct {
	View           bool `json:"view"`
	Access         bool `json:"access"`
	SendMessages   bool `json:"send_messages"`
	SendFiles      bool `json:"send_files"`
	SendLinks      bool `json:"send_links"`
	DeleteMessages bool `json:"delete_messages"`
}

// DefaultChannelFlags, yeni kanal için varsayılan izin seti.
// Member'lar başkalarının mesajlarını silemez, gerisi açık.
func DefaultChannelFlags(role Role) ChannelFlags {
	return ChannelFlags{
		View:           true,
		Access:         true,
		SendMessages:   true,
		SendFiles:      true,
		SendLinks:      true,
		DeleteMessages: role == RoleModerator,
	}
}

// Channel, bir sunucu kanalını temsil eder (text chat veya voice).
// DB'deki "channels" tablosunun Go karşılığı.
type Channel struct {
	ID         string       `json:"id"`
	ServerID   string       `json:"server_id"`
	CategoryID *string      `json:"category_id"` // Nullable — kategorisiz kanal olabilir
	Name       string       `json:"name"`
	Type       ChannelType  `json:"type"`
	Position   int          `json:"position"`
	Member     ChannelFlags `json:"member"`
	Moderator  ChannelFlags `json:"moderator"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ─── Permission Matrix ───
//
// Saf fonksiyonlar: kanal flag'leri + rol → izin kararı. I/O yok.
// Her capability aynı Role.Allowed basamaklamasından geçer.

// CanView, kanalın üye listesinde görünüp görünmeyeceğini döner.
func (c *Channel) CanView(role Role) bool {
	return role.Allowed(c.Moderator.View, c.Member.View)
}

// CanAccess, kanala girilip girilemeyeceğini döner.
func (c *Channel) CanAccess(role Role) bool {
	return role.Allowed(c.Moderator.Access, c.Member.Access)
}

// CanSendMessages, kanala mesaj yazma iznini döner.
func (c *Channel) CanSendMessages(role Role) bool {
	return role.Allowed(c.Moderator.SendMessages, c.Member.SendMessages)
}

// CanSendFiles, dosya ekleme iznini döner.
// Dosyalı mesaj için SendMessages izni de ayrıca gerekir.
func (c *Channel) CanSendFiles(role Role) bool {
	return role.Allowed(c.Moderator.SendFiles, c.Member.SendFiles)
}

// CanSendLinks, link içeren mesaj iznini döner.
// Link'li mesaj için SendMessages izni de ayrıca gerekir.
func (c *Channel) CanSendLinks(role Role) bool {
	return role.Allowed(c.Moderator.SendLinks, c.Member.SendLinks)
}

// CanDeleteMessages, başkalarının mesajlarını silme iznini döner.
func (c *Channel) CanDeleteMessages(role Role) bool {
	return role.Allowed(c.Moderator.DeleteMessages, c.Member.DeleteMessages)
}

// Category, kanalları gruplamak için kullanılan kategorileri temsil eder.
type Category struct {
	ID        string    `json:"id"`
	ServerID  string    `json:"server_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryWithChannels, bir kategoriyi ve altındaki kanalları gruplar.
// Üye görünürlüğüne göre filtrelenmiş sidebar listesi için kullanılır.
type CategoryWithChannels struct {
	Category Category  `json:"category"`
	Channels []Channel `json:"channels"`
}

// CreateChannelRequest, yeni kanal oluşturma isteği.
type CreateChannelRequest struct {
	Name       string `json:"name"`
	Type       string `json:"type"`        // "text" veya "voice"
	CategoryID string `json:"category_id"` // Opsiyonel
}

// Validate, CreateChannelRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateChannelRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("channel name must be between 1 and 100 characters")
	}

	for _, ch := range r.Name {
		if !isValidChannelNameChar(ch) {
			return fmt.Errorf("channel name contains invalid characters")
		}
	}

	if r.Type != string(ChannelTypeText) && r.Type != string(ChannelTypeVoice) {
		return fmt.Errorf("channel type must be 'text' or 'voice'")
	}

	return nil
}

// UpdateChannelRequest, kanal güncelleme isteği.
// Pointer'lar nil ise o alan güncellenmez (partial update).
type UpdateChannelRequest struct {
	Name      *string       `json:"name"`
	Member    *ChannelFlags `json:"member"`
	Moderator *ChannelFlags `json:"moderator"`
}

// Validate, UpdateChannelRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateChannelRequest) Validate() error {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("channel name must be between 1 and 100 characters")
		}
		for _, ch := range *r.Name {
			if !isValidChannelNameChar(ch) {
				return fmt.Errorf("channel name contains invalid characters")
			}
		}
	}
	return nil
}

// CreateCategoryRequest, yeni kategori oluşturma isteği.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// Validate, CreateCategoryRequest kontrolü.
func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("category name must be between 1 and 100 characters")
	}
	return nil
}

// UpdateCategoryRequest, kategori güncelleme isteği.
type UpdateCategoryRequest struct {
	Name *string `json:"name"`
}

// Validate, UpdateCategoryRequest kontrolü.
func (r *UpdateCategoryRequest) Validate() error {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("category name must be between 1 and 100 characters")
		}
	}
	return nil
}

// isValidChannelNameChar, kanal adında izin verilen karakterleri kontrol eder.
// Unicode harf/rakam, boşluk, tire, alt çizgi kabul edilir.
func isValidChannelNameChar(ch rune) bool {
	return unicode.IsLetter(ch) ||
		unicode.IsDigit(ch) ||
		ch == '-' || ch == '_' || ch == ' '
}
