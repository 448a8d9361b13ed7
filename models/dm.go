// Package models — Direct messaging domain modelleri.
//
// Conversation kimliği kanonik çift üzerinden kurulur: iki kullanıcı id'si
// lexicographic sıralanır, küçük olan user1 olur. createOrGet hangi sırayla
// çağrılırsa çağrılsın aynı satıra düşer (UNIQUE(user1,user2)).
//
// Mesaj içeriği düz metindir ama iki tür gömülü token taşıyabilir:
//   - Friend-request system marker'ı: "[friend_request:<id>:<status>]" —
//     istek yaşam döngüsü mesaj akışında görünür, durum değişince marker
//     yerinde yeniden yazılır.
//   - Upload URL'leri: dosya ekleri ayrı attachment satırı değil, içeriğe
//     gömülü URL token'larıdır. Silme sırasında pattern match ile çıkarılıp
//     blob temizliği için caller'a dönülür.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DirectConversation, iki kullanıcı arasındaki kanonik konuşmayı temsil eder.
// User1ID < User2ID her zaman geçerlidir.
type DirectConversation struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OtherParticipant, verilen kullanıcının karşısındaki katılımcıyı döner.
func (c *DirectConversation) OtherParticipant(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HasParticipant, kullanıcının bu konuşmanın tarafı olup olmadığını döner.
func (c *DirectConversation) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// CanonicalPair, iki kullanıcı id'sini deterministik sıraya sokar.
// Sırasız çift → tek satır garantisinin temelidir.
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// DirectMessage, bir DM mesajını temsil eder.
type DirectMessage struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at"`
}

// CreateDirectMessageRequest, yeni DM mesajı isteği.
type CreateDirectMessageRequest struct {
	Content string `json:"content"`
}

// Validate, CreateDirectMessageRequest kontrolü.
func (r *CreateDirectMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	contentLen := utf8.RuneCountInString(r.Content)
	if contentLen < 1 {
		return fmt.Errorf("message content is required")
	}
	if contentLen > 2000 {
		return fmt.Errorf("message content must be at most 2000 characters")
	}
	return nil
}

// UpdateDirectMessageRequest, DM mesajı düzenleme isteği.
type UpdateDirectMessageRequest struct {
	Content string `json:"content"`
}

// Validate, UpdateDirectMessageRequest kontrolü.
func (r *UpdateDirectMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	contentLen := utf8.RuneCountInString(r.Content)
	if contentLen < 1 {
		return fmt.Errorf("message content is required")
	}
	if contentLen > 2000 {
		return fmt.Errorf("message content must be at most 2000 characters")
	}
	return nil
}

// ─── System marker ───

var friendRequestMarkerRe = regexp.MustCompile(`\[friend_request:([0-9a-fA-F-]+):(pending|accepted|rejected)\]`)

// FriendRequestMarker, verilen istek için system marker token'ı üretir.
func FriendRequestMarker(requestID string, status FriendRequestStatus) string {
	return fmt.Sprintf("[friend_request:%s:%s]", requestID, status)
}

// RewriteFriendRequestMarker, içerikteki marker'ı yeni duruma yeniden yazar.
// Marker başka bir isteğe aitse veya hiç yoksa içerik değişmeden döner;
// ikinci dönüş değeri yeniden yazma yapılıp yapılmadığını söyler.
func RewriteFriendRequestMarker(content, requestID string, status FriendRequestStatus) (string, bool) {
	rewritten := false
	out := friendRequestMarkerRe.ReplaceAllStringFunc(content, func(m string) string {
		parts := friendRequestMarkerRe.FindStringSubmatch(m)
		if parts[1] != requestID {
			return m
		}
		rewritten = true
		return FriendRequestMarker(requestID, status)
	})
	return out, rewritten
}

// ─── Upload URL extraction ───

// uploadURLRe, içeriğe gömülü dosya URL token'larını yakalar.
// Upload servisi URL'leri "/uploads/" path segment'i ile üretir.
var uploadURLRe = regexp.MustCompile(`https?://[^\s]*/uploads/[^\s]+`)

// ExtractUploadURLs, mesaj içeriğinden blob temizliği için dosya URL'lerini
// çıkarır. Mesaj/kanal/sunucu silme akışları bu listeyi caller'a döner —
// blob silmenin kendisi bu core'un işi değildir.
func ExtractUploadURLs(content string) []string {
	return uploadURLRe.FindAllString(content, -1)
}
