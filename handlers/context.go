// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi ince (thin) olmalı:
// 1. Request body'yi parse et (JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı içermez, ASLA doğrudan DB'ye erişmez.
// Tüm akıl service'de, handler sadece köprü.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/veyra-chat/server/models"
)

// contextKey, context.WithValue için özel tip.
// String yerine özel tip kullanmak collision'ları önler —
// başka bir paket aynı string key'i kullansa bile çakışma olmaz.
type contextKey string

const (
	// UserContextKey, AuthMiddleware'ın context'e koyduğu *models.User.
	UserContextKey contextKey = "user"

	// ServerIDContextKey, ServerMembershipMiddleware'ın context'e koyduğu server ID.
	ServerIDContextKey contextKey = "serverID"
)

// userFromContext, middleware'ın eklediği kullanıcıyı döner.
// Middleware zinciri doğru kurulduysa her zaman başarılıdır;
// ok=false route'un auth olmadan bağlandığını gösterir.
func userFromContext(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}

// parseLimit, ?limit= query parametresini okur. Geçersiz veya eksikse
// fallback döner; üst sınır kontrolü repository katmanında yapılır.
func parseLimit(r *http.Request, fallback int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
