// Package middleware — ServerMembershipMiddleware: sunucu üyelik kontrolü.
//
// URL'den serverId path parameter'ını alır, kullanıcının o sunucuya üye
// olup olmadığını doğrular ve serverID'yi context'e ekler.
//
// Bu middleware AuthMiddleware'den SONRA çalışır — context'te user bilgisi
// zaten mevcuttur.
//
// Akış: HTTP request → AuthMiddleware → ServerMembershipMiddleware → Handler
package middleware

import (
	"context"
	"net/http"

	"github.com/veyra-chat/server/handlers"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
)

// ServerMembershipMiddleware, sunucu üyelik kontrolü middleware'ı.
type ServerMembershipMiddleware struct {
	serverRepo repository.ServerRepository
	memberRepo repository.MemberRepository
}

// NewServerMembershipMiddleware, constructor.
func NewServerMembershipMiddleware(serverRepo repository.ServerRepository, memberRepo repository.MemberRepository) *ServerMembershipMiddleware {
	return &ServerMembershipMiddleware{
		serverRepo: serverRepo,
		memberRepo: memberRepo,
	}
}

// Require, sunucu üyeliği zorunlu kılan middleware.
//
// Context'ten user'ı alır, URL'den serverId'yi çeker ve üyelik kontrolü
// yapar. Owner her zaman geçer — üyelik kaydı olmasa bile örtük admin.
// Başarılıysa serverID'yi context'e ekler; değilse 403 döner.
func (m *ServerMembershipMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		// Go 1.22+ PathValue: route tanımındaki {serverId} parametresini çeker.
		serverID := r.PathValue("serverId")
		if serverID == "" {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "serverId is required")
			return
		}

		isMember, err := m.memberRepo.Exists(r.Context(), serverID, user.ID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusInternalServerError, "failed to check server membership")
			return
		}

		if !isMember {
			server, err := m.serverRepo.GetByID(r.Context(), serverID)
			if err != nil || server.OwnerID != user.ID {
				pkg.ErrorWithMessage(w, http.StatusForbidden, "you are not a member of this server")
				return
			}
		}

		ctx := context.WithValue(r.Context(), handlers.ServerIDContextKey, serverID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
