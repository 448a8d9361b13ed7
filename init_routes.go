// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - auth: JWT token doğrulaması
//   - authServer: auth + sunucu üyelik kontrolü
package main

import (
	"net/http"

	"github.com/veyra-chat/server/middleware"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: literal path'ler parametrik path'lerden ÖNCE
// gelmeli. Go 1.22 router en spesifik pattern'i seçer, ama okunabilirlik
// için literal'leri üstte tutuyoruz.
func initRoutes(mux *http.ServeMux, h *Handlers, svcs *Services, repos *Repositories) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(svcs.Auth, repos.User)
	serverMw := middleware.NewServerMembershipMiddleware(repos.Server, repos.Member)

	// ─── Middleware Chain Helpers ───
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}
	authServer := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(serverMw.Require(http.HandlerFunc(handler)))
	}

	// ╔══════════════════════════════════════════╗
	// ║  GLOBAL ROUTES (sunucu bağımsız)         ║
	// ╚══════════════════════════════════════════╝

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	// User
	mux.Handle("GET /api/auth/me", auth(h.Auth.Me))
	mux.Handle("PATCH /api/auth/me", auth(h.Auth.UpdateProfile))
	mux.Handle("DELETE /api/auth/me", auth(h.Auth.DeleteAccount))

	// Servers — liste ve oluşturma
	mux.Handle("GET /api/servers", auth(h.Server.List))
	mux.Handle("POST /api/servers", auth(h.Server.Create))

	// Invite accept — kullanıcı henüz üye DEĞİL, membership middleware yok
	mux.Handle("POST /api/invites/{code}/accept", auth(h.Invite.Accept))

	// DMs
	mux.Handle("GET /api/dms", auth(h.DM.ListConversations))
	mux.Handle("POST /api/dms", auth(h.DM.CreateOrGetConversation))
	mux.Handle("GET /api/dms/{conversationId}/messages", auth(h.DM.ListMessages))
	mux.Handle("POST /api/dms/{conversationId}/messages", auth(h.DM.SendMessage))
	mux.Handle("PATCH /api/dms/messages/{messageId}", auth(h.DM.EditMessage))
	mux.Handle("DELETE /api/dms/messages/{messageId}", auth(h.DM.DeleteMessage))

	// Friends
	mux.Handle("GET /api/friends", auth(h.Friendship.ListFriends))
	mux.Handle("POST /api/friends/requests", auth(h.Friendship.SendRequest))
	mux.Handle("GET /api/friends/requests", auth(h.Friendship.ListPending))
	mux.Handle("POST /api/friends/requests/{requestId}/accept", auth(h.Friendship.Accept))
	mux.Handle("POST /api/friends/requests/{requestId}/reject", auth(h.Friendship.Reject))
	mux.Handle("GET /api/friends/blocks", auth(h.Friendship.ListBlocks))
	mux.Handle("POST /api/friends/blocks/{userId}", auth(h.Friendship.Block))
	mux.Handle("DELETE /api/friends/blocks/{userId}", auth(h.Friendship.Unblock))
	mux.Handle("DELETE /api/friends/{userId}", auth(h.Friendship.Unfriend))

	// ╔══════════════════════════════════════════╗
	// ║  SERVER-SCOPED ROUTES (üyelik gerekir)   ║
	// ╚══════════════════════════════════════════╝

	// Server yönetimi
	mux.Handle("GET /api/servers/{serverId}", authServer(h.Server.Get))
	mux.Handle("PATCH /api/servers/{serverId}/settings", authServer(h.Server.UpdateSettings))
	mux.Handle("DELETE /api/servers/{serverId}", authServer(h.Server.Delete))
	mux.Handle("GET /api/servers/{serverId}/audit-logs", authServer(h.Server.AuditLogs))
	mux.Handle("POST /api/servers/{serverId}/assets/authorize", authServer(h.Server.AuthorizeAsset))

	// Members
	mux.Handle("GET /api/servers/{serverId}/members", authServer(h.Member.List))
	mux.Handle("DELETE /api/servers/{serverId}/members/me", authServer(h.Member.Leave))
	mux.Handle("PUT /api/servers/{serverId}/members/{userId}/role", authServer(h.Member.UpsertRole))
	mux.Handle("DELETE /api/servers/{serverId}/members/{userId}", authServer(h.Member.Remove))

	// Channels & categories
	mux.Handle("GET /api/servers/{serverId}/channels", authServer(h.Member.VisibleChannels))
	mux.Handle("POST /api/servers/{serverId}/channels", authServer(h.Channel.CreateChannel))
	mux.Handle("PATCH /api/servers/{serverId}/channels/{channelId}", authServer(h.Channel.UpdateChannel))
	mux.Handle("DELETE /api/servers/{serverId}/channels/{channelId}", authServer(h.Channel.DeleteChannel))
	mux.Handle("POST /api/servers/{serverId}/channels/{channelId}/messages/authorize", authServer(h.Channel.AuthorizeMessage))
	mux.Handle("POST /api/servers/{serverId}/channels/{channelId}/messages/authorize-delete", authServer(h.Channel.AuthorizeMessageDelete))
	mux.Handle("POST /api/servers/{serverId}/categories", authServer(h.Channel.CreateCategory))
	mux.Handle("PATCH /api/servers/{serverId}/categories/{categoryId}", authServer(h.Channel.UpdateCategory))
	mux.Handle("DELETE /api/servers/{serverId}/categories/{categoryId}", authServer(h.Channel.DeleteCategory))

	// Invites (server-scoped)
	mux.Handle("POST /api/servers/{serverId}/invites", authServer(h.Invite.Create))
	mux.Handle("GET /api/servers/{serverId}/invites", authServer(h.Invite.List))
	mux.Handle("DELETE /api/servers/{serverId}/invites/{code}", authServer(h.Invite.Revoke))

	// Moderation — yetki kontrolleri service katmanında
	mux.Handle("POST /api/servers/{serverId}/bans/{userId}", authServer(h.Moderation.Ban))
	mux.Handle("DELETE /api/servers/{serverId}/bans/{userId}", authServer(h.Moderation.Unban))
	mux.Handle("GET /api/servers/{serverId}/bans", authServer(h.Moderation.ListBans))
	mux.Handle("POST /api/servers/{serverId}/voice-timeouts/{userId}", authServer(h.Moderation.TimeoutVoice))
	mux.Handle("POST /api/servers/{serverId}/voice-kicks/{userId}", authServer(h.Moderation.KickFromVoice))
	mux.Handle("POST /api/servers/{serverId}/voice-moves/{userId}", authServer(h.Moderation.MoveToVoice))
	mux.Handle("POST /api/servers/{serverId}/voice-actions/next", authServer(h.Moderation.NextVoiceAction))

	// Voice token
	mux.Handle("POST /api/servers/{serverId}/voice/token", authServer(h.Voice.Token))

	// WebSocket
	//
	// Neden auth middleware kullanmıyoruz?
	// WebSocket upgrade sırasında tarayıcılar custom HTTP header gönderemez.
	// Bu yüzden JWT token URL query parameter olarak gönderilir:
	//   ws://server/ws?token=JWT_TOKEN
	// WS handler kendi içinde token doğrulaması yapar.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
